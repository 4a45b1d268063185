package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"impall.dev/pkg/impall/internal/adapter"
	"impall.dev/pkg/impall/internal/controller"
	m "impall.dev/pkg/impall/internal/model"
)

// RunArgs contains the arguments for a load run.
type RunArgs struct {
	Config m.Config
	// ReportPath, when set, receives the YAML report of every run.
	ReportPath m.Path
	// Watch reruns after every batch of source changes until ctx is cancelled.
	Watch bool
}

// ListArgs contains the arguments for listing units.
type ListArgs struct {
	Config m.Config
}

// ResolveArgs contains the arguments for resolving one path.
type ResolveArgs struct {
	Path   m.Path
	Layout m.Layout
}

// ViewArgs contains the arguments for displaying a saved report.
type ViewArgs struct {
	ReportPath m.Path
}

// Workflow is the entry point used by the command line.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
	Resolve(ctx context.Context, args ResolveArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.ReportStore
	adapter.Watcher
	controller.UI

	engine Engine
	now    func() time.Time
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	engine Engine,
	reportStore adapter.ReportStore,
	watcher adapter.Watcher,
	ui controller.UI,
) Workflow {
	return &workflow{
		ReportStore: reportStore,
		Watcher:     watcher,
		UI:          ui,
		engine:      engine,
		now:         time.Now,
	}
}

func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	err := w.runOnce(ctx, args)
	if !args.Watch {
		return err
	}

	if err != nil && !reportedFailure(err) {
		return err
	}

	roots, err := w.watchRoots(args.Config)
	if err != nil {
		return err
	}

	slog.Info("Watching for changes", "roots", roots)

	return w.Watch(ctx, roots, args.Config.Layout, func(ctx context.Context, changed []m.Path) {
		w.DisplayChanges(ctx, changed)

		if runErr := w.runOnce(ctx, args); runErr != nil && !reportedFailure(runErr) {
			slog.Error("Watched run failed", "error", runErr)
		}
	})
}

func (w *workflow) runOnce(ctx context.Context, args RunArgs) error {
	runID := uuid.NewString()
	logger := slog.With("run_id", runID)
	startedAt := w.now()

	w.DisplayRunInfo(ctx, runID, args.Config)
	logger.Info("Starting run", "roots", args.Config.Roots, "warnings", args.Config.Warnings)

	report, runErr := w.engine.Run(ctx, args.Config, w.UI)
	if runErr != nil {
		var failure *LoadFailure
		if !errors.As(runErr, &failure) {
			logger.Error("Run aborted", "error", runErr)
			return fmt.Errorf("run: %w", runErr)
		}
	}

	rec := Reconcile(report, args.Config.ExpectedFailures)

	diff := ""
	if !rec.OK() {
		var err error
		if diff, err = ExpectationDiff(report, args.Config.ExpectedFailures); err != nil {
			logger.Warn("Failed to diff expected failures", "error", err)
		}
	}

	if err := w.DisplayReport(ctx, report, rec, diff); err != nil {
		logger.Error("Failed to display report", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	if args.ReportPath != "" {
		saved := m.SavedReport{
			RunID:          runID,
			StartedAt:      startedAt,
			Config:         args.Config.Saved(),
			Report:         report,
			Reconciliation: rec,
		}

		if err := w.SaveReport(args.ReportPath, saved); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}

	logger.Info("Run complete",
		"loaded", len(report.Successes()),
		"unexpected", len(rec.Unexpected),
		"failed_to_fail", len(rec.FailedToFail),
		"missing", len(rec.Missing),
	)

	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}

	if !rec.OK() {
		return ErrRunFailed
	}

	return nil
}

// reportedFailure reports whether err describes load failures that were
// already displayed, as opposed to a run that could not happen at all.
func reportedFailure(err error) bool {
	var failure *LoadFailure

	return errors.Is(err, ErrRunFailed) || errors.As(err, &failure)
}

func (w *workflow) watchRoots(cfg m.Config) ([]m.Path, error) {
	if len(cfg.Roots) > 0 {
		return cfg.Roots, nil
	}

	root, err := w.engine.Resolver(cfg).GuessRoot(".")
	if err != nil {
		return nil, err
	}

	return []m.Path{root}, nil
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	units, err := w.engine.Discover(ctx, args.Config)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	if err := w.DisplayUnits(ctx, units); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

func (w *workflow) Resolve(ctx context.Context, args ResolveArgs) error {
	resolver := w.engine.Resolver(m.Config{Layout: args.Layout})

	root, name, err := resolver.Resolve(args.Path)
	if err != nil {
		slog.Error("Failed to resolve path", "path", args.Path, "error", err)
		return fmt.Errorf("resolve: %w", err)
	}

	return w.DisplayResolution(ctx, args.Path, root, name)
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return err
	}
	defer w.Close(ctx)

	saved, err := w.LoadReport(args.ReportPath)
	if err != nil {
		slog.Error("Failed to load report", "path", args.ReportPath, "error", err)
		return fmt.Errorf("load report: %w", err)
	}

	return w.DisplaySavedReport(ctx, saved)
}
