package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"impall.dev/pkg/impall/internal/adapter"
	m "impall.dev/pkg/impall/internal/model"
)

// errNotDirectory is wrapped by a DiscoveryError for roots that are files.
var errNotDirectory = errors.New("not a directory")

// Progress receives per-unit notifications during a run.
type Progress interface {
	UnitStarted(unit m.Unit)
	UnitFinished(result m.Result)
}

type noProgress struct{}

func (noProgress) UnitStarted(m.Unit)     {}
func (noProgress) UnitFinished(m.Result) {}

// Engine discovers units below the configured roots and loads each one in
// isolation.
type Engine interface {
	// Run loads every accepted unit in walk order. Only a *DiscoveryError, a
	// *PatternError, a fail-fast *LoadFailure or ctx cancellation are
	// returned as errors; every other outcome is captured in the Report.
	Run(ctx context.Context, cfg m.Config, progress Progress) (m.Report, error)

	// Discover returns the accepted units without loading them. Roots are
	// walked concurrently; the result keeps root order then walk order.
	Discover(ctx context.Context, cfg m.Config) ([]m.Unit, error)

	// Resolver returns a resolver for cfg's layout.
	Resolver(cfg m.Config) PathResolver
}

type engine struct {
	fs     adapter.SourceFSAdapter
	env    *m.Environment
	loader adapter.Loader
}

// NewEngine constructs an Engine loading units with loader against env.
func NewEngine(fsAdapter adapter.SourceFSAdapter, env *m.Environment, loader adapter.Loader) Engine {
	return &engine{
		fs:     fsAdapter,
		env:    env,
		loader: loader,
	}
}

func (e *engine) Resolver(cfg m.Config) PathResolver {
	return NewPathResolver(e.fs, cfg.Layout)
}

func (e *engine) Run(ctx context.Context, cfg m.Config, progress Progress) (m.Report, error) {
	if progress == nil {
		progress = noProgress{}
	}

	cfg.Layout = cfg.Layout.OrDefault()

	filter, err := NewFilter(cfg)
	if err != nil {
		slog.Error("Failed to compile patterns", "error", err)
		return m.Report{}, err
	}

	resolver := e.Resolver(cfg)

	roots, err := e.roots(resolver, cfg)
	if err != nil {
		return m.Report{}, err
	}

	restore := e.env.SetWarnings(cfg.Warnings)
	defer restore()

	walker := NewTreeWalker(e.fs, resolver, cfg.Layout)
	isolated := NewIsolatedLoader(e.env, e.loader, cfg.Warnings)

	report := m.Report{Results: []m.Result{}}

	for _, root := range roots {
		slog.Info("Walking root", "root", root, "recurse_all", cfg.RecurseAll)

		for unit, walkErr := range walker.Walk(ctx, root, cfg) {
			if walkErr != nil {
				return report, walkErr
			}

			if !filter.Accepts(unit.Name) {
				slog.Debug("Skipping unit", "unit", unit.Name)
				continue
			}

			if err := ctx.Err(); err != nil {
				return report, err
			}

			progress.UnitStarted(unit)

			result, attemptErr := isolated.Attempt(ctx, unit, cfg)
			report.Results = append(report.Results, result)

			progress.UnitFinished(result)

			if attemptErr != nil {
				return report, attemptErr
			}
		}
	}

	slog.Info("Run finished", "attempted", report.Len(), "failures", len(report.Failures()))

	return report, nil
}

func (e *engine) Discover(ctx context.Context, cfg m.Config) ([]m.Unit, error) {
	cfg.Layout = cfg.Layout.OrDefault()

	filter, err := NewFilter(cfg)
	if err != nil {
		return nil, err
	}

	resolver := e.Resolver(cfg)

	roots, err := e.roots(resolver, cfg)
	if err != nil {
		return nil, err
	}

	walker := NewTreeWalker(e.fs, resolver, cfg.Layout)
	perRoot := make([][]m.Unit, len(roots))

	group, groupCtx := errgroup.WithContext(ctx)

	for i, root := range roots {
		group.Go(func() error {
			for unit, walkErr := range walker.Walk(groupCtx, root, cfg) {
				if walkErr != nil {
					return walkErr
				}

				if filter.Accepts(unit.Name) {
					perRoot[i] = append(perRoot[i], unit)
				}
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		slog.Error("Failed to discover units", "error", err)
		return nil, err
	}

	var units []m.Unit
	for _, found := range perRoot {
		units = append(units, found...)
	}

	return units, nil
}

// roots validates the configured roots, guessing one from the working
// directory when none are given.
func (e *engine) roots(resolver PathResolver, cfg m.Config) ([]m.Path, error) {
	if len(cfg.Roots) == 0 {
		wd, err := e.fs.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		root, err := resolver.GuessRoot(wd)
		if err != nil {
			return nil, err
		}

		slog.Debug("Guessed root", "cwd", wd, "root", root)

		return []m.Path{root}, nil
	}

	roots := make([]m.Path, 0, len(cfg.Roots))

	for _, root := range cfg.Roots {
		abs, err := e.fs.Abs(root)
		if err != nil {
			return nil, &DiscoveryError{Path: root, Err: err}
		}

		info, err := e.fs.FileInfo(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Error("Root does not exist", "root", root)
				return nil, &DiscoveryError{Path: root, Err: fs.ErrNotExist}
			}

			return nil, &DiscoveryError{Path: root, Err: err}
		}

		if !info.IsDir() {
			return nil, &DiscoveryError{Path: root, Err: errNotDirectory}
		}

		roots = append(roots, abs)
	}

	return roots, nil
}
