package domain

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"impall.dev/pkg/impall/internal/adapter"
	m "impall.dev/pkg/impall/internal/model"
)

// IsolatedLoader performs one load attempt with save and restore of the
// loader environment around it.
type IsolatedLoader interface {
	// Attempt loads unit and reports the outcome as a Result. Load errors,
	// panics and escalated warnings are captured in the Result; the error is
	// non-nil only for a fail-fast abort (*LoadFailure).
	Attempt(ctx context.Context, unit m.Unit, cfg m.Config) (m.Result, error)
}

type isolatedLoader struct {
	env      *m.Environment
	loader   adapter.Loader
	warnings *warningFilter
}

// NewIsolatedLoader constructs an IsolatedLoader. Warning deduplication state
// lives as long as the returned value, so callers create one per run.
func NewIsolatedLoader(env *m.Environment, loader adapter.Loader, policy m.WarningPolicy) IsolatedLoader {
	return &isolatedLoader{
		env:      env,
		loader:   loader,
		warnings: newWarningFilter(policy),
	}
}

func (l *isolatedLoader) Attempt(ctx context.Context, unit m.Unit, cfg m.Config) (m.Result, error) {
	start := time.Now()

	release := l.env.Acquire()
	defer release()

	// The search path is always put back; the registry only with ClearState.
	snapshot := l.env.Snapshot()
	if cfg.ClearState {
		defer l.env.Restore(snapshot)
	} else {
		defer l.env.RestoreSearchPath(snapshot)
	}

	l.env.PushFront(string(unit.SearchRoot))

	if invalidator, ok := l.loader.(adapter.CacheInvalidator); ok {
		invalidator.InvalidateCaches()
	}

	result := m.Result{Unit: unit, Status: m.Success}

	if !cfg.ClearState && l.env.Registered(unit.Name) {
		slog.Debug("Unit already loaded", "unit", unit.Name)

		result.Duration = time.Since(start)

		return result, nil
	}

	l.record(&result, l.load(ctx, unit))

	result.Duration = time.Since(start)

	if result.Status == m.Success {
		l.env.Register(m.Prefixes(unit.Name)...)
		slog.Debug("Loaded unit", "unit", unit.Name, "duration", result.Duration)

		return result, nil
	}

	slog.Warn("Unit failed to load", "unit", unit.Name, "error", result.Err)

	if cfg.FailFast {
		return result, &LoadFailure{Unit: unit.Name, Detail: result.Detail, Err: result.Err}
	}

	return result, nil
}

// load calls the loader, converting a panic into an error.
func (l *isolatedLoader) load(ctx context.Context, unit m.Unit) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = panicError(unit.Name, recovered, debug.Stack())
		}
	}()

	return l.loader.Load(ctx, l.env, unit)
}

func (l *isolatedLoader) record(result *m.Result, err error) {
	warnings, rest := splitWarnings(err)
	if rest != nil {
		result.Status = m.Failure
		result.Detail = failureDetail(rest)
		result.Err = rest

		return
	}

	reported, escalate := l.warnings.apply(result.Unit.Name, warnings)
	if len(reported) == 0 {
		return
	}

	lines := make([]string, 0, len(reported))
	errs := make([]error, 0, len(reported))

	for _, warning := range reported {
		lines = append(lines, warning.Error())
		errs = append(errs, warning)
	}

	result.Detail = strings.Join(lines, "\n")

	if escalate {
		result.Status = m.Failure
		result.Err = errors.Join(errs...)
	}
}
