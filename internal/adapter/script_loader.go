package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	m "impall.dev/pkg/impall/internal/model"
)

// DefaultScript loads a unit with the Python interpreter through the built-in shell.
const DefaultScript = `export ` + DefaultSearchPathEnv + `="$IMPALL_SEARCH_PATH"
"${IMPALL_PYTHON:-python3}" -W "$IMPALL_WARNINGS" -c "$IMPALL_PROBE" "$IMPALL_UNIT"
`

// ScriptLoader runs a POSIX shell script per unit using an embedded interpreter,
// so no system shell is required. The script sees IMPALL_UNIT, IMPALL_ROOT,
// IMPALL_PATH, IMPALL_KIND, IMPALL_SEARCH_PATH, IMPALL_WARNINGS and
// IMPALL_PROBE; a non-zero exit status marks the unit as failed.
type ScriptLoader struct {
	source        string
	prog          *syntax.File
	searchPathEnv string
	timeout       time.Duration
}

// NewScriptLoader parses script and returns a loader running it.
func NewScriptLoader(script string, opts ...ExecOption) (*ScriptLoader, error) {
	if strings.TrimSpace(script) == "" {
		script = DefaultScript
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "loader")
	if err != nil {
		return nil, fmt.Errorf("failed to parse loader script: %w", err)
	}

	// Reuse the exec options so both loaders are configured the same way.
	settings := NewExecLoader(opts...)

	return &ScriptLoader{
		source:        script,
		prog:          prog,
		searchPathEnv: settings.searchPathEnv,
		timeout:       settings.timeout,
	}, nil
}

// Source returns the script text.
func (l *ScriptLoader) Source() string {
	return l.source
}

// Load runs the script for unit and classifies its outcome.
func (l *ScriptLoader) Load(ctx context.Context, env *m.Environment, unit m.Unit) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	runner, err := interp.New(
		interp.Dir(string(unit.SearchRoot)),
		interp.Env(expand.ListEnviron(loaderEnv(env, unit, l.searchPathEnv)...)),
		interp.StdIO(nil, &stdout, &stderr),
	)
	if err != nil {
		slog.Error("Failed to create loader interpreter", "unit", unit.Name, "error", err)
		return &m.LoadError{Unit: unit.Name, Kind: "LoaderError", Message: err.Error(), Err: err}
	}

	runErr := runner.Run(ctx, l.prog)

	var status interp.ExitStatus
	if runErr != nil && !errors.As(runErr, &status) && ctx.Err() == nil {
		slog.Error("Loader script aborted", "unit", unit.Name, "error", runErr)
	}

	slog.Debug("Loader script finished", "unit", unit.Name, "error", runErr, "stdout", stdout.Len(), "stderr", stderr.Len())

	return classifyOutput(ctx, unit, stderr.String(), runErr)
}
