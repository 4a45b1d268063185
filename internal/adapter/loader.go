package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	m "impall.dev/pkg/impall/internal/model"
)

// Loader performs one load of a unit against the given environment.
//
// Implementations return nil on success, a *model.Warning (or several joined
// with errors.Join) when the unit loaded but raised warnings, and any other
// error when the unit failed to load.
type Loader interface {
	Load(ctx context.Context, env *m.Environment, unit m.Unit) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, env *m.Environment, unit m.Unit) error

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, env *m.Environment, unit m.Unit) error {
	return f(ctx, env, unit)
}

// CacheInvalidator is implemented by loaders that cache discovery results and
// must drop them before each attempt so filesystem changes are observed.
type CacheInvalidator interface {
	InvalidateCaches()
}

// PythonProbe is the program the default loaders hand to the interpreter.
const PythonProbe = `import importlib, sys
importlib.invalidate_caches()
importlib.import_module(sys.argv[1])
`

// DefaultSearchPathEnv is the variable that carries the search path to the interpreter.
const DefaultSearchPathEnv = "PYTHONPATH"

// DefaultLoadTimeout bounds a single load attempt.
const DefaultLoadTimeout = 2 * time.Minute

var (
	warningLine   = regexp.MustCompile(`^(.+?:\d+): ([A-Za-z_][\w.]*Warning): (.*)$`)
	exceptionLine = regexp.MustCompile(`^([A-Za-z_][\w.]*): (.*)$`)
)

// classifyOutput maps the outcome of an interpreter run to the Loader contract.
func classifyOutput(ctx context.Context, unit m.Unit, stderr string, runErr error) error {
	if runErr == nil {
		return parseWarnings(stderr)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &m.LoadError{
			Unit:    unit.Name,
			Kind:    "Timeout",
			Message: fmt.Sprintf("load did not finish: %v", ctxErr),
			Trace:   stderr,
			Err:     ctxErr,
		}
	}

	loadErr := &m.LoadError{
		Unit:  unit.Name,
		Kind:  runErr.Error(),
		Trace: stderr,
		Err:   runErr,
	}

	last := lastLine(stderr)
	if match := exceptionLine.FindStringSubmatch(last); match != nil {
		loadErr.Kind = match[1]
		loadErr.Message = match[2]
	} else {
		loadErr.Message = last
	}

	return loadErr
}

func parseWarnings(stderr string) error {
	var warnings []error

	for _, line := range strings.Split(stderr, "\n") {
		match := warningLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}

		warnings = append(warnings, &m.Warning{
			Source:   match[1],
			Category: match[2],
			Message:  match[3],
		})
	}

	switch len(warnings) {
	case 0:
		return nil
	case 1:
		return warnings[0]
	default:
		return errors.Join(warnings...)
	}
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// loaderEnv builds the process environment handed to an interpreter.
func loaderEnv(env *m.Environment, unit m.Unit, searchPathEnv string) []string {
	searchPath := strings.Join(env.SearchPath(), string(os.PathListSeparator))

	vars := os.Environ()
	vars = append(vars,
		searchPathEnv+"="+searchPath,
		"IMPALL_UNIT="+unit.Name,
		"IMPALL_ROOT="+string(unit.SearchRoot),
		"IMPALL_PATH="+string(unit.Path),
		"IMPALL_KIND="+string(unit.Kind),
		"IMPALL_SEARCH_PATH="+searchPath,
		"IMPALL_WARNINGS="+string(env.Warnings()),
		"IMPALL_PROBE="+PythonProbe,
	)

	return vars
}
