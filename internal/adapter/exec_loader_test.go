package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	m "impall.dev/pkg/impall/internal/model"
)

func testUnit(t *testing.T) m.Unit {
	t.Helper()

	root := t.TempDir()

	return m.Unit{
		Path:       m.Path(root + "/pkg/mod.py"),
		SearchRoot: m.Path(root),
		Name:       "pkg.mod",
		Kind:       m.KindFile,
	}
}

func TestExecLoader_Load_Success(t *testing.T) {
	loader := NewExecLoader(WithCommand("sh", "-c", "exit 0"))

	err := loader.Load(context.Background(), m.NewEnvironment(), testUnit(t))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
}

func TestExecLoader_Load_Failure(t *testing.T) {
	script := `echo 'Traceback (most recent call last):' >&2
echo 'ZeroDivisionError: division by zero' >&2
exit 1`
	loader := NewExecLoader(WithCommand("sh", "-c", script))

	err := loader.Load(context.Background(), m.NewEnvironment(), testUnit(t))

	var loadErr *m.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}

	if loadErr.Kind != "ZeroDivisionError" || loadErr.Message != "division by zero" {
		t.Fatalf("Load() = %q/%q, want ZeroDivisionError/division by zero", loadErr.Kind, loadErr.Message)
	}

	if loadErr.Unit != "pkg.mod" {
		t.Fatalf("Load() unit = %q, want pkg.mod", loadErr.Unit)
	}
}

func TestExecLoader_Load_FailureWithoutExceptionLine(t *testing.T) {
	loader := NewExecLoader(WithCommand("sh", "-c", "echo boom >&2; exit 3"))

	err := loader.Load(context.Background(), m.NewEnvironment(), testUnit(t))

	var loadErr *m.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}

	if loadErr.Kind != "exit status 3" || loadErr.Message != "boom" {
		t.Fatalf("Load() = %q/%q, want exit status 3/boom", loadErr.Kind, loadErr.Message)
	}
}

func TestExecLoader_Load_Warning(t *testing.T) {
	script := `echo '/src/pkg/mod.py:3: DeprecationWarning: old api' >&2
echo '  warnings.warn("old api", DeprecationWarning)' >&2`
	loader := NewExecLoader(WithCommand("sh", "-c", script))

	err := loader.Load(context.Background(), m.NewEnvironment(), testUnit(t))

	var warning *m.Warning
	if !errors.As(err, &warning) {
		t.Fatalf("Load() error = %v, want *Warning", err)
	}

	if warning.Category != "DeprecationWarning" || warning.Source != "/src/pkg/mod.py:3" || warning.Message != "old api" {
		t.Fatalf("Load() warning = %+v", warning)
	}
}

func TestExecLoader_Load_ExpandsPlaceholdersAndSearchPath(t *testing.T) {
	unit := testUnit(t)
	script := `test "$0" = pkg.mod && test "$1" = error && test -d "$2" && test "$MY_PATH" = "/first:/second"`
	loader := NewExecLoader(
		WithCommand("sh", "-c", script, "{unit}", "{warnings}", "{root}"),
		WithSearchPathEnv("MY_PATH"),
	)

	env := m.NewEnvironment("/first", "/second")
	restore := env.SetWarnings(m.WarningsError)
	defer restore()

	if err := loader.Load(context.Background(), env, unit); err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
}

func TestExecLoader_Load_Timeout(t *testing.T) {
	loader := NewExecLoader(WithCommand("sh", "-c", "sleep 5"), WithTimeout(50*time.Millisecond))

	err := loader.Load(context.Background(), m.NewEnvironment(), testUnit(t))

	var loadErr *m.LoadError
	if !errors.As(err, &loadErr) || loadErr.Kind != "Timeout" {
		t.Fatalf("Load() error = %v, want Timeout LoadError", err)
	}
}

func TestExecLoader_Load_MissingProgram(t *testing.T) {
	loader := NewExecLoader(WithCommand("impall-no-such-interpreter"))

	err := loader.Load(context.Background(), m.NewEnvironment(), testUnit(t))

	var loadErr *m.LoadError
	if !errors.As(err, &loadErr) || loadErr.Kind != "LoaderNotFound" {
		t.Fatalf("Load() error = %v, want LoaderNotFound", err)
	}
}

func TestExecLoader_InvalidateCaches(t *testing.T) {
	loader := NewExecLoader(WithCommand("sh", "-c", "exit 0"))

	if err := loader.Load(context.Background(), m.NewEnvironment(), testUnit(t)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(loader.resolved) != 1 {
		t.Fatalf("resolved cache size = %d, want 1", len(loader.resolved))
	}

	loader.InvalidateCaches()

	if len(loader.resolved) != 0 {
		t.Fatalf("resolved cache size after invalidate = %d, want 0", len(loader.resolved))
	}
}

func TestParseWarnings_Multiple(t *testing.T) {
	stderr := "/a.py:1: UserWarning: one\n/b.py:2: FutureWarning: two\n"

	err := parseWarnings(stderr)

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("parseWarnings() = %T, want joined error", err)
	}

	if got := len(joined.Unwrap()); got != 2 {
		t.Fatalf("parseWarnings() joined %d warnings, want 2", got)
	}
}
