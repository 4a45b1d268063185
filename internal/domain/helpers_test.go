package domain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"impall.dev/pkg/impall/internal/adapter"
	m "impall.dev/pkg/impall/internal/model"
)

// writeTree creates files below root. Names ending in "/" become directories.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()

	for _, name := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}

		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(""), 0o600))
	}
}

// writeSource creates a single file with contents.
func writeSource(t *testing.T, root, name, contents string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}

// fakeLoader "loads" a unit by reading its source: a file containing
// "raise" fails, "warn" raises a warning and "panic" panics. Every load
// also leaks a registry entry and a search path entry, the way real imports
// leave state behind.
type fakeLoader struct {
	mu          sync.Mutex
	loaded      []string
	invalidated int
}

func (f *fakeLoader) Load(_ context.Context, env *m.Environment, unit m.Unit) error {
	f.mu.Lock()
	f.loaded = append(f.loaded, unit.Name)
	f.mu.Unlock()

	source := string(unit.Path)
	if unit.Kind == m.KindPackage {
		source = filepath.Join(source, m.DefaultLayout.Marker)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}

	env.Register("leaked." + unit.Name)
	env.PushFront(filepath.Join(string(unit.SearchRoot), "leaked"))

	text := string(data)

	switch {
	case strings.Contains(text, "panic"):
		panic("boom in " + unit.Name)
	case strings.Contains(text, "raise"):
		return &m.LoadError{Unit: unit.Name, Kind: "ZeroDivisionError", Message: "division by zero"}
	case strings.Contains(text, "warn"):
		return &m.Warning{Category: "DeprecationWarning", Message: "old api", Source: source + ":1"}
	}

	return nil
}

func (f *fakeLoader) InvalidateCaches() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidated++
}

func (f *fakeLoader) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.loaded...)
}

var _ adapter.CacheInvalidator = (*fakeLoader)(nil)

// goodBadTree builds the pkg/good.py, pkg/bad.py fixture and returns the root.
func goodBadTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeTree(t, root, "pkg/__init__.py", "pkg/good.py")
	writeSource(t, root, "pkg/bad.py", "raise ZeroDivisionError")

	return root
}

func newTestEngine(env *m.Environment, loader adapter.Loader) Engine {
	return NewEngine(adapter.NewLocalSourceFSAdapter(), env, loader)
}

func unitNames(units []m.Unit) []string {
	names := make([]string, 0, len(units))
	for _, unit := range units {
		names = append(names, unit.Name)
	}

	return names
}

func failureNames(failures []m.FailedUnit) []string {
	names := make([]string, 0, len(failures))
	for _, failure := range failures {
		names = append(names, failure.Name)
	}

	return names
}
