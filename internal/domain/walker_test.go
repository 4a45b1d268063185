package domain

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impall.dev/pkg/impall/internal/adapter"
	m "impall.dev/pkg/impall/internal/model"
)

func walkNames(t *testing.T, root string, cfg m.Config) []string {
	t.Helper()

	fsAdapter := adapter.NewLocalSourceFSAdapter()
	walker := NewTreeWalker(fsAdapter, NewPathResolver(fsAdapter, cfg.Layout), cfg.Layout)

	var names []string

	for unit, err := range walker.Walk(context.Background(), m.Path(root), cfg) {
		require.NoError(t, err)

		names = append(names, unit.Name)
	}

	return names
}

func TestTreeWalker_Walk_PackageBeforeFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"pkg/__init__.py",
		"pkg/b.py",
		"pkg/a.py",
		"pkg/sub/__init__.py",
		"pkg/sub/c.py",
	)

	assert.Equal(t, []string{"pkg", "pkg.a", "pkg.b", "pkg.sub", "pkg.sub.c"}, walkNames(t, root, m.DefaultConfig()))
}

func TestTreeWalker_Walk_StrictModePrunesPlainDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"top.py",
		"pkg/__init__.py",
		"pkg/plain/__init__.py.bak",
		"pkg/plain/loose.py",
		"pkg/plain/inner/__init__.py",
		"pkg/plain/inner/deep.py",
	)

	names := walkNames(t, root, m.DefaultConfig())

	assert.Equal(t, []string{"pkg", "top"}, names)
}

func TestTreeWalker_Walk_RecurseAll(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"pkg/__init__.py",
		"pkg/plain/loose.py",
		"pkg/plain/inner/__init__.py",
		"pkg/plain/inner/deep.py",
	)

	cfg := m.DefaultConfig()
	cfg.RecurseAll = true

	names := walkNames(t, root, cfg)

	assert.Equal(t, []string{"pkg", "inner", "inner.deep", "loose"}, names)
}

func TestTreeWalker_Walk_IgnoredNames(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"pkg/__init__.py",
		"pkg/.hidden.py",
		"pkg/__pycache__/__init__.py",
		"pkg/__pycache__/cached.py",
		"pkg/.git/__init__.py",
		"pkg/notes.txt",
		"pkg/two.parts.py",
		"pkg/__main__.py",
	)

	cfg := m.DefaultConfig()
	cfg.RecurseAll = true

	assert.Equal(t, []string{"pkg", "pkg.__main__"}, walkNames(t, root, cfg))
}

func TestTreeWalker_Walk_RootFileCandidates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "alpha.py", "beta.py", "__init__.py.orig")

	assert.Equal(t, []string{"alpha", "beta"}, walkNames(t, root, m.DefaultConfig()))
}

func TestTreeWalker_Walk_CustomLayout(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "lib/init.rb", "lib/util.rb", "lib/skip.py")

	cfg := m.DefaultConfig()
	cfg.Layout = m.Layout{Marker: "init.rb", Suffix: ".rb"}

	assert.Equal(t, []string{"lib", "lib.util"}, walkNames(t, root, cfg))
}

func TestTreeWalker_Walk_EarlyBreak(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.py", "b.py", "c.py")

	fsAdapter := adapter.NewLocalSourceFSAdapter()
	walker := NewTreeWalker(fsAdapter, NewPathResolver(fsAdapter, m.DefaultLayout), m.DefaultLayout)

	var names []string

	for unit, err := range walker.Walk(context.Background(), m.Path(root), m.DefaultConfig()) {
		require.NoError(t, err)

		names = append(names, unit.Name)
		if len(names) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"a", "b"}, names)
}

func TestTreeWalker_Walk_MissingRoot(t *testing.T) {
	fsAdapter := adapter.NewLocalSourceFSAdapter()
	walker := NewTreeWalker(fsAdapter, NewPathResolver(fsAdapter, m.DefaultLayout), m.DefaultLayout)

	missing := filepath.Join(t.TempDir(), "missing")

	var errs []error

	for _, err := range walker.Walk(context.Background(), m.Path(missing), m.DefaultConfig()) {
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)

	var discoveryErr *DiscoveryError
	require.ErrorAs(t, errs[0], &discoveryErr)
	assert.True(t, errors.Is(errs[0], fs.ErrNotExist))
}

func TestTreeWalker_Walk_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.py", "b.py")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fsAdapter := adapter.NewLocalSourceFSAdapter()
	walker := NewTreeWalker(fsAdapter, NewPathResolver(fsAdapter, m.DefaultLayout), m.DefaultLayout)

	var lastErr error

	for _, err := range walker.Walk(ctx, m.Path(root), m.DefaultConfig()) {
		if err != nil {
			lastErr = err
		}
	}

	assert.ErrorIs(t, lastErr, context.Canceled)
}
