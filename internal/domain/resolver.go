package domain

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"impall.dev/pkg/impall/internal/adapter"
	m "impall.dev/pkg/impall/internal/model"
)

// PathResolver converts filesystem paths into the dotted names a loader expects.
type PathResolver interface {
	// Resolve returns the search root and dotted name for a file or package
	// directory. It walks upward while the current path is a package
	// directory, or is not a plain directory.
	Resolve(path m.Path) (m.Path, string, error)

	// GuessRoot returns the lowest ancestor of dir, dir included, that is
	// not a package directory.
	GuessRoot(dir m.Path) (m.Path, error)

	// IsPackage reports whether dir is a non-ignored directory holding the
	// package marker.
	IsPackage(dir m.Path) bool
}

type resolution struct {
	root m.Path
	name string
}

type pathResolver struct {
	fs     adapter.SourceFSAdapter
	layout m.Layout

	mu   sync.Mutex
	memo map[m.Path]resolution
}

// NewPathResolver constructs a PathResolver. Resolutions are memoized for the
// lifetime of the resolver, so callers create one per run.
func NewPathResolver(fsAdapter adapter.SourceFSAdapter, layout m.Layout) PathResolver {
	return &pathResolver{
		fs:     fsAdapter,
		layout: layout.OrDefault(),
		memo:   map[m.Path]resolution{},
	}
}

func (r *pathResolver) Resolve(path m.Path) (m.Path, string, error) {
	abs, err := r.fs.Abs(path)
	if err != nil {
		return "", "", &DiscoveryError{Path: path, Err: err}
	}

	r.mu.Lock()
	cached, ok := r.memo[abs]
	r.mu.Unlock()

	if ok {
		return cached.root, cached.name, nil
	}

	if !r.fs.Exists(abs) {
		return "", "", &DiscoveryError{Path: path, Err: fs.ErrNotExist}
	}

	current := strings.TrimSuffix(string(abs), r.layout.Suffix)

	var parts []string

	for !r.plainDir(current) || r.IsPackage(m.Path(current)) {
		parent := filepath.Dir(current)
		if parent == current {
			break
		}

		parts = append(parts, filepath.Base(current))
		current = parent
	}

	if len(parts) == 0 {
		return "", "", &DiscoveryError{Path: path, Err: ErrNoUnitName}
	}

	slices.Reverse(parts)

	res := resolution{root: m.Path(current), name: m.JoinName(parts...)}

	r.mu.Lock()
	r.memo[abs] = res
	r.mu.Unlock()

	slog.Debug("Resolved path", "path", abs, "root", res.root, "name", res.name)

	return res.root, res.name, nil
}

func (r *pathResolver) GuessRoot(dir m.Path) (m.Path, error) {
	abs, err := r.fs.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	if !r.fs.IsDir(abs) {
		return "", &DiscoveryError{Path: dir, Err: fs.ErrNotExist}
	}

	current := string(abs)
	for r.IsPackage(m.Path(current)) {
		parent := filepath.Dir(current)
		if parent == current {
			break
		}

		current = parent
	}

	return m.Path(current), nil
}

func (r *pathResolver) IsPackage(dir m.Path) bool {
	if r.layout.IgnoredDir(filepath.Base(string(dir))) {
		return false
	}

	return r.fs.Exists(m.Path(filepath.Join(string(dir), r.layout.Marker)))
}

// plainDir reports whether path is a directory not shadowed by a source file
// of the same name.
func (r *pathResolver) plainDir(path string) bool {
	return r.fs.IsDir(m.Path(path)) && !r.fs.Exists(m.Path(path+r.layout.Suffix))
}
