package domain

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"

	"impall.dev/pkg/impall/internal/adapter"
	m "impall.dev/pkg/impall/internal/model"
)

// TreeWalker yields the loadable units below a root.
type TreeWalker interface {
	// Walk lazily yields units below root in top-down lexical order. A
	// package directory is yielded before its files. In strict mode (the
	// default) only package directories are descended, and a pruned subtree
	// is never resumed below. With RecurseAll every non-ignored directory is
	// descended. An unreadable root is yielded as a *DiscoveryError.
	Walk(ctx context.Context, root m.Path, cfg m.Config) iter.Seq2[m.Unit, error]
}

type treeWalker struct {
	fs       adapter.SourceFSAdapter
	resolver PathResolver
	layout   m.Layout
}

// NewTreeWalker constructs a TreeWalker resolving units with resolver.
func NewTreeWalker(fsAdapter adapter.SourceFSAdapter, resolver PathResolver, layout m.Layout) TreeWalker {
	return &treeWalker{
		fs:       fsAdapter,
		resolver: resolver,
		layout:   layout.OrDefault(),
	}
}

func (w *treeWalker) Walk(ctx context.Context, root m.Path, cfg m.Config) iter.Seq2[m.Unit, error] {
	return func(yield func(m.Unit, error) bool) {
		stopped := false

		emit := func(path string, kind m.UnitKind) error {
			unit, err := w.unit(m.Path(path), kind)
			if !yield(unit, err) {
				stopped = true
				return filepath.SkipAll
			}

			return nil
		}

		err := w.fs.WalkDir(ctx, root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if path == string(root) {
					return walkErr
				}

				slog.Warn("Skipping unreadable path", "path", path, "error", walkErr)

				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			if d.IsDir() {
				return w.visitDir(path, path == string(root), cfg, emit)
			}

			if !w.candidateFile(d.Name()) {
				return nil
			}

			return emit(path, m.KindFile)
		})

		if err != nil && !stopped {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				yield(m.Unit{}, ctxErr)
				return
			}

			slog.Error("Failed to walk root", "root", root, "error", err)
			yield(m.Unit{}, &DiscoveryError{Path: root, Err: err})
		}
	}
}

func (w *treeWalker) visitDir(path string, isRoot bool, cfg m.Config, emit func(string, m.UnitKind) error) error {
	pkg := w.resolver.IsPackage(m.Path(path))

	if !isRoot {
		if w.layout.IgnoredDir(filepath.Base(path)) {
			return filepath.SkipDir
		}

		if !cfg.RecurseAll && !pkg {
			return filepath.SkipDir
		}
	}

	if pkg {
		return emit(path, m.KindPackage)
	}

	return nil
}

// candidateFile reports whether a file name can form a unit. Stems holding a
// name separator cannot be expressed as a dotted name.
func (w *treeWalker) candidateFile(name string) bool {
	if w.layout.IgnoredFile(name) || !strings.HasSuffix(name, w.layout.Suffix) {
		return false
	}

	stem := strings.TrimSuffix(name, w.layout.Suffix)

	return stem != "" && !strings.Contains(stem, m.NameSeparator)
}

func (w *treeWalker) unit(path m.Path, kind m.UnitKind) (m.Unit, error) {
	root, name, err := w.resolver.Resolve(path)
	if err != nil {
		return m.Unit{}, err
	}

	return m.Unit{
		Path:       path,
		SearchRoot: root,
		Name:       name,
		Kind:       kind,
	}, nil
}
