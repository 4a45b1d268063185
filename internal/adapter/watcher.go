package adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	m "impall.dev/pkg/impall/internal/model"
)

// DefaultDebounce is the quiet period after the last change before a rerun.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports changes to source files below a set of roots.
type Watcher interface {
	// Watch blocks until ctx is cancelled, calling onChange with the sorted
	// paths of changed layout files once events have been quiet for the
	// debounce period. Calls to onChange never overlap.
	Watch(ctx context.Context, roots []m.Path, layout m.Layout, onChange func(ctx context.Context, changed []m.Path)) error
}

// FSWatcher implements Watcher with fsnotify.
type FSWatcher struct {
	debounce time.Duration
}

// NewFSWatcher constructs an FSWatcher. A non-positive debounce selects DefaultDebounce.
func NewFSWatcher(debounce time.Duration) *FSWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FSWatcher{debounce: debounce}
}

// Watch implements Watcher.
func (w *FSWatcher) Watch(ctx context.Context, roots []m.Path, layout m.Layout, onChange func(ctx context.Context, changed []m.Path)) error {
	layout = layout.OrDefault()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create file watcher", "error", err)
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	defer func() {
		if closeErr := fsw.Close(); closeErr != nil {
			slog.Warn("Failed to close file watcher", "error", closeErr)
		}
	}()

	for _, root := range roots {
		if err := w.addTree(fsw, string(root), layout); err != nil {
			return err
		}
	}

	var (
		pending = map[m.Path]struct{}{}
		timer   = time.NewTimer(w.debounce)
	)

	// Armed by the first relevant event.
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return errors.New("file watcher event channel closed")
			}

			if evt.Has(fsnotify.Create) {
				if info, statErr := os.Stat(evt.Name); statErr == nil && info.IsDir() {
					if addErr := w.addTree(fsw, evt.Name, layout); addErr != nil {
						slog.Warn("Failed to watch new directory", "path", evt.Name, "error", addErr)
					}
				}
			}

			if !relevant(evt.Name, layout) {
				continue
			}

			slog.Debug("Source changed", "path", evt.Name, "op", evt.Op.String())

			pending[m.Path(evt.Name)] = struct{}{}

			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}

			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)

			// Events arriving during onChange queue up in fsnotify and are
			// coalesced into the next batch.
			onChange(ctx, changed)

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return errors.New("file watcher error channel closed")
			}

			slog.Warn("File watcher error", "error", watchErr)
		}
	}
}

func (w *FSWatcher) addTree(fsw *fsnotify.Watcher, root string, layout m.Layout) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			slog.Warn("Skipping unreadable directory", "path", path, "error", walkErr)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && layout.IgnoredDir(d.Name()) {
			return filepath.SkipDir
		}

		return fsw.Add(path)
	})
	if err != nil {
		slog.Error("Failed to watch directory", "root", root, "error", err)
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	return nil
}

// relevant reports whether a change to path can affect discovery or loading.
// Names without an extension are kept since they may be new directories.
func relevant(path string, layout m.Layout) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}

	return strings.HasSuffix(name, layout.Suffix) || name == layout.Marker || !strings.Contains(name, ".")
}

var _ Watcher = (*FSWatcher)(nil)
