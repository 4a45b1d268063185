// Package adapter contains the infrastructure adapters used by the impall engine:
// filesystem access, unit loaders, report storage and filesystem watching.
package adapter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	m "impall.dev/pkg/impall/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer relies
// on when resolving and walking user projects.
type SourceFSAdapter interface {
	// FileInfo returns metadata for a path.
	FileInfo(path m.Path) (os.FileInfo, error)

	// Exists reports whether anything exists at path.
	Exists(path m.Path) bool

	// IsDir reports whether path is an existing directory.
	IsDir(path m.Path) bool

	// WalkDir traverses root top-down in lexical order. Returning
	// filepath.SkipDir from fn prunes a directory. The walk stops early when
	// ctx is cancelled.
	WalkDir(ctx context.Context, root m.Path, fn fs.WalkDirFunc) error

	// Abs returns an absolute, cleaned version of path.
	Abs(path m.Path) (m.Path, error)

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// Getwd returns the current working directory.
	Getwd() (m.Path, error)
}

// LocalSourceFSAdapter implements SourceFSAdapter on the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// Exists reports whether anything exists at path.
func (a *LocalSourceFSAdapter) Exists(path m.Path) bool {
	_, err := os.Stat(string(path))
	return err == nil
}

// IsDir reports whether path is an existing directory.
func (a *LocalSourceFSAdapter) IsDir(path m.Path) bool {
	info, err := os.Stat(string(path))
	return err == nil && info.IsDir()
}

// WalkDir traverses root with filepath.WalkDir, honouring ctx between entries.
func (a *LocalSourceFSAdapter) WalkDir(ctx context.Context, root m.Path, fn fs.WalkDirFunc) error {
	err := filepath.WalkDir(string(root), func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return fn(path, d, err)
	})

	if errors.Is(err, filepath.SkipAll) {
		return nil
	}

	return err
}

// Abs returns an absolute, cleaned version of path.
func (a *LocalSourceFSAdapter) Abs(path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// Getwd returns the current working directory.
func (a *LocalSourceFSAdapter) Getwd() (m.Path, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return m.Path(wd), nil
}
