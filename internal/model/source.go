// Package model defines the data structures shared by the impall engine.
package model

import (
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// NameSeparator joins the segments of a dotted unit name.
const NameSeparator = "."

// UnitKind tells whether a unit is a package directory or a single source file.
type UnitKind string

const (
	// KindPackage represents a directory carrying the package marker file.
	KindPackage UnitKind = "package"

	// KindFile represents a single source file.
	KindFile UnitKind = "file"
)

// Unit is one loadable entity found during discovery.
type Unit struct {
	// Path is the absolute filesystem path of the directory or file.
	Path Path `yaml:"path"`
	// SearchRoot is the directory that must be on the search path for Name to resolve.
	SearchRoot Path `yaml:"search_root"`
	// Name is the dotted import name, e.g. "pkg.sub.mod".
	Name string `yaml:"name"`
	Kind UnitKind `yaml:"kind"`
}

// Segments splits the dotted name into its parts.
func (u Unit) Segments() []string {
	return SplitName(u.Name)
}

// SplitName splits a dotted name into its segments.
func SplitName(name string) []string {
	return strings.Split(name, NameSeparator)
}

// JoinName joins segments into a dotted name.
func JoinName(segments ...string) string {
	return strings.Join(segments, NameSeparator)
}

// Prefixes returns every leading dotted name of name, shortest first.
// Prefixes("a.b.c") is ["a", "a.b", "a.b.c"].
func Prefixes(name string) []string {
	segments := SplitName(name)
	prefixes := make([]string, 0, len(segments))

	for i := range segments {
		prefixes = append(prefixes, JoinName(segments[:i+1]...))
	}

	return prefixes
}

// Layout describes how a host language marks packages and source files.
type Layout struct {
	// Marker is the file whose presence turns a directory into a package.
	Marker string `yaml:"marker" mapstructure:"marker"`
	// Suffix is the extension of loadable source files, including the dot.
	Suffix string `yaml:"suffix" mapstructure:"suffix"`
}

// DefaultLayout is the Python layout.
var DefaultLayout = Layout{
	Marker: "__init__.py",
	Suffix: ".py",
}

// OrDefault returns l with empty fields filled from DefaultLayout.
func (l Layout) OrDefault() Layout {
	if l.Marker == "" {
		l.Marker = DefaultLayout.Marker
	}

	if l.Suffix == "" {
		l.Suffix = DefaultLayout.Suffix
	}

	return l
}

// IgnoredDir reports whether a directory named name is never walked, watched
// or treated as a package: hidden and dunder directories, and a directory
// that shares the marker's name.
func (l Layout) IgnoredDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "__") || name == l.Marker
}

// IgnoredFile reports whether a file named name is never a candidate unit.
func (l Layout) IgnoredFile(name string) bool {
	return strings.HasPrefix(name, ".") || name == l.Marker
}

// NormalizeName turns a path-like reference ("pkg/sub/mod.py") into a dotted
// name ("pkg.sub.mod"). Dotted names pass through unchanged.
func (l Layout) NormalizeName(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.ContainsAny(ref, `/\`) || strings.HasSuffix(ref, l.Suffix) {
		ref = strings.TrimSuffix(filepath.ToSlash(ref), l.Suffix)
		ref = strings.Trim(ref, "/")
		ref = strings.ReplaceAll(ref, "/", NameSeparator)
	}

	return ref
}
