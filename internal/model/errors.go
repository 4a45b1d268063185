package model

import (
	"fmt"
	"strings"
)

// LoadError is returned by loaders when a unit fails to load.
type LoadError struct {
	// Unit is the dotted name that failed.
	Unit string
	// Kind is the error class, e.g. "ModuleNotFoundError" or "exit status 1".
	Kind    string
	Message string
	// Trace is the raw traceback or output captured from the loader.
	Trace string
	Err   error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	switch {
	case e.Kind != "" && e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Unit, e.Kind, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Unit, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Unit, e.Err)
	default:
		return e.Unit + ": load failed"
	}
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Warning is returned by loaders when a unit loaded but raised a warning.
// The warning policy decides whether it is reported, dropped or escalated.
type Warning struct {
	// Category is the warning class, e.g. "DeprecationWarning".
	Category string
	Message  string
	// Source locates where the warning was raised, e.g. "pkg/mod.py:12".
	Source string
}

// Error implements the error interface.
func (w *Warning) Error() string {
	var b strings.Builder

	if w.Source != "" {
		b.WriteString(w.Source)
		b.WriteString(": ")
	}

	if w.Category != "" {
		b.WriteString(w.Category)
		b.WriteString(": ")
	}

	b.WriteString(w.Message)

	return b.String()
}
