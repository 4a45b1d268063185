package domain

import (
	"errors"
	"fmt"

	m "impall.dev/pkg/impall/internal/model"
)

// ErrRunFailed is returned by the workflow when a run had unexpected failures
// or expected failures that loaded successfully.
var ErrRunFailed = errors.New("run failed")

// ErrNoUnitName is returned when a path resolves to its own search root and
// therefore has no dotted name.
var ErrNoUnitName = errors.New("path does not name a loadable unit")

// DiscoveryError reports a root or path that cannot be walked or resolved.
type DiscoveryError struct {
	Path m.Path
	Err  error
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed for %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// PatternError reports a malformed include or exclude pattern.
type PatternError struct {
	Pattern string
	Reason  string
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %s", e.Pattern, e.Reason)
}

// LoadFailure aborts a fail-fast run on the first unit that failed to load.
type LoadFailure struct {
	Unit   string
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *LoadFailure) Error() string {
	return fmt.Sprintf("failed to load %s: %s", e.Unit, e.Detail)
}

// Unwrap returns the loader error.
func (e *LoadFailure) Unwrap() error {
	return e.Err
}
