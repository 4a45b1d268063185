package model

import (
	"slices"
	"sync"
)

// Environment is the process-wide loader state: the ordered search path, the
// registry of loaded units and the active warning policy.
//
// A load attempt must hold the environment's lease for its whole window so
// that no other attempt can observe or mutate the state it is about to restore.
type Environment struct {
	lease sync.Mutex

	mu         sync.Mutex
	searchPath []string
	registry   map[string]struct{}
	warnings   WarningPolicy
}

// Snapshot is a copy of the environment taken before a load attempt.
type Snapshot struct {
	searchPath []string
	registry   map[string]struct{}
}

// NewEnvironment creates an environment with the given base search path.
func NewEnvironment(searchPath ...string) *Environment {
	return &Environment{
		searchPath: slices.Clone(searchPath),
		registry:   map[string]struct{}{},
		warnings:   WarningsDefault,
	}
}

// Acquire takes exclusive ownership of the environment until release is called.
func (e *Environment) Acquire() (release func()) {
	e.lease.Lock()

	return e.lease.Unlock
}

// SearchPath returns a copy of the ordered search path.
func (e *Environment) SearchPath() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.searchPath)
}

// PushFront prepends dir to the search path. The returned pop removes exactly
// that entry again, even if other entries were added in between.
func (e *Environment) PushFront(dir string) (pop func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.searchPath = append([]string{dir}, e.searchPath...)
	pushedAt := len(e.searchPath)

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		// The entry sits pushedAt positions from the end unless the path was
		// shortened by a restore; fall back to the first matching entry.
		idx := len(e.searchPath) - pushedAt
		if idx < 0 || idx >= len(e.searchPath) || e.searchPath[idx] != dir {
			idx = slices.Index(e.searchPath, dir)
		}

		if idx >= 0 {
			e.searchPath = slices.Delete(e.searchPath, idx, idx+1)
		}
	}
}

// Register records names as loaded.
func (e *Environment) Register(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, name := range names {
		e.registry[name] = struct{}{}
	}
}

// Registered reports whether name is in the registry.
func (e *Environment) Registered(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.registry[name]

	return ok
}

// Modules returns the registered names in sorted order.
func (e *Environment) Modules() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.registry))
	for name := range e.registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Warnings returns the active warning policy.
func (e *Environment) Warnings() WarningPolicy {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.warnings
}

// SetWarnings installs policy and returns a function restoring the previous one.
func (e *Environment) SetWarnings(policy WarningPolicy) (restore func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	previous := e.warnings
	e.warnings = policy

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.warnings = previous
	}
}

// Snapshot copies the search path and registry.
func (e *Environment) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	registry := make(map[string]struct{}, len(e.registry))
	for name := range e.registry {
		registry[name] = struct{}{}
	}

	return Snapshot{
		searchPath: slices.Clone(e.searchPath),
		registry:   registry,
	}
}

// RestoreRegistry drops every registry entry added since s was taken and
// brings back the entries s contains.
func (e *Environment) RestoreRegistry(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for name := range e.registry {
		if _, ok := s.registry[name]; !ok {
			delete(e.registry, name)
		}
	}

	for name := range s.registry {
		e.registry[name] = struct{}{}
	}
}

// RestoreSearchPath resets the search path to s, dropping any entries a load
// added or removed. The registry is left as it is.
func (e *Environment) RestoreSearchPath(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.searchPath = slices.Clone(s.searchPath)
}

// Restore resets both the search path and the registry to s.
func (e *Environment) Restore(s Snapshot) {
	e.RestoreRegistry(s)
	e.RestoreSearchPath(s)
}
