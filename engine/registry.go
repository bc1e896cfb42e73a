// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/htmlview/internal/logging"
	"github.com/gogpu/htmlview/pixbuf"
)

// Backend describes a registered engine backend.
type Backend struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	// The built-in software engine registers with 10.
	Priority int

	// Factory creates engine instances.
	Factory Factory

	// Available reports if the backend can run on this system.
	Available func() bool

	// Load prepares the backend's process-wide state, such as loading a
	// native library. It runs once, from Init or from the first New after
	// Init for backends registered late. Nil means nothing to load.
	Load func() error
}

type backendEntry struct {
	Backend
	loadOnce sync.Once
	loadErr  error
}

func (e *backendEntry) load() error {
	e.loadOnce.Do(func() {
		if e.Load != nil {
			e.loadErr = e.Load()
		}
	})
	return e.loadErr
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages engine backends and the one-time process initialization
// that must happen before any engine is created.
//
// Example:
//
//	soft.Register(engine.Default())
//	if err := engine.Init(); err != nil {
//	    return err
//	}
//	h, err := engine.NewBest(pixbuf.RGBA32)
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*backendEntry

	initOnce    sync.Once
	initErr     error
	initialized bool
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and New.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*backendEntry),
	}
}

// Default returns the global registry.
func Default() *Registry { return globalRegistry }

// Register adds a backend to the global registry.
func Register(b Backend) {
	globalRegistry.Register(b)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all available backends sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// Init runs the one-time initialization of the global registry.
func Init() error {
	return globalRegistry.Init()
}

// New creates a handle on the named backend of the global registry.
func New(name string, format pixbuf.Format) (*Handle, error) {
	return globalRegistry.New(name, format)
}

// NewBest creates a handle on the best available backend of the global
// registry.
func NewBest(format pixbuf.Format) (*Handle, error) {
	return globalRegistry.NewBest(format)
}

// Register adds a backend to this registry.
// If Available is nil, the backend is assumed always available.
// Registering a name that already exists replaces the previous entry.
func (r *Registry) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*backendEntry)
	}
	if b.Available == nil {
		b.Available = func() bool { return true }
	}
	r.entries[b.Name] = &backendEntry{Backend: b}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of all available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Get returns a copy of the named backend description.
func (r *Registry) Get(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Backend{}, false
	}
	return e.Backend, true
}

// Init runs the Load hook of every available backend. The work happens once;
// later calls return the first result. Init must complete before New.
func (r *Registry) Init() error {
	r.initOnce.Do(func() {
		r.mu.RLock()
		names := r.sortedNames(true)
		entries := make([]*backendEntry, len(names))
		for i, n := range names {
			entries[i] = r.entries[n]
		}
		r.mu.RUnlock()

		var errs []error
		for _, e := range entries {
			if err := e.load(); err != nil {
				errs = append(errs, &BackendLoadError{Name: e.Name, Err: err})
			}
		}
		if len(errs) > 0 && len(errs) == len(entries) {
			r.initErr = errors.Join(errs...)
		}

		r.mu.Lock()
		r.initialized = r.initErr == nil
		r.mu.Unlock()

		logging.Logger().Info("engine: init", "backends", names, "failed", len(errs))
	})
	return r.initErr
}

// Initialized reports whether Init completed successfully.
func (r *Registry) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// NewBest creates a handle using the best available backend, trying each
// in priority order.
func (r *Registry) NewBest(format pixbuf.Format) (*Handle, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoBackendAvailable
	}

	var lastErr error
	for _, name := range available {
		h, err := r.New(name, format)
		if err == nil {
			return h, nil
		}
		if errors.Is(err, ErrNotInitialized) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// New creates a handle using a specific backend.
func (r *Registry) New(name string, format pixbuf.Format) (*Handle, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("engine: new %s: %w", name, pixbuf.ErrInvalidFormat)
	}

	r.mu.RLock()
	entry, ok := r.entries[name]
	initialized := r.initialized
	r.mu.RUnlock()

	if !initialized {
		return nil, ErrNotInitialized
	}
	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	if err := entry.load(); err != nil {
		return nil, &BackendLoadError{Name: name, Err: err}
	}

	e, err := entry.Factory(format)
	if err != nil {
		return nil, fmt.Errorf("engine: new %s: %w", name, err)
	}
	h, err := NewHandle(e, format)
	if err != nil {
		return nil, err
	}
	h.name = name
	logging.Logger().Debug("engine created", "backend", name, "format", format)
	return h, nil
}

// sortedNames returns backend names sorted by priority (highest first),
// ties broken by name. Must be called with lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	type entry struct {
		name     string
		priority int
	}

	entries := make([]entry, 0, len(r.entries))
	for name, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, entry{name: name, priority: e.Priority})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].name < entries[j].name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Errors.
var (
	// ErrNoBackendAvailable is returned when no engine backends are
	// registered or available on the current system.
	ErrNoBackendAvailable = errors.New("engine: no backend available")

	// ErrNotInitialized is returned by New when Init has not completed.
	ErrNotInitialized = errors.New("engine: Init has not been called")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "engine: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "engine: backend unavailable: " + e.Name
}

// BackendLoadError reports a failed Load hook.
type BackendLoadError struct {
	Name string
	Err  error
}

func (e *BackendLoadError) Error() string {
	return "engine: backend " + e.Name + " failed to load: " + e.Err.Error()
}

func (e *BackendLoadError) Unwrap() error { return e.Err }
