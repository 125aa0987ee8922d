package mover

import (
	"fmt"
	"sync"

	"github.com/1broseidon/zenmover/internal/platform"
)

// Target is a weak reference to the controlled window. It is only valid for
// the operation that resolved it; callers re-resolve instead of caching.
type Target struct {
	id platform.WindowID
}

// IsValid reports whether the target refers to a window.
func (t Target) IsValid() bool {
	return t.id != 0
}

// ID returns the underlying window identifier.
func (t Target) ID() platform.WindowID {
	return t.id
}

// Locator resolves the target window by its window class.
type Locator struct {
	backend platform.Backend

	mu    sync.RWMutex
	class string
}

// NewLocator creates a locator for windows of the given class.
func NewLocator(backend platform.Backend, class string) *Locator {
	return &Locator{backend: backend, class: class}
}

// Class returns the window class the locator searches for.
func (l *Locator) Class() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.class
}

// SetClass changes the class searched for. Sessions pick it up on their next
// resolve.
func (l *Locator) SetClass(class string) {
	l.mu.Lock()
	l.class = class
	l.mu.Unlock()
}

// Resolve finds the target window. It returns ErrTargetNotFound when no
// window of the class exists.
func (l *Locator) Resolve() (Target, error) {
	class := l.Class()
	id, ok, err := l.backend.FindWindowByClass(class)
	if err != nil {
		return Target{}, fmt.Errorf("%w: find window %q: %v", ErrOSCall, class, err)
	}
	if !ok || id == 0 {
		return Target{}, ErrTargetNotFound
	}
	return Target{id: id}, nil
}
