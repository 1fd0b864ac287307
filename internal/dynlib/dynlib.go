// Package dynlib resolves named symbols out of a shared object loaded at a
// filesystem path. It owns the OS handle and, optionally, unlink-on-close
// semantics for the backing file (used when the caller made a private,
// per-thread copy of a library it does not want to outlive the process).
package dynlib

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrLibraryNotFound is returned when the shared object could not be opened.
var ErrLibraryNotFound = errors.New("dynlib: library not found")

// ErrSymbolMissing is returned when a required symbol could not be resolved.
var ErrSymbolMissing = errors.New("dynlib: symbol missing")

// ErrClosed is returned from any operation on a Handle after Close.
var ErrClosed = errors.New("dynlib: handle closed")

// Handle is a loaded shared object. The zero value is not usable; obtain one
// via Open. A Handle is safe for concurrent Symbol lookups; Close may be
// called more than once, and calls after the first are no-ops.
type Handle struct {
	path       string
	unlinkPath string // non-empty if the backing file should be removed on Close

	mu     sync.Mutex
	closed bool
	impl   handleImpl // platform-specific OS handle, see dynlib_unix.go / dynlib_windows.go
}

// Options configures Open.
type Options struct {
	// UnlinkOnClose removes the file at Path once the library is closed.
	// Used by the API manager's per-thread library copies: each worker
	// thread gets its own physical file so the loaded client's
	// thread-local globals do not collide, and the copy is disposable.
	UnlinkOnClose bool
}

// Open loads the shared object at path and returns a Handle for resolving
// symbols out of it. The returned Handle must be closed by the caller.
func Open(path string, opts Options) (*Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, path, err)
	}

	impl, err := openImpl(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, path, err)
	}

	h := &Handle{path: path, impl: impl}
	if opts.UnlinkOnClose {
		h.unlinkPath = path
	}
	return h, nil
}

// Path returns the filesystem path this handle was opened from.
func (h *Handle) Path() string {
	return h.path
}

// Symbol resolves name in the loaded library. It returns ErrSymbolMissing if
// the symbol cannot be found, distinguishing a missing-but-optional entry
// point from every other failure mode.
func (h *Handle) Symbol(name string) (uintptr, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, ErrClosed
	}
	addr, ok := h.impl.symbol(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSymbolMissing, name)
	}
	return addr, nil
}

// Close unloads the library. If the Handle was opened with UnlinkOnClose, the
// backing file is removed after the library is unloaded. Close is idempotent.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	err := h.impl.close()
	if h.unlinkPath != "" {
		if rmErr := os.Remove(h.unlinkPath); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
