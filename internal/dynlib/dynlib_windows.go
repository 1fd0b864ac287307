//go:build windows

package dynlib

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// handleImpl is the per-platform half of Handle. On Windows it wraps the
// module handle returned by LoadLibraryEx.
type handleImpl struct {
	module windows.Handle
}

func openImpl(path string) (handleImpl, error) {
	h, err := windows.LoadLibraryEx(path, 0, windows.LOAD_WITH_ALTERED_SEARCH_PATH)
	if err != nil {
		return handleImpl{}, fmt.Errorf("LoadLibraryEx: %w", err)
	}
	return handleImpl{module: h}, nil
}

func (h handleImpl) symbol(name string) (uintptr, bool) {
	addr, err := windows.GetProcAddress(h.module, name)
	if err != nil {
		return 0, false
	}
	return addr, true
}

func (h handleImpl) close() error {
	if h.module == 0 {
		return nil
	}
	return windows.FreeLibrary(h.module)
}
