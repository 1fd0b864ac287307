//go:build !windows

package dynlib

/*
#cgo LDFLAGS: -ldl

#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// handleImpl is the per-platform half of Handle. On Unix it wraps the
// pointer returned by dlopen.
type handleImpl struct {
	lib unsafe.Pointer
}

func openImpl(path string) (handleImpl, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	// RTLD_NOW resolves all symbols eagerly so a malformed library fails
	// at load time rather than on first use; RTLD_LOCAL keeps the
	// library's symbols from leaking into the global symbol table, which
	// matters once per-thread copies of the same library are loaded
	// side by side.
	lib := C.dlopen(cPath, C.RTLD_NOW|C.RTLD_LOCAL)
	if lib == nil {
		return handleImpl{}, fmt.Errorf("dlopen: %s", C.GoString(C.dlerror()))
	}
	return handleImpl{lib: lib}, nil
}

func (h handleImpl) symbol(name string) (uintptr, bool) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	// dlerror must be cleared first: dlsym legitimately returns NULL for
	// a symbol whose value is NULL, so NULL alone does not mean "missing".
	C.dlerror()
	addr := C.dlsym(h.lib, cName)
	if addr == nil && C.dlerror() != nil {
		return 0, false
	}
	return uintptr(addr), true
}

func (h handleImpl) close() error {
	if h.lib == nil {
		return nil
	}
	if C.dlclose(h.lib) != 0 {
		return fmt.Errorf("dlclose: %s", C.GoString(C.dlerror()))
	}
	return nil
}
