package capi

/*
#include "capi_bridge.h"
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// goFutureCallback is the single C-visible entry point every bound
// future's callback is set to. It recovers the Go closure stashed in the
// cgo.Handle passed as param, invokes it exactly once, and releases the
// handle so it cannot be looked up again.
//
//export goFutureCallback
func goFutureCallback(_ *C.MVCFuture, param unsafe.Pointer) {
	h := cgo.Handle(uintptr(param))
	defer h.Delete()
	if cb, ok := h.Value().(func()); ok {
		cb()
	}
}

// FutureSetCallback registers cb to run exactly once when f completes. cb
// runs on whatever thread the bound library's network loop delivers
// completions on; callers that need main-thread affinity must hop to
// their own goroutine from inside cb.
func (t *Table) FutureSetCallback(f *Future, cb func()) error {
	h := cgo.NewHandle(cb)
	code := C.mvc_call_future_set_callback_go(t.c, (*C.MVCFuture)(f.ptr), unsafe.Pointer(uintptr(h)))
	if code != 0 {
		h.Delete()
		return codeToError(int(code))
	}
	return nil
}
