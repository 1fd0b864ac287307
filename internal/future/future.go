// Package future converts the C ABI's single-callback completion handle
// into typed, cancellable, thread-safe Go async values. Every value type
// here (Int64, Bool, Key, ...) wraps one *capi.Future and completes
// exactly once, regardless of which thread the bound library's callback
// fires on.
package future

import (
	"context"
	"errors"
	"sync"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
)

// ErrCancelled is returned by Wait after Cancel, and by any extraction
// method called on a future that completed after being cancelled.
var ErrCancelled = errors.New("future: cancelled")

// Dispatcher marshals a completion callback onto the caller's runtime.
// A nil Dispatcher runs callbacks inline, on whatever thread the bound
// library's callback fired on. InlineDispatcher is the only implementation
// in this module: MultiVersionApi installs it for every external client,
// whether or not callbacksOnMainThread is set, so completions are never
// moved to another goroutine.
type Dispatcher interface {
	Dispatch(func())
}

// InlineDispatcher runs the callback on the calling thread immediately.
type InlineDispatcher struct{}

// Dispatch implements Dispatcher by invoking fn synchronously.
func (InlineDispatcher) Dispatch(fn func()) { fn() }

// Table is the subset of *capi.Table the bridge needs. Tests substitute a
// fake implementation backed by in-process callbacks instead of a loaded
// shared object.
type Table interface {
	FutureSetCallback(f *capi.Future, cb func()) error
	FutureCancel(f *capi.Future)
	FutureDestroy(f *capi.Future)
	FutureGetError(f *capi.Future) error
	FutureGetInt64(f *capi.Future) (int64, error)
	FutureGetBool(f *capi.Future) (bool, error)
	FutureGetKey(f *capi.Future) ([]byte, error)
	FutureGetValue(f *capi.Future) ([]byte, bool, error)
	FutureGetKeyArray(f *capi.Future) ([][]byte, error)
	FutureGetKeyValueArray(f *capi.Future) ([]capi.KeyValue, bool, error)
	FutureGetStringArray(f *capi.Future) ([]string, error)
	FutureGetDatabase(f *capi.Future) (*capi.Database, error)
}

// base is embedded by every typed future and carries the bridging logic
// shared across all result shapes: exactly-once completion, cancellation,
// and the one registered callback.
type base struct {
	table      Table
	raw        *capi.Future
	dispatcher Dispatcher

	mu        sync.Mutex
	done      bool
	cancelled bool
	ready     chan struct{}
}

func newBase(table Table, raw *capi.Future, dispatcher Dispatcher) *base {
	if dispatcher == nil {
		dispatcher = InlineDispatcher{}
	}
	b := &base{
		table:      table,
		raw:        raw,
		dispatcher: dispatcher,
		ready:      make(chan struct{}),
	}
	// future_set_callback's contract (spec §4.C) is "exactly one
	// callback per underlying handle" — registered here, once, at
	// construction, never re-armed.
	_ = table.FutureSetCallback(raw, b.onComplete)
	return b
}

func (b *base) onComplete() {
	b.dispatcher.Dispatch(func() {
		b.mu.Lock()
		if b.done {
			b.mu.Unlock()
			return
		}
		b.done = true
		b.mu.Unlock()
		close(b.ready)
	})
}

// Cancel propagates cancellation to the underlying handle. Results that
// arrive after Cancel are dropped; extraction methods on a cancelled
// future return ErrCancelled.
func (b *base) Cancel() {
	b.mu.Lock()
	if b.cancelled {
		b.mu.Unlock()
		return
	}
	b.cancelled = true
	b.mu.Unlock()
	b.table.FutureCancel(b.raw)
}

// Wait blocks until the future completes, is cancelled, or ctx is done,
// whichever happens first.
func (b *base) Wait(ctx context.Context) error {
	select {
	case <-b.ready:
		b.mu.Lock()
		cancelled := b.cancelled
		b.mu.Unlock()
		if cancelled {
			return ErrCancelled
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *base) checkExtractable() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancelled {
		return ErrCancelled
	}
	return nil
}

// Destroy releases the underlying handle. Safe to call once the caller
// has extracted (and, per §4.C, copied) any result it needs; the bridge
// never hands back borrowed memory past this call.
func (b *base) Destroy() {
	b.table.FutureDestroy(b.raw)
}
