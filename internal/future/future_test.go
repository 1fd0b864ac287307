package future

import (
	"context"
	"testing"
	"time"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/stretchr/testify/require"
)

// fakeTable is an in-process stand-in for the ABI vtable: no shared
// object involved, just enough bookkeeping to drive the bridge's
// exactly-once and cancellation contracts.
type fakeTable struct {
	cb         func()
	cancelled  bool
	destroyed  bool
	int64Value int64
	err        error
}

func (f *fakeTable) FutureSetCallback(_ *capi.Future, cb func()) error {
	f.cb = cb
	return nil
}
func (f *fakeTable) FutureCancel(_ *capi.Future)  { f.cancelled = true }
func (f *fakeTable) FutureDestroy(_ *capi.Future) { f.destroyed = true }
func (f *fakeTable) FutureGetError(_ *capi.Future) error { return f.err }
func (f *fakeTable) FutureGetInt64(_ *capi.Future) (int64, error) { return f.int64Value, f.err }
func (f *fakeTable) FutureGetBool(_ *capi.Future) (bool, error)   { return true, f.err }
func (f *fakeTable) FutureGetKey(_ *capi.Future) ([]byte, error)  { return []byte("key"), f.err }
func (f *fakeTable) FutureGetValue(_ *capi.Future) ([]byte, bool, error) {
	return []byte("value"), true, f.err
}
func (f *fakeTable) FutureGetKeyArray(_ *capi.Future) ([][]byte, error) {
	return [][]byte{[]byte("a")}, f.err
}
func (f *fakeTable) FutureGetKeyValueArray(_ *capi.Future) ([]capi.KeyValue, bool, error) {
	return []capi.KeyValue{{Key: []byte("k"), Value: []byte("v")}}, false, f.err
}
func (f *fakeTable) FutureGetStringArray(_ *capi.Future) ([]string, error) {
	return []string{"addr"}, f.err
}
func (f *fakeTable) FutureGetDatabase(_ *capi.Future) (*capi.Database, error) { return nil, f.err }

func (f *fakeTable) complete() { f.cb() }

func TestInt64CompletesAfterCallback(t *testing.T) {
	tbl := &fakeTable{int64Value: 42}
	fut := NewInt64(tbl, &capi.Future{}, nil)

	done := make(chan struct{})
	go func() {
		v, err := fut.Get(context.Background())
		require.NoError(t, err)
		require.Equal(t, int64(42), v)
		close(done)
	}()

	tbl.complete()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("future never completed")
	}
}

func TestCancelPropagatesAndBlocksExtraction(t *testing.T) {
	tbl := &fakeTable{}
	fut := NewBool(tbl, &capi.Future{}, nil)

	fut.Cancel()
	require.True(t, tbl.cancelled)

	tbl.complete()
	_, err := fut.Get(context.Background())
	require.ErrorIs(t, err, ErrCancelled)
}

func TestCallbackIsIdempotent(t *testing.T) {
	tbl := &fakeTable{}
	fut := NewUnit(tbl, &capi.Future{}, nil)

	tbl.complete()
	tbl.complete() // second completion must not panic on an already-closed channel

	err := fut.Get(context.Background())
	require.NoError(t, err)
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	tbl := &fakeTable{}
	fut := NewKey(tbl, &capi.Future{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := fut.Get(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOptionalValueReportsPresentValue(t *testing.T) {
	tbl := &fakeTable{}
	fut := NewOptionalValue(tbl, &capi.Future{}, nil)
	tbl.complete()

	value, present, err := fut.Get(context.Background())
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, []byte("value"), value)
}

func TestDestroyCallsThrough(t *testing.T) {
	tbl := &fakeTable{}
	fut := NewBool(tbl, &capi.Future{}, nil)
	fut.Destroy()
	require.True(t, tbl.destroyed)
}

// mainThreadDispatcher mimics callbacks_on_main_thread: completions are
// queued and only run when drain is called, proving completion ordering
// is controlled by the dispatcher rather than the firing thread.
type mainThreadDispatcher struct {
	queue chan func()
}

func newMainThreadDispatcher() *mainThreadDispatcher {
	return &mainThreadDispatcher{queue: make(chan func(), 8)}
}

func (d *mainThreadDispatcher) Dispatch(fn func()) { d.queue <- fn }
func (d *mainThreadDispatcher) drain()             { (<-d.queue)() }

func TestDispatcherControlsCompletionThread(t *testing.T) {
	tbl := &fakeTable{int64Value: 7}
	disp := newMainThreadDispatcher()
	fut := NewInt64(tbl, &capi.Future{}, disp)

	tbl.complete()

	select {
	case <-fut.ready:
		t.Fatal("completed before dispatcher drained")
	case <-time.After(10 * time.Millisecond):
	}

	disp.drain()
	v, err := fut.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(7), v)
}
