package foundationdb

import (
	"context"
	"sync"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/sajjadrahnama/foundationdb/internal/client"
	"github.com/sajjadrahnama/foundationdb/internal/future"
)

// transactionInfo is the cached inner transaction plus the change
// signal that invalidates it (spec §4.G).
type transactionInfo struct {
	inner   client.Transaction
	changed <-chan struct{}
}

// MultiVersionTransaction keeps application-visible transaction identity
// stable across underlying-client swaps: every operation forwards to a
// cached inner transaction, rebuilt and replayed with persistent_options
// whenever the parent database's active client has changed (spec §4.G).
type MultiVersionTransaction struct {
	state *DatabaseState

	mu                sync.Mutex
	cached            *transactionInfo
	persistentOptions *optionList
	cancelled         bool
}

func newMultiVersionTransaction(state *DatabaseState) *MultiVersionTransaction {
	return &MultiVersionTransaction{
		state:             state,
		persistentOptions: newOptionList(),
	}
}

// getTransaction returns the cached inner transaction if it is still
// current, otherwise builds a fresh one against the currently active
// database, replays pending_transaction_defaults then persistent_options
// in order, and caches it (spec §4.G).
func (t *MultiVersionTransaction) getTransaction(ctx context.Context) (client.Transaction, error) {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return nil, ErrTransactionCancelled
	}
	var stale *transactionInfo
	if cached := t.cached; cached != nil {
		select {
		case <-cached.changed:
			// stale: the parent database swapped underneath this
			// transaction. The abandoned inner handle is destroyed below,
			// once its replacement is built, so every handle still sees
			// exactly one Destroy call across all exit paths.
			stale = cached
		default:
			t.mu.Unlock()
			return cached.inner, nil
		}
	}
	t.mu.Unlock()

	db, changed := t.state.DBVar().Get()
	if db == nil {
		return nil, ErrClusterVersionChanged
	}

	inner, err := db.CreateTransaction(ctx)
	if err != nil {
		return nil, err
	}
	for _, opt := range t.state.pendingTxDefaults.Snapshot() {
		_ = inner.SetOption(opt.Code, opt.Value)
	}
	for _, opt := range t.persistentOptions.Snapshot() {
		_ = inner.SetOption(opt.Code, opt.Value)
	}

	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		inner.Destroy()
		return nil, ErrTransactionCancelled
	}
	t.cached = &transactionInfo{inner: inner, changed: changed}
	t.mu.Unlock()

	if stale != nil {
		stale.inner.Destroy()
	}
	return inner, nil
}

// SetOption records opt in persistent_options (so it survives future
// swaps and resets) and applies it to the current inner transaction.
func (t *MultiVersionTransaction) SetOption(code int, value []byte) error {
	t.persistentOptions.Append(code, value)
	inner, err := t.getTransaction(context.Background())
	if err != nil {
		return err
	}
	return inner.SetOption(code, value)
}

func (t *MultiVersionTransaction) SetReadVersion(version int64) {
	if inner, err := t.getTransaction(context.Background()); err == nil {
		inner.SetReadVersion(version)
	}
}

func (t *MultiVersionTransaction) GetReadVersion(ctx context.Context) *future.Int64 {
	inner, err := t.getTransaction(ctx)
	if err != nil {
		return failedInt64(err)
	}
	return inner.GetReadVersion()
}

func (t *MultiVersionTransaction) Get(ctx context.Context, key []byte, snapshot bool) *future.OptionalValue {
	inner, err := t.getTransaction(ctx)
	if err != nil {
		return failedOptionalValue(err)
	}
	return inner.Get(key, snapshot)
}

func (t *MultiVersionTransaction) GetRange(ctx context.Context, opts capi.RangeOptions) *future.KeyValueArrayPage {
	inner, err := t.getTransaction(ctx)
	if err != nil {
		return failedKeyValueArrayPage(err)
	}
	return inner.GetRange(opts)
}

func (t *MultiVersionTransaction) Set(ctx context.Context, key, value []byte) {
	if inner, err := t.getTransaction(ctx); err == nil {
		inner.Set(key, value)
	}
}

func (t *MultiVersionTransaction) Clear(ctx context.Context, key []byte) {
	if inner, err := t.getTransaction(ctx); err == nil {
		inner.Clear(key)
	}
}

func (t *MultiVersionTransaction) ClearRange(ctx context.Context, beginKey, endKey []byte) {
	if inner, err := t.getTransaction(ctx); err == nil {
		inner.ClearRange(beginKey, endKey)
	}
}

func (t *MultiVersionTransaction) AtomicOp(ctx context.Context, key, param []byte, mutationType int) {
	if inner, err := t.getTransaction(ctx); err == nil {
		inner.AtomicOp(key, param, mutationType)
	}
}

// Commit commits the current inner transaction. If a swap happened
// since the last operation, getTransaction destroys the stale inner
// transaction and Commit commits a freshly built one: writes buffered on
// the stale transaction are not carried over. ErrClusterVersionChanged
// is returned only when no database is bound.
func (t *MultiVersionTransaction) Commit(ctx context.Context) *future.Unit {
	inner, err := t.getTransaction(ctx)
	if err != nil {
		return failedUnit(err)
	}
	return inner.Commit()
}

func (t *MultiVersionTransaction) OnError(ctx context.Context, code int) *future.Unit {
	inner, err := t.getTransaction(ctx)
	if err != nil {
		return failedUnit(ErrTransactionCancelled)
	}
	return inner.OnError(code)
}

// Reset resets the cached inner transaction in place and keeps it cached
// — Reset() on the underlying handle already gives it a fresh read
// version and clears its buffered writes, so rebuilding it from scratch
// would only abandon a perfectly good handle without ever destroying it
// (spec §8 "No leaks": every created handle's destroy is invoked exactly
// once). persistent_options are untouched — sticky options survive reset
// (spec §4.G).
func (t *MultiVersionTransaction) Reset() {
	t.mu.Lock()
	cached := t.cached
	t.mu.Unlock()
	if cached != nil {
		cached.inner.Reset()
	}
}

// Cancel cancels the inner transaction and is terminal: no subsequent
// operation on this MultiVersionTransaction succeeds (spec §4.G, §8
// "Cancellation is absorbing").
func (t *MultiVersionTransaction) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	cached := t.cached
	t.mu.Unlock()
	t.state.metrics.futuresCancelled.Inc()
	if cached != nil {
		cached.inner.Cancel()
	}
}

func (t *MultiVersionTransaction) Destroy() {
	t.mu.Lock()
	cached := t.cached
	t.cached = nil
	t.mu.Unlock()
	if cached != nil {
		cached.inner.Destroy()
	}
}

func failedInt64(err error) *future.Int64 {
	return future.NewInt64(&erroredTable{err: err}, nil, nil)
}

func failedUnit(err error) *future.Unit {
	return future.NewUnit(&erroredTable{err: err}, nil, nil)
}

func failedOptionalValue(err error) *future.OptionalValue {
	return future.NewOptionalValue(&erroredTable{err: err}, nil, nil)
}

func failedKeyValueArrayPage(err error) *future.KeyValueArrayPage {
	return future.NewKeyValueArrayPage(&erroredTable{err: err}, nil, nil)
}
