// Package dlclient adapts a bound capi.Table into the uniform
// internal/client.Api/Database/Transaction surface. Every operation
// forwards to the corresponding ABI entry point; missing optional
// entries surface as capi.ErrUnsupportedOperation.
package dlclient

import (
	"context"
	"sync"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/sajjadrahnama/foundationdb/internal/client"
	"github.com/sajjadrahnama/foundationdb/internal/future"
)

// Database wraps a *capi.Database that may not be available yet: when
// constructed from a pending future via NewPendingDatabase,
// CreateTransaction blocks on readiness instead of returning immediately.
// Api.CreateDatabase always builds an already-resolved Database.
type Database struct {
	table      *capi.Table
	dispatcher future.Dispatcher

	once    sync.Once
	pending *future.DatabaseHandle
	mu      sync.Mutex
	handle  *capi.Database
	readyErr error
}

// NewDatabase wraps an already-resolved handle.
func NewDatabase(table *capi.Table, handle *capi.Database, dispatcher future.Dispatcher) *Database {
	return &Database{table: table, handle: handle, dispatcher: dispatcher}
}

// NewPendingDatabase wraps a handle that will resolve once pending
// completes, per spec §4.D's "constructed lazily" case.
func NewPendingDatabase(table *capi.Table, pending *future.DatabaseHandle, dispatcher future.Dispatcher) *Database {
	return &Database{table: table, pending: pending, dispatcher: dispatcher}
}

func (d *Database) awaitReady(ctx context.Context) (*capi.Database, error) {
	if d.pending == nil {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.handle, d.readyErr
	}
	handle, err := d.pending.Get(ctx)
	d.once.Do(func() {
		d.mu.Lock()
		d.handle, d.readyErr = handle, err
		d.mu.Unlock()
	})
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handle, d.readyErr
}

var _ client.Database = (*Database)(nil)

// CreateTransaction awaits database readiness (a no-op if the handle was
// already resolved) then creates a transaction; the call is otherwise
// non-blocking, matching spec §4.D.
func (d *Database) CreateTransaction(ctx context.Context) (client.Transaction, error) {
	handle, err := d.awaitReady(ctx)
	if err != nil {
		return nil, err
	}
	tr, err := d.table.DatabaseCreateTransaction(handle)
	if err != nil {
		return nil, err
	}
	return newTransaction(d.table, tr, d.dispatcher), nil
}

func (d *Database) SetOption(option int, value []byte) error {
	handle, err := d.awaitReady(context.Background())
	if err != nil {
		return err
	}
	return d.table.DatabaseSetOption(handle, option, value)
}

// GetServerProtocol probes the bound client's reported server protocol,
// completing only once it differs from expectedVersion — the shape
// DatabaseState's version monitor needs (spec §4.F
// "monitor_protocol_version"). Returns capi.ErrUnsupportedOperation if
// the loaded library never bound database_get_server_protocol.
func (d *Database) GetServerProtocol(ctx context.Context, expectedVersion uint64) (int64, error) {
	handle, err := d.awaitReady(ctx)
	if err != nil {
		return 0, err
	}
	raw, err := d.table.DatabaseGetServerProtocol(handle, expectedVersion)
	if err != nil {
		return 0, err
	}
	return future.NewInt64(d.table, raw, d.dispatcher).Get(ctx)
}

func (d *Database) Destroy() {
	d.mu.Lock()
	handle := d.handle
	d.mu.Unlock()
	if handle != nil {
		d.table.DatabaseDestroy(handle)
	}
}
