// Package client defines the uniform asynchronous client surface that
// both the dynamic-library adapter (internal/dlclient) and the built-in
// local client (internal/localclient) implement. The root package talks
// to whichever ClientInfo.Handle is currently active through these
// interfaces only — it never knows which concrete implementation is
// behind them.
package client

import (
	"context"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/sajjadrahnama/foundationdb/internal/future"
)

// Api is the process-wide entry point a loaded client (or the local
// client) exposes once network setup has run.
type Api interface {
	SetNetworkOption(option int, value []byte) error
	SetupNetwork() error
	RunNetwork() error
	StopNetwork() error
	CreateDatabase(clusterFilePath string) (Database, error)
}

// Database is a handle to one cluster connection. It may be backed by an
// eagerly-available opaque handle or one still pending behind a future;
// CreateTransaction awaits readiness either way.
type Database interface {
	CreateTransaction(ctx context.Context) (Transaction, error)
	SetOption(option int, value []byte) error
	Destroy()
}

// Transaction is the uniform transaction surface. Every future-returning
// method returns one of the internal/future result shapes so the caller
// can Wait, Cancel, or extract independently of which client produced it.
type Transaction interface {
	SetOption(option int, value []byte) error
	SetReadVersion(version int64)
	GetReadVersion() *future.Int64
	Get(key []byte, snapshot bool) *future.OptionalValue
	GetKey(key []byte, orEqual bool, offset int, snapshot bool) *future.Key
	GetAddressesForKey(key []byte) *future.StringArray
	GetRange(opts capi.RangeOptions) *future.KeyValueArrayPage
	GetVersionstamp() (*future.Versionstamp, error)
	Set(key, value []byte)
	Clear(key []byte)
	ClearRange(beginKey, endKey []byte)
	AtomicOp(key, param []byte, mutationType int)
	GetEstimatedRangeSizeBytes(beginKey, endKey []byte) (*future.Int64, error)
	GetRangeSplitPoints(beginKey, endKey []byte, chunkSize int64) (*future.KeyArray, error)
	Commit() *future.Unit
	GetCommittedVersion() (int64, error)
	GetApproximateSize() (*future.Int64, error)
	Watch(key []byte) *future.Unit
	OnError(code int) *future.Unit
	Reset()
	Cancel()
	AddConflictRange(beginKey, endKey []byte, rangeType int) error
	Destroy()
}
