package foundationdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/sajjadrahnama/foundationdb/internal/client"
	"github.com/sajjadrahnama/foundationdb/internal/future"
)

type fakeDatabase struct {
	destroyed bool
}

func (f *fakeDatabase) CreateTransaction(context.Context) (client.Transaction, error) {
	return &fakeTransaction{}, nil
}
func (f *fakeDatabase) SetOption(int, []byte) error { return nil }
func (f *fakeDatabase) Destroy()                    { f.destroyed = true }

var _ client.Database = (*fakeDatabase)(nil)

// fakeTransaction is a no-op client.Transaction that only tracks whether
// Destroy was called, for asserting exactly-once destruction elsewhere.
// Its futures all complete synchronously via erroredTable with a nil
// error, the same shape MultiVersionTransaction hands back for operations
// it can't attempt at all.
type fakeTransaction struct {
	destroyed bool
}

func (f *fakeTransaction) SetOption(int, []byte) error { return nil }
func (f *fakeTransaction) SetReadVersion(int64)        {}
func (f *fakeTransaction) GetReadVersion() *future.Int64 {
	return future.NewInt64(&erroredTable{}, nil, nil)
}
func (f *fakeTransaction) Get(key []byte, snapshot bool) *future.OptionalValue {
	return future.NewOptionalValue(&erroredTable{}, nil, nil)
}
func (f *fakeTransaction) GetKey(key []byte, orEqual bool, offset int, snapshot bool) *future.Key {
	return future.NewKey(&erroredTable{}, nil, nil)
}
func (f *fakeTransaction) GetAddressesForKey(key []byte) *future.StringArray {
	return future.NewStringArray(&erroredTable{}, nil, nil)
}
func (f *fakeTransaction) GetRange(capi.RangeOptions) *future.KeyValueArrayPage {
	return future.NewKeyValueArrayPage(&erroredTable{}, nil, nil)
}
func (f *fakeTransaction) GetVersionstamp() (*future.Versionstamp, error) {
	return future.NewVersionstamp(&erroredTable{}, nil, nil), nil
}
func (f *fakeTransaction) Set(key, value []byte)                        {}
func (f *fakeTransaction) Clear(key []byte)                             {}
func (f *fakeTransaction) ClearRange(beginKey, endKey []byte)            {}
func (f *fakeTransaction) AtomicOp(key, param []byte, mutationType int)  {}
func (f *fakeTransaction) GetEstimatedRangeSizeBytes(beginKey, endKey []byte) (*future.Int64, error) {
	return future.NewInt64(&erroredTable{}, nil, nil), nil
}
func (f *fakeTransaction) GetRangeSplitPoints(beginKey, endKey []byte, chunkSize int64) (*future.KeyArray, error) {
	return future.NewKeyArray(&erroredTable{}, nil, nil), nil
}
func (f *fakeTransaction) Commit() *future.Unit { return future.NewUnit(&erroredTable{}, nil, nil) }
func (f *fakeTransaction) GetCommittedVersion() (int64, error) { return 0, nil }
func (f *fakeTransaction) GetApproximateSize() (*future.Int64, error) {
	return future.NewInt64(&erroredTable{}, nil, nil), nil
}
func (f *fakeTransaction) Watch(key []byte) *future.Unit {
	return future.NewUnit(&erroredTable{}, nil, nil)
}
func (f *fakeTransaction) OnError(code int) *future.Unit {
	return future.NewUnit(&erroredTable{}, nil, nil)
}
func (f *fakeTransaction) Reset()  {}
func (f *fakeTransaction) Cancel() {}
func (f *fakeTransaction) AddConflictRange(beginKey, endKey []byte, rangeType int) error {
	return nil
}
func (f *fakeTransaction) Destroy() { f.destroyed = true }

var _ client.Transaction = (*fakeTransaction)(nil)

func newBareDatabaseState(t *testing.T) *DatabaseState {
	t.Helper()
	return &DatabaseState{
		registry:            newClientRegistry(),
		pendingOptions:      newOptionList(),
		pendingTxDefaults:   newOptionList(),
		metrics:             newMetrics(),
		logger:              newLogger(),
		state:               stateBound,
		legacyDBConnections: make(map[ProtocolVersion]client.Database),
		cancelMonitor:       func() {},
		dbVar:               newDBVar(),
	}
}

func TestRetireActiveDatabaseDestroysModernConnection(t *testing.T) {
	s := newBareDatabaseState(t)
	db := &fakeDatabase{}
	s.currentProtocolVersion = ProtocolVersion(uint64(7)<<32 | uint64(1)<<16)
	s.dbVar.Publish(db)

	s.retireActiveDatabase()

	require.True(t, db.destroyed)
	active, _ := s.dbVar.Get()
	require.Nil(t, active)
	require.Empty(t, s.legacyDBConnections)
}

func TestRetireActiveDatabaseRetainsLegacyConnection(t *testing.T) {
	s := newBareDatabaseState(t)
	db := &fakeDatabase{}
	s.currentProtocolVersion = ProtocolVersion(uint64(5) << 32)
	s.dbVar.Publish(db)

	s.retireActiveDatabase()

	require.False(t, db.destroyed)
	require.Same(t, db, s.legacyDBConnections[s.currentProtocolVersion])
}

func TestCloseDestroysActiveDatabase(t *testing.T) {
	s := newBareDatabaseState(t)
	db := &fakeDatabase{}
	s.dbVar.Publish(db)

	s.Close()

	require.True(t, db.destroyed)
}

func TestCloseDoesNotDestroyLegacyRetainedDatabase(t *testing.T) {
	s := newBareDatabaseState(t)
	db := &fakeDatabase{}
	s.legacyDBConnections[ProtocolVersion(1)] = db
	s.dbVar.Publish(db)

	s.Close()

	require.False(t, db.destroyed)
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newBareDatabaseState(t)
	s.Close()
	s.Close()
}

func TestForceObservedVersionWithoutClientRetiresActiveDatabase(t *testing.T) {
	api := newLocalOnlyApi(t)
	db, err := api.CreateDatabase("")
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.Eventually(t, func() bool {
		active, _ := db.state.DBVar().Get()
		return active != nil
	}, time.Second, time.Millisecond)

	db.state.ForceObservedVersion(ProtocolVersion(uint64(1) << 32))

	require.Eventually(t, func() bool {
		active, _ := db.state.DBVar().Get()
		return active == nil
	}, time.Second, time.Millisecond)
}

func TestDatabaseSetOptionAppliesToCurrentlyBoundDatabase(t *testing.T) {
	api := newLocalOnlyApi(t)
	db, err := api.CreateDatabase("")
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.SetOption(NetworkOptionTraceEnable, []byte("x")))
}
