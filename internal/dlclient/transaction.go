package dlclient

import (
	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/sajjadrahnama/foundationdb/internal/client"
	"github.com/sajjadrahnama/foundationdb/internal/future"
)

// Transaction owns its *capi.Transaction exclusively; Destroy must be
// called exactly once, on every exit path (spec §8 "no leaks").
type Transaction struct {
	table      *capi.Table
	handle     *capi.Transaction
	dispatcher future.Dispatcher
}

func newTransaction(table *capi.Table, handle *capi.Transaction, dispatcher future.Dispatcher) *Transaction {
	return &Transaction{table: table, handle: handle, dispatcher: dispatcher}
}

var _ client.Transaction = (*Transaction)(nil)

func (t *Transaction) SetOption(option int, value []byte) error {
	return t.table.TransactionSetOption(t.handle, option, value)
}

func (t *Transaction) SetReadVersion(version int64) {
	t.table.TransactionSetReadVersion(t.handle, version)
}

func (t *Transaction) GetReadVersion() *future.Int64 {
	raw := t.table.TransactionGetReadVersion(t.handle)
	return future.NewInt64(t.table, raw, t.dispatcher)
}

func (t *Transaction) Get(key []byte, snapshot bool) *future.OptionalValue {
	raw := t.table.TransactionGet(t.handle, key, snapshot)
	return future.NewOptionalValue(t.table, raw, t.dispatcher)
}

func (t *Transaction) GetKey(key []byte, orEqual bool, offset int, snapshot bool) *future.Key {
	raw := t.table.TransactionGetKey(t.handle, key, orEqual, offset, snapshot)
	return future.NewKey(t.table, raw, t.dispatcher)
}

func (t *Transaction) GetAddressesForKey(key []byte) *future.StringArray {
	raw := t.table.TransactionGetAddressesForKey(t.handle, key)
	return future.NewStringArray(t.table, raw, t.dispatcher)
}

func (t *Transaction) GetRange(opts capi.RangeOptions) *future.KeyValueArrayPage {
	raw := t.table.TransactionGetRange(t.handle, opts)
	return future.NewKeyValueArrayPage(t.table, raw, t.dispatcher)
}

func (t *Transaction) GetVersionstamp() (*future.Versionstamp, error) {
	raw, err := t.table.TransactionGetVersionstamp(t.handle)
	if err != nil {
		return nil, err
	}
	return future.NewVersionstamp(t.table, raw, t.dispatcher), nil
}

func (t *Transaction) Set(key, value []byte) {
	t.table.TransactionSet(t.handle, key, value)
}

func (t *Transaction) Clear(key []byte) {
	t.table.TransactionClear(t.handle, key)
}

func (t *Transaction) ClearRange(beginKey, endKey []byte) {
	t.table.TransactionClearRange(t.handle, beginKey, endKey)
}

func (t *Transaction) AtomicOp(key, param []byte, mutationType int) {
	t.table.TransactionAtomicOp(t.handle, key, param, mutationType)
}

func (t *Transaction) GetEstimatedRangeSizeBytes(beginKey, endKey []byte) (*future.Int64, error) {
	raw, err := t.table.TransactionGetEstimatedRangeSizeBytes(t.handle, beginKey, endKey)
	if err != nil {
		return nil, err
	}
	return future.NewInt64(t.table, raw, t.dispatcher), nil
}

func (t *Transaction) GetRangeSplitPoints(beginKey, endKey []byte, chunkSize int64) (*future.KeyArray, error) {
	raw, err := t.table.TransactionGetRangeSplitPoints(t.handle, beginKey, endKey, chunkSize)
	if err != nil {
		return nil, err
	}
	return future.NewKeyArray(t.table, raw, t.dispatcher), nil
}

func (t *Transaction) Commit() *future.Unit {
	raw := t.table.TransactionCommit(t.handle)
	return future.NewUnit(t.table, raw, t.dispatcher)
}

func (t *Transaction) GetCommittedVersion() (int64, error) {
	return t.table.TransactionGetCommittedVersion(t.handle)
}

func (t *Transaction) GetApproximateSize() (*future.Int64, error) {
	raw, err := t.table.TransactionGetApproximateSize(t.handle)
	if err != nil {
		return nil, err
	}
	return future.NewInt64(t.table, raw, t.dispatcher), nil
}

func (t *Transaction) Watch(key []byte) *future.Unit {
	raw := t.table.TransactionWatch(t.handle, key)
	return future.NewUnit(t.table, raw, t.dispatcher)
}

func (t *Transaction) OnError(code int) *future.Unit {
	raw := t.table.TransactionOnError(t.handle, code)
	return future.NewUnit(t.table, raw, t.dispatcher)
}

func (t *Transaction) Reset() {
	t.table.TransactionReset(t.handle)
}

func (t *Transaction) Cancel() {
	t.table.TransactionCancel(t.handle)
}

func (t *Transaction) AddConflictRange(beginKey, endKey []byte, rangeType int) error {
	return t.table.TransactionAddConflictRange(t.handle, beginKey, endKey, rangeType)
}

func (t *Transaction) Destroy() {
	t.table.TransactionDestroy(t.handle)
}
