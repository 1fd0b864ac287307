package capi

/*
#include "capi_bridge.h"
#include <stdlib.h>
*/
import "C"

import "unsafe"

// cBytes borrows the backing array of b for the duration of a single cgo
// call. It must not be retained past the call that receives it.
func cBytes(b []byte) (*C.uint8_t, C.int) {
	if len(b) == 0 {
		return nil, 0
	}
	return (*C.uint8_t)(unsafe.Pointer(&b[0])), C.int(len(b))
}

func cBool(b bool) C.mvc_bool_t {
	if b {
		return 1
	}
	return 0
}

// --- network ---

// SelectAPIVersion negotiates the protocol version the bound library will
// speak for the remainder of the process lifetime.
func (t *Table) SelectAPIVersion(runtimeVersion, headerVersion int) error {
	code := C.mvc_call_select_api_version(t.c, C.int(runtimeVersion), C.int(headerVersion))
	return codeToError(int(code))
}

// GetClientVersion returns the bound library's self-reported version
// string, used for diagnostics only.
func (t *Table) GetClientVersion() string {
	return C.GoString(C.mvc_call_get_client_version(t.c))
}

func (t *Table) SetNetworkOption(option int, value []byte) error {
	v, n := cBytes(value)
	code := C.mvc_call_set_network_option(t.c, C.int(option), v, n)
	return codeToError(int(code))
}

func (t *Table) SetupNetwork() error {
	return codeToError(int(C.mvc_call_setup_network(t.c)))
}

func (t *Table) RunNetwork() error {
	return codeToError(int(C.mvc_call_run_network(t.c)))
}

func (t *Table) StopNetwork() error {
	return codeToError(int(C.mvc_call_stop_network(t.c)))
}

func (t *Table) CreateDatabase(clusterFilePath string) (*Database, error) {
	cPath := C.CString(clusterFilePath)
	defer C.free(unsafe.Pointer(cPath))

	var out *C.MVCDatabase
	code := C.mvc_call_create_database(t.c, cPath, &out)
	if err := codeToError(int(code)); err != nil {
		return nil, err
	}
	return &Database{ptr: unsafe.Pointer(out)}, nil
}

// --- database ---

func (t *Table) DatabaseCreateTransaction(db *Database) (*Transaction, error) {
	var out *C.MVCTransaction
	code := C.mvc_call_database_create_transaction(t.c, (*C.MVCDatabase)(db.ptr), &out)
	if err := codeToError(int(code)); err != nil {
		return nil, err
	}
	return &Transaction{ptr: unsafe.Pointer(out)}, nil
}

func (t *Table) DatabaseSetOption(db *Database, option int, value []byte) error {
	v, n := cBytes(value)
	code := C.mvc_call_database_set_option(t.c, (*C.MVCDatabase)(db.ptr), C.int(option), v, n)
	return codeToError(int(code))
}

func (t *Table) DatabaseDestroy(db *Database) {
	C.mvc_call_database_destroy(t.c, (*C.MVCDatabase)(db.ptr))
}

func (t *Table) DatabaseRebootWorker(db *Database, address []byte, check bool, duration int) (*Future, error) {
	if err := t.require("database_reboot_worker"); err != nil {
		return nil, err
	}
	a, n := cBytes(address)
	f := C.mvc_call_database_reboot_worker(t.c, (*C.MVCDatabase)(db.ptr), a, n, cBool(check), C.int(duration))
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

func (t *Table) DatabaseForceRecoveryWithDataLoss(db *Database, dcid []byte) (*Future, error) {
	if err := t.require("database_force_recovery_with_data_loss"); err != nil {
		return nil, err
	}
	d, n := cBytes(dcid)
	f := C.mvc_call_database_force_recovery(t.c, (*C.MVCDatabase)(db.ptr), d, n)
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

func (t *Table) DatabaseCreateSnapshot(db *Database, uid, command []byte) (*Future, error) {
	if err := t.require("database_create_snapshot"); err != nil {
		return nil, err
	}
	u, un := cBytes(uid)
	c, cn := cBytes(command)
	f := C.mvc_call_database_create_snapshot(t.c, (*C.MVCDatabase)(db.ptr), u, un, c, cn)
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

func (t *Table) DatabaseGetMainThreadBusyness(db *Database) (float64, error) {
	if err := t.require("database_get_main_thread_busyness"); err != nil {
		return 0, err
	}
	return float64(C.mvc_call_database_get_main_thread_busyness(t.c, (*C.MVCDatabase)(db.ptr))), nil
}

func (t *Table) DatabaseGetServerProtocol(db *Database, expectedVersion uint64) (*Future, error) {
	if err := t.require("database_get_server_protocol"); err != nil {
		return nil, err
	}
	f := C.mvc_call_database_get_server_protocol(t.c, (*C.MVCDatabase)(db.ptr), C.uint64_t(expectedVersion))
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

// --- transaction ---

func (t *Table) TransactionSetOption(tr *Transaction, option int, value []byte) error {
	v, n := cBytes(value)
	code := C.mvc_call_transaction_set_option(t.c, (*C.MVCTransaction)(tr.ptr), C.int(option), v, n)
	return codeToError(int(code))
}

func (t *Table) TransactionDestroy(tr *Transaction) {
	C.mvc_call_transaction_destroy(t.c, (*C.MVCTransaction)(tr.ptr))
}

func (t *Table) TransactionSetReadVersion(tr *Transaction, version int64) {
	C.mvc_call_transaction_set_read_version(t.c, (*C.MVCTransaction)(tr.ptr), C.int64_t(version))
}

func (t *Table) TransactionGetReadVersion(tr *Transaction) *Future {
	f := C.mvc_call_transaction_get_read_version(t.c, (*C.MVCTransaction)(tr.ptr))
	return &Future{ptr: unsafe.Pointer(f)}
}

func (t *Table) TransactionGet(tr *Transaction, key []byte, snapshot bool) *Future {
	k, n := cBytes(key)
	f := C.mvc_call_transaction_get(t.c, (*C.MVCTransaction)(tr.ptr), k, n, cBool(snapshot))
	return &Future{ptr: unsafe.Pointer(f)}
}

func (t *Table) TransactionGetKey(tr *Transaction, key []byte, orEqual bool, offset int, snapshot bool) *Future {
	k, n := cBytes(key)
	f := C.mvc_call_transaction_get_key(t.c, (*C.MVCTransaction)(tr.ptr), k, n, cBool(orEqual), C.int(offset), cBool(snapshot))
	return &Future{ptr: unsafe.Pointer(f)}
}

func (t *Table) TransactionGetAddressesForKey(tr *Transaction, key []byte) *Future {
	k, n := cBytes(key)
	f := C.mvc_call_transaction_get_addresses_for_key(t.c, (*C.MVCTransaction)(tr.ptr), k, n)
	return &Future{ptr: unsafe.Pointer(f)}
}

// RangeOptions collects the positional arguments transaction_get_range
// takes in the underlying ABI: two KeySelector-shaped bounds plus the
// iteration controls.
type RangeOptions struct {
	BeginKey, EndKey             []byte
	BeginOrEqual, EndOrEqual     bool
	BeginOffset, EndOffset       int
	Limit, TargetBytes           int
	StreamingMode, Iteration     int
	Snapshot, Reverse            bool
}

func (t *Table) TransactionGetRange(tr *Transaction, opts RangeOptions) *Future {
	bk, bn := cBytes(opts.BeginKey)
	ek, en := cBytes(opts.EndKey)
	f := C.mvc_call_transaction_get_range(t.c, (*C.MVCTransaction)(tr.ptr),
		bk, bn, cBool(opts.BeginOrEqual), C.int(opts.BeginOffset),
		ek, en, cBool(opts.EndOrEqual), C.int(opts.EndOffset),
		C.int(opts.Limit), C.int(opts.TargetBytes), C.int(opts.StreamingMode), C.int(opts.Iteration),
		cBool(opts.Snapshot), cBool(opts.Reverse))
	return &Future{ptr: unsafe.Pointer(f)}
}

func (t *Table) TransactionGetVersionstamp(tr *Transaction) (*Future, error) {
	if err := t.require("transaction_get_versionstamp"); err != nil {
		return nil, err
	}
	f := C.mvc_call_transaction_get_versionstamp(t.c, (*C.MVCTransaction)(tr.ptr))
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

func (t *Table) TransactionSet(tr *Transaction, key, value []byte) {
	k, kn := cBytes(key)
	v, vn := cBytes(value)
	C.mvc_call_transaction_set(t.c, (*C.MVCTransaction)(tr.ptr), k, kn, v, vn)
}

func (t *Table) TransactionClear(tr *Transaction, key []byte) {
	k, n := cBytes(key)
	C.mvc_call_transaction_clear(t.c, (*C.MVCTransaction)(tr.ptr), k, n)
}

func (t *Table) TransactionClearRange(tr *Transaction, beginKey, endKey []byte) {
	bk, bn := cBytes(beginKey)
	ek, en := cBytes(endKey)
	C.mvc_call_transaction_clear_range(t.c, (*C.MVCTransaction)(tr.ptr), bk, bn, ek, en)
}

func (t *Table) TransactionAtomicOp(tr *Transaction, key, param []byte, mutationType int) {
	k, kn := cBytes(key)
	p, pn := cBytes(param)
	C.mvc_call_transaction_atomic_op(t.c, (*C.MVCTransaction)(tr.ptr), k, kn, p, pn, C.int(mutationType))
}

func (t *Table) TransactionGetEstimatedRangeSizeBytes(tr *Transaction, beginKey, endKey []byte) (*Future, error) {
	if err := t.require("transaction_get_estimated_range_size_bytes"); err != nil {
		return nil, err
	}
	bk, bn := cBytes(beginKey)
	ek, en := cBytes(endKey)
	f := C.mvc_call_transaction_get_estimated_range_size(t.c, (*C.MVCTransaction)(tr.ptr), bk, bn, ek, en)
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

func (t *Table) TransactionGetRangeSplitPoints(tr *Transaction, beginKey, endKey []byte, chunkSize int64) (*Future, error) {
	if err := t.require("transaction_get_range_split_points"); err != nil {
		return nil, err
	}
	bk, bn := cBytes(beginKey)
	ek, en := cBytes(endKey)
	f := C.mvc_call_transaction_get_range_split_points(t.c, (*C.MVCTransaction)(tr.ptr), bk, bn, ek, en, C.int64_t(chunkSize))
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

func (t *Table) TransactionCommit(tr *Transaction) *Future {
	f := C.mvc_call_transaction_commit(t.c, (*C.MVCTransaction)(tr.ptr))
	return &Future{ptr: unsafe.Pointer(f)}
}

func (t *Table) TransactionGetCommittedVersion(tr *Transaction) (int64, error) {
	var out C.int64_t
	code := C.mvc_call_transaction_get_committed_version(t.c, (*C.MVCTransaction)(tr.ptr), &out)
	if err := codeToError(int(code)); err != nil {
		return 0, err
	}
	return int64(out), nil
}

func (t *Table) TransactionGetApproximateSize(tr *Transaction) (*Future, error) {
	if err := t.require("transaction_get_approximate_size"); err != nil {
		return nil, err
	}
	f := C.mvc_call_transaction_get_approximate_size(t.c, (*C.MVCTransaction)(tr.ptr))
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

func (t *Table) TransactionWatch(tr *Transaction, key []byte) *Future {
	k, n := cBytes(key)
	f := C.mvc_call_transaction_watch(t.c, (*C.MVCTransaction)(tr.ptr), k, n)
	return &Future{ptr: unsafe.Pointer(f)}
}

func (t *Table) TransactionOnError(tr *Transaction, code int) *Future {
	f := C.mvc_call_transaction_on_error(t.c, (*C.MVCTransaction)(tr.ptr), C.mvc_error_t(code))
	return &Future{ptr: unsafe.Pointer(f)}
}

func (t *Table) TransactionReset(tr *Transaction) {
	C.mvc_call_transaction_reset(t.c, (*C.MVCTransaction)(tr.ptr))
}

func (t *Table) TransactionCancel(tr *Transaction) {
	C.mvc_call_transaction_cancel(t.c, (*C.MVCTransaction)(tr.ptr))
}

func (t *Table) TransactionAddConflictRange(tr *Transaction, beginKey, endKey []byte, rangeType int) error {
	bk, bn := cBytes(beginKey)
	ek, en := cBytes(endKey)
	code := C.mvc_call_transaction_add_conflict_range(t.c, (*C.MVCTransaction)(tr.ptr), bk, bn, ek, en, C.int(rangeType))
	return codeToError(int(code))
}

// --- future ---

func (t *Table) FutureGetDatabase(f *Future) (*Database, error) {
	var out *C.MVCDatabase
	code := C.mvc_call_future_get_database(t.c, (*C.MVCFuture)(f.ptr), &out)
	if err := codeToError(int(code)); err != nil {
		return nil, err
	}
	return &Database{ptr: unsafe.Pointer(out)}, nil
}

func (t *Table) FutureGetInt64(f *Future) (int64, error) {
	var out C.int64_t
	code := C.mvc_call_future_get_int64(t.c, (*C.MVCFuture)(f.ptr), &out)
	if err := codeToError(int(code)); err != nil {
		return 0, err
	}
	return int64(out), nil
}

func (t *Table) FutureGetUint64(f *Future) (uint64, error) {
	var out C.uint64_t
	code := C.mvc_call_future_get_uint64(t.c, (*C.MVCFuture)(f.ptr), &out)
	if err := codeToError(int(code)); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

func (t *Table) FutureGetBool(f *Future) (bool, error) {
	var out C.mvc_bool_t
	code := C.mvc_call_future_get_bool(t.c, (*C.MVCFuture)(f.ptr), &out)
	if err := codeToError(int(code)); err != nil {
		return false, err
	}
	return out != 0, nil
}

func (t *Table) FutureGetError(f *Future) error {
	return codeToError(int(C.mvc_call_future_get_error(t.c, (*C.MVCFuture)(f.ptr))))
}

func (t *Table) FutureGetKey(f *Future) ([]byte, error) {
	var key *C.uint8_t
	var n C.int
	code := C.mvc_call_future_get_key(t.c, (*C.MVCFuture)(f.ptr), &key, &n)
	if err := codeToError(int(code)); err != nil {
		return nil, err
	}
	return C.GoBytes(unsafe.Pointer(key), n), nil
}

// FutureGetValue returns (nil, false, nil) when the key was not present,
// distinct from a nil slice paired with true meaning an empty value.
func (t *Table) FutureGetValue(f *Future) ([]byte, bool, error) {
	var present C.mvc_bool_t
	var value *C.uint8_t
	var n C.int
	code := C.mvc_call_future_get_value(t.c, (*C.MVCFuture)(f.ptr), &present, &value, &n)
	if err := codeToError(int(code)); err != nil {
		return nil, false, err
	}
	if present == 0 {
		return nil, false, nil
	}
	return C.GoBytes(unsafe.Pointer(value), n), true, nil
}

func (t *Table) FutureGetStringArray(f *Future) ([]string, error) {
	var strs **C.char
	var n C.int
	code := C.mvc_call_future_get_string_array(t.c, (*C.MVCFuture)(f.ptr), &strs, &n)
	if err := codeToError(int(code)); err != nil {
		return nil, err
	}
	out := make([]string, int(n))
	base := unsafe.Slice(strs, int(n))
	for i, s := range base {
		out[i] = C.GoString(s)
	}
	return out, nil
}

func (t *Table) FutureGetKeyArray(f *Future) ([][]byte, error) {
	var keys *C.mvc_key_t
	var n C.int
	code := C.mvc_call_future_get_key_array(t.c, (*C.MVCFuture)(f.ptr), &keys, &n)
	if err := codeToError(int(code)); err != nil {
		return nil, err
	}
	out := make([][]byte, int(n))
	base := unsafe.Slice(keys, int(n))
	for i, k := range base {
		out[i] = C.GoBytes(unsafe.Pointer(k.key), k.key_length)
	}
	return out, nil
}

// KeyValue mirrors a single row returned from a range read.
type KeyValue struct {
	Key   []byte
	Value []byte
}

func (t *Table) FutureGetKeyValueArray(f *Future) ([]KeyValue, bool, error) {
	var kvs *C.mvc_keyvalue_t
	var n C.int
	var more C.mvc_bool_t
	code := C.mvc_call_future_get_keyvalue_array(t.c, (*C.MVCFuture)(f.ptr), &kvs, &n, &more)
	if err := codeToError(int(code)); err != nil {
		return nil, false, err
	}
	out := make([]KeyValue, int(n))
	base := unsafe.Slice(kvs, int(n))
	for i, kv := range base {
		out[i] = KeyValue{
			Key:   C.GoBytes(kv.key, kv.key_length),
			Value: C.GoBytes(kv.value, kv.value_length),
		}
	}
	return out, more != 0, nil
}

func (t *Table) FutureCancel(f *Future) {
	C.mvc_call_future_cancel(t.c, (*C.MVCFuture)(f.ptr))
}

func (t *Table) FutureDestroy(f *Future) {
	C.mvc_call_future_destroy(t.c, (*C.MVCFuture)(f.ptr))
}

// --- legacy cluster-file API ---

func (t *Table) CreateCluster(clusterFilePath string) (*Future, error) {
	if err := t.require("create_cluster"); err != nil {
		return nil, err
	}
	cPath := C.CString(clusterFilePath)
	defer C.free(unsafe.Pointer(cPath))
	f := C.mvc_call_create_cluster(t.c, cPath)
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

func (t *Table) ClusterCreateDatabase(cl *Cluster, dbName []byte) (*Future, error) {
	if err := t.require("cluster_create_database"); err != nil {
		return nil, err
	}
	n, nn := cBytes(dbName)
	f := C.mvc_call_cluster_create_database(t.c, (*C.MVCCluster)(cl.ptr), n, nn)
	return &Future{ptr: unsafe.Pointer(f)}, nil
}

func (t *Table) ClusterDestroy(cl *Cluster) error {
	if err := t.require("cluster_destroy"); err != nil {
		return err
	}
	C.mvc_call_cluster_destroy(t.c, (*C.MVCCluster)(cl.ptr))
	return nil
}

func (t *Table) FutureGetCluster(f *Future) (*Cluster, error) {
	if err := t.require("future_get_cluster"); err != nil {
		return nil, err
	}
	var out *C.MVCCluster
	code := C.mvc_call_future_get_cluster(t.c, (*C.MVCFuture)(f.ptr), &out)
	if err := codeToError(int(code)); err != nil {
		return nil, err
	}
	return &Cluster{ptr: unsafe.Pointer(out)}, nil
}
