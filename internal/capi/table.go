// Package capi binds the C ABI described in the external interfaces
// section of the loaded client library to a Go-callable vtable. Binding
// happens once per loaded dynlib.Handle; every operation method on Table
// then takes the bound C function pointer, calls through a trampoline
// (capi.c), and maps the raw C return into a Go error.
package capi

/*
#include "capi_bridge.h"
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/sajjadrahnama/foundationdb/internal/dynlib"
)

// ErrUnsupportedOperation is returned by an optional operation when the
// bound library's symbol table did not carry that entry point.
var ErrUnsupportedOperation = errors.New("capi: operation not supported by this client version")

// Table is a bound copy of the client ABI. The zero value is not usable;
// obtain one from Bind.
type Table struct {
	c         *C.mvc_capi_table_t
	supported map[string]bool
}

type symbolEntry struct {
	name     string
	optional bool
	set      func(t *C.mvc_capi_table_t, fn unsafe.Pointer)
}

// symbolTable lists every ABI entry point in the order spec section 6
// presents them: network, database, transaction, future, legacy.
var symbolTable = []symbolEntry{
	{"select_api_version", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_select_api_version(t, fn) }},
	{"get_client_version", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_get_client_version(t, fn) }},
	{"set_network_option", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_set_network_option(t, fn) }},
	{"setup_network", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_setup_network(t, fn) }},
	{"run_network", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_run_network(t, fn) }},
	{"stop_network", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_stop_network(t, fn) }},
	{"create_database", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_create_database(t, fn) }},

	{"database_create_transaction", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_database_create_transaction(t, fn) }},
	{"database_set_option", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_database_set_option(t, fn) }},
	{"database_destroy", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_database_destroy(t, fn) }},
	{"database_reboot_worker", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_database_reboot_worker(t, fn) }},
	{"database_force_recovery_with_data_loss", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_database_force_recovery(t, fn) }},
	{"database_create_snapshot", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_database_create_snapshot(t, fn) }},
	{"database_get_main_thread_busyness", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_database_get_main_thread_busyness(t, fn) }},
	{"database_get_server_protocol", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_database_get_server_protocol(t, fn) }},

	{"transaction_set_option", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_set_option(t, fn) }},
	{"transaction_destroy", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_destroy(t, fn) }},
	{"transaction_set_read_version", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_set_read_version(t, fn) }},
	{"transaction_get_read_version", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get_read_version(t, fn) }},
	{"transaction_get", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get(t, fn) }},
	{"transaction_get_key", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get_key(t, fn) }},
	{"transaction_get_addresses_for_key", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get_addresses_for_key(t, fn) }},
	{"transaction_get_range", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get_range(t, fn) }},
	{"transaction_get_versionstamp", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get_versionstamp(t, fn) }},
	{"transaction_set", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_set(t, fn) }},
	{"transaction_clear", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_clear(t, fn) }},
	{"transaction_clear_range", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_clear_range(t, fn) }},
	{"transaction_atomic_op", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_atomic_op(t, fn) }},
	{"transaction_get_estimated_range_size_bytes", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get_estimated_range_size(t, fn) }},
	{"transaction_get_range_split_points", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get_range_split_points(t, fn) }},
	{"transaction_commit", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_commit(t, fn) }},
	{"transaction_get_committed_version", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get_committed_version(t, fn) }},
	{"transaction_get_approximate_size", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_get_approximate_size(t, fn) }},
	{"transaction_watch", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_watch(t, fn) }},
	{"transaction_on_error", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_on_error(t, fn) }},
	{"transaction_reset", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_reset(t, fn) }},
	{"transaction_cancel", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_cancel(t, fn) }},
	{"transaction_add_conflict_range", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_transaction_add_conflict_range(t, fn) }},

	{"future_get_database", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_database(t, fn) }},
	{"future_get_int64", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_int64(t, fn) }},
	{"future_get_uint64", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_uint64(t, fn) }},
	{"future_get_bool", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_bool(t, fn) }},
	{"future_get_error", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_error(t, fn) }},
	{"future_get_key", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_key(t, fn) }},
	{"future_get_value", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_value(t, fn) }},
	{"future_get_string_array", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_string_array(t, fn) }},
	{"future_get_key_array", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_key_array(t, fn) }},
	{"future_get_keyvalue_array", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_keyvalue_array(t, fn) }},
	{"future_set_callback", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_set_callback(t, fn) }},
	{"future_cancel", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_cancel(t, fn) }},
	{"future_destroy", false, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_destroy(t, fn) }},

	{"create_cluster", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_create_cluster(t, fn) }},
	{"cluster_create_database", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_cluster_create_database(t, fn) }},
	{"cluster_destroy", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_cluster_destroy(t, fn) }},
	{"future_get_cluster", true, func(t *C.mvc_capi_table_t, fn unsafe.Pointer) { C.mvc_set_future_get_cluster(t, fn) }},
}

// Bind resolves every ABI symbol out of handle and constructs a Table. A
// missing required symbol fails the bind; a missing optional symbol is
// recorded so the corresponding Table method returns
// ErrUnsupportedOperation instead of dereferencing a nil pointer.
func Bind(handle *dynlib.Handle) (*Table, error) {
	c := (*C.mvc_capi_table_t)(C.calloc(1, C.sizeof_mvc_capi_table_t))
	tbl := &Table{c: c, supported: make(map[string]bool, len(symbolTable))}

	for _, entry := range symbolTable {
		addr, err := handle.Symbol(entry.name)
		if err != nil {
			if entry.optional {
				tbl.supported[entry.name] = false
				continue
			}
			C.free(unsafe.Pointer(c))
			return nil, fmt.Errorf("capi: bind %s: %w", entry.name, err)
		}
		entry.set(c, unsafe.Pointer(addr))
		tbl.supported[entry.name] = true
	}
	return tbl, nil
}

// Release frees the C vtable backing Table. Call once the owning client
// adapter is destroyed.
func (t *Table) Release() {
	if t.c == nil {
		return
	}
	C.free(unsafe.Pointer(t.c))
	t.c = nil
}

// Supports reports whether the optional entry point named by name was
// resolved at Bind time. name must match an entry in symbolTable.
func (t *Table) Supports(name string) bool {
	return t.supported[name]
}

func (t *Table) require(name string) error {
	if !t.supported[name] {
		return fmt.Errorf("%w: %s", ErrUnsupportedOperation, name)
	}
	return nil
}
