package future

import (
	"context"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
)

// Int64 is the async value shape for transaction_get_read_version,
// transaction_get_committed_version's future-returning cousins, and any
// other int64-returning entry point.
type Int64 struct{ *base }

// NewInt64 wraps raw as an Int64 future, completed via dispatcher.
func NewInt64(table Table, raw *capi.Future, dispatcher Dispatcher) *Int64 {
	return &Int64{newBase(table, raw, dispatcher)}
}

// Get blocks for completion then extracts the int64 result.
func (f *Int64) Get(ctx context.Context) (int64, error) {
	if err := f.Wait(ctx); err != nil {
		return 0, err
	}
	if err := f.checkExtractable(); err != nil {
		return 0, err
	}
	return f.table.FutureGetInt64(f.raw)
}

// Bool is the async value shape for boolean-returning entry points.
type Bool struct{ *base }

func NewBool(table Table, raw *capi.Future, dispatcher Dispatcher) *Bool {
	return &Bool{newBase(table, raw, dispatcher)}
}

func (f *Bool) Get(ctx context.Context) (bool, error) {
	if err := f.Wait(ctx); err != nil {
		return false, err
	}
	if err := f.checkExtractable(); err != nil {
		return false, err
	}
	return f.table.FutureGetBool(f.raw)
}

// Key is the async value shape for transaction_get_key.
type Key struct{ *base }

func NewKey(table Table, raw *capi.Future, dispatcher Dispatcher) *Key {
	return &Key{newBase(table, raw, dispatcher)}
}

// Get copies the borrowed key bytes out before the underlying handle's
// memory can be reclaimed.
func (f *Key) Get(ctx context.Context) ([]byte, error) {
	if err := f.Wait(ctx); err != nil {
		return nil, err
	}
	if err := f.checkExtractable(); err != nil {
		return nil, err
	}
	return f.table.FutureGetKey(f.raw)
}

// OptionalValue is the async value shape for transaction_get: present is
// false when the key did not exist, distinct from an empty value.
type OptionalValue struct{ *base }

func NewOptionalValue(table Table, raw *capi.Future, dispatcher Dispatcher) *OptionalValue {
	return &OptionalValue{newBase(table, raw, dispatcher)}
}

func (f *OptionalValue) Get(ctx context.Context) (value []byte, present bool, err error) {
	if err = f.Wait(ctx); err != nil {
		return nil, false, err
	}
	if err = f.checkExtractable(); err != nil {
		return nil, false, err
	}
	return f.table.FutureGetValue(f.raw)
}

// KeyArray is the async value shape for transaction_get_range_split_points.
type KeyArray struct{ *base }

func NewKeyArray(table Table, raw *capi.Future, dispatcher Dispatcher) *KeyArray {
	return &KeyArray{newBase(table, raw, dispatcher)}
}

func (f *KeyArray) Get(ctx context.Context) ([][]byte, error) {
	if err := f.Wait(ctx); err != nil {
		return nil, err
	}
	if err := f.checkExtractable(); err != nil {
		return nil, err
	}
	return f.table.FutureGetKeyArray(f.raw)
}

// KeyValueArrayPage is the async value shape for transaction_get_range.
// Get's more result reports whether the range has additional rows beyond
// this page.
type KeyValueArrayPage struct {
	*base
}

func NewKeyValueArrayPage(table Table, raw *capi.Future, dispatcher Dispatcher) *KeyValueArrayPage {
	return &KeyValueArrayPage{newBase(table, raw, dispatcher)}
}

func (f *KeyValueArrayPage) Get(ctx context.Context) (rows []capi.KeyValue, more bool, err error) {
	if err = f.Wait(ctx); err != nil {
		return nil, false, err
	}
	if err = f.checkExtractable(); err != nil {
		return nil, false, err
	}
	return f.table.FutureGetKeyValueArray(f.raw)
}

// StringArray is the async value shape for
// transaction_get_addresses_for_key.
type StringArray struct{ *base }

func NewStringArray(table Table, raw *capi.Future, dispatcher Dispatcher) *StringArray {
	return &StringArray{newBase(table, raw, dispatcher)}
}

func (f *StringArray) Get(ctx context.Context) ([]string, error) {
	if err := f.Wait(ctx); err != nil {
		return nil, err
	}
	if err := f.checkExtractable(); err != nil {
		return nil, err
	}
	return f.table.FutureGetStringArray(f.raw)
}

// Versionstamp is the async value shape for transaction_get_versionstamp.
type Versionstamp struct{ *base }

func NewVersionstamp(table Table, raw *capi.Future, dispatcher Dispatcher) *Versionstamp {
	return &Versionstamp{newBase(table, raw, dispatcher)}
}

func (f *Versionstamp) Get(ctx context.Context) ([]byte, error) {
	if err := f.Wait(ctx); err != nil {
		return nil, err
	}
	if err := f.checkExtractable(); err != nil {
		return nil, err
	}
	return f.table.FutureGetKey(f.raw)
}

// Unit is the async value shape for entry points whose only signal is
// success or failure (transaction_commit, database_reboot_worker,
// transaction_watch).
type Unit struct{ *base }

func NewUnit(table Table, raw *capi.Future, dispatcher Dispatcher) *Unit {
	return &Unit{newBase(table, raw, dispatcher)}
}

func (f *Unit) Get(ctx context.Context) error {
	if err := f.Wait(ctx); err != nil {
		return err
	}
	if err := f.checkExtractable(); err != nil {
		return err
	}
	return f.table.FutureGetError(f.raw)
}

// DatabaseHandle is the async value shape for future_get_database
// (create_database itself returns its handle synchronously).
type DatabaseHandle struct{ *base }

func NewDatabaseHandle(table Table, raw *capi.Future, dispatcher Dispatcher) *DatabaseHandle {
	return &DatabaseHandle{newBase(table, raw, dispatcher)}
}

func (f *DatabaseHandle) Get(ctx context.Context) (*capi.Database, error) {
	if err := f.Wait(ctx); err != nil {
		return nil, err
	}
	if err := f.checkExtractable(); err != nil {
		return nil, err
	}
	return f.table.FutureGetDatabase(f.raw)
}
