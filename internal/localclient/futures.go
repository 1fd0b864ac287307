package localclient

import (
	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/sajjadrahnama/foundationdb/internal/future"
)

// resolvedTable is a future.Table that is already complete the moment it
// is constructed: the local client never actually waits on anything, so
// every future it hands back resolves before the caller can observe it
// pending. It still goes through the real bridge so callers of
// client.Transaction cannot tell the difference between a local and a
// dynamically loaded client by the shape of the result.
type resolvedTable struct {
	err     error
	int64v  int64
	boolv   bool
	keyv    []byte
	value   []byte
	present bool
	keys    [][]byte
	rows    []capi.KeyValue
	more    bool
	strs    []string
	db      *capi.Database
	cb      func()
}

func (t *resolvedTable) FutureSetCallback(_ *capi.Future, cb func()) error { t.cb = cb; return nil }
func (t *resolvedTable) FutureCancel(_ *capi.Future)                      {}
func (t *resolvedTable) FutureDestroy(_ *capi.Future)                    {}
func (t *resolvedTable) FutureGetError(_ *capi.Future) error             { return t.err }
func (t *resolvedTable) FutureGetInt64(_ *capi.Future) (int64, error)    { return t.int64v, t.err }
func (t *resolvedTable) FutureGetBool(_ *capi.Future) (bool, error)      { return t.boolv, t.err }
func (t *resolvedTable) FutureGetKey(_ *capi.Future) ([]byte, error)     { return t.keyv, t.err }
func (t *resolvedTable) FutureGetValue(_ *capi.Future) ([]byte, bool, error) {
	return t.value, t.present, t.err
}
func (t *resolvedTable) FutureGetKeyArray(_ *capi.Future) ([][]byte, error) { return t.keys, t.err }
func (t *resolvedTable) FutureGetKeyValueArray(_ *capi.Future) ([]capi.KeyValue, bool, error) {
	return t.rows, t.more, t.err
}
func (t *resolvedTable) FutureGetStringArray(_ *capi.Future) ([]string, error) { return t.strs, t.err }
func (t *resolvedTable) FutureGetDatabase(_ *capi.Future) (*capi.Database, error) {
	return t.db, t.err
}

func (t *resolvedTable) complete() {
	if t.cb != nil {
		t.cb()
	}
}

func int64Future(v int64, err error) *future.Int64 {
	t := &resolvedTable{int64v: v, err: err}
	f := future.NewInt64(t, &capi.Future{}, nil)
	t.complete()
	return f
}

func unitFuture(err error) *future.Unit {
	t := &resolvedTable{err: err}
	f := future.NewUnit(t, &capi.Future{}, nil)
	t.complete()
	return f
}

func optionalValueFuture(value []byte, present bool, err error) *future.OptionalValue {
	t := &resolvedTable{value: value, present: present, err: err}
	f := future.NewOptionalValue(t, &capi.Future{}, nil)
	t.complete()
	return f
}

func keyFuture(v []byte, err error) *future.Key {
	t := &resolvedTable{keyv: v, err: err}
	f := future.NewKey(t, &capi.Future{}, nil)
	t.complete()
	return f
}

func keyArrayFuture(v [][]byte, err error) *future.KeyArray {
	t := &resolvedTable{keys: v, err: err}
	f := future.NewKeyArray(t, &capi.Future{}, nil)
	t.complete()
	return f
}

func keyValuePageFuture(rows []capi.KeyValue, more bool, err error) *future.KeyValueArrayPage {
	t := &resolvedTable{rows: rows, more: more, err: err}
	f := future.NewKeyValueArrayPage(t, &capi.Future{}, nil)
	t.complete()
	return f
}

func stringArrayFuture(v []string, err error) *future.StringArray {
	t := &resolvedTable{strs: v, err: err}
	f := future.NewStringArray(t, &capi.Future{}, nil)
	t.complete()
	return f
}

func versionstampFuture(v []byte, err error) *future.Versionstamp {
	t := &resolvedTable{keyv: v, err: err}
	f := future.NewVersionstamp(t, &capi.Future{}, nil)
	t.complete()
	return f
}
