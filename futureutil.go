package foundationdb

import "github.com/sajjadrahnama/foundationdb/internal/capi"

// erroredTable is a future.Table that is already complete with err the
// moment it is constructed, used to hand back a typed async value for
// operations MultiVersionTransaction can't even attempt (no database
// bound yet, transaction cancelled) without special-casing every call
// site on a plain error return.
type erroredTable struct {
	err error
	cb  func()
}

func (t *erroredTable) FutureSetCallback(_ *capi.Future, cb func()) error {
	t.cb = cb
	cb()
	return nil
}
func (t *erroredTable) FutureCancel(_ *capi.Future)  {}
func (t *erroredTable) FutureDestroy(_ *capi.Future) {}
func (t *erroredTable) FutureGetError(_ *capi.Future) error { return t.err }
func (t *erroredTable) FutureGetInt64(_ *capi.Future) (int64, error) { return 0, t.err }
func (t *erroredTable) FutureGetBool(_ *capi.Future) (bool, error) { return false, t.err }
func (t *erroredTable) FutureGetKey(_ *capi.Future) ([]byte, error) { return nil, t.err }
func (t *erroredTable) FutureGetValue(_ *capi.Future) ([]byte, bool, error) {
	return nil, false, t.err
}
func (t *erroredTable) FutureGetKeyArray(_ *capi.Future) ([][]byte, error) { return nil, t.err }
func (t *erroredTable) FutureGetKeyValueArray(_ *capi.Future) ([]capi.KeyValue, bool, error) {
	return nil, false, t.err
}
func (t *erroredTable) FutureGetStringArray(_ *capi.Future) ([]string, error) { return nil, t.err }
func (t *erroredTable) FutureGetDatabase(_ *capi.Future) (*capi.Database, error) {
	return nil, t.err
}
