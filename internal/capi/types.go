package capi

import "unsafe"

// Database, Transaction, Future and Cluster are opaque wrappers around the
// pointers the bound library hands back. Every other internal package
// treats these as handles; only this package's cgo files know their real
// C type.
type Database struct{ ptr unsafe.Pointer }
type Transaction struct{ ptr unsafe.Pointer }
type Future struct{ ptr unsafe.Pointer }
type Cluster struct{ ptr unsafe.Pointer }

// IsNil reports whether the wrapped pointer is nil. Used after a call that
// may legitimately return no handle (e.g. a future still pending).
func (d *Database) IsNil() bool    { return d == nil || d.ptr == nil }
func (t *Transaction) IsNil() bool { return t == nil || t.ptr == nil }
func (f *Future) IsNil() bool      { return f == nil || f.ptr == nil }
func (c *Cluster) IsNil() bool     { return c == nil || c.ptr == nil }
