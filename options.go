package foundationdb

import "sync"

// Option is one (code, value) pair passed through to an underlying
// client untouched — option enums are stable integer codes the facade
// never interprets (spec §6 "Exposed to the application").
type Option struct {
	Code  int
	Value []byte
}

// optionList is a mutex-guarded, ordered option log shared by
// MultiVersionApi's pending network options, DatabaseState's
// pending_options, pending_transaction_defaults, and
// MultiVersionTransaction's persistent_options — every place spec §3
// calls for an "ordered list of option overrides, replayed in order".
type optionList struct {
	mu   sync.Mutex
	opts []Option
}

func newOptionList() *optionList {
	return &optionList{}
}

// Append records opt at the end of the list.
func (l *optionList) Append(code int, value []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opts = append(l.opts, Option{Code: code, Value: value})
}

// Snapshot returns a copy of the list in issue order, safe to iterate
// without holding the list's lock.
func (l *optionList) Snapshot() []Option {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Option, len(l.opts))
	copy(out, l.opts)
	return out
}

// Reset clears every recorded option. Nothing in the facade calls it:
// persistent_options in particular survive transaction reset (spec §4.G).
func (l *optionList) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opts = nil
}

// Contains reports whether (code, value) was already recorded, used by
// the environment-variable dedup rule (spec §6 "Environment variables").
func (l *optionList) Contains(code int, value []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range l.opts {
		if o.Code == code && string(o.Value) == string(value) {
			return true
		}
	}
	return false
}
