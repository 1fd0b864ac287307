package foundationdb

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// clientRegistry is the normalized-version → ClientInfo map shared by
// MultiVersionApi and every MultiVersionDatabase it creates (spec §3
// DatabaseState.clients). Mutation only ever happens from the main
// thread; xsync.MapOf gives every other goroutine a lock-free read path,
// matching spec §5's "lookups from any thread never block the main
// thread's mutation path".
type clientRegistry struct {
	byVersion *xsync.MapOf[ProtocolVersion, *ClientInfo]
	local     *ClientInfo

	siblingsMu sync.Mutex
	siblings   map[string][]*ClientInfo
}

func newClientRegistry() *clientRegistry {
	return &clientRegistry{
		byVersion: xsync.NewMapOf[ProtocolVersion, *ClientInfo](),
		siblings:  make(map[string][]*ClientInfo),
	}
}

// RegisterLocal installs the always-present local client. It is never
// considered external for CanReplace tie-breaking and is exempt from the
// one-per-version uniqueness check: it is the fallback of last resort.
func (r *clientRegistry) RegisterLocal(info *ClientInfo) {
	r.local = info
	r.byVersion.Store(info.ProtocolVersion().Normalized(), info)
}

// Register attempts to install info under its normalized protocol
// version. If an incumbent already claims that version, info replaces it
// only if info.CanReplace(incumbent) — enforcing "at most one ClientInfo
// per normalized version" (spec §3 ClientInfo invariant).
func (r *clientRegistry) Register(info *ClientInfo) bool {
	norm := info.ProtocolVersion().Normalized()
	installed := false
	r.byVersion.Compute(norm, func(incumbent *ClientInfo, loaded bool) (*ClientInfo, bool) {
		if !loaded || info.CanReplace(incumbent) {
			installed = true
			return info, false
		}
		return incumbent, false
	})
	return installed
}

// Lookup returns the ClientInfo currently registered for the normalized
// version, if any.
func (r *clientRegistry) Lookup(version ProtocolVersion) (*ClientInfo, bool) {
	return r.byVersion.Load(version.Normalized())
}

// Remove drops info if it is still the registered candidate for its
// version. DatabaseState does not call it when a client is marked
// failed: the failed ClientInfo stays registered, and
// handleObservedVersion skips it through Failed().
func (r *clientRegistry) Remove(info *ClientInfo) {
	norm := info.ProtocolVersion().Normalized()
	r.byVersion.Compute(norm, func(incumbent *ClientInfo, loaded bool) (*ClientInfo, bool) {
		if loaded && incumbent == info {
			return nil, true
		}
		return incumbent, !loaded
	})
}

// Range iterates every registered ClientInfo, in no particular order.
func (r *clientRegistry) Range(fn func(*ClientInfo) bool) {
	r.byVersion.Range(func(_ ProtocolVersion, info *ClientInfo) bool {
		return fn(info)
	})
}

// AddThreadSibling records info alongside every other ClientInfo built
// for the same external library path, regardless of whether Register
// installed it as the version's winner. These per-thread copies (spec
// §4.H "per-thread library copies"; original_source's
// MultiVersionApi::nextThread / externalClients) are otherwise
// indistinguishable from the winner for protocol-version monitoring
// purposes, but CreateDatabase round-robins across them via
// SelectThreadSibling so every loaded copy is actually exercised.
func (r *clientRegistry) AddThreadSibling(info *ClientInfo) {
	r.siblingsMu.Lock()
	defer r.siblingsMu.Unlock()
	r.siblings[info.Descriptor.LibraryPath] = append(r.siblings[info.Descriptor.LibraryPath], info)
}

// SelectThreadSibling returns the threadIndex'th per-thread copy of
// primary's library, round-robining across however many were loaded.
// Returns primary unchanged for the local client or when no siblings
// were recorded (threadCount == 1).
func (r *clientRegistry) SelectThreadSibling(primary *ClientInfo, threadIndex int) *ClientInfo {
	if primary == nil || !primary.Descriptor.IsExternal {
		return primary
	}
	r.siblingsMu.Lock()
	siblings := r.siblings[primary.Descriptor.LibraryPath]
	r.siblingsMu.Unlock()
	if len(siblings) == 0 {
		return primary
	}
	return siblings[threadIndex%len(siblings)]
}
