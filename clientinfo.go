package foundationdb

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sajjadrahnama/foundationdb/internal/client"
)

// ClientDescriptor is the immutable identity of a registered client,
// fixed at configuration time (add_external_library / the built-in local
// client).
type ClientDescriptor struct {
	LibraryPath string
	IsExternal  bool
}

// ClientInfo wraps a ClientDescriptor with the mutable state accumulated
// once the client is actually bound: its announced protocol version, the
// uniform handle used to talk to it, and whether it has ever failed.
//
// A zero-value ClientInfo is never usable — Failed starts true and is
// only cleared once Bind succeeds, mirroring the original implementation's
// "failed = true until successfully constructed" invariant.
type ClientInfo struct {
	Descriptor ClientDescriptor

	mu              sync.Mutex
	protocolVersion ProtocolVersion
	handle          client.Api
	failed          bool
	threadHooks     []func()
	insertionOrder  int
}

var clientInfoSequence int
var clientInfoSequenceMu sync.Mutex

func nextClientInfoSequence() int {
	clientInfoSequenceMu.Lock()
	defer clientInfoSequenceMu.Unlock()
	clientInfoSequence++
	return clientInfoSequence
}

// NewClientInfo constructs a ClientInfo still marked failed; call Bind
// once the client's Api handle and version string are available.
func NewClientInfo(descriptor ClientDescriptor) *ClientInfo {
	return &ClientInfo{
		Descriptor:     descriptor,
		failed:         true,
		insertionOrder: nextClientInfoSequence(),
	}
}

// Bind attaches the resolved Api handle and parses its reported version
// string into a ProtocolVersion, clearing the sticky failed flag.
func (c *ClientInfo) Bind(handle client.Api, versionString string) error {
	version, err := parseProtocolVersion(versionString)
	if err != nil {
		return fmt.Errorf("foundationdb: load protocol version for %s: %w", c.Descriptor.LibraryPath, err)
	}
	c.mu.Lock()
	c.handle = handle
	c.protocolVersion = version
	c.failed = false
	hooks := append([]func(){}, c.threadHooks...)
	c.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
	return nil
}

// parseProtocolVersion turns a client-reported version string
// ("7.4.0", "6.3.24") into a ProtocolVersion. The low four bits are left
// zero, reserved for the compatibility flags Normalized masks off.
func parseProtocolVersion(versionString string) (ProtocolVersion, error) {
	parts := strings.SplitN(versionString, ".", 3)
	if len(parts) == 0 || parts[0] == "" {
		return 0, fmt.Errorf("empty version string")
	}
	var components [3]uint64
	for i, part := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 16)
		if err != nil {
			return 0, fmt.Errorf("parse version component %q: %w", part, err)
		}
		components[i] = n
	}
	raw := (components[0] << 32) | (components[1] << 16) | (components[2] << 4)
	return ProtocolVersion(raw), nil
}

// ProtocolVersion returns the version this client was bound to, or the
// zero value before Bind succeeds.
func (c *ClientInfo) ProtocolVersion() ProtocolVersion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.protocolVersion
}

// Handle returns the uniform Api surface, or nil before Bind.
func (c *ClientInfo) Handle() client.Api {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// Failed reports the sticky failure flag.
func (c *ClientInfo) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

// MarkFailed sets the sticky failure flag. Never cleared once set.
func (c *ClientInfo) MarkFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = true
}

// AddThreadCompletionHook records hook for replay against this client now
// and propagates it to clients registered after MultiVersionApi's call —
// the caller side of that propagation lives in api.go.
func (c *ClientInfo) AddThreadCompletionHook(hook func()) {
	c.mu.Lock()
	c.threadHooks = append(c.threadHooks, hook)
	c.mu.Unlock()
}

// CanReplace reports whether c should be preferred over other when both
// report the same normalized protocol version: non-external clients beat
// external ones, and otherwise the earlier-registered client wins
// (spec.md §9 Open Question, resolved as first-registered-wins).
func (c *ClientInfo) CanReplace(other *ClientInfo) bool {
	if other == nil {
		return true
	}
	if c.failed {
		return false
	}
	if c.protocolVersion.Normalized() != other.protocolVersion.Normalized() {
		return false
	}
	if c.Descriptor.IsExternal != other.Descriptor.IsExternal {
		return !c.Descriptor.IsExternal
	}
	return c.insertionOrder < other.insertionOrder
}
