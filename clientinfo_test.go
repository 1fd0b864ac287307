package foundationdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProtocolVersion(t *testing.T) {
	v, err := parseProtocolVersion("7.4.0")
	require.NoError(t, err)
	require.Equal(t, ProtocolVersion(uint64(7)<<32|uint64(4)<<16), v)
}

func TestParseProtocolVersionRejectsGarbage(t *testing.T) {
	_, err := parseProtocolVersion("not-a-version")
	require.Error(t, err)
}

func TestClientInfoStartsFailed(t *testing.T) {
	info := NewClientInfo(ClientDescriptor{LibraryPath: "lib.so", IsExternal: true})
	require.True(t, info.Failed())
	require.Nil(t, info.Handle())
}

func TestClientInfoBindClearsFailed(t *testing.T) {
	info := NewClientInfo(ClientDescriptor{LibraryPath: "lib.so", IsExternal: true})
	require.NoError(t, info.Bind(nil, "7.1.0"))
	require.False(t, info.Failed())
	require.Equal(t, ProtocolVersion(uint64(7)<<32|uint64(1)<<16), info.ProtocolVersion())
}

func TestClientInfoBindRunsQueuedHooks(t *testing.T) {
	info := NewClientInfo(ClientDescriptor{})
	fired := false
	info.AddThreadCompletionHook(func() { fired = true })
	require.NoError(t, info.Bind(nil, "7.0.0"))
	require.True(t, fired)
}

func TestClientInfoCanReplacePrefersNonExternal(t *testing.T) {
	local := NewClientInfo(ClientDescriptor{IsExternal: false})
	require.NoError(t, local.Bind(nil, "7.1.0"))

	external := NewClientInfo(ClientDescriptor{IsExternal: true})
	require.NoError(t, external.Bind(nil, "7.1.0"))

	require.True(t, local.CanReplace(external))
	require.False(t, external.CanReplace(local))
}

func TestClientInfoCanReplaceRequiresSameNormalizedVersion(t *testing.T) {
	a := NewClientInfo(ClientDescriptor{})
	require.NoError(t, a.Bind(nil, "7.1.0"))
	b := NewClientInfo(ClientDescriptor{})
	require.NoError(t, b.Bind(nil, "7.2.0"))

	require.False(t, a.CanReplace(b))
}

func TestClientInfoCanReplaceFirstRegisteredWinsOnTie(t *testing.T) {
	first := NewClientInfo(ClientDescriptor{IsExternal: true})
	require.NoError(t, first.Bind(nil, "7.1.0"))
	second := NewClientInfo(ClientDescriptor{IsExternal: true})
	require.NoError(t, second.Bind(nil, "7.1.0"))

	require.True(t, first.CanReplace(second))
	require.False(t, second.CanReplace(first))
}

func TestClientInfoCanReplaceNilIncumbent(t *testing.T) {
	info := NewClientInfo(ClientDescriptor{})
	require.True(t, info.CanReplace(nil))
}

func TestClientInfoFailedNeverReplaces(t *testing.T) {
	failed := NewClientInfo(ClientDescriptor{})
	ok := NewClientInfo(ClientDescriptor{})
	require.NoError(t, ok.Bind(nil, "7.1.0"))
	require.False(t, failed.CanReplace(ok))
}
