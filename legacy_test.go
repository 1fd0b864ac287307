package foundationdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sajjadrahnama/foundationdb/internal/localclient"
)

func TestLegacyVersionMonitorWinsOnSuccessfulProbe(t *testing.T) {
	info := NewClientInfo(ClientDescriptor{LibraryPath: "(local)"})
	require.NoError(t, info.Bind(localclient.New(), "6.0.0"))

	monitor := newLegacyVersionMonitor(info, "", newMetrics(), newLogger())
	won := make(chan ProtocolVersion, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go monitor.run(ctx, won)

	select {
	case version := <-won:
		require.Equal(t, info.ProtocolVersion(), version)
	case <-time.After(time.Second):
		t.Fatal("legacy monitor never won")
	}
}

func TestLegacyVersionMonitorCloseStopsProbing(t *testing.T) {
	info := NewClientInfo(ClientDescriptor{LibraryPath: "(local)"})
	require.NoError(t, info.Bind(localclient.New(), "6.0.0"))

	monitor := newLegacyVersionMonitor(info, "", newMetrics(), newLogger())
	won := make(chan ProtocolVersion, 1)
	ctx := context.Background()

	go monitor.run(ctx, won)
	<-won

	monitor.close()
	require.True(t, monitor.isCancelled())
}
