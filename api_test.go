package foundationdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newLocalOnlyApi(t *testing.T) *MultiVersionApi {
	t.Helper()
	api := NewMultiVersionApi()
	require.NoError(t, api.SelectApiVersion(710))
	require.NoError(t, api.SetupNetwork())
	t.Cleanup(func() { _ = api.StopNetwork() })
	return api
}

func TestSelectApiVersionRejectsDistinctSecondCall(t *testing.T) {
	api := NewMultiVersionApi()
	require.NoError(t, api.SelectApiVersion(710))
	require.NoError(t, api.SelectApiVersion(710))
	require.ErrorIs(t, api.SelectApiVersion(700), ErrAPIVersionMismatch)
}

func TestSetupNetworkRejectsSecondCall(t *testing.T) {
	api := newLocalOnlyApi(t)
	require.ErrorIs(t, api.SetupNetwork(), ErrNetworkAlreadySetup)
}

func TestRunNetworkAndStopNetworkAreIdempotent(t *testing.T) {
	api := newLocalOnlyApi(t)
	require.NoError(t, api.RunNetwork())
	require.NoError(t, api.StopNetwork())
	require.NoError(t, api.StopNetwork())
}

func TestCreateDatabaseBindsActiveClientEventually(t *testing.T) {
	api := newLocalOnlyApi(t)
	db, err := api.CreateDatabase("")
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.Eventually(t, func() bool {
		active, _ := db.state.DBVar().Get()
		return active != nil
	}, time.Second, time.Millisecond)
}

func TestEndToEndSetGetCommitThroughFacade(t *testing.T) {
	api := newLocalOnlyApi(t)
	db, err := api.CreateDatabase("")
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.Eventually(t, func() bool {
		active, _ := db.state.DBVar().Get()
		return active != nil
	}, time.Second, time.Millisecond)

	tx := db.CreateTransaction()
	tx.Set(ctx, []byte("k"), []byte("v"))
	require.NoError(t, tx.Commit(ctx).Get(ctx))

	tx2 := db.CreateTransaction()
	value, present, err := tx2.Get(ctx, []byte("k"), false).Get(ctx)
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, []byte("v"), value)
}

func TestDisableMultiVersionClientAPIBypassesMonitor(t *testing.T) {
	api := NewMultiVersionApi()
	require.NoError(t, api.SelectApiVersion(710))
	api.DisableMultiVersionClientAPI()
	require.NoError(t, api.SetupNetwork())
	t.Cleanup(func() { _ = api.StopNetwork() })

	db, err := api.CreateDatabase("")
	require.NoError(t, err)

	active, _ := db.state.DBVar().Get()
	require.NotNil(t, active)

	ctx := context.Background()
	tx := db.CreateTransaction()
	tx.Set(ctx, []byte("bypass"), []byte("yes"))
	require.NoError(t, tx.Commit(ctx).Get(ctx))
}

func TestSetNetworkOptionAfterSetupAppliesToRegisteredClients(t *testing.T) {
	api := newLocalOnlyApi(t)
	require.NoError(t, api.SetNetworkOption(NetworkOptionTraceEnable, []byte("/tmp")))
}

func TestAddExternalLibraryDedupesByPath(t *testing.T) {
	api := NewMultiVersionApi()
	require.NoError(t, api.AddExternalLibrary("/tmp/fake.so"))
	require.NoError(t, api.AddExternalLibrary("/tmp/fake.so"))
	require.Len(t, api.externalClientDescriptions, 1)
}
