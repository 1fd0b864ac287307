package foundationdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newBoundDatabase(t *testing.T) *MultiVersionDatabase {
	t.Helper()
	api := newLocalOnlyApi(t)
	db, err := api.CreateDatabase("")
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.Eventually(t, func() bool {
		active, _ := db.state.DBVar().Get()
		return active != nil
	}, time.Second, time.Millisecond)
	return db
}

func TestMultiVersionTransactionSetGetCommit(t *testing.T) {
	db := newBoundDatabase(t)
	ctx := context.Background()

	tx := db.CreateTransaction()
	defer tx.Destroy()
	tx.Set(ctx, []byte("x"), []byte("1"))
	require.NoError(t, tx.Commit(ctx).Get(ctx))

	tx2 := db.CreateTransaction()
	defer tx2.Destroy()
	value, present, err := tx2.Get(ctx, []byte("x"), false).Get(ctx)
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, []byte("1"), value)
}

func TestMultiVersionTransactionReusesCachedInnerTransaction(t *testing.T) {
	db := newBoundDatabase(t)
	ctx := context.Background()

	tx := db.CreateTransaction()
	defer tx.Destroy()

	first, err := tx.getTransaction(ctx)
	require.NoError(t, err)
	second, err := tx.getTransaction(ctx)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestMultiVersionTransactionCancelIsTerminal(t *testing.T) {
	db := newBoundDatabase(t)
	ctx := context.Background()

	tx := db.CreateTransaction()
	defer tx.Destroy()
	tx.Cancel()

	_, err := tx.getTransaction(ctx)
	require.ErrorIs(t, err, ErrTransactionCancelled)
}

func TestMultiVersionTransactionResetKeepsPersistentOptions(t *testing.T) {
	db := newBoundDatabase(t)

	tx := db.CreateTransaction()
	defer tx.Destroy()
	require.NoError(t, tx.SetOption(NetworkOptionTraceEnable, []byte("x")))
	tx.Reset()

	require.Len(t, tx.persistentOptions.Snapshot(), 1)
}

func TestSetDefaultOptionsReplaysOntoNewTransactionsOnly(t *testing.T) {
	db := newBoundDatabase(t)
	ctx := context.Background()

	first := db.CreateTransaction()
	defer first.Destroy()
	_, err := first.getTransaction(ctx)
	require.NoError(t, err)

	require.NoError(t, db.SetDefaultOptions(NetworkOptionTraceEnable, []byte("x")))
	require.Len(t, db.state.pendingTxDefaults.Snapshot(), 1)

	second := db.CreateTransaction()
	defer second.Destroy()
	_, err = second.getTransaction(ctx)
	require.NoError(t, err)
}

func TestResetKeepsSameCachedInnerTransaction(t *testing.T) {
	db := newBoundDatabase(t)
	ctx := context.Background()

	tx := db.CreateTransaction()
	defer tx.Destroy()

	before, err := tx.getTransaction(ctx)
	require.NoError(t, err)
	tx.Reset()

	after, err := tx.getTransaction(ctx)
	require.NoError(t, err)
	require.Same(t, before, after)
}

func TestGetTransactionDestroysStaleInnerOnSwap(t *testing.T) {
	s := newBareDatabaseState(t)
	first := &fakeDatabase{}
	s.dbVar.Publish(first)

	tx := newMultiVersionTransaction(s)
	defer tx.Destroy()

	inner, err := tx.getTransaction(context.Background())
	require.NoError(t, err)
	require.False(t, first.destroyed)

	second := &fakeDatabase{}
	s.dbVar.Publish(second)

	_, err = tx.getTransaction(context.Background())
	require.NoError(t, err)
	require.True(t, inner.(*fakeTransaction).destroyed)
}

func TestMultiVersionTransactionGetWithoutBoundDatabaseFails(t *testing.T) {
	s := newBareDatabaseState(t)
	s.state = stateProbing
	tx := newMultiVersionTransaction(s)
	ctx := context.Background()

	_, _, err := tx.Get(ctx, []byte("a"), false).Get(ctx)
	require.ErrorIs(t, err, ErrClusterVersionChanged)
}
