package localclient

import (
	"context"
	"testing"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(t *testing.T) *Transaction {
	t.Helper()
	api := New()
	db, err := api.CreateDatabase("")
	require.NoError(t, err)
	tx, err := db.CreateTransaction(context.Background())
	require.NoError(t, err)
	return tx.(*Transaction)
}

func TestReadYourOwnWriteBeforeCommit(t *testing.T) {
	tx := newTestTransaction(t)
	tx.Set([]byte("a"), []byte("1"))

	value, present, err := tx.Get([]byte("a"), false).Get(context.Background())
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, []byte("1"), value)
}

func TestGetMissingKeyIsAbsent(t *testing.T) {
	tx := newTestTransaction(t)
	_, present, err := tx.Get([]byte("missing"), false).Get(context.Background())
	require.NoError(t, err)
	require.False(t, present)
}

func TestCommitMakesWritesVisibleToNewTransaction(t *testing.T) {
	api := New()
	db, err := api.CreateDatabase("")
	require.NoError(t, err)

	tx1, err := db.CreateTransaction(context.Background())
	require.NoError(t, err)
	tx1.Set([]byte("k"), []byte("v"))
	require.NoError(t, tx1.Commit().Get(context.Background()))

	tx2, err := db.CreateTransaction(context.Background())
	require.NoError(t, err)
	value, present, err := tx2.Get([]byte("k"), false).Get(context.Background())
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, []byte("v"), value)
}

func TestClearRemovesKey(t *testing.T) {
	api := New()
	db, _ := api.CreateDatabase("")
	tx1, _ := db.CreateTransaction(context.Background())
	tx1.Set([]byte("k"), []byte("v"))
	require.NoError(t, tx1.Commit().Get(context.Background()))

	tx2, _ := db.CreateTransaction(context.Background())
	tx2.Clear([]byte("k"))
	require.NoError(t, tx2.Commit().Get(context.Background()))

	tx3, _ := db.CreateTransaction(context.Background())
	_, present, err := tx3.Get([]byte("k"), false).Get(context.Background())
	require.NoError(t, err)
	require.False(t, present)
}

func TestGetRangeReturnsAscendingOrder(t *testing.T) {
	api := New()
	db, _ := api.CreateDatabase("")
	tx1, _ := db.CreateTransaction(context.Background())
	tx1.Set([]byte("b"), []byte("2"))
	tx1.Set([]byte("a"), []byte("1"))
	tx1.Set([]byte("c"), []byte("3"))
	require.NoError(t, tx1.Commit().Get(context.Background()))

	tx2, _ := db.CreateTransaction(context.Background())
	rows, more, err := tx2.GetRange(capi.RangeOptions{
		BeginKey: []byte("a"),
		EndKey:   []byte("z"),
	}).Get(context.Background())
	require.NoError(t, err)
	require.False(t, more)
	require.Len(t, rows, 3)
	require.Equal(t, []byte("a"), rows[0].Key)
	require.Equal(t, []byte("c"), rows[2].Key)
}

func TestAtomicOpAddAccumulates(t *testing.T) {
	tx := newTestTransaction(t)
	delta := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	tx.AtomicOp([]byte("counter"), delta, mutationTypeAdd)
	tx.AtomicOp([]byte("counter"), delta, mutationTypeAdd)

	value, present, err := tx.Get([]byte("counter"), false).Get(context.Background())
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, byte(2), value[0])
}

func TestGetVersionstampFailsBeforeCommit(t *testing.T) {
	tx := newTestTransaction(t)
	vs, err := tx.GetVersionstamp()
	require.NoError(t, err)
	_, err = vs.Get(context.Background())
	require.Error(t, err)
}

func TestGetVersionstampSucceedsAfterCommit(t *testing.T) {
	tx := newTestTransaction(t)
	tx.Set([]byte("k"), []byte("v"))
	require.NoError(t, tx.Commit().Get(context.Background()))

	vs, err := tx.GetVersionstamp()
	require.NoError(t, err)
	stamp, err := vs.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, stamp, 10)
}

func TestCancelBlocksFurtherReads(t *testing.T) {
	tx := newTestTransaction(t)
	tx.Cancel()
	_, _, err := tx.Get([]byte("a"), false).Get(context.Background())
	require.Error(t, err)
}

func TestResetClearsBufferedWrites(t *testing.T) {
	tx := newTestTransaction(t)
	tx.Set([]byte("a"), []byte("1"))
	tx.Reset()

	_, present, err := tx.Get([]byte("a"), false).Get(context.Background())
	require.NoError(t, err)
	require.False(t, present)
}

func TestSupportsAlwaysTrue(t *testing.T) {
	require.True(t, Supports("anything"))
}
