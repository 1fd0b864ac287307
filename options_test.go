package foundationdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionListSnapshotPreservesOrder(t *testing.T) {
	l := newOptionList()
	l.Append(1, []byte("a"))
	l.Append(2, []byte("b"))
	l.Append(1, []byte("c"))

	snap := l.Snapshot()
	require.Equal(t, []Option{
		{Code: 1, Value: []byte("a")},
		{Code: 2, Value: []byte("b")},
		{Code: 1, Value: []byte("c")},
	}, snap)
}

func TestOptionListContains(t *testing.T) {
	l := newOptionList()
	l.Append(5, []byte("v"))
	require.True(t, l.Contains(5, []byte("v")))
	require.False(t, l.Contains(5, []byte("other")))
	require.False(t, l.Contains(6, []byte("v")))
}

func TestOptionListReset(t *testing.T) {
	l := newOptionList()
	l.Append(1, nil)
	l.Reset()
	require.Empty(t, l.Snapshot())
}

func TestOptionListSnapshotIsACopy(t *testing.T) {
	l := newOptionList()
	l.Append(1, nil)
	snap := l.Snapshot()
	snap[0].Code = 99
	require.Equal(t, 1, l.Snapshot()[0].Code)
}
