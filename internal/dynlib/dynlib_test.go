package dynlib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMissingLibrary(t *testing.T) {
	_, err := Open("/nonexistent/path/libdoesnotexist.so", Options{})
	require.ErrorIs(t, err, ErrLibraryNotFound)
}

func TestSymbolOnClosedHandle(t *testing.T) {
	h := &Handle{path: "test", closed: true}
	_, err := h.Symbol("anything")
	require.ErrorIs(t, err, ErrClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	h := &Handle{path: "test", closed: true}
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}
