package capi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeToErrorSentinels(t *testing.T) {
	cases := map[int]error{
		CodeOK:                   nil,
		CodeTransactionTooOld:    ErrTransactionTooOld,
		CodeFutureVersion:        ErrFutureVersion,
		CodeNotCommitted:         ErrNotCommitted,
		CodeCommitUnknownResult:  ErrCommitUnknownResult,
		CodeTransactionCancelled: ErrTransactionCancelled,
		CodeNetworkNotSetup:      ErrNetworkNotSetup,
		CodeNetworkAlreadySetup:  ErrNetworkAlreadySetup,
	}
	for code, want := range cases {
		got := codeToError(code)
		if want == nil {
			require.NoError(t, got)
			continue
		}
		require.Equal(t, want, got)
	}
}

func TestCodeToErrorUnknownCodeWrapsClientError(t *testing.T) {
	err := codeToError(999999)
	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, 999999, ce.Code)
}

func TestTableRequireUnsupported(t *testing.T) {
	tbl := &Table{supported: map[string]bool{"transaction_get_versionstamp": false}}
	err := tbl.require("transaction_get_versionstamp")
	require.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestTableSupports(t *testing.T) {
	tbl := &Table{supported: map[string]bool{"create_cluster": true}}
	require.True(t, tbl.Supports("create_cluster"))
	require.False(t, tbl.Supports("cluster_destroy"))
}

func TestSymbolTableHasNoDuplicateNames(t *testing.T) {
	seen := make(map[string]bool, len(symbolTable))
	for _, e := range symbolTable {
		require.False(t, seen[e.name], "duplicate symbol entry %s", e.name)
		seen[e.name] = true
	}
}
