package foundationdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNetworkOptionsByNameCoversDocumentedSuffixes(t *testing.T) {
	require.Equal(t, NetworkOptionKnob, networkOptionsByName["KNOB"])
	require.Equal(t, NetworkOptionExternalClientLibrary, networkOptionsByName["EXTERNAL_CLIENT_LIBRARY"])
	require.Equal(t, NetworkOptionDisableLocalClient, networkOptionsByName["DISABLE_LOCAL_CLIENT"])
}
