package foundationdb

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvOptionsScansPrefixedVars(t *testing.T) {
	t.Setenv("FDBNETWORKOPTIONS_KNOB_MAX_DELAY", "1000")
	t.Setenv("UNRELATED_VAR", "ignored")

	opts := loadEnvOptions()
	var found bool
	for _, o := range opts {
		if o.Name == "KNOB_MAX_DELAY" {
			found = true
			require.Equal(t, "1000", o.Value)
		}
	}
	require.True(t, found)
}

func TestLoadEnvOptionsIgnoresUnprefixedVars(t *testing.T) {
	os.Unsetenv("FDBNETWORKOPTIONS_NOPE")
	t.Setenv("SOME_OTHER_VAR", "x")

	opts := loadEnvOptions()
	for _, o := range opts {
		require.NotEqual(t, "SOME_OTHER_VAR", o.Name)
	}
}
