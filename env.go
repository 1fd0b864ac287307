package foundationdb

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// envOptionPrefix is the documented prefix scanned on setup_network.
// FDBNETWORKOPTIONS_TRACE_ENABLE=/tmp becomes network option
// "TRACE_ENABLE" with value "/tmp" (spec §6 "Environment variables");
// suffixes missing from networkOptionsByName are skipped.
const envOptionPrefix = "FDBNETWORKOPTIONS_"

// envOption is one network option discovered in the process environment.
type envOption struct {
	Name  string
	Value string
}

// loadEnvOptions optionally loads a .env file (best-effort — a missing
// file is not an error) and then scans os.Environ() for the documented
// prefix.
func loadEnvOptions() []envOption {
	_ = godotenv.Load(".env")

	var opts []envOption
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envOptionPrefix) {
			continue
		}
		opts = append(opts, envOption{
			Name:  strings.TrimPrefix(name, envOptionPrefix),
			Value: value,
		})
	}
	return opts
}
