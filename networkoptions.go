package foundationdb

// Network option codes, passed through to the bound client's
// SetNetworkOption untouched (spec §6 "Option enums are stable integer
// codes"). Names mirror the environment-variable suffixes documented in
// spec §6.
const (
	NetworkOptionTraceEnable                    = 30
	NetworkOptionTraceLogGroup                  = 33
	NetworkOptionKnob                           = 40
	NetworkOptionTLSCertBytes                   = 42
	NetworkOptionTLSKeyBytes                    = 45
	NetworkOptionTLSVerifyPeers                 = 47
	NetworkOptionClientThreadsPerVersion        = 65
	NetworkOptionDisableClientStatisticsLogging = 70
	NetworkOptionExternalClientLibrary          = 73
	NetworkOptionExternalClientDirectory        = 74
	NetworkOptionCallbacksOnMainThread          = 76
	NetworkOptionDisableLocalClient             = 77
	NetworkOptionClientBufferSize               = 78
)

// networkOptionsByName maps the documented environment-variable suffix
// to its option code, used by MultiVersionApi when replaying envOption
// entries discovered by loadEnvOptions.
var networkOptionsByName = map[string]int{
	"TRACE_ENABLE":                      NetworkOptionTraceEnable,
	"TRACE_LOG_GROUP":                   NetworkOptionTraceLogGroup,
	"KNOB":                              NetworkOptionKnob,
	"TLS_CERT_BYTES":                    NetworkOptionTLSCertBytes,
	"TLS_KEY_BYTES":                     NetworkOptionTLSKeyBytes,
	"TLS_VERIFY_PEERS":                  NetworkOptionTLSVerifyPeers,
	"CLIENT_THREADS_PER_VERSION":        NetworkOptionClientThreadsPerVersion,
	"DISABLE_CLIENT_STATISTICS_LOGGING": NetworkOptionDisableClientStatisticsLogging,
	"EXTERNAL_CLIENT_LIBRARY":           NetworkOptionExternalClientLibrary,
	"EXTERNAL_CLIENT_DIRECTORY":         NetworkOptionExternalClientDirectory,
	"CALLBACKS_ON_MAIN_THREAD":          NetworkOptionCallbacksOnMainThread,
	"DISABLE_LOCAL_CLIENT":              NetworkOptionDisableLocalClient,
	"CLIENT_BUFFER_SIZE":                NetworkOptionClientBufferSize,
}
