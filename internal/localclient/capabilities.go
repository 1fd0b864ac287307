package localclient

// clientVersionString is reported through Api.ClientVersion so
// ClientInfo.Bind can parse a ProtocolVersion
// for the local client exactly as it would for a dynamically loaded one.
// The local client always claims the newest protocol the facade knows
// about — it has no separate wire format to version.
const clientVersionString = "7.4.0"

// protocolVersionValue is clientVersionString encoded the same way the
// root package's parseProtocolVersion encodes a "major.minor.patch"
// client version string: (major<<32)|(minor<<16)|(patch<<4). Kept in
// sync with clientVersionString by hand since localclient cannot import
// the root package (it would be a cycle) to share the parser.
const protocolVersionValue = uint64(7)<<32 | uint64(4)<<16

// Supports reports that the local client implements every optional
// operation unconditionally: unlike a dynamically loaded library, it has
// no ABI surface that could be missing an entry point. Mirrors the
// dKV db.Feature bitset's purpose (declare what a backend can do) without
// importing that package, since here every feature bit is always set.
func Supports(string) bool { return true }
