package dlclient

import (
	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/sajjadrahnama/foundationdb/internal/client"
	"github.com/sajjadrahnama/foundationdb/internal/future"
)

// Api is the per-loaded-library client.Api implementation: a thin
// forwarding layer over a bound capi.Table plus the dispatcher every
// future produced from this client will use.
type Api struct {
	table      *capi.Table
	dispatcher future.Dispatcher
}

// New wraps table as a client.Api, completing futures via dispatcher
// (nil means complete inline, on whichever thread the library's callback
// fires on).
func New(table *capi.Table, dispatcher future.Dispatcher) *Api {
	return &Api{table: table, dispatcher: dispatcher}
}

var _ client.Api = (*Api)(nil)

func (a *Api) SetNetworkOption(option int, value []byte) error {
	return a.table.SetNetworkOption(option, value)
}

func (a *Api) SetupNetwork() error { return a.table.SetupNetwork() }
func (a *Api) RunNetwork() error   { return a.table.RunNetwork() }
func (a *Api) StopNetwork() error  { return a.table.StopNetwork() }

func (a *Api) CreateDatabase(clusterFilePath string) (client.Database, error) {
	handle, err := a.table.CreateDatabase(clusterFilePath)
	if err != nil {
		return nil, err
	}
	return NewDatabase(a.table, handle, a.dispatcher), nil
}

// ClientVersion exposes the bound library's version string. (MultiVersionApi
// passes the table's version string to ClientInfo.Bind, which parses it
// into a ProtocolVersion.)
func (a *Api) ClientVersion() string {
	return a.table.GetClientVersion()
}
