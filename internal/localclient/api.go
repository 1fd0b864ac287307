package localclient

import (
	"sync"

	"github.com/sajjadrahnama/foundationdb/internal/client"
)

// Api is the always-registered local client: network lifecycle calls are
// no-ops (there is no real network), and every database it creates shares
// one in-memory store for the life of the process, matching spec §6
// "Persistence: None".
type Api struct {
	mu      sync.Mutex
	running bool
	store   *store
}

// New constructs the local client's Api. One Api instance backs exactly
// one ClientInfo entry in the registry.
func New() *Api {
	return &Api{store: newStore()}
}

var _ client.Api = (*Api)(nil)

func (a *Api) SetNetworkOption(int, []byte) error { return nil }

func (a *Api) SetupNetwork() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = true
	return nil
}

func (a *Api) RunNetwork() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = true
	return nil
}

func (a *Api) StopNetwork() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = false
	return nil
}

func (a *Api) CreateDatabase(string) (client.Database, error) {
	return newDatabase(a.store), nil
}

// ClientVersion reports the fixed local-client version string.
func (a *Api) ClientVersion() string { return clientVersionString }
