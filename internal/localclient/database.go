package localclient

import (
	"context"

	"github.com/sajjadrahnama/foundationdb/internal/client"
)

// Database wraps the shared store. It is always immediately ready — the
// local client never has a lazy-construction case.
type Database struct {
	store *store
}

func newDatabase(s *store) *Database {
	return &Database{store: s}
}

var _ client.Database = (*Database)(nil)

func (d *Database) CreateTransaction(_ context.Context) (client.Transaction, error) {
	return newTransaction(d.store), nil
}

func (d *Database) SetOption(int, []byte) error { return nil }

// GetServerProtocol reports the local client's fixed protocol version
// immediately if it differs from expectedVersion, otherwise blocks until
// ctx is done: the local store never changes protocol, so there is
// nothing to wait for beyond cancellation.
func (d *Database) GetServerProtocol(ctx context.Context, expectedVersion uint64) (int64, error) {
	if protocolVersionValue != expectedVersion {
		return int64(protocolVersionValue), nil
	}
	<-ctx.Done()
	return 0, ctx.Err()
}

func (d *Database) Destroy() {}
