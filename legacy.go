package foundationdb

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sajjadrahnama/foundationdb/internal/client"
)

// LegacyVersionMonitor probes a client that cannot report its protocol
// from the connect packet (≤5.0) by creating a database against it and
// issuing a read-version transaction: success proves the client speaks
// a protocol this cluster understands (spec §4.I).
type LegacyVersionMonitor struct {
	info            *ClientInfo
	clusterFilePath string
	metrics         *Metrics
	logger          *slog.Logger

	mu        sync.Mutex
	db        client.Database
	cancelled bool
	cancel    context.CancelFunc
}

func newLegacyVersionMonitor(info *ClientInfo, clusterFilePath string, metrics *Metrics, logger *slog.Logger) *LegacyVersionMonitor {
	return &LegacyVersionMonitor{
		info:            info,
		clusterFilePath: clusterFilePath,
		metrics:         metrics,
		logger:          component(logger, "legacy_version_monitor"),
	}
}

// run probes info's client with exponential backoff until it succeeds,
// ctx is cancelled, or close is called. On success it sends info's
// protocol version on won.
func (m *LegacyVersionMonitor) run(ctx context.Context, won chan<- ProtocolVersion) {
	probeCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
	defer cancel()

	backoff := 100 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		if m.isCancelled() {
			return
		}

		m.metrics.legacyProbes.Inc()
		if err := m.probe(probeCtx); err == nil {
			select {
			case won <- m.info.ProtocolVersion():
			default:
			}
			return
		} else if errors.Is(err, context.Canceled) {
			return
		} else {
			m.logger.Debug("legacy grv probe failed, retrying", "library", m.info.Descriptor.LibraryPath, "error", err)
		}

		select {
		case <-probeCtx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// probe creates (or reuses) a database against info's client and issues
// a read-version transaction, the standard "is this cluster reachable
// and speaking a protocol I understand" probe.
func (m *LegacyVersionMonitor) probe(ctx context.Context) error {
	m.mu.Lock()
	db := m.db
	m.mu.Unlock()

	if db == nil {
		var err error
		db, err = m.info.Handle().CreateDatabase(m.clusterFilePath)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.db = db
		m.mu.Unlock()
	}

	tx, err := db.CreateTransaction(ctx)
	if err != nil {
		return err
	}
	defer tx.Destroy()

	_, err = tx.GetReadVersion().Get(ctx)
	return err
}

func (m *LegacyVersionMonitor) isCancelled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}

// close cancels the in-flight probe and releases the probe database
// (spec §4.I "close() cancels the in-flight future and releases the
// probe database").
func (m *LegacyVersionMonitor) close() {
	m.mu.Lock()
	m.cancelled = true
	cancel := m.cancel
	db := m.db
	m.db = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if db != nil {
		db.Destroy()
	}
}
