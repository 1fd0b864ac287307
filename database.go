package foundationdb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sajjadrahnama/foundationdb/internal/client"
)

// bindingState is one of Probing, Bound, or Closed (spec §4.F).
type bindingState int

const (
	stateProbing bindingState = iota
	stateBound
	stateClosed
)

// dbVar is the lock-free single-writer/multi-reader broadcast cell
// publishing the current active database. Readers call Get for the
// latest value and Changed for a channel that closes on the next
// publish — the same shape as a Go context.Done(), reused deliberately
// since that pattern is already the idiomatic "subscribe to one future
// event" primitive.
type dbVar struct {
	current atomic.Pointer[dbVarValue]
}

type dbVarValue struct {
	db      client.Database
	changed chan struct{}
}

func newDBVar() *dbVar {
	v := &dbVar{}
	v.current.Store(&dbVarValue{changed: make(chan struct{})})
	return v
}

// Get returns the currently published database, which may be nil during
// Probing, along with a channel that closes when the next publish
// happens.
func (v *dbVar) Get() (client.Database, <-chan struct{}) {
	cur := v.current.Load()
	return cur.db, cur.changed
}

// Publish installs db as current and wakes every subscriber blocked on
// the previous value's Changed channel.
func (v *dbVar) Publish(db client.Database) {
	old := v.current.Swap(&dbVarValue{db: db, changed: make(chan struct{})})
	close(old.changed)
}

// DatabaseState is the protocol-version monitor and client-selection
// state machine backing one MultiVersionDatabase (spec §4.F).
type DatabaseState struct {
	clusterFilePath string
	registry        *clientRegistry
	pendingOptions  *optionList
	pendingTxDefaults *optionList
	metrics         *Metrics
	logger          *slog.Logger
	threadIndex     int

	mu                     sync.Mutex
	state                  bindingState
	currentProtocolVersion ProtocolVersion
	versionMonitorDB       client.Database
	legacyDBConnections    map[ProtocolVersion]client.Database
	legacyMonitors         []*LegacyVersionMonitor
	cancelMonitor          context.CancelFunc

	dbVar *dbVar
}

// newDatabaseState constructs a DatabaseState in Probing, launches the
// protocol-version monitor, and returns once the initial version-monitor
// database has been requested from the local client (spec §4.F
// "Initial").
func newDatabaseState(clusterFilePath string, registry *clientRegistry, metrics *Metrics, logger *slog.Logger, threadIndex int) (*DatabaseState, error) {
	local := registry.local
	if local == nil {
		return nil, fmt.Errorf("foundationdb: no local client registered")
	}
	versionMonitorDB, err := local.Handle().CreateDatabase(clusterFilePath)
	if err != nil {
		return nil, fmt.Errorf("foundationdb: create version-monitor database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &DatabaseState{
		clusterFilePath:     clusterFilePath,
		registry:            registry,
		pendingOptions:      newOptionList(),
		pendingTxDefaults:   newOptionList(),
		metrics:             metrics,
		logger:              component(logger, "database_state"),
		threadIndex:         threadIndex,
		state:               stateProbing,
		versionMonitorDB:    versionMonitorDB,
		legacyDBConnections: make(map[ProtocolVersion]client.Database),
		cancelMonitor:       cancel,
		dbVar:               newDBVar(),
	}
	go s.monitorProtocolVersion(ctx)
	return s, nil
}

// DBVar returns the broadcast cell subscribers use to observe the active
// database and its replacement.
func (s *DatabaseState) DBVar() *dbVar { return s.dbVar }

// CurrentProtocolVersion returns the version the currently bound client
// speaks, or the zero value while Probing.
func (s *DatabaseState) CurrentProtocolVersion() ProtocolVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentProtocolVersion
}

// monitorProtocolVersion runs on its own goroutine (spec's "main thread"
// model) issuing a GetServerProtocol probe against versionMonitorDB and
// reacting to protocol changes until ctx is cancelled or a probe fails;
// on a probe failure it starts the legacy version monitors and returns.
func (s *DatabaseState) monitorProtocolVersion(ctx context.Context) {
	backoff := 100 * time.Millisecond
	const maxBackoff = 10 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		version, err := s.probeServerProtocol(ctx)
		if err != nil {
			s.metrics.probeFailures.Inc()
			s.logger.Warn("server protocol probe failed, falling back to legacy monitors", "error", err)
			s.startLegacyVersionMonitors(ctx)
			return
		}

		s.handleObservedVersion(version)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// probeServerProtocol asks the current version-monitor database for the
// server's protocol version. The local client always supports this
// (spec §6 database_get_server_protocol is optional for external
// clients only); a real dynamic-library client that lacks it returns
// ErrUnsupportedOperation, which callers treat as "fall back to legacy".
type protocolReporter interface {
	GetServerProtocol(ctx context.Context, expectedVersion uint64) (int64, error)
}

func (s *DatabaseState) probeServerProtocol(ctx context.Context) (ProtocolVersion, error) {
	s.mu.Lock()
	db := s.versionMonitorDB
	expected := uint64(s.currentProtocolVersion)
	s.mu.Unlock()
	reporter, ok := db.(protocolReporter)
	if !ok {
		return 0, ErrUnsupportedOperation
	}
	raw, err := reporter.GetServerProtocol(ctx, expected)
	if err != nil {
		return 0, err
	}
	return ProtocolVersion(raw), nil
}

// handleObservedVersion implements spec §4.F's "Protocol observed"
// transitions.
func (s *DatabaseState) handleObservedVersion(observed ProtocolVersion) {
	norm := observed.Normalized()

	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	if s.state == stateBound && s.currentProtocolVersion.Normalized() == norm {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	info, ok := s.registry.Lookup(observed)
	if !ok || info.Failed() {
		s.logger.Debug("observed protocol version has no live client, staying in probe", "version", observed)
		s.retireActiveDatabase()
		return
	}
	target := s.registry.SelectThreadSibling(info, s.threadIndex)

	newDB, err := target.Handle().CreateDatabase(s.clusterFilePath)
	if err != nil {
		target.MarkFailed()
		s.logger.Warn("create_database failed for newly observed client, marking failed", "error", err)
		return
	}
	s.updateDatabase(newDB, observed)
}

// legacyVersionThreshold marks the boundary below which a client
// connection must never be closed, even when it stops being active
// (spec §3 "retained because versions older than 6.1 do not cope well
// with close").
var legacyVersionThreshold = ProtocolVersion(uint64(6)<<32 | uint64(1)<<16)

// retireActiveDatabase implements the "transition to Probing with
// active_db cleared" half of spec §4.F's "Protocol observed in
// Bound(v), new v′ ≠ v" transition: publishes nil so subscribers wake,
// but preserves the outgoing connection in legacyDBConnections instead
// of destroying it if its version predates legacyVersionThreshold.
func (s *DatabaseState) retireActiveDatabase() {
	s.mu.Lock()
	outgoing, _ := s.dbVar.Get()
	outgoingVersion := s.currentProtocolVersion
	s.state = stateProbing
	s.mu.Unlock()

	if outgoing == nil {
		return
	}
	if outgoingVersion.Normalized() < legacyVersionThreshold.Normalized() {
		s.mu.Lock()
		s.legacyDBConnections[outgoingVersion] = outgoing
		s.mu.Unlock()
	} else {
		outgoing.Destroy()
	}
	s.dbVar.Publish(nil)
}

// updateDatabase implements spec §4.F's updateDatabase: apply
// pending_options, publish, signal changed.
func (s *DatabaseState) updateDatabase(newDB client.Database, version ProtocolVersion) {
	for _, opt := range s.pendingOptions.Snapshot() {
		if err := newDB.SetOption(opt.Code, opt.Value); err != nil {
			s.logger.Warn("pending option application failed on swap", "code", opt.Code, "error", err)
		}
	}

	s.mu.Lock()
	s.state = stateBound
	s.currentProtocolVersion = version
	s.mu.Unlock()

	s.dbVar.Publish(newDB)
	s.metrics.activeSwaps.Inc()
	s.logger.Info("bound active database", "protocol_version", version)
}

// startLegacyVersionMonitors implements the ≤5.0 fallback (spec §4.F,
// §4.I): one LegacyVersionMonitor per registered non-local client, first
// to succeed claims the cluster.
func (s *DatabaseState) startLegacyVersionMonitors(ctx context.Context) {
	won := make(chan ProtocolVersion, 1)

	var monitors []*LegacyVersionMonitor
	s.registry.Range(func(info *ClientInfo) bool {
		if info == s.registry.local || info.Failed() {
			return true
		}
		monitor := newLegacyVersionMonitor(info, s.clusterFilePath, s.metrics, s.logger)
		monitors = append(monitors, monitor)
		go monitor.run(ctx, won)
		return true
	})

	s.mu.Lock()
	s.legacyMonitors = monitors
	s.mu.Unlock()

	select {
	case <-ctx.Done():
	case version := <-won:
		for _, m := range monitors {
			if m.info.ProtocolVersion() != version {
				m.close()
			}
		}
		s.handleObservedVersion(version)
	}
}

// ForceObservedVersion drives the state machine as though the protocol
// monitor had just observed version — the hook spec §8's "force version
// monitor to report v2" scenario needs to exercise a swap without a real
// external client reporting it over the wire.
func (s *DatabaseState) ForceObservedVersion(version ProtocolVersion) {
	s.handleObservedVersion(version)
}

// Close implements spec §4.F's close(): terminal, cancels the version
// monitor and every legacy monitor, drops db references except
// legacy-retained ones.
func (s *DatabaseState) Close() {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	s.state = stateClosed
	monitors := s.legacyMonitors
	active, _ := s.dbVar.Get()
	retained := active != nil && isLegacyRetained(s.legacyDBConnections, active)
	s.mu.Unlock()

	if s.cancelMonitor != nil {
		s.cancelMonitor()
	}
	for _, m := range monitors {
		m.close()
	}
	if active != nil && !retained {
		active.Destroy()
	}
	s.dbVar.Publish(nil)
}

func isLegacyRetained(retained map[ProtocolVersion]client.Database, db client.Database) bool {
	for _, r := range retained {
		if r == db {
			return true
		}
	}
	return false
}

// MultiVersionDatabase is the application-facing database handle: a
// thin wrapper over DatabaseState that produces MultiVersionTransaction
// proxies (spec §4.F/§4.G).
type MultiVersionDatabase struct {
	state *DatabaseState
}

func newMultiVersionDatabase(state *DatabaseState) *MultiVersionDatabase {
	return &MultiVersionDatabase{state: state}
}

// CreateTransaction returns a proxy transaction bound to whatever
// database is currently active, re-resolving lazily on each access
// (spec §4.G).
func (d *MultiVersionDatabase) CreateTransaction() *MultiVersionTransaction {
	return newMultiVersionTransaction(d.state)
}

// SetOption records opt in pending_options and applies it to the
// currently bound database, if any (spec §3 "pending_options: applied on
// every (re)bound database").
func (d *MultiVersionDatabase) SetOption(code int, value []byte) error {
	d.state.pendingOptions.Append(code, value)
	if db, _ := d.state.dbVar.Get(); db != nil {
		return db.SetOption(code, value)
	}
	return nil
}

// SetDefaultOptions records opt in pending_transaction_defaults, replayed
// onto every transaction this database creates from now on — transactions
// already created are unaffected (spec §3 pending_transaction_defaults;
// original_source's MultiVersionTransaction::setDefaultOptions).
func (d *MultiVersionDatabase) SetDefaultOptions(code int, value []byte) error {
	d.state.pendingTxDefaults.Append(code, value)
	return nil
}

// Close tears down the DatabaseState backing this handle.
func (d *MultiVersionDatabase) Close() {
	d.state.Close()
}
