package foundationdb

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
	"github.com/sajjadrahnama/foundationdb/internal/client"
	"github.com/sajjadrahnama/foundationdb/internal/dlclient"
	"github.com/sajjadrahnama/foundationdb/internal/dynlib"
	"github.com/sajjadrahnama/foundationdb/internal/future"
	"github.com/sajjadrahnama/foundationdb/internal/localclient"
)

// MultiVersionApi is the process-wide lifecycle singleton (spec §4.H).
// Use NewMultiVersionApi to construct one; constructing a second is
// legal (nothing here is a true global), but only one should ever call
// SetupNetwork in a given process, since external per-thread library
// copies are unlink-on-close filesystem artifacts.
type MultiVersionApi struct {
	logger  *slog.Logger
	metrics *Metrics

	mu                         sync.Mutex
	apiVersion                 int
	apiVersionSelected         bool
	networkSetupDone           bool
	bypassMultiClient          bool
	localClientDisabled        bool
	callbacksOnMainThread      bool
	threadCount                int
	nextThread                 int
	externalClientDescriptions map[string]ClientDescriptor
	threadHooks                []func()

	options       *optionList
	setEnvOptions *optionList

	registry *clientRegistry

	setupGroup                 singleflight.Group
	apiVersionGroup            singleflight.Group
	externalClientsInitialized sync.Once
}

// NewMultiVersionApi constructs a lifecycle manager with no api version
// selected and no network set up yet.
func NewMultiVersionApi() *MultiVersionApi {
	return &MultiVersionApi{
		logger:                     component(newLogger(), "multi_version_api"),
		metrics:                    newMetrics(),
		threadCount:                1,
		externalClientDescriptions: make(map[string]ClientDescriptor),
		options:                    newOptionList(),
		setEnvOptions:              newOptionList(),
		registry:                   newClientRegistry(),
	}
}

// Metrics exposes the counters tracked by this manager, for an embedding
// application's scrape endpoint.
func (a *MultiVersionApi) Metrics() *Metrics { return a.metrics }

// SelectApiVersion records the api version callers must support. Must
// precede SetupNetwork; a second call with a different version is
// rejected (spec §4.H, §9 "forbid second initialization with a distinct
// error").
func (a *MultiVersionApi) SelectApiVersion(version int) error {
	_, err, _ := a.apiVersionGroup.Do("select", func() (interface{}, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.apiVersionSelected {
			if a.apiVersion != version {
				return nil, ErrAPIVersionMismatch
			}
			return nil, nil
		}
		a.apiVersion = version
		a.apiVersionSelected = true
		return nil, nil
	})
	return err
}

// ApiVersion returns the selected api version, or 0 if none has been
// selected yet.
func (a *MultiVersionApi) ApiVersion() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.apiVersion
}

// SetNetworkOption queues opt before setup, or applies it to every live
// client immediately after (spec §4.H).
func (a *MultiVersionApi) SetNetworkOption(code int, value []byte) error {
	a.mu.Lock()
	done := a.networkSetupDone
	alreadyFromEnv := a.setEnvOptions.Contains(code, value)
	a.mu.Unlock()

	if alreadyFromEnv {
		return nil
	}
	a.options.Append(code, value)
	if !done {
		return nil
	}
	return a.applyToEveryClient(code, value)
}

func (a *MultiVersionApi) applyToEveryClient(code int, value []byte) error {
	var firstErr error
	a.registry.Range(func(info *ClientInfo) bool {
		if handle := info.Handle(); handle != nil {
			if err := handle.SetNetworkOption(code, value); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return true
	})
	return firstErr
}

// AddExternalLibrary registers descriptor for path, deduplicating by
// path (spec §4.H).
func (a *MultiVersionApi) AddExternalLibrary(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.externalClientDescriptions[path]; exists {
		return nil
	}
	a.externalClientDescriptions[path] = ClientDescriptor{LibraryPath: path, IsExternal: true}
	return nil
}

// AddExternalLibraryDirectory registers every shared object found
// directly inside dir.
func (a *MultiVersionApi) AddExternalLibraryDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("foundationdb: read external library directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".so" && ext != ".dylib" && ext != ".dll" {
			continue
		}
		if err := a.AddExternalLibrary(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// SetThreadCount sets the number of per-thread physical copies made of
// each external library (spec §4.H "per-thread library copies").
func (a *MultiVersionApi) SetThreadCount(n int) {
	if n < 1 {
		n = 1
	}
	a.mu.Lock()
	a.threadCount = n
	a.mu.Unlock()
}

// DisableMultiVersionClientAPI restricts future CreateDatabase calls to
// the local client only (spec §4.H bypass path).
func (a *MultiVersionApi) DisableMultiVersionClientAPI() {
	a.mu.Lock()
	a.bypassMultiClient = true
	a.mu.Unlock()
}

// AddNetworkThreadCompletionHook registers hook against every client
// already constructed and every client constructed in the future (spec
// §9 Open Question, resolved as "propagate to future clients").
func (a *MultiVersionApi) AddNetworkThreadCompletionHook(hook func()) {
	a.mu.Lock()
	a.threadHooks = append(a.threadHooks, hook)
	a.mu.Unlock()

	a.registry.Range(func(info *ClientInfo) bool {
		info.AddThreadCompletionHook(hook)
		return true
	})
}

// SetupNetwork loads environment-variable options, constructs the local
// client and one per-thread copy of every registered external library,
// replays queued options onto each, and calls setupNetwork on each. It
// fails atomically: if the local client or any registered external
// library fails to bind, no client is registered and the manager is left
// as though SetupNetwork was never called (spec §4.H).
func (a *MultiVersionApi) SetupNetwork() error {
	_, err, _ := a.setupGroup.Do("setup", func() (interface{}, error) {
		a.mu.Lock()
		if a.networkSetupDone {
			a.mu.Unlock()
			return nil, ErrNetworkAlreadySetup
		}
		a.mu.Unlock()

		a.ingestEnvOptions()

		candidates, err := a.buildCandidates()
		if err != nil {
			return nil, err
		}

		for _, c := range candidates {
			for _, opt := range a.options.Snapshot() {
				if err := c.handle.SetNetworkOption(opt.Code, opt.Value); err != nil {
					a.logger.Warn("queued network option rejected at setup", "code", opt.Code, "error", err)
				}
			}
			if err := c.handle.SetupNetwork(); err != nil {
				return nil, fmt.Errorf("foundationdb: setup network for %s: %w", c.info.Descriptor.LibraryPath, err)
			}
		}

		for _, c := range candidates {
			if c.info.Descriptor.IsExternal {
				a.registry.Register(c.info)
				a.registry.AddThreadSibling(c.info)
			} else {
				a.registry.RegisterLocal(c.info)
			}
			a.metrics.clientsRegistered.Inc()
			for _, hook := range a.threadHooks {
				c.info.AddThreadCompletionHook(hook)
			}
		}

		a.mu.Lock()
		a.networkSetupDone = true
		a.mu.Unlock()
		return nil, nil
	})
	return err
}

// metricsDispatcher wraps a future.Dispatcher to count every fired
// completion callback toward Metrics (spec §4.J "futures completed,
// callbacks fired"). Only external clients go through a metricsDispatcher:
// the local client's futures complete synchronously on the calling
// goroutine and never pass through a future.Dispatcher at all.
type metricsDispatcher struct {
	inner   future.Dispatcher
	metrics *Metrics
}

func (d metricsDispatcher) Dispatch(fn func()) {
	d.metrics.callbacksFired.Inc()
	d.metrics.futuresCompleted.Inc()
	inner := d.inner
	if inner == nil {
		inner = future.InlineDispatcher{}
	}
	inner.Dispatch(fn)
}

// candidate pairs a freshly constructed ClientInfo with the handle it
// was bound to, before the candidate is committed to the registry.
type candidate struct {
	info   *ClientInfo
	handle client.Api
}

// buildCandidates constructs (but does not register) the local client
// and one copy of every registered external library.
func (a *MultiVersionApi) buildCandidates() ([]candidate, error) {
	var candidates []candidate

	a.mu.Lock()
	localDisabled := a.localClientDisabled
	descriptors := make([]ClientDescriptor, 0, len(a.externalClientDescriptions))
	for _, d := range a.externalClientDescriptions {
		descriptors = append(descriptors, d)
	}
	threadCount := a.threadCount
	a.mu.Unlock()

	if !localDisabled {
		info := NewClientInfo(ClientDescriptor{LibraryPath: "(local)", IsExternal: false})
		handle := localclient.New()
		if err := info.Bind(handle, localVersionString(handle)); err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{info: info, handle: handle})
	}

	for _, descriptor := range descriptors {
		for i := 0; i < threadCount; i++ {
			info, handle, err := a.buildExternalCandidate(descriptor, i)
			if err != nil {
				return nil, fmt.Errorf("foundationdb: load external client %s: %w", descriptor.LibraryPath, err)
			}
			candidates = append(candidates, candidate{info: info, handle: handle})
		}
	}
	return candidates, nil
}

// buildExternalCandidate loads descriptor.LibraryPath (via a disposable
// per-thread copy when threadIndex > 0) and binds a full capi.Table +
// dlclient.Api over it.
func (a *MultiVersionApi) buildExternalCandidate(descriptor ClientDescriptor, threadIndex int) (*ClientInfo, client.Api, error) {
	path := descriptor.LibraryPath
	opts := dynlib.Options{}
	if threadIndex > 0 {
		copyPath, err := copyLibraryForThread(path)
		if err != nil {
			return nil, nil, err
		}
		path = copyPath
		opts.UnlinkOnClose = true
	}

	dl, err := dynlib.Open(path, opts)
	if err != nil {
		return nil, nil, err
	}
	table, err := capi.Bind(dl)
	if err != nil {
		dl.Close()
		return nil, nil, err
	}

	var dispatcher future.Dispatcher
	a.mu.Lock()
	if a.callbacksOnMainThread {
		dispatcher = future.InlineDispatcher{}
	}
	a.mu.Unlock()
	dispatcher = metricsDispatcher{inner: dispatcher, metrics: a.metrics}

	handle := dlclient.New(table, dispatcher)
	info := NewClientInfo(descriptor)
	if err := info.Bind(handle, table.GetClientVersion()); err != nil {
		table.Release()
		dl.Close()
		return nil, nil, err
	}
	return info, handle, nil
}

// copyLibraryForThread makes a disposable physical copy of path, named
// with a random suffix so concurrent per-thread copies never collide
// (spec §4.H "per-thread library copies"; spec SPEC_FULL §4.K).
func copyLibraryForThread(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dstPath := fmt.Sprintf("%s.%s%s", path, uuid.NewString(), filepath.Ext(path))
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o755)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", err
	}
	return dstPath, nil
}

func localVersionString(handle client.Api) string {
	type versioned interface{ ClientVersion() string }
	if v, ok := handle.(versioned); ok {
		return v.ClientVersion()
	}
	return "0.0.0"
}

// ingestEnvOptions loads loadEnvOptions() and records each as an
// environment-sourced option, deduplicating against anything already
// explicitly queued with the same (code, value) (spec §6 "Environment
// variables").
func (a *MultiVersionApi) ingestEnvOptions() {
	for _, opt := range loadEnvOptions() {
		code, ok := networkOptionsByName[opt.Name]
		if !ok {
			a.logger.Debug("unrecognized environment network option", "name", opt.Name)
			continue
		}
		value := []byte(opt.Value)
		if a.options.Contains(code, value) {
			continue
		}
		a.options.Append(code, value)
		a.setEnvOptions.Append(code, value)
	}
}

// RunNetwork calls RunNetwork on the local client and every external
// client concurrently, returning once every call has returned (spec
// §4.H). The first error is reported; every client still runs to
// completion before RunNetwork returns.
func (a *MultiVersionApi) RunNetwork() error {
	var g errgroup.Group
	a.registry.Range(func(info *ClientInfo) bool {
		handle := info.Handle()
		g.Go(func() error { return handle.RunNetwork() })
		return true
	})
	return g.Wait()
}

// StopNetwork broadcasts StopNetwork to every client. Idempotent: a
// second call has the same effect as the first (spec §8 "Idempotent
// stop").
func (a *MultiVersionApi) StopNetwork() error {
	var firstErr error
	a.registry.Range(func(info *ClientInfo) bool {
		if err := info.Handle().StopNetwork(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// CreateDatabase returns a MultiVersionDatabase bound to the client pool
// (or, if DisableMultiVersionClientAPI was called, to the local client
// only).
func (a *MultiVersionApi) CreateDatabase(clusterFilePath string) (*MultiVersionDatabase, error) {
	a.mu.Lock()
	bypass := a.bypassMultiClient
	a.mu.Unlock()

	if bypass {
		local := a.registry.local
		if local == nil {
			return nil, ErrNetworkNotSetup
		}
		db, err := local.Handle().CreateDatabase(clusterFilePath)
		if err != nil {
			return nil, err
		}
		state := &DatabaseState{
			clusterFilePath:     clusterFilePath,
			registry:            a.registry,
			pendingOptions:      newOptionList(),
			pendingTxDefaults:   newOptionList(),
			metrics:             a.metrics,
			logger:              a.logger,
			state:               stateBound,
			currentProtocolVersion: local.ProtocolVersion(),
			versionMonitorDB:    db,
			legacyDBConnections: make(map[ProtocolVersion]client.Database),
			cancelMonitor:       func() {},
			dbVar:               newDBVar(),
		}
		state.dbVar.Publish(db)
		return newMultiVersionDatabase(state), nil
	}

	a.externalClientsInitialized.Do(func() {
		a.registry.Range(func(info *ClientInfo) bool {
			if info == a.registry.local || info.Failed() {
				return true
			}
			if _, err := info.Handle().CreateDatabase(clusterFilePath); err != nil {
				a.logger.Warn("external client initialization failed", "library", info.Descriptor.LibraryPath, "error", err)
			}
			return true
		})
	})

	a.mu.Lock()
	threadIndex := a.nextThread
	if a.threadCount > 0 {
		a.nextThread = (a.nextThread + 1) % a.threadCount
	}
	a.mu.Unlock()

	state, err := newDatabaseState(clusterFilePath, a.registry, a.metrics, a.logger, threadIndex)
	if err != nil {
		return nil, err
	}
	return newMultiVersionDatabase(state), nil
}
