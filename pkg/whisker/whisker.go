package whisker

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/whisker/internal/adapters/fs"
	serialAdapter "github.com/bft-labs/whisker/internal/adapters/serial"
	"github.com/bft-labs/whisker/internal/app"
	"github.com/bft-labs/whisker/internal/domain"
	"github.com/bft-labs/whisker/internal/ports"
	"github.com/bft-labs/whisker/pkg/frame"
	"github.com/bft-labs/whisker/pkg/log"
	"github.com/bft-labs/whisker/pkg/queue"
)

// Pipeline ingests samples from a single serial device.
// Use New() to create an instance, then Start() to connect.
type Pipeline struct {
	config     Config
	lifecycle  *app.Lifecycle
	logger     ports.Logger
	emitter    *eventEmitterWrapper
	discovery  *app.Discovery
	opener     ports.PortOpener
	statusRepo ports.StatusRepository
	plugins    []Plugin
	reader     *Reader

	// mu serializes Start, Stop and Rediscover. ctx is the session context,
	// nil while no session is active.
	mu  sync.Mutex
	ctx context.Context

	conn atomic.Pointer[connection]

	infoMu    sync.RWMutex
	runID     string
	startedAt time.Time
	lastErr   error
	previous  *Status
}

// connection is an open device with the worker and queue serving it.
type connection struct {
	info      domain.PortInfo
	port      ports.Port
	worker    *app.Worker
	queue     *queue.Queue[frame.Sample]
	closeOnce sync.Once
}

func (c *connection) close() {
	c.closeOnce.Do(func() { _ = c.port.Close() })
}

// New creates a pipeline in StateStopped.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var logger ports.Logger = log.NewNoopLogger()
	if o.logger != nil {
		logger = o.logger
	}
	enum := o.enumerator
	if enum == nil {
		enum = serialAdapter.NewEnumerator()
	}
	opener := o.opener
	if opener == nil {
		opener = serialAdapter.NewOpener()
	}
	if o.statusDir != "" {
		cfg.StatusDir = o.statusDir
	}

	p := &Pipeline{
		config:    cfg,
		logger:    logger,
		discovery: app.NewDiscovery(enum, cfg.Port, logger),
		opener:    opener,
		plugins:   o.plugins,
	}
	p.reader = &Reader{p: p}
	if cfg.StatusDir != "" {
		p.statusRepo = fs.NewStatusFileRepository(cfg.StatusDir)
		p.loadPrevious()
	}
	p.emitter = &eventEmitterWrapper{handler: o.eventHandler, onStateChange: p.statusChanged}
	p.lifecycle = app.NewLifecycle(logger, p.emitter)

	return p, nil
}

// loadPrevious reads the status left by an earlier process.
func (p *Pipeline) loadPrevious() {
	st, err := p.statusRepo.Load(context.Background())
	if err != nil {
		p.logger.Warn("failed to load previous status", ports.Err(err))
		return
	}
	if st.IsEmpty() {
		return
	}
	p.previous = &st
	p.logger.Info("previous run found",
		ports.String("run_id", st.RunID),
		ports.String("state", st.State),
		ports.String("last_error", st.LastError))
}

// Previous returns the status.json found in the status directory when the
// pipeline was created, if any.
func (p *Pipeline) Previous() (Status, bool) {
	p.infoMu.RLock()
	defer p.infoMu.RUnlock()
	if p.previous == nil {
		return Status{}, false
	}
	return *p.previous, true
}

// Start initializes plugins, discovers the device and starts ingestion in
// the background.
//
// A missing, ambiguous or unopenable device is not an error: Start returns
// nil, the pipeline moves to StateDisabled, and Err reports the cause.
// Start on a Disabled or Crashed pipeline retries discovery.
// The provided context bounds the whole session: once it is done the
// pipeline stops as if Stop had been called and Err reports ctx.Err().
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		if !p.Status().NeedsDevice() {
			return domain.ErrAlreadyRunning
		}
		return p.reconnectLocked("Start() called")
	}
	if !p.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	p.infoMu.Lock()
	p.runID = uuid.NewString()
	p.startedAt = time.Now().UTC()
	p.lastErr = nil
	p.infoMu.Unlock()

	if err := p.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		DeviceDir:  p.config.DeviceDir,
		Port:       p.config.Port,
		Logger:     p.logger,
		Status:     p.Status,
		Rediscover: p.Rediscover,
	}
	for i, pl := range p.plugins {
		if err := pl.Initialize(runCtx, pluginCfg); err != nil {
			p.logger.Error("plugin initialization failed",
				ports.String("plugin", pl.Name()),
				ports.Err(err))
			p.lifecycle.Cancel()
			p.shutdownPlugins(p.plugins[:i])
			p.setErr(err)
			_ = p.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+pl.Name())
			return err
		}
		p.logger.Info("plugin initialized", ports.String("plugin", pl.Name()))
	}

	p.ctx = runCtx

	if p.statusRepo != nil {
		p.lifecycle.AddWorker()
		go p.statusLoop(runCtx)
	}
	go p.watchSession(runCtx)

	p.connectLocked(runCtx)
	return nil
}

// watchSession stops the pipeline when the Start context ends on its own.
func (p *Pipeline) watchSession(ctx context.Context) {
	<-ctx.Done()

	p.mu.Lock()
	if p.ctx != ctx {
		// Stop already ended this session.
		p.mu.Unlock()
		return
	}
	p.setErr(ctx.Err())
	if err := p.beginStopLocked("context done"); err != nil {
		p.mu.Unlock()
		p.logger.Error("failed to stop after context done", ports.Err(err))
		return
	}
	p.mu.Unlock()

	_ = p.finishStop()
}

// Rediscover retries discovery and open when the pipeline is Disabled or
// Crashed. In any other started state it does nothing.
// Plugins must not call it from Initialize.
func (p *Pipeline) Rediscover(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return domain.ErrNotRunning
	}
	if !p.Status().NeedsDevice() {
		return nil
	}
	return p.reconnectLocked("rediscover")
}

func (p *Pipeline) reconnectLocked(reason string) error {
	if err := p.lifecycle.TransitionTo(app.StateStarting, reason); err != nil {
		return err
	}
	if old := p.conn.Swap(nil); old != nil {
		old.close()
	}
	p.connectLocked(p.ctx)
	return nil
}

// connectLocked selects and opens the device, then starts the worker. It
// leaves the pipeline Running or Disabled.
func (p *Pipeline) connectLocked(ctx context.Context) {
	info, err := p.discovery.Select(ctx)
	if err != nil {
		p.disable(err)
		return
	}

	port, err := p.opener.Open(info.Name, p.portMode())
	if err != nil {
		p.disable(&domain.OpenError{Port: info.Name, Err: err})
		return
	}

	q := queue.New[frame.Sample](queue.Config{
		Capacity:    p.config.QueueCapacity,
		Policy:      p.config.OverflowPolicy,
		PushTimeout: p.config.PushTimeout,
	})
	workerCfg := app.DefaultWorkerConfig()
	workerCfg.MaxReadErrors = p.config.MaxReadErrors
	source := serialAdapter.NewLineReader(port, p.config.MaxLineBytes)

	c := &connection{
		info:   info,
		port:   port,
		worker: app.NewWorker(workerCfg, source, q, p.logger, p.emitter),
		queue:  q,
	}
	p.conn.Store(c)
	p.setErr(nil)

	if err := p.lifecycle.TransitionTo(app.StateRunning, "connected to "+info.Name); err != nil {
		p.logger.Error("failed to transition to running", ports.Err(err))
		c.close()
		return
	}

	p.lifecycle.AddWorker()
	go p.runWorker(ctx, c)
}

func (p *Pipeline) runWorker(ctx context.Context, c *connection) {
	defer p.lifecycle.WorkerDone()

	err := c.worker.Run(ctx)
	c.close()
	if err != nil {
		p.logger.Error("ingestion stopped",
			ports.String("port", c.info.Name),
			ports.Err(err))
		p.setErr(err)
		_ = p.lifecycle.TransitionTo(app.StateCrashed, err.Error())
	}
}

func (p *Pipeline) disable(err error) {
	p.setErr(err)
	p.logger.Warn("pipeline disabled", ports.Err(err))
	_ = p.lifecycle.TransitionTo(app.StateDisabled, err.Error())
}

func (p *Pipeline) portMode() ports.PortMode {
	mode := ports.DefaultPortMode()
	mode.BaudRate = p.config.BaudRate
	mode.ReadTimeout = p.config.ReadTimeout
	return mode
}

// Stop ends the session: it cancels the worker, closes the port, shuts
// plugins down in reverse order and waits up to app.ShutdownTimeout.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if p.ctx == nil || !p.lifecycle.CanStop() {
		p.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := p.beginStopLocked("Stop() called"); err != nil {
		p.mu.Unlock()
		return err
	}
	p.mu.Unlock()

	return p.finishStop()
}

// beginStopLocked moves to Stopping, ends the session context and closes
// the port. The caller holds mu.
func (p *Pipeline) beginStopLocked(reason string) error {
	if err := p.lifecycle.TransitionTo(app.StateStopping, reason); err != nil {
		return err
	}
	p.ctx = nil
	p.lifecycle.Cancel()
	if c := p.conn.Load(); c != nil {
		c.close()
	}
	return nil
}

// finishStop waits for the session goroutines and shuts plugins down. It
// runs without mu so plugins may call Rediscover meanwhile.
func (p *Pipeline) finishStop() error {
	err := p.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	p.shutdownPlugins(p.plugins)
	p.conn.Store(nil)

	if err != nil {
		p.setErr(err)
		_ = p.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = p.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

func (p *Pipeline) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		pl := plugins[i]
		if err := pl.Shutdown(ctx); err != nil {
			p.logger.Error("plugin shutdown failed",
				ports.String("plugin", pl.Name()),
				ports.Err(err))
		} else {
			p.logger.Info("plugin shutdown complete", ports.String("plugin", pl.Name()))
		}
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (p *Pipeline) Status() State {
	return convertState(p.lifecycle.State())
}

// Err returns why the pipeline is Disabled or Crashed, or why its session
// ended, or nil.
// Discovery outcomes match ErrDiscovery; open failures match ErrOpenFailed.
func (p *Pipeline) Err() error {
	p.infoMu.RLock()
	defer p.infoMu.RUnlock()
	return p.lastErr
}

func (p *Pipeline) setErr(err error) {
	p.infoMu.Lock()
	p.lastErr = err
	p.infoMu.Unlock()
}

// Reader returns the consumer end of the sample queue. It fails when no
// device is connected, with the cause when one is known. The returned
// Reader stays valid across reconnects.
func (p *Pipeline) Reader() (*Reader, error) {
	if p.conn.Load() != nil {
		return p.reader, nil
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return nil, domain.ErrNotRunning
}

// Drain returns every queued sample, oldest first, or nil when there is no
// device or nothing new arrived.
func (p *Pipeline) Drain() []Sample {
	return p.reader.Drain()
}

// Port returns the connected device.
func (p *Pipeline) Port() (PortInfo, bool) {
	if c := p.conn.Load(); c != nil {
		return c.info, true
	}
	return PortInfo{}, false
}

// Stats returns the counters of the current connection.
func (p *Pipeline) Stats() Stats {
	if c := p.conn.Load(); c != nil {
		return c.worker.Stats()
	}
	return Stats{}
}

// Ports lists the serial devices the pipeline would choose from.
func (p *Pipeline) Ports(ctx context.Context) ([]PortInfo, error) {
	return p.discovery.List(ctx)
}

// Snapshot returns the status as written to status.json.
func (p *Pipeline) Snapshot() Status {
	p.infoMu.RLock()
	st := Status{
		RunID:     p.runID,
		StartedAt: p.startedAt,
	}
	if p.lastErr != nil {
		st.LastError = p.lastErr.Error()
	}
	p.infoMu.RUnlock()

	st.State = strings.ToLower(p.Status().String())
	st.Stats = p.Stats()
	st.UpdatedAt = time.Now().UTC()
	if info, ok := p.Port(); ok {
		st.Port = info.Name
	} else {
		st.Port = p.config.Port
	}
	return st
}

func (p *Pipeline) statusChanged() {
	p.saveStatus(context.Background())
}

func (p *Pipeline) saveStatus(ctx context.Context) {
	if p.statusRepo == nil {
		return
	}
	st := p.Snapshot()
	if st.IsEmpty() {
		return
	}
	if err := p.statusRepo.Save(ctx, st); err != nil {
		p.logger.Warn("failed to save status", ports.Err(err))
	}
}

func (p *Pipeline) statusLoop(ctx context.Context) {
	defer p.lifecycle.WorkerDone()

	ticker := time.NewTicker(p.config.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.saveStatus(ctx)
		}
	}
}
