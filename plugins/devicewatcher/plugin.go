// Package devicewatcher retries device discovery when serial devices are
// plugged in or removed. It watches the device directory with fsnotify and
// calls Rediscover while the pipeline is Disabled or Crashed.
package devicewatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/whisker/pkg/log"
	"github.com/bft-labs/whisker/pkg/whisker"
)

// Plugin implements hotplug watching.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	patterns      []string
	debounceDelay time.Duration

	// Runtime state
	dir        string
	logger     whisker.Logger
	status     func() whisker.State
	rediscover func(context.Context) error
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	debounce   *time.Timer
}

// Config holds configuration options for the device watcher plugin.
type Config struct {
	// Patterns are filepath.Match patterns for device node names.
	// Default: ttyUSB*, ttyACM*, cu.*
	Patterns []string

	// DebounceDelay is the quiet period after the last matching event
	// before rediscovery runs. Device nodes tend to appear in bursts.
	// Default: 500 milliseconds
	DebounceDelay time.Duration
}

// DefaultPatterns match USB serial adapters on Linux and macOS.
var DefaultPatterns = []string{"ttyUSB*", "ttyACM*", "cu.*"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Patterns:      DefaultPatterns,
		DebounceDelay: 500 * time.Millisecond,
	}
}

// New creates a new device watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = DefaultPatterns
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 500 * time.Millisecond
	}
	return &Plugin{
		patterns:      cfg.Patterns,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "devicewatcher"
}

// Initialize starts watching cfg.DeviceDir.
// A directory that cannot be watched disables the plugin without failing
// the pipeline.
func (p *Plugin) Initialize(ctx context.Context, cfg whisker.PluginConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	p.mu.Lock()
	p.dir = cfg.DeviceDir
	p.logger = logger
	p.status = cfg.Status
	p.rediscover = cfg.Rediscover
	p.mu.Unlock()

	if cfg.Port != "" {
		logger.Info("device watcher idle: port configured explicitly", log.String("port", cfg.Port))
	}
	if p.dir == "" || p.status == nil || p.rediscover == nil {
		logger.Warn("device watcher disabled: no device directory or pipeline hooks")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("device watcher: failed to create watcher", log.Err(err))
		return nil
	}
	if err := watcher.Add(p.dir); err != nil {
		logger.Error("device watcher: failed to watch directory",
			log.String("dir", p.dir),
			log.Err(err))
		_ = watcher.Close()
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	logger.Info("device watcher plugin initialized", log.String("dir", p.dir))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			if !p.matches(filepath.Base(event.Name)) {
				continue
			}
			p.logger.Debug("device node changed",
				log.String("name", event.Name),
				log.String("op", event.Op.String()))
			p.debounceRediscover(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("device watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) matches(name string) bool {
	for _, pattern := range p.patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (p *Plugin) debounceRediscover(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.tryRediscover(ctx)
	})
}

func (p *Plugin) tryRediscover(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	state := p.status()
	if !state.NeedsDevice() {
		return
	}

	p.logger.Info("device change detected, retrying discovery", log.String("state", state.String()))
	if err := p.rediscover(ctx); err != nil {
		p.logger.Warn("rediscovery failed", log.Err(err))
	}
}
