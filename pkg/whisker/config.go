package whisker

import (
	"fmt"
	"time"

	"github.com/bft-labs/whisker/internal/app"
	"github.com/bft-labs/whisker/internal/domain"
	"github.com/bft-labs/whisker/pkg/queue"
)

// Default configuration values.
const (
	DefaultBaudRate       = 115200
	DefaultReadTimeout    = 100 * time.Millisecond
	DefaultMaxLineBytes   = 4096
	DefaultStatusInterval = 5 * time.Second
	DefaultDeviceDir      = "/dev"
)

// Config holds the pipeline configuration.
// Zero values are replaced by defaults in [Config.SetDefaults].
type Config struct {
	// Port is an explicit device name. When empty the pipeline enumerates
	// serial devices and connects only if exactly one is present.
	Port string

	BaudRate     int
	ReadTimeout  time.Duration
	MaxLineBytes int

	// MaxReadErrors is the number of consecutive read errors after which
	// the pipeline crashes. Negative never gives up.
	MaxReadErrors int

	QueueCapacity  int
	OverflowPolicy queue.Policy
	PushTimeout    time.Duration

	// StatusDir enables status.json snapshots when set.
	StatusDir      string
	StatusInterval time.Duration

	// DeviceDir is passed to plugins that watch for hotplug events.
	DeviceDir string
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.MaxLineBytes == 0 {
		c.MaxLineBytes = DefaultMaxLineBytes
	}
	if c.MaxReadErrors == 0 {
		c.MaxReadErrors = app.DefaultMaxReadErrors
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = queue.DefaultCapacity
	}
	if c.PushTimeout == 0 {
		c.PushTimeout = queue.DefaultPushTimeout
	}
	if c.StatusInterval == 0 {
		c.StatusInterval = DefaultStatusInterval
	}
	if c.DeviceDir == "" {
		c.DeviceDir = DefaultDeviceDir
	}
}

// Validate checks the configuration after defaults were applied.
func (c Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be positive, got %d", domain.ErrInvalidConfig, c.BaudRate)
	}
	if c.ReadTimeout < time.Millisecond {
		return fmt.Errorf("%w: read timeout must be at least 1ms, got %s", domain.ErrInvalidConfig, c.ReadTimeout)
	}
	if c.MaxLineBytes < 16 {
		return fmt.Errorf("%w: max line bytes must be at least 16, got %d", domain.ErrInvalidConfig, c.MaxLineBytes)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: queue capacity must be positive, got %d", domain.ErrInvalidConfig, c.QueueCapacity)
	}
	if c.OverflowPolicy != queue.DropOldest && c.OverflowPolicy != queue.Block {
		return fmt.Errorf("%w: unknown overflow policy %d", domain.ErrInvalidConfig, c.OverflowPolicy)
	}
	if c.OverflowPolicy == queue.Block && c.PushTimeout <= 0 {
		return fmt.Errorf("%w: push timeout must be positive with the block policy", domain.ErrInvalidConfig)
	}
	if c.StatusDir != "" && c.StatusInterval <= 0 {
		return fmt.Errorf("%w: status interval must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
