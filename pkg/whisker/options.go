package whisker

import (
	"github.com/bft-labs/whisker/internal/domain"
	"github.com/bft-labs/whisker/internal/ports"
	"github.com/bft-labs/whisker/pkg/frame"
	"github.com/bft-labs/whisker/pkg/log"
)

// Re-exported types so embedders can implement the injectable interfaces.
type (
	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field

	// Sample is one decoded three-axis reading.
	Sample = frame.Sample

	// PortInfo describes an enumerated serial device.
	PortInfo = domain.PortInfo

	// Stats are the ingestion counters.
	Stats = domain.Stats

	// Status is the snapshot written to status.json.
	Status = domain.Status

	// PortEnumerator lists serial devices.
	PortEnumerator = ports.PortEnumerator

	// PortOpener opens a serial device.
	PortOpener = ports.PortOpener

	// Port is an open serial connection.
	Port = ports.Port

	// PortMode is the serial line configuration.
	PortMode = ports.PortMode
)

// Option configures optional behavior of a Pipeline.
type Option func(*options)

type options struct {
	logger       ports.Logger
	eventHandler EventHandler
	plugins      []Plugin
	enumerator   ports.PortEnumerator
	opener       ports.PortOpener
	statusDir    string
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for pipeline events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the pipeline starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithEnumerator replaces the go.bug.st/serial enumerator.
func WithEnumerator(e PortEnumerator) Option {
	return func(o *options) {
		o.enumerator = e
	}
}

// WithOpener replaces the go.bug.st/serial opener.
func WithOpener(op PortOpener) Option {
	return func(o *options) {
		o.opener = op
	}
}

// WithStatusDir enables status.json snapshots in dir, overriding
// Config.StatusDir.
func WithStatusDir(dir string) Option {
	return func(o *options) {
		o.statusDir = dir
	}
}
