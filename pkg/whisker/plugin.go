package whisker

import "context"

// Plugin extends a Pipeline with optional behavior.
// Plugins are initialized by Start in registration order and shut down by
// Stop in reverse order. They stay up while the pipeline is Disabled or
// Crashed, so they can bring it back with PluginConfig.Rediscover.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is handed to every plugin on Initialize.
type PluginConfig struct {
	// DeviceDir is the directory serial device nodes appear in.
	DeviceDir string

	// Port is the explicitly configured device, if any.
	Port string

	Logger Logger

	// Status returns the current pipeline state.
	Status func() State

	// Rediscover retries discovery and open. It is a no-op unless the
	// pipeline is Disabled or Crashed.
	Rediscover func(ctx context.Context) error
}

// BasePlugin implements Plugin with no-op lifecycle methods.
type BasePlugin struct {
	name string
}

// NewBasePlugin creates a BasePlugin with the given name.
func NewBasePlugin(name string) BasePlugin {
	return BasePlugin{name: name}
}

func (p BasePlugin) Name() string                                 { return p.name }
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                 { return nil }
