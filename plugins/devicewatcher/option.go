package devicewatcher

import "github.com/bft-labs/whisker/pkg/whisker"

// WithDeviceWatcher returns a whisker Option that enables hotplug watching.
//
// Usage:
//
//	p, err := whisker.New(cfg,
//	    devicewatcher.WithDeviceWatcher(devicewatcher.Config{
//	        Patterns:      []string{"ttyACM*"},
//	        DebounceDelay: 200 * time.Millisecond,
//	    }),
//	)
func WithDeviceWatcher(cfg Config) whisker.Option {
	return whisker.WithPlugin(New(cfg))
}

// WithDefaultDeviceWatcher returns a whisker Option that enables hotplug
// watching with default patterns and a 500ms debounce.
func WithDefaultDeviceWatcher() whisker.Option {
	return WithDeviceWatcher(DefaultConfig())
}
