package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Port           string `toml:"port"`
	BaudRate       int    `toml:"baud_rate"`
	ReadTimeout    string `toml:"read_timeout"`
	MaxLineBytes   int    `toml:"max_line_bytes"`
	MaxReadErrors  int    `toml:"max_read_errors"`
	QueueCapacity  int    `toml:"queue_capacity"`
	OverflowPolicy string `toml:"overflow_policy"`
	PushTimeout    string `toml:"push_timeout"`
	TickInterval   string `toml:"tick_interval"`
	StatusDir      string `toml:"status_dir"`
	StatusInterval string `toml:"status_interval"`
	Listen         string `toml:"listen"`
	WatchDevices   *bool  `toml:"watch_devices"`
	DeviceDir      string `toml:"device_dir"`
	LogLevel       string `toml:"log_level"`
	Format         string `toml:"format"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.whisker/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".whisker", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", fc.Port, &cfg.Port)
	s.setString("overflow", fc.OverflowPolicy, &cfg.OverflowPolicy)
	s.setString("status-dir", fc.StatusDir, &cfg.StatusDir)
	s.setString("listen", fc.Listen, &cfg.Listen)
	s.setString("device-dir", fc.DeviceDir, &cfg.DeviceDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("format", fc.Format, &cfg.Format)

	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("push-timeout", fc.PushTimeout, &cfg.PushTimeout); err != nil {
		return err
	}
	if err := s.setDuration("tick", fc.TickInterval, &cfg.TickInterval); err != nil {
		return err
	}
	if err := s.setDuration("status-interval", fc.StatusInterval, &cfg.StatusInterval); err != nil {
		return err
	}

	s.setInt("baud", fc.BaudRate, &cfg.BaudRate)
	s.setInt("max-line-bytes", fc.MaxLineBytes, &cfg.MaxLineBytes)
	s.setInt("max-read-errors", fc.MaxReadErrors, &cfg.MaxReadErrors)
	s.setInt("queue-capacity", fc.QueueCapacity, &cfg.QueueCapacity)

	s.setBool("watch-devices", fc.WatchDevices, &cfg.WatchDevices)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
