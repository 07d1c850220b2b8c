package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/whisker/pkg/queue"
	"github.com/bft-labs/whisker/pkg/whisker"
)

// Output formats for the run command.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds CLI configuration for whisker.
type Config struct {
	Port         string
	BaudRate     int
	ReadTimeout  time.Duration
	MaxLineBytes int

	MaxReadErrors  int
	QueueCapacity  int
	OverflowPolicy string
	PushTimeout    time.Duration

	TickInterval   time.Duration
	StatusDir      string
	StatusInterval time.Duration
	Listen         string
	WatchDevices   bool
	DeviceDir      string

	LogLevel string
	Format   string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaudRate:       whisker.DefaultBaudRate,
		ReadTimeout:    whisker.DefaultReadTimeout,
		MaxLineBytes:   whisker.DefaultMaxLineBytes,
		MaxReadErrors:  50,
		QueueCapacity:  queue.DefaultCapacity,
		OverflowPolicy: queue.DropOldest.String(),
		PushTimeout:    queue.DefaultPushTimeout,
		TickInterval:   16 * time.Millisecond,
		StatusInterval: whisker.DefaultStatusInterval,
		WatchDevices:   true,
		DeviceDir:      whisker.DefaultDeviceDir,
		LogLevel:       "info",
		Format:         FormatText,
	}
}

// Validate checks the configuration for errors and normalizes it.
func (c *Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud rate must be positive")
	}
	if c.ReadTimeout < time.Millisecond {
		return fmt.Errorf("read timeout must be at least 1ms")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if _, err := queue.ParsePolicy(c.OverflowPolicy); err != nil {
		return err
	}

	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("unknown format %q: expected text or json", c.Format)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// PipelineConfig converts the CLI configuration into the pipeline's.
func (c Config) PipelineConfig() (whisker.Config, error) {
	policy, err := queue.ParsePolicy(c.OverflowPolicy)
	if err != nil {
		return whisker.Config{}, err
	}
	return whisker.Config{
		Port:           c.Port,
		BaudRate:       c.BaudRate,
		ReadTimeout:    c.ReadTimeout,
		MaxLineBytes:   c.MaxLineBytes,
		MaxReadErrors:  c.MaxReadErrors,
		QueueCapacity:  c.QueueCapacity,
		OverflowPolicy: policy,
		PushTimeout:    c.PushTimeout,
		StatusDir:      c.StatusDir,
		StatusInterval: c.StatusInterval,
		DeviceDir:      c.DeviceDir,
	}, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
