package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (WHISKER_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", os.Getenv("WHISKER_PORT"), &cfg.Port)
	s.setString("overflow", os.Getenv("WHISKER_OVERFLOW_POLICY"), &cfg.OverflowPolicy)
	s.setString("status-dir", os.Getenv("WHISKER_STATUS_DIR"), &cfg.StatusDir)
	s.setString("listen", os.Getenv("WHISKER_LISTEN"), &cfg.Listen)
	s.setString("device-dir", os.Getenv("WHISKER_DEVICE_DIR"), &cfg.DeviceDir)
	s.setString("log-level", os.Getenv("WHISKER_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("format", os.Getenv("WHISKER_FORMAT"), &cfg.Format)

	if err := s.setDuration("read-timeout", os.Getenv("WHISKER_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("push-timeout", os.Getenv("WHISKER_PUSH_TIMEOUT"), &cfg.PushTimeout); err != nil {
		return err
	}
	if err := s.setDuration("tick", os.Getenv("WHISKER_TICK_INTERVAL"), &cfg.TickInterval); err != nil {
		return err
	}
	if err := s.setDuration("status-interval", os.Getenv("WHISKER_STATUS_INTERVAL"), &cfg.StatusInterval); err != nil {
		return err
	}

	if err := s.setIntFromString("baud", os.Getenv("WHISKER_BAUD_RATE"), &cfg.BaudRate); err != nil {
		return err
	}
	if err := s.setIntFromString("max-line-bytes", os.Getenv("WHISKER_MAX_LINE_BYTES"), &cfg.MaxLineBytes); err != nil {
		return err
	}
	if err := s.setIntFromString("max-read-errors", os.Getenv("WHISKER_MAX_READ_ERRORS"), &cfg.MaxReadErrors); err != nil {
		return err
	}
	if err := s.setIntFromString("queue-capacity", os.Getenv("WHISKER_QUEUE_CAPACITY"), &cfg.QueueCapacity); err != nil {
		return err
	}

	s.setBoolFromString("watch-devices", os.Getenv("WHISKER_WATCH_DEVICES"), &cfg.WatchDevices)

	return nil
}
