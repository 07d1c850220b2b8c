package cliconfig

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"WHISKER_PORT":         "/dev/ttyACM0",
				"WHISKER_BAUD_RATE":    "9600",
				"WHISKER_READ_TIMEOUT": "250ms",
				"WHISKER_FORMAT":       "json",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Port:        "/dev/ttyACM0",
				BaudRate:    9600,
				ReadTimeout: 250 * time.Millisecond,
				Format:      "json",
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"WHISKER_PORT":      "/dev/ttyACM0",
				"WHISKER_BAUD_RATE": "9600",
			},
			changed: map[string]bool{"port": true},
			initial: Config{Port: "/dev/ttyUSB3"},
			expected: Config{
				Port:     "/dev/ttyUSB3",
				BaudRate: 9600,
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"WHISKER_TICK_INTERVAL": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"WHISKER_QUEUE_CAPACITY": "lots",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "ignores non-positive int",
			envVars: map[string]string{
				"WHISKER_MAX_LINE_BYTES": "0",
			},
			changed:  map[string]bool{},
			initial:  Config{MaxLineBytes: 512},
			expected: Config{MaxLineBytes: 512},
		},
		{
			name: "handles bool '1' as true",
			envVars: map[string]string{
				"WHISKER_WATCH_DEVICES": "1",
			},
			changed:  map[string]bool{},
			expected: Config{WatchDevices: true},
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"WHISKER_WATCH_DEVICES": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{WatchDevices: true},
			expected: Config{WatchDevices: false},
		},
		{
			name: "handles all field types correctly",
			envVars: map[string]string{
				"WHISKER_PORT":            "/dev/ttyUSB1",
				"WHISKER_BAUD_RATE":       "57600",
				"WHISKER_READ_TIMEOUT":    "50ms",
				"WHISKER_MAX_LINE_BYTES":  "1024",
				"WHISKER_MAX_READ_ERRORS": "3",
				"WHISKER_QUEUE_CAPACITY":  "64",
				"WHISKER_OVERFLOW_POLICY": "block",
				"WHISKER_PUSH_TIMEOUT":    "20ms",
				"WHISKER_TICK_INTERVAL":   "33ms",
				"WHISKER_STATUS_DIR":      "/state",
				"WHISKER_STATUS_INTERVAL": "2s",
				"WHISKER_LISTEN":          ":9090",
				"WHISKER_WATCH_DEVICES":   "true",
				"WHISKER_DEVICE_DIR":      "/devices",
				"WHISKER_LOG_LEVEL":       "debug",
				"WHISKER_FORMAT":          "text",
			},
			changed: map[string]bool{},
			expected: Config{
				Port:           "/dev/ttyUSB1",
				BaudRate:       57600,
				ReadTimeout:    50 * time.Millisecond,
				MaxLineBytes:   1024,
				MaxReadErrors:  3,
				QueueCapacity:  64,
				OverflowPolicy: "block",
				PushTimeout:    20 * time.Millisecond,
				TickInterval:   33 * time.Millisecond,
				StatusDir:      "/state",
				StatusInterval: 2 * time.Second,
				Listen:         ":9090",
				WatchDevices:   true,
				DeviceDir:      "/devices",
				LogLevel:       "debug",
				Format:         "text",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyEnvConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyEnvConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr {
				if diff := cmp.Diff(tt.expected, cfg); diff != "" {
					t.Errorf("config mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	fileConf := FileConfig{
		Port:         "/dev/file",
		BaudRate:     9600,
		WatchDevices: &trueVal,
	}

	t.Setenv("WHISKER_PORT", "/dev/env")
	t.Setenv("WHISKER_BAUD_RATE", "19200")
	t.Setenv("WHISKER_LISTEN", ":7000")
	os.Unsetenv("WHISKER_WATCH_DEVICES")

	changed := map[string]bool{
		"port": true,
	}

	cfg := Config{
		Port: "/dev/cli",
	}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.Port != "/dev/cli" {
		t.Errorf("Port = %v, want /dev/cli (CLI should win)", cfg.Port)
	}
	if cfg.BaudRate != 19200 {
		t.Errorf("BaudRate = %v, want 19200 (env should override file)", cfg.BaudRate)
	}
	if cfg.Listen != ":7000" {
		t.Errorf("Listen = %v, want :7000 (env should set)", cfg.Listen)
	}
	if !cfg.WatchDevices {
		t.Errorf("WatchDevices = %v, want true (file should set)", cfg.WatchDevices)
	}
}
