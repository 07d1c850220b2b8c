package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/whisker/internal/cliconfig"
	logAdapter "github.com/bft-labs/whisker/pkg/log"
	"github.com/bft-labs/whisker/pkg/whisker"
)

const helpDescription = `
Read three-axis telemetry from a serial device and hand it to your app.

Highlights:
  - Finds the device on its own when exactly one serial port is attached.
  - Decodes hex frames off the line and never blocks on a slow consumer.
  - Reconnects when a device is plugged in; configure via file, env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  whisker --port /dev/ttyUSB0 --format json
  whisker --listen :8080
  whisker ports
  whisker simulate
  echo a5010203040506 | whisker decode
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return whisker.Version
}

// cli carries the resolved configuration shared by every subcommand.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  *logAdapter.ZerologAdapter

	// opts are appended to the pipeline options built from cfg.
	opts []whisker.Option
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:               "whisker",
		Short:             "Read three-axis telemetry from a serial device",
		Long:              strings.TrimSpace(helpDescription),
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
		RunE:              c.run,
	}

	f := root.PersistentFlags()
	f.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.whisker/config.toml)")
	f.StringVar(&c.cfg.Port, "port", c.cfg.Port, "serial device to open (default: the only attached device)")
	f.IntVar(&c.cfg.BaudRate, "baud", c.cfg.BaudRate, "baud rate")
	f.DurationVar(&c.cfg.ReadTimeout, "read-timeout", c.cfg.ReadTimeout, "serial read timeout")
	f.IntVar(&c.cfg.MaxLineBytes, "max-line-bytes", c.cfg.MaxLineBytes, "longest accepted line")
	f.IntVar(&c.cfg.MaxReadErrors, "max-read-errors", c.cfg.MaxReadErrors, "consecutive read errors before giving up (negative: never)")
	f.IntVar(&c.cfg.QueueCapacity, "queue-capacity", c.cfg.QueueCapacity, "samples buffered between reads")
	f.StringVar(&c.cfg.OverflowPolicy, "overflow", c.cfg.OverflowPolicy, "what to do when the queue is full: drop-oldest or block")
	f.DurationVar(&c.cfg.PushTimeout, "push-timeout", c.cfg.PushTimeout, "how long a blocked push waits before dropping")
	f.DurationVar(&c.cfg.TickInterval, "tick", c.cfg.TickInterval, "how often samples are drained and printed")
	f.StringVar(&c.cfg.StatusDir, "status-dir", c.cfg.StatusDir, "directory for status.json (disabled when empty)")
	f.DurationVar(&c.cfg.StatusInterval, "status-interval", c.cfg.StatusInterval, "status.json refresh interval")
	f.StringVar(&c.cfg.Listen, "listen", c.cfg.Listen, "address to serve samples over websocket (path /samples)")
	f.BoolVar(&c.cfg.WatchDevices, "watch-devices", c.cfg.WatchDevices, "reconnect when serial devices appear")
	f.StringVar(&c.cfg.DeviceDir, "device-dir", c.cfg.DeviceDir, "directory watched for device hotplug")
	f.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level: debug, info, warn, error")
	f.StringVar(&c.cfg.Format, "format", c.cfg.Format, "output format: text or json")

	if err := f.MarkHidden("push-timeout"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to hide push-timeout flag:", err)
	}

	root.AddCommand(
		c.runCmd(),
		c.portsCmd(),
		c.decodeCmd(),
		c.simulateCmd(),
	)
	return root
}

// load resolves the configuration. Precedence is flags, then WHISKER_*
// environment variables, then the config file, then defaults.
func (c *cli) load(cmd *cobra.Command, _ []string) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	logger, err := logAdapter.NewConsoleLogger(cmd.ErrOrStderr(), c.cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = logger
	c.logger.Debug("configuration", logAdapter.Any("config", c.cfg))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "whisker:", err)
		os.Exit(1)
	}
}
