// Package simulator emits synthetic telemetry frames on a pseudo-terminal
// so the pipeline can run without hardware.
package simulator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/creack/pty"

	"github.com/bft-labs/whisker/internal/ports"
	"github.com/bft-labs/whisker/pkg/frame"
)

// Defaults for Config.
const (
	DefaultInterval = 10 * time.Millisecond
	DefaultHeader   = 0xA5
)

// Config controls the emitted stream.
type Config struct {
	Interval time.Duration
	Header   byte
	// MalformedEvery inserts a non-hex line after every N good frames.
	// Zero disables it.
	MalformedEvery int
}

// DefaultConfig returns the default stream settings.
func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
		Header:   DefaultHeader,
	}
}

// Wave generates a deterministic three-axis signal: a sine on X, a cosine
// on Y and a sawtooth on Z, all centered in the uint16 range.
type Wave struct {
	step int
}

// Next returns the next sample of the wave.
func (w *Wave) Next() frame.Sample {
	const (
		mid    = 32768
		amp    = 16000
		period = 200
	)
	phase := 2 * math.Pi * float64(w.step%period) / period
	s := frame.Sample{
		X: uint16(mid + amp*math.Sin(phase)),
		Y: uint16(mid + amp*math.Cos(phase)),
		Z: uint16((w.step % period) * (math.MaxUint16 / period)),
	}
	w.step++
	return s
}

// Simulator owns a pty pair. Frames are written to the master side;
// readers open the slave by name.
type Simulator struct {
	cfg    Config
	logger ports.Logger
	master *os.File
	slave  *os.File
}

// Open allocates the pseudo-terminal.
func Open(cfg Config, logger ports.Logger) (*Simulator, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Header == 0 {
		cfg.Header = DefaultHeader
	}

	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}

	s := &Simulator{cfg: cfg, logger: logger, master: master, slave: slave}
	// The slave echoes input back to the master until a reader puts it in
	// raw mode; drain it so writes never stall.
	go func() { _, _ = io.Copy(io.Discard, master) }()
	return s, nil
}

// Name returns the device path readers should open.
func (s *Simulator) Name() string {
	return s.slave.Name()
}

// Run writes frames until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("simulator running",
		ports.String("device", s.Name()),
		ports.Duration("interval", s.cfg.Interval),
	)
	return Emit(ctx, s.master, s.cfg)
}

// Close releases both ends of the pty.
func (s *Simulator) Close() error {
	errSlave := s.slave.Close()
	errMaster := s.master.Close()
	if errMaster != nil {
		return errMaster
	}
	return errSlave
}

// Emit writes one line per cfg.Interval to w until ctx is done.
func Emit(ctx context.Context, w io.Writer, cfg Config) error {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Header == 0 {
		cfg.Header = DefaultHeader
	}

	bw := bufio.NewWriter(w)
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	var (
		wave Wave
		sent int
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		line := frame.Encode(cfg.Header, wave.Next())
		sent++
		if cfg.MalformedEvery > 0 && sent%cfg.MalformedEvery == 0 {
			line += "\nzz"
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
}
