// Package whisker reads three-axis telemetry frames from a serial device.
//
// Example usage:
//
//	p, err := whisker.New(whisker.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop()
//	for range time.Tick(16 * time.Millisecond) {
//	    for _, s := range p.Drain() {
//	        fmt.Println(s.X, s.Y, s.Z)
//	    }
//	}
//
// The full API, including options and plugins, lives in pkg/whisker.
package whisker

import (
	"io"

	"github.com/bft-labs/whisker/pkg/frame"
	"github.com/bft-labs/whisker/pkg/log"
	"github.com/bft-labs/whisker/pkg/whisker"
)

// Config holds the pipeline configuration.
type Config = whisker.Config

// Pipeline owns the serial connection and the sample queue.
type Pipeline = whisker.Pipeline

// Option configures a Pipeline.
type Option = whisker.Option

// Sample is one decoded three-axis reading.
type Sample = frame.Sample

// New creates a Pipeline. It does not touch any device until Start.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	return whisker.New(cfg, opts...)
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return whisker.DefaultConfig()
}

// Decode turns one received line into a Sample.
func Decode(line string) (Sample, error) {
	return frame.Decode(line)
}

// ConsoleLogger returns an Option that logs to w at the named level.
func ConsoleLogger(w io.Writer, level string) (Option, error) {
	l, err := log.NewConsoleLogger(w, level)
	if err != nil {
		return nil, err
	}
	return whisker.WithLogger(l), nil
}
