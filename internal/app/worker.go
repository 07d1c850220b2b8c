package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/whisker/internal/domain"
	"github.com/bft-labs/whisker/internal/ports"
	"github.com/bft-labs/whisker/pkg/frame"
)

// DefaultMaxReadErrors is the number of consecutive read errors after which
// the worker gives up.
const DefaultMaxReadErrors = 50

// WorkerConfig contains configuration for the ingestion loop.
type WorkerConfig struct {
	// MaxReadErrors ends Run with domain.ErrReadFailed after this many
	// consecutive read errors. Zero or negative never gives up.
	MaxReadErrors int

	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		MaxReadErrors:  DefaultMaxReadErrors,
		BackoffInitial: DefaultBackoffInitial,
		BackoffMax:     DefaultBackoffMax,
	}
}

// WorkerEvents receives per-line notifications from the worker.
// Implementations must not block.
type WorkerEvents interface {
	OnDecodeError(line string, err error)
	OnOverflow(dropped uint64)
}

// Worker reads lines from a LineSource, decodes them and pushes the samples
// into a SampleSink. It owns the source for the duration of Run.
type Worker struct {
	config WorkerConfig
	source ports.LineSource
	sink   ports.SampleSink
	logger ports.Logger
	events WorkerEvents

	linesRead  atomic.Uint64
	decoded    atomic.Uint64
	malformed  atomic.Uint64
	underflow  atomic.Uint64
	discarded  atomic.Uint64
	readErrors atomic.Uint64
}

// NewWorker creates a worker. events may be nil.
func NewWorker(
	config WorkerConfig,
	source ports.LineSource,
	sink ports.SampleSink,
	logger ports.Logger,
	events WorkerEvents,
) *Worker {
	return &Worker{
		config: config,
		source: source,
		sink:   sink,
		logger: logger,
		events: events,
	}
}

// Run executes the ingestion loop until ctx is canceled, which returns nil,
// or the source keeps failing, which returns an error matching
// domain.ErrReadFailed. Decode failures never end the loop.
func (w *Worker) Run(ctx context.Context) error {
	bo := newBackoff(w.config.BackoffInitial, w.config.BackoffMax)
	consecutive := 0

	for {
		line, err := w.source.ReadLine(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ports.ErrLineTooLong) {
				w.discarded.Add(1)
				w.logger.Warn("discarded overlong line", ports.Err(err))
				continue
			}

			n := w.readErrors.Add(1)
			consecutive++
			w.logger.Warn("serial read failed",
				ports.Err(err),
				ports.Int("consecutive", consecutive),
				ports.Uint64("total", n),
			)
			if w.config.MaxReadErrors > 0 && consecutive >= w.config.MaxReadErrors {
				return fmt.Errorf("%w after %d attempts: %w", domain.ErrReadFailed, consecutive, err)
			}
			if !bo.Wait(ctx) {
				return nil
			}
			continue
		}

		if consecutive > 0 {
			consecutive = 0
			bo.Reset()
		}
		w.linesRead.Add(1)
		w.handleLine(line)
	}
}

func (w *Worker) handleLine(line string) {
	s, err := frame.Decode(line)
	if err != nil {
		if errors.Is(err, frame.ErrUnderflow) {
			w.underflow.Add(1)
		} else {
			w.malformed.Add(1)
		}
		w.logger.Warn("dropped frame", ports.Err(err))
		if w.events != nil {
			w.events.OnDecodeError(line, err)
		}
		return
	}
	w.decoded.Add(1)

	before := w.sink.Dropped()
	if err := w.sink.Push(s); err != nil {
		w.logger.Debug("sample not queued", ports.Err(err))
	}
	if dropped := w.sink.Dropped() - before; dropped > 0 && w.events != nil {
		w.events.OnOverflow(dropped)
	}
}

// Stats returns a snapshot of the worker counters.
func (w *Worker) Stats() domain.Stats {
	return domain.Stats{
		LinesRead:       w.linesRead.Load(),
		SamplesDecoded:  w.decoded.Load(),
		MalformedFrames: w.malformed.Load(),
		UnderflowFrames: w.underflow.Load(),
		SamplesDropped:  w.sink.Dropped(),
		LinesDiscarded:  w.discarded.Load(),
		ReadErrors:      w.readErrors.Load(),
	}
}
