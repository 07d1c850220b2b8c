package ports

import "github.com/bft-labs/whisker/pkg/frame"

// SampleSink receives decoded samples from the ingestion worker.
// *queue.Queue[frame.Sample] satisfies it.
type SampleSink interface {
	// Push must not block indefinitely. An error means the sample was lost.
	Push(s frame.Sample) error

	// Dropped returns the number of samples lost to overflow so far.
	Dropped() uint64
}
