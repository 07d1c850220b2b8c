package whisker

import (
	"github.com/bft-labs/whisker/pkg/frame"
	"github.com/bft-labs/whisker/pkg/queue"
)

// Reader is the consumer end of the sample queue.
//
// A Reader follows its pipeline across reconnects: after Rediscover or a
// restarting Start it drains the queue of the new connection. Samples still
// queued on a crashed connection are discarded when it is replaced.
// While no device is connected every method reports an empty queue.
type Reader struct {
	p *Pipeline
}

func (r *Reader) queue() *queue.Queue[frame.Sample] {
	if c := r.p.conn.Load(); c != nil {
		return c.queue
	}
	return nil
}

// Drain returns every queued sample, oldest first. It never blocks and
// returns nil when nothing arrived since the last call.
func (r *Reader) Drain() []Sample {
	q := r.queue()
	if q == nil {
		return nil
	}
	return q.Drain()
}

// Latest drains the queue and returns only the newest sample.
func (r *Reader) Latest() (Sample, bool) {
	samples := r.Drain()
	if len(samples) == 0 {
		return Sample{}, false
	}
	return samples[len(samples)-1], true
}

// Len returns the number of queued samples.
func (r *Reader) Len() int {
	q := r.queue()
	if q == nil {
		return 0
	}
	return q.Len()
}
