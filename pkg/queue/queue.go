package queue

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Default queue settings.
const (
	DefaultCapacity    = 1024
	DefaultPushTimeout = 100 * time.Millisecond
)

// ErrFull is returned by Push under the Block policy when no room appeared
// before the push timeout.
var ErrFull = errors.New("queue: full")

// Policy selects what Push does when the queue is at capacity.
type Policy int

const (
	DropOldest Policy = iota
	Block
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case DropOldest:
		return "drop-oldest"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name as accepted in configuration files.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop-oldest", "drop_oldest", "dropoldest":
		return DropOldest, nil
	case "block":
		return Block, nil
	default:
		return DropOldest, fmt.Errorf("unknown overflow policy %q: expected drop-oldest or block", s)
	}
}

// Config controls queue capacity and overflow behavior.
type Config struct {
	Capacity    int
	Policy      Policy
	PushTimeout time.Duration
}

// DefaultConfig returns a drop-oldest queue of DefaultCapacity.
func DefaultConfig() Config {
	return Config{
		Capacity:    DefaultCapacity,
		Policy:      DropOldest,
		PushTimeout: DefaultPushTimeout,
	}
}

// Queue is a bounded FIFO. It is safe for one producer and one consumer
// running concurrently.
type Queue[T any] struct {
	ch          chan T
	policy      Policy
	pushTimeout time.Duration

	pushed  atomic.Uint64
	dropped atomic.Uint64
}

// New creates a queue. A non-positive capacity falls back to DefaultCapacity.
func New[T any](cfg Config) *Queue[T] {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	return &Queue[T]{
		ch:          make(chan T, cfg.Capacity),
		policy:      cfg.Policy,
		pushTimeout: cfg.PushTimeout,
	}
}

// Push appends v according to the overflow policy.
// Under DropOldest it always succeeds; evictions are counted in Dropped.
// Under Block it returns ErrFull once the push timeout expires and v is
// counted as dropped.
func (q *Queue[T]) Push(v T) error {
	select {
	case q.ch <- v:
		q.pushed.Add(1)
		return nil
	default:
	}

	if q.policy == Block {
		return q.pushWait(v)
	}

	for {
		select {
		case <-q.ch:
			q.dropped.Add(1)
		default:
		}
		select {
		case q.ch <- v:
			q.pushed.Add(1)
			return nil
		default:
			// consumer raced us for the freed slot; evict again
		}
	}
}

func (q *Queue[T]) pushWait(v T) error {
	if q.pushTimeout <= 0 {
		q.dropped.Add(1)
		return ErrFull
	}

	timer := time.NewTimer(q.pushTimeout)
	defer timer.Stop()

	select {
	case q.ch <- v:
		q.pushed.Add(1)
		return nil
	case <-timer.C:
		q.dropped.Add(1)
		return ErrFull
	}
}

// Drain removes and returns every value currently queued, oldest first.
// It never blocks and returns nil when the queue is empty.
func (q *Queue[T]) Drain() []T {
	n := len(q.ch)
	if n == 0 {
		return nil
	}

	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		select {
		case v := <-q.ch:
			out = append(out, v)
		default:
			return out
		}
	}
	return out
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int { return cap(q.ch) }

// Policy returns the overflow policy.
func (q *Queue[T]) Policy() Policy { return q.policy }

// Pushed returns the number of values accepted since creation.
func (q *Queue[T]) Pushed() uint64 { return q.pushed.Load() }

// Dropped returns the number of values lost to overflow since creation.
func (q *Queue[T]) Dropped() uint64 { return q.dropped.Load() }
