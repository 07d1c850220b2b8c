package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bft-labs/whisker/internal/domain"
	"github.com/bft-labs/whisker/internal/ports"
	"github.com/bft-labs/whisker/pkg/frame"
	"github.com/bft-labs/whisker/pkg/queue"
)

// scriptedSource yields lines and errors in order, then blocks until the
// context is done.
type scriptedSource struct {
	mu    sync.Mutex
	items []sourceItem
}

type sourceItem struct {
	line string
	err  error
}

func (s *scriptedSource) ReadLine(ctx context.Context) (string, error) {
	s.mu.Lock()
	if len(s.items) > 0 {
		it := s.items[0]
		s.items = s.items[1:]
		s.mu.Unlock()
		return it.line, it.err
	}
	s.mu.Unlock()
	<-ctx.Done()
	return "", ctx.Err()
}

func lines(ls ...string) []sourceItem {
	out := make([]sourceItem, len(ls))
	for i, l := range ls {
		out[i] = sourceItem{line: l}
	}
	return out
}

type mockWorkerEvents struct {
	mu           sync.Mutex
	decodeErrors []error
	overflows    []uint64
}

func (m *mockWorkerEvents) OnDecodeError(_ string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decodeErrors = append(m.decodeErrors, err)
}

func (m *mockWorkerEvents) OnOverflow(dropped uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overflows = append(m.overflows, dropped)
}

func testWorkerConfig() WorkerConfig {
	return WorkerConfig{MaxReadErrors: 3, BackoffInitial: time.Millisecond, BackoffMax: 2 * time.Millisecond}
}

// runUntil runs the worker until cond holds, then cancels it.
func runUntil(t *testing.T, w *Worker, cond func() bool) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case err := <-done:
			return err
		case <-deadline:
			t.Fatal("condition not reached")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
		return nil
	}
}

func TestWorker_DecodesInOrder(t *testing.T) {
	src := &scriptedSource{items: lines(
		"00000100020003",
		"ff0004000500060708 trailing text",
		"000007000800ff",
	)}
	q := queue.New[frame.Sample](queue.DefaultConfig())
	w := NewWorker(testWorkerConfig(), src, q, &mockLogger{}, nil)

	err := runUntil(t, w, func() bool { return w.Stats().SamplesDecoded == 3 })
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	want := []frame.Sample{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 255}}
	if diff := cmp.Diff(want, q.Drain()); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestWorker_DecodeFailuresContinue(t *testing.T) {
	src := &scriptedSource{items: lines(
		"zz",
		"0001",
		"00000100020003",
		"",
		"000a000b000c00",
	)}
	q := queue.New[frame.Sample](queue.DefaultConfig())
	events := &mockWorkerEvents{}
	w := NewWorker(testWorkerConfig(), src, q, &mockLogger{}, events)

	err := runUntil(t, w, func() bool { return w.Stats().LinesRead == 5 })
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	want := domain.Stats{LinesRead: 5, SamplesDecoded: 2, MalformedFrames: 1, UnderflowFrames: 2}
	if diff := cmp.Diff(want, w.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if got := q.Drain(); len(got) != 2 {
		t.Errorf("queued %d samples, want 2", len(got))
	}

	events.mu.Lock()
	defer events.mu.Unlock()
	if len(events.decodeErrors) != 3 {
		t.Fatalf("got %d decode events, want 3", len(events.decodeErrors))
	}
	if !errors.Is(events.decodeErrors[1], frame.ErrUnderflow) {
		t.Errorf("second decode error = %v, want ErrUnderflow", events.decodeErrors[1])
	}
}

func TestWorker_OverflowEvents(t *testing.T) {
	src := &scriptedSource{items: lines(
		"00000100010001",
		"00000200020002",
		"00000300030003",
	)}
	q := queue.New[frame.Sample](queue.Config{Capacity: 2, Policy: queue.DropOldest})
	events := &mockWorkerEvents{}
	w := NewWorker(testWorkerConfig(), src, q, &mockLogger{}, events)

	if err := runUntil(t, w, func() bool { return w.Stats().SamplesDecoded == 3 }); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	want := []frame.Sample{{X: 2, Y: 2, Z: 2}, {X: 3, Y: 3, Z: 3}}
	if diff := cmp.Diff(want, q.Drain()); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
	if w.Stats().SamplesDropped != 1 {
		t.Errorf("SamplesDropped = %d, want 1", w.Stats().SamplesDropped)
	}
	events.mu.Lock()
	defer events.mu.Unlock()
	if diff := cmp.Diff([]uint64{1}, events.overflows); diff != "" {
		t.Errorf("overflow events mismatch (-want +got):\n%s", diff)
	}
}

func TestWorker_GivesUpAfterConsecutiveReadErrors(t *testing.T) {
	boom := errors.New("device gone")
	src := &scriptedSource{items: []sourceItem{{err: boom}, {err: boom}, {err: boom}}}
	q := queue.New[frame.Sample](queue.DefaultConfig())
	w := NewWorker(testWorkerConfig(), src, q, &mockLogger{}, nil)

	err := w.Run(context.Background())
	if !errors.Is(err, domain.ErrReadFailed) {
		t.Fatalf("Run() = %v, want ErrReadFailed", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Run() = %v, should wrap the last read error", err)
	}
	if w.Stats().ReadErrors != 3 {
		t.Errorf("ReadErrors = %d, want 3", w.Stats().ReadErrors)
	}
}

func TestWorker_SuccessResetsErrorCount(t *testing.T) {
	boom := errors.New("glitch")
	src := &scriptedSource{items: []sourceItem{
		{err: boom}, {err: boom},
		{line: "00000100020003"},
		{err: boom}, {err: boom},
		{line: "00000400050006"},
	}}
	q := queue.New[frame.Sample](queue.DefaultConfig())
	w := NewWorker(testWorkerConfig(), src, q, &mockLogger{}, nil)

	err := runUntil(t, w, func() bool { return w.Stats().SamplesDecoded == 2 })
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if w.Stats().ReadErrors != 4 {
		t.Errorf("ReadErrors = %d, want 4", w.Stats().ReadErrors)
	}
}

func TestWorker_LineTooLongIsNotAReadError(t *testing.T) {
	items := make([]sourceItem, 0, 10)
	for i := 0; i < 5; i++ {
		items = append(items, sourceItem{err: ports.ErrLineTooLong})
	}
	items = append(items, sourceItem{line: "00000100020003"})
	src := &scriptedSource{items: items}
	q := queue.New[frame.Sample](queue.DefaultConfig())
	w := NewWorker(testWorkerConfig(), src, q, &mockLogger{}, nil)

	err := runUntil(t, w, func() bool { return w.Stats().SamplesDecoded == 1 })
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	stats := w.Stats()
	if stats.LinesDiscarded != 5 || stats.ReadErrors != 0 {
		t.Errorf("stats = %+v, want 5 discarded and 0 read errors", stats)
	}
}

func TestWorker_StopsOnCancel(t *testing.T) {
	src := &scriptedSource{}
	q := queue.New[frame.Sample](queue.DefaultConfig())
	w := NewWorker(testWorkerConfig(), src, q, &mockLogger{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
