package whisker_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/bft-labs/whisker/pkg/whisker"
)

// fakeEnumerator returns the configured device lists in turn; the last one
// repeats.
type fakeEnumerator struct {
	mu    sync.Mutex
	lists [][]whisker.PortInfo
	calls int
}

func newFakeEnumerator(lists ...[]whisker.PortInfo) *fakeEnumerator {
	return &fakeEnumerator{lists: lists}
}

func (f *fakeEnumerator) Ports(context.Context) ([]whisker.PortInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.lists) == 0 {
		return nil, nil
	}
	l := f.lists[0]
	if len(f.lists) > 1 {
		f.lists = f.lists[1:]
	}
	return l, nil
}

func (f *fakeEnumerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeOpener hands out fakePorts, or fails with err.
type fakeOpener struct {
	mu     sync.Mutex
	err    error
	opened []*fakePort
	names  []string
	modes  []whisker.PortMode
	newFn  func() *fakePort
}

func (o *fakeOpener) Open(name string, mode whisker.PortMode) (whisker.Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
	o.modes = append(o.modes, mode)
	if o.err != nil {
		return nil, o.err
	}
	p := newFakePort()
	if o.newFn != nil {
		p = o.newFn()
	}
	o.opened = append(o.opened, p)
	return p, nil
}

func (o *fakeOpener) Last() *fakePort {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.opened) == 0 {
		return nil
	}
	return o.opened[len(o.opened)-1]
}

// fakePort behaves like a serial port with a short read timeout: Read
// returns (0, nil) when nothing was fed in time.
type fakePort struct {
	data    chan []byte
	readErr error
	done    chan struct{}
	once    sync.Once
}

func newFakePort() *fakePort {
	return &fakePort{
		data: make(chan []byte, 64),
		done: make(chan struct{}),
	}
}

func (p *fakePort) Feed(s string) {
	p.data <- []byte(s)
}

func (p *fakePort) Read(b []byte) (int, error) {
	select {
	case <-p.done:
		return 0, os.ErrClosed
	default:
	}
	if p.readErr != nil {
		return 0, p.readErr
	}
	select {
	case chunk := <-p.data:
		return copy(b, chunk), nil
	case <-p.done:
		return 0, os.ErrClosed
	case <-time.After(2 * time.Millisecond):
		return 0, nil
	}
}

func (p *fakePort) Write(b []byte) (int, error) { return len(b), nil }

func (p *fakePort) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *fakePort) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

var errBoom = errors.New("boom")

func oneDevice(name string) []whisker.PortInfo {
	return []whisker.PortInfo{{Name: name, IsUSB: true}}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
