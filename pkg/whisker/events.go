package whisker

import "github.com/bft-labs/whisker/internal/app"

// EventHandler receives pipeline notifications.
// Methods are called synchronously from the pipeline goroutines and must
// return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnDecodeError(event DecodeErrorEvent)
	OnOverflow(event OverflowEvent)
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// DecodeErrorEvent reports a line that produced no sample.
type DecodeErrorEvent struct {
	Line  string
	Error error
}

// OverflowEvent reports samples lost because the queue was full.
type OverflowEvent struct {
	Dropped uint64
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// handle only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnDecodeError(DecodeErrorEvent) {}
func (BaseEventHandler) OnOverflow(OverflowEvent)       {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler       EventHandler
	onStateChange func()
}

var (
	_ app.EventEmitter = (*eventEmitterWrapper)(nil)
	_ app.WorkerEvents = (*eventEmitterWrapper)(nil)
)

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.onStateChange != nil {
		e.onStateChange()
	}
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnDecodeError(line string, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnDecodeError(DecodeErrorEvent{Line: line, Error: err})
}

func (e *eventEmitterWrapper) OnOverflow(dropped uint64) {
	if e.handler == nil {
		return
	}
	e.handler.OnOverflow(OverflowEvent{Dropped: dropped})
}
