// Package whisker provides an embeddable ingestion pipeline for a serial
// three-axis sensor.
//
// The device sends one frame per line. The first space-separated token of
// each line is hex; bytes 1-6 carry big-endian X, Y and Z. The pipeline
// finds the device, reads and decodes lines on a background goroutine, and
// queues the samples for the host to drain.
//
// # Basic Usage
//
//	p, err := whisker.New(whisker.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := p.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop()
//
//	for range time.Tick(16 * time.Millisecond) {
//	    for _, s := range p.Drain() {
//	        render(s.X, s.Y, s.Z)
//	    }
//	}
//
// # Discovery
//
// Without [Config.Port] the pipeline enumerates serial devices and connects
// only when exactly one is attached. With none or several, Start still
// returns nil: the pipeline is [StateDisabled], [Pipeline.Reader] fails and
// [Pipeline.Err] tells [ErrNoDevice] from an [*AmbiguousDeviceError].
// A device that cannot be opened leaves an [*OpenError] the same way.
// Call [Pipeline.Rediscover], or register the devicewatcher plugin, to
// retry.
//
// # Queue
//
// Samples are handed over through a bounded FIFO. When the host falls
// behind, the oldest samples are dropped by default; set
// [Config.OverflowPolicy] to queue.Block to make the worker wait instead.
//
// # Lifecycle States
//
// A Pipeline is in one of six states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], [StateCrashed] or [StateDisabled].
// Repeated read failures move it to StateCrashed; the process is never
// terminated.
//
// # Event Handling
//
// Implement [EventHandler] (embed [BaseEventHandler] for defaults) and pass
// it via [WithEventHandler] to observe state changes, decode errors and
// queue overflow. Handlers must not call Start, Stop or Rediscover.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package whisker
