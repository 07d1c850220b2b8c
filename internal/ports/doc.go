// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [PortEnumerator]: lists the serial devices visible to the host
//   - [PortOpener]: opens a serial device with a given mode
//   - [Port]: an open serial connection
//   - [LineSource]: yields newline-terminated lines from a connection
//   - [SampleSink]: accepts decoded samples from the worker
//   - [StatusRepository]: persists pipeline status snapshots
//   - [Logger]: structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with
// go.bug.st/serial, the file system and zerolog, and tests substitute fakes.
package ports
