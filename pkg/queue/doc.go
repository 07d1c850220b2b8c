// Package queue provides the bounded FIFO hand-off between a single producer
// goroutine and a single consumer that polls on its own schedule.
//
// The queue is a buffered channel with an explicit overflow policy:
//
//   - DropOldest (default): Push never blocks; when full, the oldest queued
//     value is evicted to make room.
//   - Block: Push waits up to PushTimeout for room, then gives up with ErrFull.
//
// Drain never blocks and returns every value queued at the time of the call,
// in push order. An empty queue drains to nil.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package queue
