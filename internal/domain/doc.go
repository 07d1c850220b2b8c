// Package domain contains the core entities and error conditions of the
// ingestion pipeline.
//
// # Entities
//
//   - [PortInfo]: a serial device reported by enumeration
//   - [Stats]: worker counters (lines, samples, decode failures, drops)
//   - [Status]: a point-in-time view of the pipeline for status files
//
// The decoded sample itself lives in pkg/frame so it can be used without
// the rest of the pipeline.
//
// Nothing here touches the serial port, the file system or the logger.
package domain
