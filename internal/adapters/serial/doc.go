// Package serial adapts go.bug.st/serial to the ports used by the
// ingestion pipeline: an [Enumerator] for discovery, an [Opener] for
// connections, and a [LineReader] that turns timeout-bounded reads into
// complete lines.
package serial
