package ports

import (
	"context"
	"errors"
)

// LineSource yields newline-terminated text lines from a serial connection.
type LineSource interface {
	// ReadLine blocks until a complete line is available or ctx is done.
	// The returned line excludes the terminator and any trailing '\r'.
	// A read timeout with no complete line is not an error; ReadLine keeps
	// waiting. Partial data is retained across calls.
	ReadLine(ctx context.Context) (string, error)
}

// ErrLineTooLong is returned by a LineSource when a line exceeded its size
// limit and was discarded. The source remains usable.
var ErrLineTooLong = errors.New("serial: line too long")
