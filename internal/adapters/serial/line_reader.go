package serial

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/bft-labs/whisker/internal/ports"
)

// DefaultMaxLineBytes bounds the partial-line buffer.
const DefaultMaxLineBytes = 4096

const readChunkSize = 256

// ErrLineTooLong is returned once for every line that exceeded the
// configured maximum. The offending bytes are discarded up to the next
// newline.
var ErrLineTooLong = ports.ErrLineTooLong

// LineReader implements ports.LineSource over a timeout-bounded reader.
//
// A Read that returns (0, nil) is treated as a timeout: the reader checks
// its context and tries again. Bytes received before a newline are kept
// across timeouts, so a line split over several reads is yielded whole.
//
// LineReader is not safe for concurrent use.
type LineReader struct {
	r        io.Reader
	max      int
	buf      []byte
	chunk    []byte
	skipping bool
}

// NewLineReader wraps r. A non-positive maxLineBytes falls back to
// DefaultMaxLineBytes.
func NewLineReader(r io.Reader, maxLineBytes int) *LineReader {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	return &LineReader{
		r:     r,
		max:   maxLineBytes,
		buf:   make([]byte, 0, readChunkSize),
		chunk: make([]byte, readChunkSize),
	}
}

// ReadLine blocks until a complete line is available, ctx is done, or the
// underlying reader fails. The line excludes "\n" and a trailing "\r".
func (l *LineReader) ReadLine(ctx context.Context) (string, error) {
	for {
		line, ok, err := l.next()
		if err != nil || ok {
			return line, err
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := l.r.Read(l.chunk)
		if n > 0 {
			l.buf = append(l.buf, l.chunk[:n]...)
		}
		if err != nil {
			return "", fmt.Errorf("read serial: %w", err)
		}
	}
}

// next extracts one line from the buffer if a newline is present.
func (l *LineReader) next() (string, bool, error) {
	for {
		idx := bytes.IndexByte(l.buf, '\n')
		if idx < 0 {
			if len(l.buf) > l.max {
				l.buf = l.buf[:0]
				if !l.skipping {
					l.skipping = true
					return "", false, ErrLineTooLong
				}
			}
			return "", false, nil
		}

		raw := l.buf[:idx]
		skip := l.skipping || len(raw) > l.max
		var line string
		if !skip {
			line = string(bytes.TrimSuffix(raw, []byte{'\r'}))
		}
		l.consume(idx + 1)

		if l.skipping {
			// tail of a line already reported as too long
			l.skipping = false
			continue
		}
		if skip {
			return "", false, ErrLineTooLong
		}
		return line, true, nil
	}
}

func (l *LineReader) consume(n int) {
	rest := copy(l.buf, l.buf[n:])
	l.buf = l.buf[:rest]
}
