package ports

import (
	"context"
	"io"
	"time"

	"github.com/bft-labs/whisker/internal/domain"
)

// Parity of a serial line.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// StopBits of a serial line.
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsOnePointFive
	StopBitsTwo
)

// PortMode is the line configuration used to open a device.
type PortMode struct {
	BaudRate    int
	DataBits    int
	Parity      Parity
	StopBits    StopBits
	ReadTimeout time.Duration
}

// DefaultPortMode returns 115200 8N1 with a 100ms read timeout.
func DefaultPortMode() PortMode {
	return PortMode{
		BaudRate:    115200,
		DataBits:    8,
		Parity:      ParityNone,
		StopBits:    StopBitsOne,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// PortEnumerator lists the serial devices currently visible to the host.
type PortEnumerator interface {
	Ports(ctx context.Context) ([]domain.PortInfo, error)
}

// PortOpener opens a serial device.
type PortOpener interface {
	// Open returns a connection configured with mode. Implementations must
	// apply mode.ReadTimeout so that Read returns (0, nil) when no data
	// arrived in time.
	Open(name string, mode PortMode) (Port, error)
}

// Port is an open serial connection. Read may return (0, nil) on timeout.
type Port interface {
	io.ReadWriteCloser
}
