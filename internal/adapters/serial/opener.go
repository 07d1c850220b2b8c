package serial

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/bft-labs/whisker/internal/ports"
)

// serialOpen is replaced in tests.
var serialOpen = serial.Open

// Opener implements ports.PortOpener with go.bug.st/serial.
type Opener struct{}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open opens name with mode and applies the read timeout.
func (o *Opener) Open(name string, mode ports.PortMode) (ports.Port, error) {
	sm, err := SerialMode(mode)
	if err != nil {
		return nil, err
	}

	p, err := serialOpen(name, sm)
	if err != nil {
		return nil, err
	}

	if mode.ReadTimeout > 0 {
		if err := p.SetReadTimeout(mode.ReadTimeout); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}
	return p, nil
}

// SerialMode validates mode and converts it to the structure go.bug.st/serial
// expects. Zero values fall back to 115200 8N1.
func SerialMode(mode ports.PortMode) (*serial.Mode, error) {
	def := ports.DefaultPortMode()
	if mode.BaudRate <= 0 {
		mode.BaudRate = def.BaudRate
	}
	if mode.DataBits == 0 {
		mode.DataBits = def.DataBits
	}
	if mode.DataBits < 5 || mode.DataBits > 8 {
		return nil, fmt.Errorf("invalid data bits %d: must be between 5 and 8", mode.DataBits)
	}

	sm := &serial.Mode{
		BaudRate: mode.BaudRate,
		DataBits: mode.DataBits,
	}

	switch mode.Parity {
	case ports.ParityNone:
		sm.Parity = serial.NoParity
	case ports.ParityOdd:
		sm.Parity = serial.OddParity
	case ports.ParityEven:
		sm.Parity = serial.EvenParity
	default:
		return nil, fmt.Errorf("unsupported parity %d", mode.Parity)
	}

	switch mode.StopBits {
	case ports.StopBitsOne:
		sm.StopBits = serial.OneStopBit
	case ports.StopBitsOnePointFive:
		sm.StopBits = serial.OnePointFiveStopBits
	case ports.StopBitsTwo:
		sm.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits %d", mode.StopBits)
	}

	return sm, nil
}
