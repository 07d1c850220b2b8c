package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Pipeline errors. Check them with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running pipeline.
	ErrAlreadyRunning = errors.New("whisker: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped pipeline.
	ErrNotRunning = errors.New("whisker: not running")

	// ErrShutdownTimeout is returned when the worker does not stop in time.
	ErrShutdownTimeout = errors.New("whisker: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("whisker: invalid configuration")

	// ErrDiscovery is the parent of every discovery outcome that leaves the
	// pipeline without a device.
	ErrDiscovery = errors.New("whisker: device discovery")

	// ErrNoDevice means enumeration found no serial device.
	ErrNoDevice = fmt.Errorf("%w: no serial device found", ErrDiscovery)

	// ErrAmbiguousDevice means enumeration found more than one serial device
	// and none was named explicitly.
	ErrAmbiguousDevice = fmt.Errorf("%w: more than one serial device found", ErrDiscovery)

	// ErrOpenFailed means the selected device could not be opened.
	ErrOpenFailed = errors.New("whisker: open serial port")

	// ErrReadFailed means the worker gave up after repeated read errors.
	ErrReadFailed = errors.New("whisker: serial read failed")
)

// AmbiguousDeviceError lists the devices discovery refused to choose between.
type AmbiguousDeviceError struct {
	Candidates []PortInfo
}

func (e *AmbiguousDeviceError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.Name
	}
	return fmt.Sprintf("%v: %s", ErrAmbiguousDevice, strings.Join(names, ", "))
}

func (e *AmbiguousDeviceError) Unwrap() error { return ErrAmbiguousDevice }

// OpenError reports a device that was selected but could not be opened.
// It matches both ErrOpenFailed and the underlying cause.
type OpenError struct {
	Port string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("%v %s: %v", ErrOpenFailed, e.Port, e.Err)
}

func (e *OpenError) Unwrap() []error { return []error{ErrOpenFailed, e.Err} }
