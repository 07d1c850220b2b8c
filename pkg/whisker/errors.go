package whisker

import (
	"github.com/bft-labs/whisker/internal/domain"
	"github.com/bft-labs/whisker/pkg/frame"
)

// Errors returned by the pipeline. Check them with errors.Is.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig

	ErrDiscovery       = domain.ErrDiscovery
	ErrNoDevice        = domain.ErrNoDevice
	ErrAmbiguousDevice = domain.ErrAmbiguousDevice
	ErrOpenFailed      = domain.ErrOpenFailed
	ErrReadFailed      = domain.ErrReadFailed

	ErrMalformed = frame.ErrMalformed
	ErrUnderflow = frame.ErrUnderflow
)

type (
	// AmbiguousDeviceError lists the devices discovery refused to choose between.
	AmbiguousDeviceError = domain.AmbiguousDeviceError

	// OpenError reports a device that could not be opened.
	OpenError = domain.OpenError
)
