package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/whisker/internal/domain"
	"github.com/bft-labs/whisker/internal/ports"
)

// Discovery selects the serial device the pipeline connects to.
//
// With an explicit port name it returns that name without enumerating.
// Otherwise it enumerates and accepts only a single candidate: it never
// guesses between several devices.
type Discovery struct {
	enum     ports.PortEnumerator
	explicit string
	logger   ports.Logger
}

// NewDiscovery creates a Discovery. explicit may be empty.
func NewDiscovery(enum ports.PortEnumerator, explicit string, logger ports.Logger) *Discovery {
	return &Discovery{enum: enum, explicit: explicit, logger: logger}
}

// List returns every device the enumerator reports.
func (d *Discovery) List(ctx context.Context) ([]domain.PortInfo, error) {
	return d.enum.Ports(ctx)
}

// Select returns the device to open.
//
// Errors all match domain.ErrDiscovery: domain.ErrNoDevice when nothing is
// attached, an *domain.AmbiguousDeviceError when several devices are, and
// the enumerator's own error otherwise.
func (d *Discovery) Select(ctx context.Context) (domain.PortInfo, error) {
	if d.explicit != "" {
		d.logger.Debug("using configured port", ports.String("port", d.explicit))
		return domain.PortInfo{Name: d.explicit}, nil
	}

	candidates, err := d.List(ctx)
	if err != nil {
		return domain.PortInfo{}, fmt.Errorf("%w: %w", domain.ErrDiscovery, err)
	}

	switch len(candidates) {
	case 0:
		return domain.PortInfo{}, domain.ErrNoDevice
	case 1:
		d.logger.Info("serial device found", ports.Stringer("port", candidates[0]))
		return candidates[0], nil
	default:
		return domain.PortInfo{}, &domain.AmbiguousDeviceError{Candidates: candidates}
	}
}
