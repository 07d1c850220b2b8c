package serial

import (
	"context"
	"fmt"
	"sort"

	"go.bug.st/serial/enumerator"

	"github.com/bft-labs/whisker/internal/domain"
)

// getDetailedPortsList is replaced in tests.
var getDetailedPortsList = enumerator.GetDetailedPortsList

// Enumerator implements ports.PortEnumerator with the go.bug.st/serial
// enumerator. Results are sorted by name.
type Enumerator struct{}

// NewEnumerator creates an Enumerator.
func NewEnumerator() *Enumerator {
	return &Enumerator{}
}

// Ports lists the serial devices currently visible to the host.
func (e *Enumerator) Ports(ctx context.Context) ([]domain.PortInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details, err := getDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	out := make([]domain.PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil || d.Name == "" {
			continue
		}
		out = append(out, domain.PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
