package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	serialAdapter "github.com/bft-labs/whisker/internal/adapters/serial"
	"github.com/bft-labs/whisker/internal/app"
	"github.com/bft-labs/whisker/internal/domain"
)

func (c *cli) portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial devices and which one would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := app.NewDiscovery(serialAdapter.NewEnumerator(), c.cfg.Port, c.logger)
			rep, err := buildPortsReport(cmd.Context(), d)
			if err != nil {
				return err
			}
			return writePortsReport(cmd.OutOrStdout(), newPrinter(cmd.OutOrStdout(), c.cfg.Format), rep)
		},
	}
}

type portsReport struct {
	Ports    []domain.PortInfo `json:"ports"`
	Selected string            `json:"selected,omitempty"`
	Verdict  string            `json:"verdict"`
}

func buildPortsReport(ctx context.Context, d *app.Discovery) (portsReport, error) {
	list, err := d.List(ctx)
	if err != nil {
		return portsReport{}, fmt.Errorf("list ports: %w", err)
	}
	rep := portsReport{Ports: list}

	sel, err := d.Select(ctx)
	var amb *domain.AmbiguousDeviceError
	switch {
	case err == nil:
		rep.Selected = sel.Name
		rep.Verdict = "using " + sel.Name
	case errors.Is(err, domain.ErrNoDevice):
		rep.Verdict = "no device"
	case errors.As(err, &amb):
		rep.Verdict = fmt.Sprintf("ambiguous: %d devices, pass --port", len(amb.Candidates))
	default:
		return portsReport{}, err
	}
	return rep, nil
}

func writePortsReport(w io.Writer, pr *printer, rep portsReport) error {
	if pr.json {
		if rep.Ports == nil {
			rep.Ports = []domain.PortInfo{}
		}
		return pr.value(rep)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tUSB\tVID:PID\tSERIAL\tPRODUCT")
	for _, p := range rep.Ports {
		ids := "-"
		if p.IsUSB {
			ids = p.VID + ":" + p.PID
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n", p.Name, p.IsUSB, ids, dash(p.SerialNumber), dash(p.Product))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "verdict:", rep.Verdict)
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
