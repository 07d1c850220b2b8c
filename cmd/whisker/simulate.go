package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bft-labs/whisker/internal/simulator"
)

func (c *cli) simulateCmd() *cobra.Command {
	scfg := simulator.DefaultConfig()
	var header uint8 = simulator.DefaultHeader

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Emit synthetic frames on a pseudo-terminal",
		Long: "Opens a pseudo-terminal, prints its device path and writes frames to it\n" +
			"until interrupted. Point another whisker at it with --port.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scfg.Header = header
			sim, err := simulator.Open(scfg, c.logger)
			if err != nil {
				return err
			}
			defer sim.Close()

			fmt.Fprintln(cmd.OutOrStdout(), sim.Name())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return sim.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&scfg.Interval, "interval", simulator.DefaultInterval, "time between frames")
	cmd.Flags().Uint8Var(&header, "header", header, "header byte of every frame")
	cmd.Flags().IntVar(&scfg.MalformedEvery, "malformed-every", 0, "insert a malformed line after every N frames (0: never)")
	return cmd
}
