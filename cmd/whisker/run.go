package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/whisker/internal/adapters/ws"
	logAdapter "github.com/bft-labs/whisker/pkg/log"
	"github.com/bft-labs/whisker/pkg/whisker"
	"github.com/bft-labs/whisker/plugins/devicewatcher"
)

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the pipeline and print the latest sample every tick (default command)",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
}

func (c *cli) run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return c.runPipeline(ctx, cmd.OutOrStdout())
}

func (c *cli) runPipeline(ctx context.Context, out io.Writer) error {
	pcfg, err := c.cfg.PipelineConfig()
	if err != nil {
		return err
	}

	opts := []whisker.Option{
		whisker.WithLogger(c.logger),
		whisker.WithEventHandler(&logEvents{logger: c.logger}),
	}
	if c.cfg.WatchDevices {
		opts = append(opts, devicewatcher.WithDefaultDeviceWatcher())
	}
	opts = append(opts, c.opts...)

	p, err := whisker.New(pcfg, opts...)
	if err != nil {
		return fmt.Errorf("create whisker: %w", err)
	}
	// The deferred Stop ends the session once the loop below returns.
	if err := p.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start whisker: %w", err)
	}
	defer func() {
		if err := p.Stop(); err != nil {
			c.logger.Warn("stop whisker", logAdapter.Err(err))
		}
	}()

	if p.Status() == whisker.StateDisabled {
		c.logger.Warn("no device connected", logAdapter.Err(p.Err()))
	}

	var bc *ws.Broadcaster
	if c.cfg.Listen != "" {
		bc = ws.NewBroadcaster(c.logger)
		srv := &http.Server{
			Addr:              c.cfg.Listen,
			Handler:           bc.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.logger.Error("websocket server", logAdapter.Err(err))
			}
		}()
		c.logger.Info("serving samples", logAdapter.String("addr", c.cfg.Listen), logAdapter.String("path", ws.SamplesPath))
		defer func() {
			bc.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	pr := newPrinter(out, c.cfg.Format)
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("received signal, stopping")
			return nil
		case <-ticker.C:
		}

		samples := p.Drain()
		if n := len(samples); n > 0 {
			if err := pr.sample(samples[n-1]); err != nil {
				return err
			}
			if bc != nil {
				bc.Broadcast(samples)
			}
		}

		// Without the watcher nothing will bring the device back.
		if !c.cfg.WatchDevices && p.Status().NeedsDevice() {
			return fmt.Errorf("whisker %s: %w", p.Status(), p.Err())
		}
	}
}

// logEvents reports pipeline events through the CLI logger.
type logEvents struct {
	whisker.BaseEventHandler
	logger logAdapter.Logger
}

func (e *logEvents) OnOverflow(ev whisker.OverflowEvent) {
	e.logger.Debug("queue overflow", logAdapter.Uint64("dropped", ev.Dropped))
}
