package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bft-labs/whisker/pkg/frame"
	"github.com/bft-labs/whisker/pkg/whisker"
)

func (c *cli) decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [line...]",
		Short: "Decode frame lines from arguments or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			pr := newPrinter(cmd.OutOrStdout(), c.cfg.Format)
			if len(args) > 0 {
				return decodeLines(pr, cmd.ErrOrStderr(), args)
			}
			return decodeReader(pr, cmd.ErrOrStderr(), cmd.InOrStdin(), c.cfg.MaxLineBytes)
		},
	}
}

func decodeReader(pr *printer, errOut io.Writer, r io.Reader, maxLine int) error {
	if maxLine <= 0 {
		maxLine = whisker.DefaultMaxLineBytes
	}

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256), maxLine)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return decodeLines(pr, errOut, lines)
}

func decodeLines(pr *printer, errOut io.Writer, lines []string) error {
	var failed int
	for _, line := range lines {
		s, err := frame.Decode(line)
		if err != nil {
			failed++
			fmt.Fprintln(errOut, err)
			continue
		}
		if err := pr.sample(s); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d lines failed to decode", failed, len(lines))
	}
	return nil
}
