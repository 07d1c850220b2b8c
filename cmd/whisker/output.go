package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bft-labs/whisker/internal/cliconfig"
	"github.com/bft-labs/whisker/pkg/frame"
)

// printer writes samples in the configured format, one per line.
type printer struct {
	w    io.Writer
	json bool
	enc  *json.Encoder
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{
		w:    w,
		json: format == cliconfig.FormatJSON,
		enc:  json.NewEncoder(w),
	}
}

func (p *printer) sample(s frame.Sample) error {
	if p.json {
		return p.enc.Encode(s)
	}
	_, err := fmt.Fprintln(p.w, s)
	return err
}

func (p *printer) value(v any) error {
	if p.json {
		return p.enc.Encode(v)
	}
	_, err := fmt.Fprintln(p.w, v)
	return err
}
