package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewConsoleLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewConsoleLogger(&buf, "warn")
	if err != nil {
		t.Fatalf("NewConsoleLogger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown", String("port", "/dev/ttyACM0"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "/dev/ttyACM0") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestNewConsoleLogger_BadLevel(t *testing.T) {
	if _, err := NewConsoleLogger(&bytes.Buffer{}, "loud"); err == nil {
		t.Error("NewConsoleLogger(loud) error = nil, want error")
	}
}

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf))

	z.Error("decode failed",
		String("token", "zz"),
		Int("len", 1),
		Uint16("x", 515),
		Uint64("dropped", 9),
		Bool("fatal", false),
		Duration("wait", time.Second),
		Err(errors.New("boom")),
		Any("ports", []string{"a", "b"}),
	)

	out := buf.String()
	for _, want := range []string{
		`"token":"zz"`,
		`"len":1`,
		`"x":515`,
		`"dropped":9`,
		`"fatal":false`,
		`"error":"boom"`,
		`"ports":["a","b"]`,
		`"message":"decode failed"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestZerologAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf)).With(String("run_id", "abc"))

	z.Info("hello")
	if !strings.Contains(buf.String(), `"run_id":"abc"`) {
		t.Errorf("child logger output %q missing run_id", buf.String())
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoopLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x", Err(errors.New("ignored")))
}
