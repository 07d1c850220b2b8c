package serial

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader returns one chunk per Read. An empty chunk simulates a
// read timeout. After the script it returns err, or io.EOF if err is nil.
type scriptedReader struct {
	chunks []string
	err    error
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	c := r.chunks[0]
	r.chunks = r.chunks[1:]
	return copy(p, c), nil
}

func readAll(t *testing.T, lr *LineReader) ([]string, []error) {
	t.Helper()
	var lines []string
	var errs []error
	for {
		line, err := lr.ReadLine(context.Background())
		if errors.Is(err, io.EOF) {
			return lines, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lines = append(lines, line)
	}
}

func TestLineReader_Lines(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{"single line", []string{"00aabb\n"}, []string{"00aabb"}},
		{"crlf", []string{"00aabb\r\n"}, []string{"00aabb"}},
		{"several lines in one read", []string{"a\nb\nc\n"}, []string{"a", "b", "c"}},
		{"split across timeouts", []string{"0001", "", "0203", "", "", "040506\n"}, []string{"00010203040506"}},
		{"split terminator", []string{"abc\r", "\nxyz\n"}, []string{"abc", "xyz"}},
		{"empty line", []string{"\n"}, []string{""}},
		{"trailing partial never yielded", []string{"a\nparti"}, []string{"a"}},
		{"timeouts only", []string{"", "", ""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLineReader(&scriptedReader{chunks: tt.chunks}, 0)
			lines, errs := readAll(t, lr)
			assert.Empty(t, errs)
			if diff := cmp.Diff(tt.want, lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLineReader_PartialRetained(t *testing.T) {
	sr := &scriptedReader{chunks: []string{"00ab"}}
	lr := NewLineReader(sr, 0)

	_, err := lr.ReadLine(context.Background())
	require.ErrorIs(t, err, io.EOF)

	sr.chunks = []string{"cd\n"}
	line, err := lr.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00abcd", line)
}

func TestLineReader_LineTooLong(t *testing.T) {
	t.Run("newline in same read", func(t *testing.T) {
		lr := NewLineReader(&scriptedReader{chunks: []string{"0123456789\nok\n"}}, 8)
		lines, errs := readAll(t, lr)

		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrLineTooLong)
		assert.Equal(t, []string{"ok"}, lines)
	})

	t.Run("device never sends newline", func(t *testing.T) {
		chunks := []string{"aaaaaa", "aaaaaa", "aaaaaa", "aaaaaa", "tail\nnext\n"}
		lr := NewLineReader(&scriptedReader{chunks: chunks}, 8)
		lines, errs := readAll(t, lr)

		require.Len(t, errs, 1, "an overlong line is reported once")
		assert.ErrorIs(t, errs[0], ErrLineTooLong)
		assert.Equal(t, []string{"next"}, lines, "the tail of the overlong line is not a line")
	})

	t.Run("exactly at limit", func(t *testing.T) {
		lr := NewLineReader(&scriptedReader{chunks: []string{"12345678\n"}}, 8)
		lines, errs := readAll(t, lr)

		assert.Empty(t, errs)
		assert.Equal(t, []string{"12345678"}, lines)
	})
}

func TestLineReader_ReadError(t *testing.T) {
	boom := errors.New("device unplugged")
	lr := NewLineReader(&scriptedReader{err: boom}, 0)

	_, err := lr.ReadLine(context.Background())
	assert.ErrorIs(t, err, boom)
}

// timeoutReader always times out.
type timeoutReader struct{}

func (timeoutReader) Read([]byte) (int, error) {
	time.Sleep(time.Millisecond)
	return 0, nil
}

func TestLineReader_ContextCancel(t *testing.T) {
	lr := NewLineReader(timeoutReader{}, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := lr.ReadLine(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLineReader_PTY(t *testing.T) {
	master, slave, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	t.Cleanup(func() { master.Close(); slave.Close() })

	lr := NewLineReader(slave, 0)

	_, err = master.Write([]byte("00010203040506 rest\n"))
	require.NoError(t, err)

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := lr.ReadLine(context.Background())
		done <- result{line, err}
	}()

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.True(t, strings.HasPrefix(r.line, "00010203040506"), "got %q", r.line)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for line from pty")
	}
}
