package frame

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MinLength is the number of decoded bytes a frame needs to carry all three axes.
const MinLength = 7

var (
	// ErrMalformed is returned when the frame token is not valid hex.
	ErrMalformed = errors.New("frame: malformed")

	// ErrUnderflow is returned when the decoded frame is shorter than MinLength.
	ErrUnderflow = errors.New("frame: underflow")
)

// Sample is one three-axis reading as reported by the sensor.
type Sample struct {
	X uint16 `json:"x"`
	Y uint16 `json:"y"`
	Z uint16 `json:"z"`
}

// String implements fmt.Stringer.
func (s Sample) String() string {
	return fmt.Sprintf("x=%d y=%d z=%d", s.X, s.Y, s.Z)
}

// DecodeError describes a line that could not be turned into a Sample.
// Err is ErrMalformed or ErrUnderflow.
type DecodeError struct {
	Token string
	Len   int // decoded byte count, zero for malformed tokens
	Err   error
	cause error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrUnderflow) {
		return fmt.Sprintf("%v: %d bytes in %q, need %d", e.Err, e.Len, e.Token, MinLength)
	}
	if e.cause != nil {
		return fmt.Sprintf("%v: %q: %v", e.Err, e.Token, e.cause)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Token)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Token returns the frame token of a line: everything before the first space,
// or the whole line when it has none. Line terminators are not part of the token.
func Token(line string) string {
	line = strings.TrimRight(line, "\r\n")
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i]
	}
	return line
}

// Decode parses one telemetry line.
func Decode(line string) (Sample, error) {
	tok := Token(line)
	b, err := hex.DecodeString(tok)
	if err != nil {
		return Sample{}, &DecodeError{Token: tok, Err: ErrMalformed, cause: err}
	}
	if len(b) < MinLength {
		return Sample{}, &DecodeError{Token: tok, Len: len(b), Err: ErrUnderflow}
	}

	return Sample{
		X: binary.BigEndian.Uint16(b[1:3]),
		Y: binary.BigEndian.Uint16(b[3:5]),
		Z: binary.BigEndian.Uint16(b[5:7]),
	}, nil
}

// Encode renders s as a frame token with the given header byte.
// Decode(Encode(h, s)) == s for every h.
func Encode(header byte, s Sample) string {
	var b [MinLength]byte
	b[0] = header
	binary.BigEndian.PutUint16(b[1:3], s.X)
	binary.BigEndian.PutUint16(b[3:5], s.Y)
	binary.BigEndian.PutUint16(b[5:7], s.Z)
	return hex.EncodeToString(b[:])
}
