// Package frame decodes the line-per-frame telemetry format emitted by
// whisker sensor boards.
//
// Each line carries a hex token followed by optional free text:
//
//	01020304050607 t=1812
//
// The token is the text up to the first space. Once hex-decoded it must be
// at least seven bytes long:
//
//	offset  0     1..2   3..4   5..6
//	        hdr   X      Y      Z       (big-endian uint16)
//
// Byte 0 is a header the board uses for its own bookkeeping and is ignored,
// as is anything after offset 6.
//
// # Usage
//
//	s, err := frame.Decode(line)
//	switch {
//	case errors.Is(err, frame.ErrMalformed):
//	    // not hex, drop the line
//	case errors.Is(err, frame.ErrUnderflow):
//	    // too short, blank lines included, drop the line
//	}
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package frame
