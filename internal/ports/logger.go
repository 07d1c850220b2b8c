package ports

import "github.com/bft-labs/whisker/pkg/log"

// Logger is the structured logging abstraction used by the application layer.
type Logger = log.Logger

// Field is a key/value pair attached to a log entry.
type Field = log.Field

// Field constructors, re-exported so internal packages need a single import.
var (
	String   = log.String
	Stringer = log.Stringer
	Int      = log.Int
	Uint16   = log.Uint16
	Uint64   = log.Uint64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
