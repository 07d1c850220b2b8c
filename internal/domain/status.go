package domain

import "time"

// Stats are the worker counters since the pipeline started.
type Stats struct {
	LinesRead       uint64 `json:"lines_read"`
	SamplesDecoded  uint64 `json:"samples_decoded"`
	MalformedFrames uint64 `json:"malformed_frames"`
	UnderflowFrames uint64 `json:"underflow_frames"`
	SamplesDropped  uint64 `json:"samples_dropped"`
	LinesDiscarded  uint64 `json:"lines_discarded"`
	ReadErrors      uint64 `json:"read_errors"`
}

// DecodeFailures returns the number of lines that produced no sample.
func (s Stats) DecodeFailures() uint64 {
	return s.MalformedFrames + s.UnderflowFrames
}

// Status is the snapshot written to the status file.
// It never contains samples.
type Status struct {
	RunID     string    `json:"run_id"`
	State     string    `json:"state"`
	Port      string    `json:"port,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Stats     Stats     `json:"stats"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty returns true if the status has never been written.
func (s Status) IsEmpty() bool {
	return s.RunID == ""
}
