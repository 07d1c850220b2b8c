package whisker

import "github.com/bft-labs/whisker/internal/app"

// State is the lifecycle state of a Pipeline.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
	// StateDisabled means the pipeline is started but has no device:
	// discovery found zero or several candidates, or the open failed.
	StateDisabled
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	case StateDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// CanStart reports whether Start may be called in this state.
func (s State) CanStart() bool {
	return s == StateStopped || s == StateCrashed || s == StateDisabled
}

// CanStop reports whether Stop may be called in this state.
func (s State) CanStop() bool {
	return s == StateStarting || s == StateRunning || s == StateCrashed || s == StateDisabled
}

// IsRunning reports whether samples are being ingested.
func (s State) IsRunning() bool {
	return s == StateRunning
}

// NeedsDevice reports whether a rediscovery could bring the pipeline up.
func (s State) NeedsDevice() bool {
	return s == StateDisabled || s == StateCrashed
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	case app.StateDisabled:
		return StateDisabled
	default:
		return StateStopped
	}
}
