package delegate

// State is the host lifecycle state as seen by the delegate.
type State int

const (
	StateUninitialized State = iota
	StateStarted
	StateSurfaceReady
	StateRunning
	StatePaused
	StateStopped
	StateDestroyed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateStarted:
		return "Started"
	case StateSurfaceReady:
		return "SurfaceReady"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateStopped:
		return "Stopped"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}
