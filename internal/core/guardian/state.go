package guardian

// State is a logical state of the guardian loop.
type State int

const (
	StateStarting State = iota
	StateChecking
	StateThrottledWait
	StateRestarting
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateChecking:
		return "checking"
	case StateThrottledWait:
		return "throttled_wait"
	case StateRestarting:
		return "restarting"
	default:
		return "unknown"
	}
}
