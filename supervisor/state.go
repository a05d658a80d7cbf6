package supervisor

// State is the supervisor's view of its worker.
type State int

const (
	// StateIdle means no worker process exists.
	StateIdle State = iota
	// StateRunning means a worker process has been started and not yet
	// reaped.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}
