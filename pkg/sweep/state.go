package sweep

// State is the phase of a scan invocation
type State int

const (
	Idle State = iota
	EnumeratingAddresses
	LivenessPhase
	PortPhase
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case EnumeratingAddresses:
		return "enumerating-addresses"
	case LivenessPhase:
		return "liveness-phase"
	case PortPhase:
		return "port-phase"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}
