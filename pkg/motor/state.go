package motor

// State is the connection lifecycle state of a Controller.
//
// Connect advances through the intermediate states in order; any
// failure tears everything down and returns to StateDisconnected.
// There is no persistent failed state.
type State int

// State values.
const (
	// StateDisconnected means no session exists. Key material and the
	// target ID are cleared in this state.
	StateDisconnected State = iota

	// StateTCPConnecting means the TLS control connection is being
	// established.
	StateTCPConnecting

	// StateAuthenticating means the PIN is being presented.
	StateAuthenticating

	// StateAuthorizing means the session key is being retrieved.
	StateAuthorizing

	// StateUDPReady means the command socket is being set up.
	StateUDPReady

	// StateConnected means the session is fully established and
	// commands may be issued.
	StateConnected
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateTCPConnecting:
		return "TCPConnecting"
	case StateAuthenticating:
		return "Authenticating"
	case StateAuthorizing:
		return "Authorizing"
	case StateUDPReady:
		return "UDPReady"
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the state is one of the defined values.
func (s State) IsValid() bool {
	return s >= StateDisconnected && s <= StateConnected
}
