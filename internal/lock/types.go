// Package lock owns the lock's current and target state and performs the
// physical actuation that keeps them consistent with the relay.
// It has no hardware or transport dependencies: outputs and notifications
// are injected.
package lock

// State is the protocol-defined lock state. The numeric values are the wire
// encoding: 0 means unsecured.
type State uint8

const (
	Unsecured State = 0
	Secured   State = 1
	Jammed    State = 2
	Unknown   State = 3
)

// String returns the upper-case state name.
func (s State) String() string {
	switch s {
	case Unsecured:
		return "UNSECURED"
	case Secured:
		return "SECURED"
	case Jammed:
		return "JAMMED"
	case Unknown:
		return "UNKNOWN"
	default:
		return "INVALID"
	}
}

// FromValue maps a remote set value onto the two states this lock can
// reach: 0 is Unsecured, anything else is Secured.
func FromValue(v int) State {
	if v == 0 {
		return Unsecured
	}
	return Secured
}
