// Package protocol defines the wire types for the Somfy PoE motor
// protocol.
//
// The protocol has two halves:
//   - A control channel (TLS over TCP, port 55056) carrying plain JSON
//     requests for PIN authentication and session key retrieval.
//   - A command channel (UDP, port 55055) carrying the same JSON
//     envelope shape, AES-128-CBC encrypted (see pkg/crypto).
//
// Free-form request/response mappings from the vendor protocol are
// expressed here as a closed set of typed records, one per method,
// validated when parsed rather than accessed by key lookup.
package protocol

// Fixed device ports. Both are immutable properties of the device.
const (
	// ControlPort is the TLS/TCP port for the authentication handshake.
	ControlPort = 55056

	// CommandPort is the UDP port for encrypted motor commands.
	CommandPort = 55055
)

// Method names.
const (
	// MethodAuth authenticates the session with the device PIN.
	// Control channel.
	MethodAuth = "security.auth"

	// MethodGetKey retrieves the AES-128 session key after a
	// successful authentication. Control channel.
	MethodGetKey = "security.get"

	// MethodMoveUp drives the motor to its upper limit.
	MethodMoveUp = "move.up"

	// MethodMoveDown drives the motor to its lower limit.
	MethodMoveDown = "move.down"

	// MethodMoveStop halts any movement in progress.
	MethodMoveStop = "move.stop"

	// MethodMoveTo drives the motor to a specific position.
	MethodMoveTo = "move.to"

	// MethodWink jogs the motor briefly for physical identification.
	MethodWink = "move.wink"

	// MethodPosition reads the current position snapshot.
	MethodPosition = "status.position"

	// MethodInfo reads static device information.
	MethodInfo = "status.info"
)

// DefaultSeq is the movement sequence tag carried by all movement
// commands. The observed protocol never varies it.
const DefaultSeq = 1

// Request is the JSON envelope sent on both channels. IDs are assigned
// per session and strictly increase; the device does not echo them on
// the command channel, where strict per-socket response ordering is
// assumed instead.
type Request struct {
	ID     int    `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// AuthParams carries the device PIN for MethodAuth.
type AuthParams struct {
	Code string `json:"code"`
}

// MoveParams addresses a movement command (up, down, stop, wink).
type MoveParams struct {
	TargetID string `json:"targetID"`
	Seq      int    `json:"seq"`
}

// MoveToParams addresses a MethodMoveTo command. Position is forwarded
// exactly as given; out-of-range values are device-defined behavior and
// deliberately not clamped here.
type MoveToParams struct {
	TargetID string  `json:"targetID"`
	Position float64 `json:"position"`
	Seq      int     `json:"seq"`
}

// StatusParams addresses a status query (position, info).
type StatusParams struct {
	TargetID string `json:"targetID"`
}

// NewAuthRequest builds a MethodAuth request for the given PIN.
func NewAuthRequest(id int, pin string) Request {
	return Request{ID: id, Method: MethodAuth, Params: AuthParams{Code: pin}}
}

// NewKeyRequest builds a MethodGetKey request. It carries no params.
func NewKeyRequest(id int) Request {
	return Request{ID: id, Method: MethodGetKey}
}

// NewMoveRequest builds a movement request for MethodMoveUp,
// MethodMoveDown, MethodMoveStop or MethodWink.
func NewMoveRequest(id int, method, targetID string) Request {
	return Request{ID: id, Method: method, Params: MoveParams{TargetID: targetID, Seq: DefaultSeq}}
}

// NewMoveToRequest builds a MethodMoveTo request. The position value is
// passed through unclamped.
func NewMoveToRequest(id int, targetID string, position float64) Request {
	return Request{ID: id, Method: MethodMoveTo, Params: MoveToParams{
		TargetID: targetID,
		Position: position,
		Seq:      DefaultSeq,
	}}
}

// NewStatusRequest builds a status query for MethodPosition or
// MethodInfo.
func NewStatusRequest(id int, method, targetID string) Request {
	return Request{ID: id, Method: method, Params: StatusParams{TargetID: targetID}}
}
