package motor

import "errors"

// Motor controller errors.
var (
	// ErrNoHost is returned when a controller is created without a
	// device address.
	ErrNoHost = errors.New("motor: no host configured")

	// ErrNotConnected is returned when a command is attempted before
	// the session reached Connected. The client never reconnects
	// implicitly; that policy belongs to the caller.
	ErrNotConnected = errors.New("motor: not connected")

	// ErrAuthenticationFailed is returned when the device rejects the
	// PIN. The client does not retry; the PIN is either right or wrong.
	ErrAuthenticationFailed = errors.New("motor: authentication failed, check PIN")

	// ErrAuthorizationFailed is returned when the device rejects the
	// session key request after a successful authentication.
	ErrAuthorizationFailed = errors.New("motor: authorization failed")

	// ErrInvalidKey is returned when the device delivers a session key
	// that is not exactly 16 bytes. Truncating or padding it would
	// silently break every later exchange, so it is a hard failure.
	ErrInvalidKey = errors.New("motor: device returned malformed session key")

	// ErrCommandRejected is returned when the device answers a command
	// with result=false.
	ErrCommandRejected = errors.New("motor: command rejected by device")
)
