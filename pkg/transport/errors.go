package transport

import "errors"

// Transport errors.
var (
	// ErrClosed is returned when an operation is attempted on a closed
	// channel.
	ErrClosed = errors.New("transport: closed")

	// ErrNoAddress is returned when neither an address nor a
	// pre-established connection is configured.
	ErrNoAddress = errors.New("transport: no address configured")

	// ErrDial is returned when connecting to the device fails.
	ErrDial = errors.New("transport: dial failed")

	// ErrResponseTooLarge is returned when a response datagram exceeds
	// the protocol's 4096-byte bound.
	ErrResponseTooLarge = errors.New("transport: response exceeds datagram bound")
)
