package protocol

import "errors"

// Protocol package errors.
var (
	// ErrRequestRejected is returned when the device answers a request
	// with result=false or omits the expected payload.
	ErrRequestRejected = errors.New("protocol: request rejected by device")

	// ErrInvalidPositionValue is returned when a reported position is
	// outside [0, 100].
	ErrInvalidPositionValue = errors.New("protocol: position value out of range")

	// ErrInvalidDirection is returned when a reported direction is not
	// up, down or stopped.
	ErrInvalidDirection = errors.New("protocol: invalid direction")

	// ErrInvalidStatus is returned when a reported motor status is not
	// ok, obstacle or thermal.
	ErrInvalidStatus = errors.New("protocol: invalid motor status")

	// ErrInvalidKeyEncoding is returned when a key array element is not
	// a byte value.
	ErrInvalidKeyEncoding = errors.New("protocol: invalid key encoding")
)
