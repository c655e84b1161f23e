package discovery

import "errors"

// ErrMotorNotFound is returned when a lookup sees no matching motor
// before its context ends.
var ErrMotorNotFound = errors.New("discovery: motor not found")
