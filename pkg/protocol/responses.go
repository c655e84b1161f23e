package protocol

import (
	"encoding/json"
	"fmt"
)

// Direction reports which way the motor is moving.
type Direction string

// Direction values.
const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionStopped Direction = "stopped"
)

// IsValid returns true if the direction is one of the known values.
func (d Direction) IsValid() bool {
	return d == DirectionUp || d == DirectionDown || d == DirectionStopped
}

// MotorStatus reports the device's health condition.
type MotorStatus string

// MotorStatus values.
const (
	StatusOK       MotorStatus = "ok"
	StatusObstacle MotorStatus = "obstacle"
	StatusThermal  MotorStatus = "thermal"
)

// IsValid returns true if the status is one of the known values.
func (s MotorStatus) IsValid() bool {
	return s == StatusOK || s == StatusObstacle || s == StatusThermal
}

// Position is a point-in-time snapshot of the motor state.
//
// Value uses the device convention: 0 is fully open, 100 is fully
// closed. Display adapters that use the opposite convention must
// invert it themselves.
type Position struct {
	Value     float64     `json:"value"`
	Direction Direction   `json:"direction"`
	Status    MotorStatus `json:"status"`
}

// Validate checks the snapshot against the documented value ranges.
func (p *Position) Validate() error {
	if p.Value < 0 || p.Value > 100 {
		return fmt.Errorf("%w: %v", ErrInvalidPositionValue, p.Value)
	}
	if !p.Direction.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, p.Direction)
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	return nil
}

// Info holds static device identification. Every field is optional on
// the wire.
type Info struct {
	Name     string `json:"name,omitempty"`
	Model    string `json:"model,omitempty"`
	Firmware string `json:"firmware,omitempty"`
	Hardware string `json:"hardware,omitempty"`
	MAC      string `json:"mac,omitempty"`
}

// Key is the AES-128 session key as transmitted by the device: a JSON
// array of byte values, not the base64 string encoding/json would use
// for []byte.
type Key []byte

// UnmarshalJSON decodes a JSON number array into key bytes, rejecting
// values outside [0, 255].
func (k *Key) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: element %d out of byte range", ErrInvalidKeyEncoding, i)
		}
		out[i] = byte(v)
	}
	*k = out
	return nil
}

// MarshalJSON encodes the key in the device's number-array convention.
func (k Key) MarshalJSON() ([]byte, error) {
	raw := make([]int, len(k))
	for i, b := range k {
		raw[i] = int(b)
	}
	return json.Marshal(raw)
}

// AuthResponse answers MethodAuth. TargetID is only meaningful when
// Result is true; it addresses all later commands for the session.
type AuthResponse struct {
	Result   bool   `json:"result"`
	TargetID string `json:"targetID"`
}

// KeyResponse answers MethodGetKey. Key length is validated by the
// caller against the AES-128 key size; the device is not trusted here.
type KeyResponse struct {
	Result bool `json:"result"`
	Key    Key  `json:"key"`
}

// CommandResult answers movement commands. Result false means the
// device refused the command.
type CommandResult struct {
	Result bool `json:"result"`
}

// PositionResponse answers MethodPosition.
type PositionResponse struct {
	Result   bool      `json:"result"`
	Position *Position `json:"position"`
}

// InfoResponse answers MethodInfo.
type InfoResponse struct {
	Result bool  `json:"result"`
	Info   *Info `json:"info"`
}

// ParsePosition decodes and validates a MethodPosition response body.
func ParsePosition(data []byte) (*Position, error) {
	var resp PositionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if !resp.Result || resp.Position == nil {
		return nil, ErrRequestRejected
	}
	if err := resp.Position.Validate(); err != nil {
		return nil, err
	}
	return resp.Position, nil
}

// ParseInfo decodes a MethodInfo response body.
func ParseInfo(data []byte) (*Info, error) {
	var resp InfoResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if !resp.Result || resp.Info == nil {
		return nil, ErrRequestRejected
	}
	return resp.Info, nil
}

// ParseResult decodes a movement command response body and reports
// whether the device accepted the command.
func ParseResult(data []byte) (bool, error) {
	var resp CommandResult
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, err
	}
	return resp.Result, nil
}
