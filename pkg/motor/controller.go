// Package motor implements the controller for a single Somfy PoE
// motor: the connection state machine, the per-session state (target
// ID, AES-128 session key, message counter) and the typed command API.
//
// One Controller owns exactly one device session. Connect and
// Disconnect serialize on an instance lock, so overlapping lifecycle
// calls never race over sockets or key material. Command calls are
// serialized against each other by the command channel but are not
// gated by the lifecycle lock: a Disconnect racing an in-flight
// command closes the socket and the command fails with a transport
// error. That best-effort semantic is deliberate; callers that need
// stronger isolation must sequence their own calls.
//
// The controller performs no retries and no implicit reconnects
// anywhere. All calls block at most for the transport timeouts (10 s
// TCP connect, 5 s UDP receive) and are safe to issue from their own
// goroutine when a caller's scheduling loop must not stall on socket
// I/O.
package motor

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/peter-dolkens/somfy-poe/pkg/crypto"
	"github.com/peter-dolkens/somfy-poe/pkg/protocol"
	"github.com/peter-dolkens/somfy-poe/pkg/transport"
)

// ControlDialer opens a control channel. Tests replace it to inject
// in-memory pipes.
type ControlDialer func(transport.ControlConfig) (*transport.Control, error)

// CommandDialer opens a command channel. Tests replace it to inject
// in-memory pipes.
type CommandDialer func(transport.CommandConfig) (*transport.Command, error)

// Config configures a Controller.
type Config struct {
	// Host is the device address (IP or hostname). Required.
	Host string

	// PIN is the credential printed on the device. It is kept only for
	// the lifetime of the controller and never persisted.
	PIN string

	// ControlPort overrides the fixed TLS/TCP port.
	// If zero, protocol.ControlPort is used.
	ControlPort int

	// CommandPort overrides the fixed UDP port.
	// If zero, protocol.CommandPort is used.
	CommandPort int

	// DialTimeout bounds the TCP connect. If zero, the transport
	// default (10 s) is used.
	DialTimeout time.Duration

	// ReadTimeout bounds each command response. If zero, the transport
	// default (5 s) is used.
	ReadTimeout time.Duration

	// ControlDialer overrides how the control channel is opened.
	// If nil, transport.DialControl is used.
	ControlDialer ControlDialer

	// CommandDialer overrides how the command channel is opened.
	// If nil, transport.DialCommand is used.
	CommandDialer CommandDialer

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Controller manages one session with one motor.
type Controller struct {
	config      Config
	controlAddr string
	commandAddr string

	dialControl ControlDialer
	dialCommand CommandDialer

	counter *protocol.MessageCounter
	log     logging.LeveledLogger

	// connMu serializes Connect/Disconnect for their whole duration:
	// at most one connection lifecycle transition is in flight.
	connMu sync.Mutex

	mu       sync.RWMutex
	state    State
	targetID string
	key      []byte
	cmd      *transport.Command
}

// NewController creates a controller for the device at config.Host.
// No connection is made; call Connect.
func NewController(config Config) (*Controller, error) {
	if config.Host == "" {
		return nil, ErrNoHost
	}

	controlPort := config.ControlPort
	if controlPort == 0 {
		controlPort = protocol.ControlPort
	}
	commandPort := config.CommandPort
	if commandPort == 0 {
		commandPort = protocol.CommandPort
	}

	c := &Controller{
		config:      config,
		controlAddr: net.JoinHostPort(config.Host, strconv.Itoa(controlPort)),
		commandAddr: net.JoinHostPort(config.Host, strconv.Itoa(commandPort)),
		dialControl: config.ControlDialer,
		dialCommand: config.CommandDialer,
		counter:     protocol.NewMessageCounter(),
		state:       StateDisconnected,
	}

	if c.dialControl == nil {
		c.dialControl = transport.DialControl
	}
	if c.dialCommand == nil {
		c.dialCommand = transport.DialCommand
	}

	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("motor")
	}

	return c, nil
}

// Connect establishes the session: TLS control connection, PIN
// authentication, session key retrieval, command socket setup. On any
// step failure everything opened so far is torn down and the session
// state is fully cleared; no partial key or stale socket survives.
//
// The returned error distinguishes failure classes for the caller:
// transport errors (device unreachable), ErrAuthenticationFailed
// (wrong PIN), ErrAuthorizationFailed / ErrInvalidKey (key retrieval).
// Connect never retries.
func (c *Controller) Connect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	// A live session is replaced, never stacked.
	c.teardown()

	c.setState(StateTCPConnecting)
	ctrl, err := c.dialControl(transport.ControlConfig{
		Addr:          c.controlAddr,
		DialTimeout:   c.config.DialTimeout,
		LoggerFactory: c.config.LoggerFactory,
	})
	if err != nil {
		c.teardown()
		return err
	}
	// The control channel only serves the handshake.
	defer ctrl.Close()

	c.setState(StateAuthenticating)
	targetID, err := c.authenticate(ctrl)
	if err != nil {
		c.teardown()
		return err
	}

	c.setState(StateAuthorizing)
	key, err := c.authorize(ctrl)
	if err != nil {
		c.teardown()
		return err
	}

	c.setState(StateUDPReady)
	cmd, err := c.dialCommand(transport.CommandConfig{
		Addr:          c.commandAddr,
		Key:           key,
		ReadTimeout:   c.config.ReadTimeout,
		LoggerFactory: c.config.LoggerFactory,
	})
	if err != nil {
		c.teardown()
		return err
	}

	c.mu.Lock()
	c.targetID = targetID
	c.key = key
	c.cmd = cmd
	c.state = StateConnected
	c.mu.Unlock()

	if c.log != nil {
		c.log.Infof("connected to motor %s at %s", targetID, c.config.Host)
	}
	return nil
}

// Disconnect tears the session down and clears the key material and
// target ID. It is idempotent: safe on a never-connected controller,
// safe to call twice, and always leaves the state Disconnected, so a
// caller-driven reconnect can follow immediately.
func (c *Controller) Disconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	c.teardown()

	if c.log != nil {
		c.log.Debugf("disconnected from motor at %s", c.config.Host)
	}
	return nil
}

// teardown closes the command socket and clears all session state.
// Callers must hold connMu.
func (c *Controller) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd != nil {
		if err := c.cmd.Close(); err != nil && c.log != nil {
			c.log.Warnf("closing command channel: %v", err)
		}
		c.cmd = nil
	}
	c.targetID = ""
	c.key = nil
	c.state = StateDisconnected
}

// authenticate presents the PIN and returns the session target ID.
func (c *Controller) authenticate(ctrl *transport.Control) (string, error) {
	body, err := ctrl.Call(protocol.NewAuthRequest(c.counter.Next(), c.config.PIN))
	if err != nil {
		return "", err
	}

	var resp protocol.AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("motor: malformed auth response: %w", err)
	}
	if !resp.Result {
		if c.log != nil {
			c.log.Warnf("device at %s rejected PIN", c.config.Host)
		}
		return "", ErrAuthenticationFailed
	}

	if c.log != nil {
		c.log.Infof("authenticated, target ID %s", resp.TargetID)
	}
	return resp.TargetID, nil
}

// authorize retrieves and validates the AES-128 session key.
func (c *Controller) authorize(ctrl *transport.Control) ([]byte, error) {
	body, err := ctrl.Call(protocol.NewKeyRequest(c.counter.Next()))
	if err != nil {
		return nil, err
	}

	var resp protocol.KeyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("motor: malformed key response: %w", err)
	}
	if !resp.Result {
		return nil, ErrAuthorizationFailed
	}
	if len(resp.Key) != crypto.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(resp.Key), crypto.KeySize)
	}

	return []byte(resp.Key), nil
}

// setState records an intermediate lifecycle state.
func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()

	if c.log != nil {
		c.log.Debugf("state: %s", s)
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the session is fully established: live
// command socket and non-nil key material.
func (c *Controller) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == StateConnected && c.cmd != nil && c.key != nil
}

// TargetID returns the device-assigned session identifier, or "" when
// not connected.
func (c *Controller) TargetID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.targetID
}

// Host returns the configured device address.
func (c *Controller) Host() string {
	return c.config.Host
}

// session snapshots the command channel and target ID, or fails with
// ErrNotConnected without any network I/O.
func (c *Controller) session() (*transport.Command, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != StateConnected || c.cmd == nil || c.key == nil {
		return nil, "", ErrNotConnected
	}
	return c.cmd, c.targetID, nil
}

// MoveUp drives the motor to its upper limit (open).
func (c *Controller) MoveUp() error {
	return c.move(protocol.MethodMoveUp)
}

// MoveDown drives the motor to its lower limit (closed).
func (c *Controller) MoveDown() error {
	return c.move(protocol.MethodMoveDown)
}

// Stop halts any movement in progress.
func (c *Controller) Stop() error {
	return c.move(protocol.MethodMoveStop)
}

// Wink jogs the motor briefly so it can be identified physically.
func (c *Controller) Wink() error {
	return c.move(protocol.MethodWink)
}

// move issues a simple movement command.
func (c *Controller) move(method string) error {
	cmd, targetID, err := c.session()
	if err != nil {
		return err
	}
	return c.exchangeResult(cmd, protocol.NewMoveRequest(c.counter.Next(), method, targetID))
}

// MoveToPosition drives the motor to the given position, 0 (open) to
// 100 (closed) in the device convention. The value is forwarded
// unclamped: out-of-range behavior is device-defined, and inventing a
// clamp here would mask it.
func (c *Controller) MoveToPosition(position float64) error {
	cmd, targetID, err := c.session()
	if err != nil {
		return err
	}
	return c.exchangeResult(cmd, protocol.NewMoveToRequest(c.counter.Next(), targetID, position))
}

// exchangeResult runs one command exchange and interprets the boolean
// result. Failures are reported per call; they never take the session
// down by themselves.
func (c *Controller) exchangeResult(cmd *transport.Command, req protocol.Request) error {
	body, err := cmd.Exchange(req)
	if err != nil {
		if c.log != nil {
			c.log.Warnf("%s failed: %v", req.Method, err)
		}
		return err
	}

	ok, err := protocol.ParseResult(body)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrCommandRejected, req.Method)
	}
	return nil
}

// Position reads the current position snapshot. The device convention
// is reported as-is: 0 is open, 100 is closed.
func (c *Controller) Position() (*protocol.Position, error) {
	cmd, targetID, err := c.session()
	if err != nil {
		return nil, err
	}

	body, err := cmd.Exchange(protocol.NewStatusRequest(c.counter.Next(), protocol.MethodPosition, targetID))
	if err != nil {
		if c.log != nil {
			c.log.Warnf("position query failed: %v", err)
		}
		return nil, err
	}

	return protocol.ParsePosition(body)
}

// Info reads static device information.
func (c *Controller) Info() (*protocol.Info, error) {
	cmd, targetID, err := c.session()
	if err != nil {
		return nil, err
	}

	body, err := cmd.Exchange(protocol.NewStatusRequest(c.counter.Next(), protocol.MethodInfo, targetID))
	if err != nil {
		if c.log != nil {
			c.log.Warnf("info query failed: %v", err)
		}
		return nil, err
	}

	return protocol.ParseInfo(body)
}
