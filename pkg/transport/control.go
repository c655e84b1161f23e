// Package transport implements the two channels of the Somfy PoE motor
// protocol: a one-shot TLS/TCP control channel for the authentication
// handshake and an AES-encrypted UDP command channel.
package transport

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/peter-dolkens/somfy-poe/pkg/protocol"
)

// DefaultDialTimeout bounds the TCP connect to the control port. It
// also bounds each request/response exchange on the channel.
const DefaultDialTimeout = 10 * time.Second

// Control is the TLS/TCP control channel. It lives only for the
// duration of the connect handshake: authenticate, fetch the session
// key, close.
//
// TLS certificate verification is disabled on purpose. The device
// presents a self-signed certificate that cannot be verified against
// any CA; accepting it is a property of the wrapped protocol, inherited
// here as a documented security limitation.
type Control struct {
	conn    net.Conn
	dec     *json.Decoder
	timeout time.Duration
	log     logging.LeveledLogger

	mu     sync.Mutex
	closed bool
}

// ControlConfig configures the control channel.
type ControlConfig struct {
	// Addr is the device control endpoint, "host:port".
	// Ignored if Conn is provided.
	Addr string

	// Conn is an optional pre-established connection, used as-is
	// without TLS wrapping. Intended for tests with in-memory pipes.
	Conn net.Conn

	// DialTimeout bounds the TCP connect and each exchange.
	// If zero, DefaultDialTimeout is used.
	DialTimeout time.Duration

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// DialControl opens the control channel to the device.
func DialControl(config ControlConfig) (*Control, error) {
	c := &Control{
		conn:    config.Conn,
		timeout: config.DialTimeout,
	}
	if c.timeout == 0 {
		c.timeout = DefaultDialTimeout
	}

	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("transport-control")
	}

	if c.conn == nil {
		if config.Addr == "" {
			return nil, ErrNoAddress
		}

		dialer := &net.Dialer{Timeout: c.timeout}
		conn, err := tls.DialWithDialer(dialer, "tcp", config.Addr, &tls.Config{
			// The device's certificate is self-signed and unverifiable.
			InsecureSkipVerify: true,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDial, err)
		}
		c.conn = conn

		if c.log != nil {
			c.log.Debugf("control channel established to %s", config.Addr)
		}
	}

	// TCP is a stream: a response may arrive split across TLS records,
	// so responses are decoded from the stream rather than read as one
	// segment.
	c.dec = json.NewDecoder(c.conn)

	return c, nil
}

// Call sends one JSON request and returns the raw response body. The
// channel carries exactly one outstanding request at a time.
func (c *Control) Call(req protocol.Request) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debugf("control send: %s", req.Method)
	}

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if _, err := c.conn.Write(data); err != nil {
		return nil, fmt.Errorf("control write: %w", err)
	}

	var body json.RawMessage
	if err := c.dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("control read: %w", err)
	}

	if c.log != nil {
		c.log.Debugf("control recv: %d bytes", len(body))
	}

	return body, nil
}

// Close closes the underlying connection. It is safe to call more than
// once.
func (c *Control) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
