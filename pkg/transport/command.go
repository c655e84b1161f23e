package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/peter-dolkens/somfy-poe/pkg/crypto"
	"github.com/peter-dolkens/somfy-poe/pkg/protocol"
)

// Command channel bounds.
const (
	// MaxDatagramSize is the receive buffer bound. The device never
	// sends more; anything larger is a protocol violation.
	MaxDatagramSize = 4096

	// DefaultReadTimeout bounds the wait for a command response.
	DefaultReadTimeout = 5 * time.Second
)

// Command is the encrypted UDP command channel. Every envelope is
// framed through the session cipher (IV || AES-128-CBC ciphertext) and
// exchanged synchronously: one send, one receive, in order, with no
// pipelining. The device does not echo request IDs, so strict
// per-socket response ordering is a load-bearing protocol assumption.
type Command struct {
	conn        net.Conn
	cipher      *crypto.Cipher
	readTimeout time.Duration
	log         logging.LeveledLogger

	mu sync.Mutex // one exchange owns the socket at a time

	stateMu sync.Mutex
	closed  bool
}

// CommandConfig configures the command channel.
type CommandConfig struct {
	// Addr is the device command endpoint, "host:port".
	// Ignored if Conn is provided.
	Addr string

	// Conn is an optional pre-established packet-oriented connection.
	// Intended for tests with in-memory pipes.
	Conn net.Conn

	// Key is the 16-byte AES-128 session key. Required.
	Key []byte

	// ReadTimeout bounds the wait for each response.
	// If zero, DefaultReadTimeout is used.
	ReadTimeout time.Duration

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// DialCommand opens the command channel with the given session key.
func DialCommand(config CommandConfig) (*Command, error) {
	cipher, err := crypto.NewCipher(config.Key)
	if err != nil {
		return nil, err
	}

	c := &Command{
		conn:        config.Conn,
		cipher:      cipher,
		readTimeout: config.ReadTimeout,
	}
	if c.readTimeout == 0 {
		c.readTimeout = DefaultReadTimeout
	}

	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("transport-command")
	}

	if c.conn == nil {
		if config.Addr == "" {
			return nil, ErrNoAddress
		}

		conn, err := net.Dial("udp", config.Addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDial, err)
		}
		c.conn = conn

		if c.log != nil {
			c.log.Debugf("command channel open to %s", config.Addr)
		}
	}

	return c, nil
}

// Exchange encrypts and sends one envelope, then blocks for the single
// corresponding response datagram and returns its decrypted body.
// Concurrent callers are serialized so datagrams never interleave onto
// mismatched responses.
func (c *Command) Exchange(req protocol.Request) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stateMu.Lock()
	closed := c.closed
	c.stateMu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	plaintext, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	sealed, err := c.cipher.Seal(plaintext)
	if err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debugf("command send: %s (%d bytes sealed)", req.Method, len(sealed))
	}

	if err := c.conn.SetDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return nil, err
	}

	if _, err := c.conn.Write(sealed); err != nil {
		return nil, fmt.Errorf("command write: %w", err)
	}

	// One extra byte so a datagram over the bound is detected rather
	// than silently truncated.
	buf := make([]byte, MaxDatagramSize+1)
	n, err := c.conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("command read: %w", err)
	}
	if n > MaxDatagramSize {
		return nil, ErrResponseTooLarge
	}

	body, err := c.cipher.Open(buf[:n])
	if err != nil {
		if c.log != nil {
			c.log.Warnf("command response failed to decrypt: %v", err)
		}
		return nil, err
	}

	if c.log != nil {
		c.log.Debugf("command recv: %d bytes plaintext", len(body))
	}

	return body, nil
}

// Close closes the underlying socket. It is safe to call more than
// once. Close does not wait for an exchange in flight; closing the
// socket makes it fail with a read or write error instead.
func (c *Command) Close() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
