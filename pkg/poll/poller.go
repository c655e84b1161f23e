// Package poll drives periodic position updates for a motor session.
//
// The motor client never reconnects on its own, so the poller owns the
// reconnect policy: before each fetch it ensures the session is
// connected, and when a fetch fails it tears the session down,
// reconnects and retries the fetch once. A poll that still fails is
// surfaced through the error callback, and further reconnect attempts
// are spaced out with exponential backoff until one succeeds.
package poll

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pion/logging"

	"github.com/peter-dolkens/somfy-poe/pkg/protocol"
)

// DefaultInterval is the default polling interval.
const DefaultInterval = 5 * time.Second

// DefaultMaxBackoff caps the delay between failed reconnect attempts.
const DefaultMaxBackoff = time.Minute

// Client is the motor session surface the poller drives.
// *motor.Controller implements it.
type Client interface {
	IsConnected() bool
	Connect() error
	Disconnect() error
	Position() (*protocol.Position, error)
}

// Config configures a Poller.
type Config struct {
	// Client is the motor session to poll. Required.
	Client Client

	// Interval is the polling interval. If zero, DefaultInterval is used.
	Interval time.Duration

	// InitialBackoff is the first delay after a failed reconnect
	// attempt. If zero, the backoff library default is used.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between failed reconnect attempts.
	// If zero, DefaultMaxBackoff is used.
	MaxBackoff time.Duration

	// OnUpdate is invoked with each successfully fetched position.
	OnUpdate func(*protocol.Position)

	// OnError is invoked when a poll fails even after the reconnect
	// retry. The poller keeps running; it reports, it does not stop.
	OnError func(error)

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Poller periodically fetches the motor position and keeps the session
// alive across failures.
type Poller struct {
	config  Config
	client  Client
	backoff *backoff.ExponentialBackOff
	log     logging.LeveledLogger
}

// NewPoller creates a poller for the given client.
func NewPoller(config Config) (*Poller, error) {
	if config.Client == nil {
		return nil, ErrNoClient
	}
	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}

	b := backoff.NewExponentialBackOff()
	if config.InitialBackoff != 0 {
		b.InitialInterval = config.InitialBackoff
	}
	b.MaxInterval = config.MaxBackoff
	b.MaxElapsedTime = 0 // never give up
	b.Reset()

	p := &Poller{
		config:  config,
		client:  config.Client,
		backoff: b,
	}
	if config.LoggerFactory != nil {
		p.log = config.LoggerFactory.NewLogger("poll")
	}

	return p, nil
}

// Run polls until the context is cancelled, then disconnects the
// session. The first poll happens immediately. Returns the context
// error.
func (p *Poller) Run(ctx context.Context) error {
	defer p.client.Disconnect()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		p.pollOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// pollOnce runs one poll cycle: fetch, and on failure reconnect and
// retry the fetch once.
func (p *Poller) pollOnce(ctx context.Context) {
	pos, err := p.fetch()
	if err == nil {
		p.deliver(pos)
		return
	}

	if p.log != nil {
		p.log.Debugf("poll failed, reconnecting: %v", err)
	}

	// A failed fetch usually means the session died underneath us.
	// Rebuild it and give the fetch one more chance this cycle.
	p.client.Disconnect()
	if cerr := p.client.Connect(); cerr != nil {
		p.fail(ctx, cerr)
		return
	}

	pos, err = p.client.Position()
	if err != nil {
		p.fail(ctx, err)
		return
	}
	p.deliver(pos)
}

// fetch ensures the session is connected and reads the position.
func (p *Poller) fetch() (*protocol.Position, error) {
	if !p.client.IsConnected() {
		if err := p.client.Connect(); err != nil {
			return nil, err
		}
	}
	return p.client.Position()
}

// deliver reports a successful update and resets the backoff.
func (p *Poller) deliver(pos *protocol.Position) {
	p.backoff.Reset()
	if p.config.OnUpdate != nil {
		p.config.OnUpdate(pos)
	}
}

// fail reports a poll failure and waits out the current backoff delay
// so a flapping device is not hammered with reconnect attempts.
func (p *Poller) fail(ctx context.Context, err error) {
	if p.log != nil {
		p.log.Warnf("poll failed: %v", err)
	}
	if p.config.OnError != nil {
		p.config.OnError(err)
	}

	delay := p.backoff.NextBackOff()
	if delay == backoff.Stop {
		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
