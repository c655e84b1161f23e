// Package discovery finds Somfy PoE motors on the local network via
// mDNS/DNS-SD. Motors announce themselves under the _somfy-poe._tcp
// service and carry their identity in TXT records.
package discovery

import (
	"context"
	"net"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/pion/logging"
)

const (
	// Service is the DNS-SD service type announced by the motors.
	Service = "_somfy-poe._tcp"

	// DefaultDomain is the mDNS domain.
	DefaultDomain = "local."
)

// DefaultBrowseTimeout is the default timeout for browse operations.
const DefaultBrowseTimeout = 10 * time.Second

// DefaultLookupTimeout is the default timeout for lookup operations.
const DefaultLookupTimeout = 5 * time.Second

// MDNSResolver is the interface for mDNS service resolution.
// This allows for dependency injection in tests.
type MDNSResolver interface {
	// Browse browses for services of the given type.
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// zeroconfResolver is the production implementation using grandcat/zeroconf.
type zeroconfResolver struct {
	resolver *zeroconf.Resolver
}

func newZeroconfResolver() (*zeroconfResolver, error) {
	r, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, err
	}
	return &zeroconfResolver{resolver: r}, nil
}

func (z *zeroconfResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	return z.resolver.Browse(ctx, service, domain, entries)
}

// ResolverConfig holds configuration for the Resolver.
type ResolverConfig struct {
	// MDNSResolver is the underlying mDNS resolver implementation.
	// If nil, the default zeroconf resolver is used.
	MDNSResolver MDNSResolver

	// BrowseTimeout is the timeout for browse operations.
	// If zero, DefaultBrowseTimeout is used.
	BrowseTimeout time.Duration

	// LookupTimeout is the timeout for lookup operations.
	// If zero, DefaultLookupTimeout is used.
	LookupTimeout time.Duration

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Resolver discovers Somfy PoE motors via DNS-SD.
type Resolver struct {
	config   ResolverConfig
	resolver MDNSResolver
	log      logging.LeveledLogger
}

// NewResolver creates a new Resolver with the given configuration.
func NewResolver(config ResolverConfig) (*Resolver, error) {
	resolver := config.MDNSResolver
	if resolver == nil {
		zr, err := newZeroconfResolver()
		if err != nil {
			return nil, err
		}
		resolver = zr
	}

	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = DefaultBrowseTimeout
	}
	if config.LookupTimeout == 0 {
		config.LookupTimeout = DefaultLookupTimeout
	}

	r := &Resolver{
		config:   config,
		resolver: resolver,
	}
	if config.LoggerFactory != nil {
		r.log = config.LoggerFactory.NewLogger("discovery")
	}

	return r, nil
}

// Browse streams motors as they announce themselves, until the context
// is cancelled or the browse timeout expires. The same motor may be
// delivered more than once if it re-announces.
func (r *Resolver) Browse(ctx context.Context) (<-chan Motor, error) {
	results := make(chan Motor)
	entries := make(chan *zeroconf.ServiceEntry)

	// Apply the browse timeout if the context has no deadline.
	cancel := context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, r.config.BrowseTimeout)
	}

	go func() {
		defer close(results)
		defer cancel()

		// The resolver owns the entries channel: its Browse returns
		// right away, entries keep arriving in the background, and the
		// resolver closes the channel itself once the context ends.
		// Closing it here would race those late sends.
		if err := r.resolver.Browse(ctx, Service, DefaultDomain, entries); err != nil {
			if r.log != nil {
				r.log.Warnf("browse failed: %v", err)
			}
			return
		}

		for entry := range entries {
			motor := entryToMotor(entry)
			if r.log != nil {
				r.log.Debugf("found motor %q at %s", motor.Name(), motor.HostName)
			}
			select {
			case results <- motor:
			case <-ctx.Done():
				// Drain so the resolver is never blocked on a send; it
				// closes the channel when the context ends.
				for range entries {
				}
				return
			}
		}
	}()

	return results, nil
}

// Discover browses for the full timeout and returns every motor seen,
// deduplicated by target ID (falling back to instance name for motors
// without one).
func (r *Resolver) Discover(ctx context.Context) ([]Motor, error) {
	motors, err := r.Browse(ctx)
	if err != nil {
		return nil, err
	}

	var found []Motor
	seen := make(map[string]bool)
	for motor := range motors {
		id := motor.TargetID()
		if id == "" {
			id = motor.InstanceName
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		found = append(found, motor)
	}

	return found, nil
}

// LookupTargetID finds the motor announcing the given target ID,
// returning as soon as it is seen. A motor that never announces within
// the lookup timeout reports ErrMotorNotFound.
func (r *Resolver) LookupTargetID(ctx context.Context, targetID string) (*Motor, error) {
	// Always derive a cancelable context so an early match releases
	// the underlying browse.
	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, r.config.LookupTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	motors, err := r.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for motor := range motors {
		if motor.TargetID() == targetID {
			return &motor, nil
		}
	}

	if ctx.Err() == context.Canceled {
		return nil, ctx.Err()
	}
	return nil, ErrMotorNotFound
}

// entryToMotor converts a zeroconf.ServiceEntry to a Motor record.
func entryToMotor(entry *zeroconf.ServiceEntry) Motor {
	// Motors are IPv4 devices in practice; keep IPv6 announcements as
	// lower-preference fallbacks.
	var ips []net.IP
	ips = append(ips, entry.AddrIPv4...)
	ips = append(ips, entry.AddrIPv6...)

	return Motor{
		InstanceName: entry.Instance,
		HostName:     entry.HostName,
		Port:         entry.Port,
		IPs:          ips,
		Text:         ParseTXT(entry.Text),
	}
}
