package discovery

import (
	"context"
	"net"
	"sync"

	"github.com/grandcat/zeroconf"
)

// MockMDNSResolver provides a mock mDNS resolver for testing without real network I/O.
// It allows registering services and simulating discovery responses.
type MockMDNSResolver struct {
	mu       sync.RWMutex
	services map[string][]*zeroconf.ServiceEntry
}

// NewMockMDNSResolver creates a new mock resolver.
func NewMockMDNSResolver() *MockMDNSResolver {
	return &MockMDNSResolver{
		services: make(map[string][]*zeroconf.ServiceEntry),
	}
}

// RegisterService registers a service that will be returned by Browse.
func (m *MockMDNSResolver) RegisterService(service string, entry *zeroconf.ServiceEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[service] = append(m.services[service], entry)
}

// ClearServices removes all registered services.
func (m *MockMDNSResolver) ClearServices() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = make(map[string][]*zeroconf.ServiceEntry)
}

// Browse implements MDNSResolver with the zeroconf contract: it
// returns immediately, delivers entries from a background goroutine,
// and closes the entries channel when the context ends.
func (m *MockMDNSResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	m.mu.RLock()
	svcEntries := make([]*zeroconf.ServiceEntry, len(m.services[service]))
	copy(svcEntries, m.services[service])
	m.mu.RUnlock()

	go func() {
		defer close(entries)

		for _, entry := range svcEntries {
			select {
			case entries <- entry:
			case <-ctx.Done():
				return
			}
		}

		// Keep the channel open until the context ends, like a real
		// browse that is still listening for announcements.
		<-ctx.Done()
	}()

	return nil
}

// MockMotorService creates a mock motor announcement for testing.
// A nil txt installs the standard record set for the given target ID.
func MockMotorService(instanceName, targetID string, port int, ip net.IP, txt []string) *zeroconf.ServiceEntry {
	if txt == nil {
		txt = []string{
			TXTKeyTargetID + "=" + targetID,
			TXTKeyMAC + "=d8:8c:73:00:00:01",
			TXTKeyModel + "=Sonesse 30 PoE",
			TXTKeyFirmware + "=1.2.0",
		}
	}
	return &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{
			Instance: instanceName,
			Service:  Service,
			Domain:   DefaultDomain,
		},
		HostName: instanceName + ".local.",
		Port:     port,
		AddrIPv4: []net.IP{ip},
		Text:     txt,
	}
}
