package discovery

import (
	"net"
	"strings"
)

// TXT record keys announced by the motors.
const (
	// TXTKeyTargetID is the device identifier used to address commands.
	TXTKeyTargetID = "targetid"

	// TXTKeyMAC is the device hardware address.
	TXTKeyMAC = "mac"

	// TXTKeyModel is the motor model name.
	TXTKeyModel = "model"

	// TXTKeyFirmware is the firmware version.
	TXTKeyFirmware = "firmware"

	// TXTKeyName is the user-assigned motor name. Optional; motors that
	// were never named omit it.
	TXTKeyName = "name"
)

// UnnamedMotor is the display name for motors without a TXT name.
const UnnamedMotor = "Unnamed Motor"

// Motor is a discovered motor announcement.
type Motor struct {
	// InstanceName is the DNS-SD instance name.
	InstanceName string

	// HostName is the target host name.
	HostName string

	// Port is the announced service port.
	Port int

	// IPs contains the resolved addresses, IPv4 first.
	IPs []net.IP

	// Text contains the TXT record key-value pairs, keys lowercased.
	Text map[string]string
}

// Addr returns the preferred address to connect to, or "" when the
// announcement carried no addresses.
func (m *Motor) Addr() string {
	if len(m.IPs) > 0 {
		return m.IPs[0].String()
	}
	return ""
}

// TargetID returns the device identifier, or "" when not announced.
func (m *Motor) TargetID() string {
	return m.Text[TXTKeyTargetID]
}

// MAC returns the device hardware address, or "" when not announced.
func (m *Motor) MAC() string {
	return m.Text[TXTKeyMAC]
}

// Model returns the motor model, or "" when not announced.
func (m *Motor) Model() string {
	return m.Text[TXTKeyModel]
}

// Firmware returns the firmware version, or "" when not announced.
func (m *Motor) Firmware() string {
	return m.Text[TXTKeyFirmware]
}

// Name returns the user-assigned name, or UnnamedMotor when the motor
// was never named. A present-but-empty name record gets the same
// fallback as a missing one; callers always receive a usable display
// name.
func (m *Motor) Name() string {
	if name := m.Text[TXTKeyName]; name != "" {
		return name
	}
	return UnnamedMotor
}

// ParseTXT parses raw TXT record strings into a key-value map. Keys are
// lowercased; entries without '=' are stored with an empty value;
// repeated keys keep the first value, per DNS-SD convention.
func ParseTXT(records []string) map[string]string {
	txt := make(map[string]string, len(records))
	for _, record := range records {
		if record == "" {
			continue
		}

		key, value, _ := strings.Cut(record, "=")
		key = strings.ToLower(key)
		if key == "" {
			continue
		}
		if _, exists := txt[key]; exists {
			continue
		}
		txt[key] = value
	}
	return txt
}
