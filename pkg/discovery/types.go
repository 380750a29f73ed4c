package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeCRC is the service type of a central runtime component.
	ServiceTypeCRC = "_hla-crc._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is the default CRC port.
	DefaultPort = 8989

	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 5 * time.Second
)

// TXT record keys.
const (
	TXTKeyFederation = "FN"  // Federation execution name
	TXTKeyVendor     = "RV"  // Runtime vendor (optional)
	TXTKeyVersion    = "VER" // Coordination protocol version (optional)
)

// Discovery errors.
var (
	ErrNotFound        = errors.New("no central runtime component found")
	ErrMissingRequired = errors.New("missing required TXT record")
)

// CRCInfo is the TXT payload of a CRC advertisement.
type CRCInfo struct {
	Federation string
	Vendor     string
	Version    string
}

// CRCService is a discovered central runtime component.
type CRCService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	CRCInfo
}

// Address returns "addr:port" for the first known address, falling back
// to the host name.
func (s *CRCService) Address() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds FindCRC. Default: 5 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
	}
}
