package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeGateway is the service type Modbus TCP gateways
	// announce themselves under.
	ServiceTypeGateway = "_modbus._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultGatewayPort is the standard Modbus TCP port.
	DefaultGatewayPort = 502
)

// TXT record key constants.
const (
	TXTKeyUnits   = "units"   // Slave unit IDs served (comma-separated)
	TXTKeyProfile = "profile" // Register-map profile hint (optional)
	TXTKeyVendor  = "vendor"  // Vendor name (optional)
	TXTKeyModel   = "model"   // Model name (optional)
	TXTKeySerial  = "serial"  // Serial number (optional)
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// Discovery errors.
var (
	ErrInvalidTXTRecord = errors.New("invalid TXT record format")
	ErrMissingRequired  = errors.New("missing required field")
	ErrNotFound         = errors.New("gateway not found")
)

// Gateway is a Modbus TCP gateway discovered on the local network.
type Gateway struct {
	// InstanceName is the mDNS instance the gateway announced.
	InstanceName string

	// Host is the gateway's hostname.
	Host string

	// Port is the Modbus TCP port.
	Port uint16

	// Addresses are the gateway's IP addresses, all interfaces merged.
	Addresses []string

	// Units are the slave unit IDs the gateway serves.
	Units []uint8

	// Profile is the register-map profile hint, empty if not announced.
	Profile string

	// Vendor, Model and Serial identify the hardware, empty if not
	// announced.
	Vendor string
	Model  string
	Serial string
}

// Addr returns a dialable "address:port" for the gateway, preferring
// the first announced IP address over the hostname.
func (g *Gateway) Addr() string {
	host := g.Host
	if len(g.Addresses) > 0 {
		host = g.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(int(g.Port)))
}

// String returns a short description for logs.
func (g *Gateway) String() string {
	return fmt.Sprintf("gateway %s at %s (%d units)", g.InstanceName, g.Addr(), len(g.Units))
}
