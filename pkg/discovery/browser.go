// Package discovery finds Modbus TCP gateways on the local network via
// mDNS. It browses only; gateways announce themselves.
package discovery

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/enbility/zeroconf/v3/api"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for browse operations.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// ConnectionFactory creates multicast connections.
	// If nil, uses the default zeroconf connection factory.
	// Set this in tests to inject mock connections.
	ConnectionFactory api.ConnectionFactory

	// InterfaceProvider lists network interfaces.
	// If nil, uses the default zeroconf interface provider.
	// Set this in tests to inject mock interface lists.
	InterfaceProvider api.InterfaceProvider
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// Browser finds gateways over mDNS.
type Browser struct {
	config BrowserConfig

	mu      sync.Mutex
	stopped bool
	cancels []context.CancelFunc
}

// NewBrowser creates a new mDNS gateway browser.
func NewBrowser(config BrowserConfig) (*Browser, error) {
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	return &Browser{
		config: config,
	}, nil
}

// Browse searches for gateways. Results are aggregated by instance
// name - addresses from multiple interfaces are combined into a single
// entry, and a gateway is emitted once. The channel closes when the
// context ends or the browser is stopped.
func (b *Browser) Browse(ctx context.Context) (<-chan *Gateway, error) {
	ctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		cancel()
		closed := make(chan *Gateway)
		close(closed)
		return closed, nil
	}
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	out := make(chan *Gateway)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	// Process entries with aggregation
	go func() {
		defer close(out)

		// Track gateways by instance name, aggregating addresses
		gateways := make(map[string]*Gateway)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				gw := entryToGateway(entry)
				if gw == nil {
					continue
				}

				existing, found := gateways[gw.InstanceName]
				if found {
					// Merge addresses into existing entry
					existing.Addresses = mergeAddresses(existing.Addresses, gw.Addresses)
				} else {
					// New gateway - store and emit
					gateways[gw.InstanceName] = gw
					select {
					case out <- gw:
					case <-ctx.Done():
						return
					}
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				// Remove addresses that came from this interface
				if existing, found := gateways[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					// If no addresses remain, drop the gateway
					if len(existing.Addresses) == 0 {
						delete(gateways, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start browsing in background
	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeGateway, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindAll collects every gateway seen until the context ends. A
// context without a deadline gets the configured browse timeout.
func (b *Browser) FindAll(ctx context.Context) ([]*Gateway, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
		defer cancel()
	}

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	var gateways []*Gateway
	for gw := range results {
		gateways = append(gateways, gw)
	}
	return gateways, nil
}

// FindByInstance searches for a gateway by its mDNS instance name.
// Returns when found or when the context ends.
func (b *Browser) FindByInstance(ctx context.Context, instance string) (*Gateway, error) {
	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case gw, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if gw.InstanceName == instance {
				return gw, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Stop stops all active browsing operations.
func (b *Browser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

// browserOptions returns zeroconf client options based on config.
func (b *Browser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// ServiceEntry is raw mDNS service entry data, independent of the
// mDNS library.
type ServiceEntry struct {
	Instance string
	Service  string
	Domain   string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToGateway converts a ServiceEntry to a Gateway.
func (e *ServiceEntry) ToGateway() (*Gateway, error) {
	txt := StringsToTXTRecords(e.Text)
	info, err := DecodeGatewayTXT(txt)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    e.Addrs,
		Units:        info.Units,
		Profile:      info.Profile,
		Vendor:       info.Vendor,
		Model:        info.Model,
		Serial:       info.Serial,
	}, nil
}

// entryToGateway converts a zeroconf entry to a Gateway. Entries with
// malformed TXT metadata are dropped.
func entryToGateway(entry *zeroconf.ServiceEntry) *Gateway {
	// Collect addresses
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	e := &ServiceEntry{
		Instance: entry.Instance,
		Service:  ServiceTypeGateway,
		Domain:   Domain,
		Host:     entry.HostName,
		Port:     uint16(entry.Port),
		Text:     entry.Text,
		Addrs:    addrs,
	}

	gw, err := e.ToGateway()
	if err != nil {
		return nil
	}
	return gw
}

// mergeAddresses adds new addresses to the existing list, avoiding
// duplicates.
func mergeAddresses(existing, found []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range found {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the addresses of a zeroconf entry from the
// list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
