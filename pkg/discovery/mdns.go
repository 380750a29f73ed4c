package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"sync"

	"github.com/enbility/zeroconf/v3"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/version"
)

// MDNSBrowser browses for central runtime components using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser. A nil logger disables
// logging.
func NewMDNSBrowser(config BrowserConfig, logger *slog.Logger) *MDNSBrowser {
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MDNSBrowser{
		config: config,
		logger: logger.With("component", "discovery"),
	}
}

// BrowseCRC searches for central runtime components until ctx is done or
// Stop is called. Services are aggregated by instance name; an instance is
// emitted once, when first seen.
func (b *MDNSBrowser) BrowseCRC(ctx context.Context) (<-chan *CRCService, error) {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.cancel = cancel
	b.mu.Unlock()

	out := make(chan *CRCService)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		var gone <-chan *zeroconf.ServiceEntry = removed
		services := make(map[string]*CRCService)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc, err := entryToCRC(entry)
				if err != nil {
					b.logger.Debug("ignoring CRC advertisement", "instance", entry.Instance, "error", err)
					continue
				}

				if existing, found := services[svc.InstanceName]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}
				services[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-gone:
				if !ok {
					gone = nil
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entryAddresses(entry))
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		if err := zeroconf.Browse(ctx, ServiceTypeCRC, Domain, entries, removed, b.browserOptions()...); err != nil {
			b.logger.Warn("mDNS browse failed", "error", err)
		}
	}()

	return out, nil
}

// FindCRC returns the first compatible CRC hosting federation, or any
// compatible CRC when federation is empty. It gives up after BrowseTimeout.
func (b *MDNSBrowser) FindCRC(ctx context.Context, federation string) (*CRCService, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	found, err := b.BrowseCRC(ctx)
	if err != nil {
		return nil, err
	}
	for svc := range found {
		if !version.CompatibleWith(svc.Version) {
			b.logger.Warn("skipping incompatible CRC", "instance", svc.InstanceName, "version", svc.Version)
			continue
		}
		if matchFederation(svc, federation) {
			b.logger.Info("central runtime component found", "instance", svc.InstanceName, "address", svc.Address())
			return svc, nil
		}
	}
	if federation != "" {
		return nil, fmt.Errorf("%w: federation %s", ErrNotFound, federation)
	}
	return nil, ErrNotFound
}

// Stop stops the active browse, if any.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

func matchFederation(svc *CRCService, federation string) bool {
	return federation == "" || svc.Federation == federation
}

func entryAddresses(entry *zeroconf.ServiceEntry) []net.IP {
	ips := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	ips = append(ips, entry.AddrIPv4...)
	return append(ips, entry.AddrIPv6...)
}

func entryToCRC(entry *zeroconf.ServiceEntry) (*CRCService, error) {
	return newCRCService(entry.Instance, entry.HostName, entry.Port, entry.Text, entryAddresses(entry))
}

// newCRCService builds a service from the fields of an mDNS answer.
func newCRCService(instance, host string, port int, text []string, ips []net.IP) (*CRCService, error) {
	info, err := DecodeCRCTXT(StringsToTXTRecords(text))
	if err != nil {
		return nil, err
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, ip.String())
	}
	return &CRCService{
		InstanceName: instance,
		Host:         host,
		Port:         uint16(port),
		Addresses:    addrs,
		CRCInfo:      *info,
	}, nil
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	for _, addr := range added {
		if !slices.Contains(existing, addr) {
			existing = append(existing, addr)
		}
	}
	return existing
}

// removeAddresses drops the given IPs from addresses.
func removeAddresses(addresses []string, ips []net.IP) []string {
	toRemove := make(map[string]bool, len(ips))
	for _, ip := range ips {
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
