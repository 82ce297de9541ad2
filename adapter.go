package main

import (
	"net"
	"strings"

	"github.com/jackpal/gateway"
	"github.com/rs/zerolog"
)

// AdapterKind classifies a network interface by its link type
type AdapterKind int

const (
	AdapterOther AdapterKind = iota
	AdapterEthernet
	AdapterWireless
)

func (k AdapterKind) String() string {
	switch k {
	case AdapterEthernet:
		return "ethernet"
	case AdapterWireless:
		return "wireless"
	default:
		return "other"
	}
}

// AdapterInfo is a snapshot of one host interface. IPv4 is empty when the
// interface carries no IPv4 unicast address.
type AdapterInfo struct {
	Name string
	IsUp bool
	Kind AdapterKind
	IPv4 string
}

// isCandidate reports whether the adapter may be offered in the menu
func (a AdapterInfo) isCandidate() bool {
	return a.IsUp && a.Name != "" && (a.Kind == AdapterEthernet || a.Kind == AdapterWireless)
}

// InterfaceSource enumerates host interfaces in OS order
type InterfaceSource interface {
	Interfaces() ([]AdapterInfo, error)
}

// AdapterLookup answers adapter and address queries against an InterfaceSource.
// Every call re-enumerates; nothing is cached.
type AdapterLookup struct {
	source          InterfaceSource
	discoverGateway func() (net.IP, error)
	logger          zerolog.Logger
}

// NewAdapterLookup creates a lookup over the given source
func NewAdapterLookup(source InterfaceSource, logger zerolog.Logger) *AdapterLookup {
	return &AdapterLookup{
		source:          source,
		discoverGateway: gateway.DiscoverGateway,
		logger:          logger.With().Str("component", "adapters").Logger(),
	}
}

func (l *AdapterLookup) all() []AdapterInfo {
	adapters, err := l.source.Interfaces()
	if err != nil {
		l.logger.Warn().Err(err).Msg("interface enumeration failed")
		return nil
	}
	return adapters
}

// ListCandidateAdapters returns the up Ethernet and Wireless adapters
func (l *AdapterLookup) ListCandidateAdapters() []AdapterInfo {
	var candidates []AdapterInfo
	for _, a := range l.all() {
		if a.isCandidate() {
			candidates = append(candidates, a)
		}
	}
	return candidates
}

// ResolveAdapter returns the adapter the icon should describe. An empty
// selection picks the first candidate; otherwise the up adapter with exactly
// that name is used regardless of its kind.
func (l *AdapterLookup) ResolveAdapter(selectedName string) (AdapterInfo, bool) {
	adapters := l.all()

	name := selectedName
	if name == "" {
		for _, a := range adapters {
			if a.isCandidate() {
				name = a.Name
				break
			}
		}
		if name == "" {
			return AdapterInfo{}, false
		}
	}

	for _, a := range adapters {
		if a.IsUp && a.Name == name {
			return a, true
		}
	}
	return AdapterInfo{}, false
}

// ResolveIPv4 returns the dotted-quad address of the resolved adapter, or
// fallbackIPv4 when there is none.
func (l *AdapterLookup) ResolveIPv4(selectedName string) string {
	_, ip := l.resolve(selectedName)
	return ip
}

// resolve returns the resolved adapter together with the address to show for
// it. The adapter is zero when nothing matched.
func (l *AdapterLookup) resolve(selectedName string) (AdapterInfo, string) {
	adapter, ok := l.ResolveAdapter(selectedName)
	if !ok || adapter.IPv4 == "" {
		l.logger.Debug().
			Str("selected", selectedName).
			Str("adapter", adapter.Name).
			Msg("no IPv4 address, using fallback")
		return adapter, fallbackIPv4
	}
	l.logger.Debug().
		Str("adapter", adapter.Name).
		Stringer("kind", adapter.Kind).
		Str("ipv4", adapter.IPv4).
		Msg("adapter resolved")
	return adapter, adapter.IPv4
}

// LastOctet returns the fourth segment of a dotted-quad string, or "?"
func LastOctet(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return "?"
	}
	return parts[3]
}

// DefaultGateway returns the default route's gateway, or "" if it cannot be found
func (l *AdapterLookup) DefaultGateway() string {
	ip, err := l.discoverGateway()
	if err != nil || ip == nil {
		l.logger.Debug().Err(err).Msg("default gateway not found")
		return ""
	}
	return ip.String()
}
