package targets

import (
	"errors"
	"fmt"
	"math/big"
	"net"
	"strings"

	"github.com/projectdiscovery/mapcidr"
)

var (
	// ErrInvalidNetworkSpec is returned when a target is neither CIDR notation nor an IP
	ErrInvalidNetworkSpec = errors.New("invalid network specification")
	// ErrNetworkTooLarge is returned when a network holds more usable hosts than allowed
	ErrNetworkTooLarge = errors.New("network exceeds host limit")
)

// ParseNetwork parses a target into a network. CIDR notation with host bits set
// is accepted and masked; a bare IP is treated as a single-host network.
func ParseNetwork(spec string) (*net.IPNet, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty target", ErrInvalidNetworkSpec)
	}

	if strings.Contains(spec, "/") {
		_, network, err := net.ParseCIDR(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNetworkSpec, spec)
		}
		if ip4 := network.IP.To4(); ip4 != nil {
			network.IP = ip4
		}
		return network, nil
	}

	ip := net.ParseIP(spec)
	if ip == nil {
		return nil, fmt.Errorf("%w: %q (must be CIDR or IP)", ErrInvalidNetworkSpec, spec)
	}
	if ip4 := ip.To4(); ip4 != nil {
		return &net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}

// UsableCount returns the number of host addresses Hosts yields for a network
func UsableCount(network *net.IPNet) *big.Int {
	ones, bits := network.Mask.Size()
	hostBits := uint(bits - ones)
	total := new(big.Int).Lsh(big.NewInt(1), hostBits)

	switch {
	case bits == 32 && hostBits >= 2:
		// network and broadcast
		return total.Sub(total, big.NewInt(2))
	case bits == 128 && hostBits >= 2:
		// subnet-router anycast
		return total.Sub(total, big.NewInt(1))
	}
	return total
}

// Hosts expands a target into its ordered usable host addresses.
//
// IPv4 networks up to /30 exclude the network and broadcast addresses, a /31
// yields both of its addresses and a /32 its only one. IPv6 networks exclude the
// subnet-router anycast address unless the prefix is /127 or longer.
// maxHosts <= 0 disables the size guard.
func Hosts(spec string, maxHosts int) ([]net.IP, *net.IPNet, error) {
	network, err := ParseNetwork(spec)
	if err != nil {
		return nil, nil, err
	}

	count := UsableCount(network)
	if maxHosts > 0 && count.Cmp(big.NewInt(int64(maxHosts))) > 0 {
		return nil, network, fmt.Errorf("%w: %s has %s usable hosts (limit %d)", ErrNetworkTooLarge, network, count, maxHosts)
	}

	ips, err := mapcidr.IPAddresses(network.String())
	if err != nil {
		return nil, network, fmt.Errorf("failed to expand CIDR %s: %w", network, err)
	}

	ones, bits := network.Mask.Size()
	skipEdges := bits-ones >= 2

	hosts := make([]net.IP, 0, len(ips))
	for _, ipStr := range ips {
		ip := net.ParseIP(ipStr)
		if ip == nil {
			continue
		}
		if ip4 := ip.To4(); ip4 != nil {
			ip = ip4
		}
		if skipEdges && IsNetworkOrBroadcast(ip, network) {
			continue
		}
		hosts = append(hosts, ip)
	}

	return hosts, network, nil
}

// IsNetworkOrBroadcast checks if an IP is the network or broadcast address.
// IPv6 has no broadcast, only the network (subnet-router anycast) address matches.
func IsNetworkOrBroadcast(ip net.IP, network *net.IPNet) bool {
	if network == nil {
		return false
	}

	if ip.Equal(network.IP) {
		return true
	}

	if ip4 := ip.To4(); ip4 != nil {
		base := network.IP.To4()
		if base == nil || len(network.Mask) != net.IPv4len {
			return false
		}
		broadcast := make(net.IP, net.IPv4len)
		for i := range broadcast {
			broadcast[i] = base[i] | ^network.Mask[i]
		}
		return ip4.Equal(broadcast)
	}

	return false
}

// Compare orders two IPs. Returns -1 if a < b, 0 if equal, 1 if a > b.
// IPv4 always comes before IPv6.
func Compare(a, b net.IP) int {
	a4, b4 := a.To4(), b.To4()

	if a4 != nil && b4 == nil {
		return -1
	}
	if a4 == nil && b4 != nil {
		return 1
	}
	if a4 != nil {
		a, b = a4, b4
	} else {
		a, b = a.To16(), b.To16()
	}

	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
