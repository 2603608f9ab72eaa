package targets

import (
	"net"

	sliceutil "github.com/projectdiscovery/utils/slice"
)

// LocalNetworks returns the /24 networks around the private IPv4 addresses of
// the up, non-loopback interfaces, in the same form ParseNetwork produces
func LocalNetworks() ([]*net.IPNet, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var specs []string
	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if spec, ok := privateNetwork24(addr); ok {
				specs = append(specs, spec)
			}
		}
	}

	networks := make([]*net.IPNet, 0, len(specs))
	for _, spec := range sliceutil.Dedupe(specs) {
		network, err := ParseNetwork(spec)
		if err != nil {
			return nil, err
		}
		networks = append(networks, network)
	}
	return networks, nil
}

// privateNetwork24 widens a private IPv4 interface address to its /24
func privateNetwork24(addr net.Addr) (string, bool) {
	var ip net.IP
	switch a := addr.(type) {
	case *net.IPNet:
		ip = a.IP
	case *net.IPAddr:
		ip = a.IP
	}

	ip4 := ip.To4()
	if ip4 == nil || !ip4.IsPrivate() {
		return "", false
	}
	network := net.IPNet{IP: ip4.Mask(net.CIDRMask(24, 32)), Mask: net.CIDRMask(24, 32)}
	return network.String(), true
}
