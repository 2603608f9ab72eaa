// Package targets turns user input into probe targets: network specifications
// into ordered host addresses and port tokens into port lists.
//
// Host expansion follows the usual "usable hosts" rules:
//   - IPv4 /0-/30: every address except network and broadcast
//   - IPv4 /31: both addresses (point-to-point links)
//   - IPv4 /32 and IPv6 /128: the single address
//   - IPv6 below /127: every address except the subnet-router anycast address
//
// Example:
//
//	hosts, network, err := targets.Hosts("192.168.1.0/24", 65536)
//	// 254 hosts, 192.168.1.1 .. 192.168.1.254
//
// Large networks are refused with ErrNetworkTooLarge before expansion.
package targets
