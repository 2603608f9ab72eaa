// Package probe implements the single-shot network probes used by a sweep:
// host liveness through ICMP echo (raw or datagram sockets, or the system ping
// binary) and TCP port connects.
//
// Probe failures are ordinary outcomes. An unreachable host or a closed port
// returns false with a nil error; only failures of the primitive itself (no
// ICMP socket, missing ping binary, descriptor exhaustion) are returned as
// errors wrapping ErrEnvironment.
//
// Example usage:
//
//	pinger, method, err := probe.NewPinger(probe.MethodAuto)
//	prober := probe.NewNetwork(pinger)
//	defer prober.Close()
//	alive, err := prober.Probe(ctx, probe.NewLivenessRequest(ip, time.Second))
//
// Privilege Requirements:
// - Raw ICMP sockets require root or CAP_NET_RAW
// - Datagram ICMP sockets need net.ipv4.ping_group_range on linux
// - The exec method only needs a ping binary in PATH
package probe
