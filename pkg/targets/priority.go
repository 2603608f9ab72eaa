package targets

import (
	"net"
	"sort"
)

// Priority scores of the last IPv4 octet, higher means more likely online
const (
	PriorityGateway  = 100 // .1, .254
	PriorityReserved = 90  // .2-.5, .250-.253
	PriorityEarly    = 80  // .6-.10
	PriorityPeak     = 70  // .50, .100, .150
	PriorityPool     = 50  // .51-.99, .101-.149, .151-.200
	PriorityTail     = 20  // everything else
)

type octetRange struct {
	start, end byte
	priority   int
}

// octetRanges is matched in order, the first hit wins
var octetRanges = []octetRange{
	{1, 1, PriorityGateway},
	{254, 254, PriorityGateway},
	{2, 5, PriorityReserved},
	{250, 253, PriorityReserved},
	{6, 10, PriorityEarly},
	{50, 50, PriorityPeak},
	{100, 100, PriorityPeak},
	{150, 150, PriorityPeak},
	{51, 99, PriorityPool},
	{101, 149, PriorityPool},
	{151, 200, PriorityPool},
}

// Priority scores ip by where hosts usually sit in a subnet. IPv6 addresses
// all get the lowest score.
func Priority(ip net.IP) int {
	ip4 := ip.To4()
	if ip4 == nil {
		return PriorityTail
	}
	last := ip4[3]
	for _, r := range octetRanges {
		if last >= r.start && last <= r.end {
			return r.priority
		}
	}
	return PriorityTail
}

// Prioritize reorders hosts in place so the likely online ones come first.
// Hosts with the same score keep address order.
func Prioritize(hosts []net.IP) []net.IP {
	sort.SliceStable(hosts, func(i, j int) bool {
		pi, pj := Priority(hosts[i]), Priority(hosts[j])
		if pi != pj {
			return pi > pj
		}
		return Compare(hosts[i], hosts[j]) < 0
	})
	return hosts
}
