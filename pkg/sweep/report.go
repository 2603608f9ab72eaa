package sweep

import (
	"net"
	"sort"
	"time"

	"github.com/projectdiscovery/hostsweep/pkg/targets"
)

// Report is the aggregated outcome of one scan
type Report struct {
	ID      string
	Network string
	// Online holds the hosts that answered, sorted once the scan completes
	Online []net.IP
	// Offline counts the hosts that did not answer
	Offline int
	// OpenPorts maps every online host to its open ports
	OpenPorts map[string][]int
	// Failures counts probes that failed because of the environment
	Failures int
	// PortsRequested is the port list of the port phase, if any
	PortsRequested []int
	Started        time.Time
	Finished       time.Time
}

func newReport(id, network string) *Report {
	return &Report{
		ID:        id,
		Network:   network,
		OpenPorts: make(map[string][]int),
		Started:   time.Now(),
	}
}

// Total returns the number of hosts that were probed for liveness
func (r *Report) Total() int {
	return len(r.Online) + r.Offline
}

// Ports returns the open ports of ip
func (r *Report) Ports(ip net.IP) []int {
	return r.OpenPorts[ip.String()]
}

// HasHost reports whether ip was found online
func (r *Report) HasHost(ip net.IP) bool {
	for _, online := range r.Online {
		if online.Equal(ip) {
			return true
		}
	}
	return false
}

// HostsWithOpenPorts returns the online hosts with at least one open port, in address order
func (r *Report) HostsWithOpenPorts() []net.IP {
	var hosts []net.IP
	for _, ip := range r.Online {
		if len(r.OpenPorts[ip.String()]) > 0 {
			hosts = append(hosts, ip)
		}
	}
	return hosts
}

// Elapsed returns the scan duration
func (r *Report) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}

func (r *Report) markOnline(ip net.IP) {
	r.Online = append(r.Online, ip)
	r.OpenPorts[ip.String()] = []int{}
}

func (r *Report) addOpenPort(ip net.IP, port int) {
	key := ip.String()
	r.OpenPorts[key] = append(r.OpenPorts[key], port)
}

// finalize puts the report content in a deterministic order
func (r *Report) finalize() {
	sort.Slice(r.Online, func(i, j int) bool {
		return targets.Compare(r.Online[i], r.Online[j]) < 0
	})
	for _, ports := range r.OpenPorts {
		sort.Ints(ports)
	}
	r.Finished = time.Now()
}
