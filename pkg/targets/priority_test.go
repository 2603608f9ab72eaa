package targets

import (
	"net"
	"testing"
)

func TestPriority(t *testing.T) {
	tests := []struct {
		ip   string
		want int
	}{
		{"192.168.1.1", PriorityGateway},
		{"192.168.1.254", PriorityGateway},
		{"192.168.1.2", PriorityReserved},
		{"192.168.1.5", PriorityReserved},
		{"192.168.1.250", PriorityReserved},
		{"192.168.1.6", PriorityEarly},
		{"192.168.1.10", PriorityEarly},
		{"192.168.1.50", PriorityPeak},
		{"192.168.1.100", PriorityPeak},
		{"192.168.1.150", PriorityPeak},
		{"192.168.1.51", PriorityPool},
		{"192.168.1.200", PriorityPool},
		{"192.168.1.25", PriorityTail},
		{"192.168.1.240", PriorityTail},
		{"fd00::1", PriorityTail},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := Priority(net.ParseIP(tt.ip)); got != tt.want {
				t.Errorf("Priority(%s) = %d, want %d", tt.ip, got, tt.want)
			}
		})
	}
}

func TestPrioritize(t *testing.T) {
	hosts, _, err := Hosts("192.168.1.0/24", 0)
	if err != nil {
		t.Fatalf("Hosts() error = %v", err)
	}
	ordered := Prioritize(hosts)

	if len(ordered) != 254 {
		t.Fatalf("got %d hosts, want 254", len(ordered))
	}
	if !ordered[0].Equal(net.ParseIP("192.168.1.1")) || !ordered[1].Equal(net.ParseIP("192.168.1.254")) {
		t.Errorf("gateways not first: %v %v", ordered[0], ordered[1])
	}
	for i := 1; i < len(ordered); i++ {
		pi, pj := Priority(ordered[i-1]), Priority(ordered[i])
		if pi < pj || (pi == pj && Compare(ordered[i-1], ordered[i]) >= 0) {
			t.Fatalf("bad order at %d: %v before %v", i, ordered[i-1], ordered[i])
		}
	}

	seen := make(map[string]bool)
	for _, ip := range ordered {
		seen[ip.String()] = true
	}
	if len(seen) != 254 {
		t.Errorf("prioritizing lost hosts: %d unique", len(seen))
	}
}

func TestPrioritizeSmallNetworks(t *testing.T) {
	for _, cidr := range []string{"10.0.0.0/30", "10.0.0.0/28", "10.0.0.128/25", "fd00::/126"} {
		hosts, _, err := Hosts(cidr, 0)
		if err != nil {
			t.Fatalf("Hosts(%s) error = %v", cidr, err)
		}
		n := len(hosts)
		if got := len(Prioritize(hosts)); got != n {
			t.Errorf("%s: got %d hosts, want %d", cidr, got, n)
		}
	}
}
