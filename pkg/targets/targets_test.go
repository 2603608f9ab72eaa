package targets

import (
	"errors"
	"net"
	"reflect"
	"testing"
)

func TestHosts(t *testing.T) {
	tests := []struct {
		name      string
		cidr      string
		maxHosts  int
		wantCount int
		wantErr   error
		validate  func(t *testing.T, ips []net.IP)
	}{
		{
			name:      "/24 network",
			cidr:      "192.168.1.0/24",
			wantCount: 254,
			validate: func(t *testing.T, ips []net.IP) {
				if !ips[0].Equal(net.ParseIP("192.168.1.1")) {
					t.Errorf("first host = %s, want 192.168.1.1", ips[0])
				}
				if !ips[len(ips)-1].Equal(net.ParseIP("192.168.1.254")) {
					t.Errorf("last host = %s, want 192.168.1.254", ips[len(ips)-1])
				}
			},
		},
		{
			name:      "/30 network",
			cidr:      "10.0.0.0/30",
			wantCount: 2,
			validate: func(t *testing.T, ips []net.IP) {
				if !ips[0].Equal(net.ParseIP("10.0.0.1")) || !ips[1].Equal(net.ParseIP("10.0.0.2")) {
					t.Errorf("hosts = %v, want [10.0.0.1 10.0.0.2]", ips)
				}
			},
		},
		{
			name:      "host bits set are masked",
			cidr:      "10.0.0.5/30",
			wantCount: 2,
		},
		{
			name:      "/31 keeps both addresses",
			cidr:      "10.0.0.0/31",
			wantCount: 2,
		},
		{
			name:      "/32 single host",
			cidr:      "192.168.1.7/32",
			wantCount: 1,
		},
		{
			name:      "bare IP",
			cidr:      "192.168.1.7",
			wantCount: 1,
		},
		{
			name:      "/16 within limit",
			cidr:      "172.16.0.0/16",
			maxHosts:  65536,
			wantCount: 65534,
		},
		{
			name:     "/15 over limit",
			cidr:     "172.16.0.0/15",
			maxHosts: 65536,
			wantErr:  ErrNetworkTooLarge,
		},
		{
			name:      "IPv6 /126 drops anycast",
			cidr:      "fd00::/126",
			wantCount: 3,
		},
		{
			name:     "IPv6 /64 over limit",
			cidr:     "fd00::/64",
			maxHosts: 65536,
			wantErr:  ErrNetworkTooLarge,
		},
		{
			name:    "malformed",
			cidr:    "not-a-cidr",
			wantErr: ErrInvalidNetworkSpec,
		},
		{
			name:    "bad prefix",
			cidr:    "10.0.0.0/33",
			wantErr: ErrInvalidNetworkSpec,
		},
		{
			name:    "empty",
			cidr:    "",
			wantErr: ErrInvalidNetworkSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ips, _, err := Hosts(tt.cidr, tt.maxHosts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Hosts() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Hosts() unexpected error = %v", err)
			}
			if len(ips) != tt.wantCount {
				t.Errorf("Hosts() count = %d, want %d", len(ips), tt.wantCount)
			}
			if tt.validate != nil {
				tt.validate(t, ips)
			}
		})
	}
}

func TestUsableCountMatchesHosts(t *testing.T) {
	for _, cidr := range []string{"10.0.0.0/24", "10.0.0.0/30", "10.0.0.0/31", "10.0.0.1/32", "fd00::/120", "fd00::/127"} {
		t.Run(cidr, func(t *testing.T) {
			ips, network, err := Hosts(cidr, 0)
			if err != nil {
				t.Fatalf("Hosts() error = %v", err)
			}
			if got := UsableCount(network).Int64(); got != int64(len(ips)) {
				t.Errorf("UsableCount() = %d, Hosts() returned %d", got, len(ips))
			}
		})
	}
}

func TestIsNetworkOrBroadcast(t *testing.T) {
	_, network, _ := net.ParseCIDR("192.168.1.0/24")

	tests := []struct {
		ip   string
		want bool
	}{
		{"192.168.1.0", true},
		{"192.168.1.255", true},
		{"192.168.1.1", false},
		{"192.168.1.254", false},
	}
	for _, tt := range tests {
		if got := IsNetworkOrBroadcast(net.ParseIP(tt.ip), network); got != tt.want {
			t.Errorf("IsNetworkOrBroadcast(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if IsNetworkOrBroadcast(net.ParseIP("192.168.1.0"), nil) {
		t.Error("nil network should never match")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"10.0.0.1", "10.0.0.2", -1},
		{"10.0.0.10", "10.0.0.9", 1},
		{"10.0.0.1", "10.0.0.1", 0},
		{"10.0.0.1", "::1", -1},
		{"fd00::2", "fd00::1", 1},
	}
	for _, tt := range tests {
		if got := Compare(net.ParseIP(tt.a), net.ParseIP(tt.b)); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParsePorts(t *testing.T) {
	valid := map[string][]int{
		"22":              {22},
		"22,80":           {22, 80},
		"80,22":           {22, 80},
		"1-3":             {1, 2, 3},
		"22,80,8000-8002": {22, 80, 8000, 8001, 8002},
		"22,22, 80":       {22, 80},
	}
	for spec, want := range valid {
		t.Run(spec, func(t *testing.T) {
			got, err := ParsePorts([]string{spec})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %v want %v", got, want)
			}
		})
	}

	invalid := []string{"0", "65536", "10-1", "abc", "1-70000"}
	for _, spec := range invalid {
		t.Run(spec, func(t *testing.T) {
			if _, err := ParsePorts([]string{spec}); !errors.Is(err, ErrInvalidPortSpec) {
				t.Fatalf("expected ErrInvalidPortSpec for %q, got %v", spec, err)
			}
		})
	}

	if ports, err := ParsePorts(nil); err != nil || len(ports) != 0 {
		t.Fatalf("ParsePorts(nil) = %v, %v; want empty", ports, err)
	}
}

func TestPrivateNetwork24(t *testing.T) {
	tests := []struct {
		addr   net.Addr
		want   string
		wantOK bool
	}{
		{addr: &net.IPNet{IP: net.ParseIP("192.168.1.37"), Mask: net.CIDRMask(16, 32)}, want: "192.168.1.0/24", wantOK: true},
		{addr: &net.IPNet{IP: net.ParseIP("10.20.30.40").To4(), Mask: net.CIDRMask(8, 32)}, want: "10.20.30.0/24", wantOK: true},
		{addr: &net.IPAddr{IP: net.ParseIP("172.16.9.1")}, want: "172.16.9.0/24", wantOK: true},
		{addr: &net.IPNet{IP: net.ParseIP("8.8.8.8"), Mask: net.CIDRMask(24, 32)}},
		{addr: &net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)}},
		{addr: &net.IPNet{IP: net.ParseIP("fd00::1"), Mask: net.CIDRMask(64, 128)}},
	}

	for _, tt := range tests {
		t.Run(tt.addr.String(), func(t *testing.T) {
			got, ok := privateNetwork24(tt.addr)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("privateNetwork24(%s) = %q, %v, want %q, %v", tt.addr, got, ok, tt.want, tt.wantOK)
			}
			if !ok {
				return
			}
			hosts, _, err := Hosts(got, 0)
			if err != nil || len(hosts) != 254 {
				t.Errorf("Hosts(%s) = %d hosts, %v", got, len(hosts), err)
			}
		})
	}
}

func TestLocalNetworksArePrivate24(t *testing.T) {
	networks, err := LocalNetworks()
	if err != nil {
		t.Skipf("interfaces unavailable: %s", err)
	}
	for _, network := range networks {
		ones, bits := network.Mask.Size()
		if ones != 24 || bits != 32 || !network.IP.IsPrivate() || len(network.IP) != net.IPv4len {
			t.Errorf("unexpected local network %s", network)
		}
	}
}
