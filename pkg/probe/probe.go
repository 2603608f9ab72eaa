package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Kind is the kind of a probe request
type Kind int

const (
	// Liveness checks whether a host answers a reachability request
	Liveness Kind = iota
	// Port checks whether a TCP connection to host:port completes
	Port
)

func (k Kind) String() string {
	switch k {
	case Liveness:
		return "liveness"
	case Port:
		return "port"
	default:
		return "unknown"
	}
}

// Request is a single unit of probing work
type Request struct {
	Kind    Kind
	IP      net.IP
	Port    int
	Timeout time.Duration
}

// NewLivenessRequest returns a liveness request for ip
func NewLivenessRequest(ip net.IP, timeout time.Duration) Request {
	return Request{Kind: Liveness, IP: ip, Timeout: timeout}
}

// NewPortRequest returns a TCP port request for ip:port
func NewPortRequest(ip net.IP, port int, timeout time.Duration) Request {
	return Request{Kind: Port, IP: ip, Port: port, Timeout: timeout}
}

// Target returns the request target as host or host:port
func (r Request) Target() string {
	if r.Kind == Port {
		return net.JoinHostPort(r.IP.String(), strconv.Itoa(r.Port))
	}
	return r.IP.String()
}

// Result is the outcome of a Request.
// Err is only set for environment failures and cancellation, an unreachable
// host or closed port is Succeeded=false with a nil Err.
type Result struct {
	Request   Request
	Succeeded bool
	Err       error
	Duration  time.Duration
}

// Prober performs a single probe
type Prober interface {
	Probe(ctx context.Context, req Request) (bool, error)
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context, req Request) (bool, error)

// Probe calls f(ctx, req)
func (f ProberFunc) Probe(ctx context.Context, req Request) (bool, error) {
	return f(ctx, req)
}

// Pinger checks host liveness
type Pinger interface {
	Ping(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error)
	Close() error
}

// Network is a Prober backed by a Pinger for liveness and TCP connects for ports
type Network struct {
	pinger    Pinger
	connector *TCPConnector
}

// NewNetwork creates a network prober
func NewNetwork(pinger Pinger) *Network {
	return &Network{
		pinger:    pinger,
		connector: &TCPConnector{},
	}
}

// Probe dispatches the request to the matching primitive
func (n *Network) Probe(ctx context.Context, req Request) (bool, error) {
	switch req.Kind {
	case Liveness:
		return n.pinger.Ping(ctx, req.IP, req.Timeout)
	case Port:
		return n.connector.Connect(ctx, req.IP, req.Port, req.Timeout)
	default:
		return false, fmt.Errorf("unsupported probe kind %d", req.Kind)
	}
}

// Close releases the pinger resources
func (n *Network) Close() error {
	return n.pinger.Close()
}
