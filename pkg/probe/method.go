package probe

import (
	"errors"
	"fmt"
	"strings"
)

// Method selects the liveness primitive
type Method string

const (
	// MethodAuto tries raw ICMP, then datagram ICMP, then the ping binary
	MethodAuto Method = "auto"
	// MethodICMP uses raw ICMP sockets (root or CAP_NET_RAW)
	MethodICMP Method = "icmp"
	// MethodUDP uses unprivileged datagram ICMP sockets
	MethodUDP Method = "udp"
	// MethodExec runs the system ping command
	MethodExec Method = "exec"
)

// Methods lists every supported method
var Methods = []Method{MethodAuto, MethodICMP, MethodUDP, MethodExec}

// ParseMethod validates a method name
func ParseMethod(value string) (Method, error) {
	method := Method(strings.ToLower(strings.TrimSpace(value)))
	if method == "" {
		return MethodAuto, nil
	}
	for _, m := range Methods {
		if m == method {
			return method, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, value)
}

// NewPinger creates the pinger for method and returns the method actually used
func NewPinger(method Method) (Pinger, Method, error) {
	switch method {
	case MethodICMP, MethodUDP, MethodExec:
		return newPinger(method)
	case MethodAuto, "":
		var errs []error
		for _, candidate := range []Method{MethodICMP, MethodUDP, MethodExec} {
			pinger, used, err := newPinger(candidate)
			if err == nil {
				return pinger, used, nil
			}
			errs = append(errs, fmt.Errorf("%s: %w", candidate, err))
		}
		return nil, "", errors.Join(errs...)
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
}

func newPinger(method Method) (Pinger, Method, error) {
	switch method {
	case MethodICMP, MethodUDP:
		pinger, err := NewICMPPinger(method == MethodICMP)
		if err != nil {
			return nil, "", err
		}
		return pinger, method, nil
	default:
		pinger, err := NewExecPinger()
		if err != nil {
			return nil, "", err
		}
		return pinger, MethodExec, nil
	}
}
