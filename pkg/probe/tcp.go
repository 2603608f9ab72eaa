package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

// TCPConnector probes ports with a full TCP connect
type TCPConnector struct {
	// LocalAddr optionally binds outgoing connections
	LocalAddr net.Addr
}

// Connect reports whether a TCP handshake with ip:port completes within timeout.
// The connection is closed immediately. Refusals, timeouts and routing errors
// are reported as closed, running out of sockets as an environment failure.
func (c *TCPConnector) Connect(ctx context.Context, ip net.IP, port int, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	dialer := &net.Dialer{
		Timeout:   timeout,
		LocalAddr: c.LocalAddr,
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip.String(), strconv.Itoa(port)))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if isResourceExhausted(err) {
			return false, environmentError("tcp connect", err)
		}
		return false, nil
	}
	_ = conn.Close()

	return true, nil
}
