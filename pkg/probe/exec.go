package probe

import (
	"context"
	"errors"
	"math"
	"net"
	"os/exec"
	"strconv"
	"time"

	osutil "github.com/projectdiscovery/utils/os"
)

// ExecPinger runs the system ping binary once per address
type ExecPinger struct {
	// Binary overrides the ping executable, mainly for tests
	Binary string
}

// NewExecPinger returns an ExecPinger after checking the ping binary exists
func NewExecPinger() (*ExecPinger, error) {
	if _, err := exec.LookPath("ping"); err != nil {
		return nil, environmentError("lookup ping", err)
	}
	return &ExecPinger{}, nil
}

// Ping sends a single echo request through the system ping command.
// A zero exit status means the host answered within timeout.
func (p *ExecPinger) Ping(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	binary, args := p.command(ip, timeout)

	// ping's own wait is the bound, the extra second only covers process startup
	cmdCtx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, binary, args...)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) || errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		return false, nil
	}

	// the command could not be started at all
	return false, environmentError("exec "+binary, err)
}

// Close is a no-op
func (p *ExecPinger) Close() error {
	return nil
}

// command builds the platform specific ping invocation
func (p *ExecPinger) command(ip net.IP, timeout time.Duration) (string, []string) {
	binary := p.Binary
	isIPv6 := ip.To4() == nil

	switch {
	case osutil.IsWindows():
		if binary == "" {
			binary = "ping"
		}
		args := []string{"-n", "1", "-w", strconv.FormatInt(timeout.Milliseconds(), 10)}
		if isIPv6 {
			args = append(args, "-6")
		}
		return binary, append(args, ip.String())
	case osutil.IsOSX():
		if binary == "" {
			binary = "ping"
			if isIPv6 {
				binary = "ping6"
			}
		}
		// -W is in milliseconds on darwin, ping6 has no per-reply wait
		if isIPv6 {
			return binary, []string{"-c", "1", ip.String()}
		}
		return binary, []string{"-c", "1", "-W", strconv.FormatInt(timeout.Milliseconds(), 10), ip.String()}
	default:
		if binary == "" {
			binary = "ping"
		}
		args := []string{"-c", "1", "-W", strconv.Itoa(waitSeconds(timeout))}
		if isIPv6 {
			args = append(args, "-6")
		}
		return binary, append(args, ip.String())
	}
}

// waitSeconds rounds timeout up to whole seconds, linux ping takes no fractions
func waitSeconds(timeout time.Duration) int {
	seconds := int(math.Ceil(timeout.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
