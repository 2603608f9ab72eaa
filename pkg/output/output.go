package output

import (
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/projectdiscovery/hostsweep/pkg/probe"
	"github.com/projectdiscovery/hostsweep/pkg/sweep"
)

// Presenter renders probe results as they arrive and the final report of a scan
type Presenter interface {
	// Result renders a single liveness result, port results are ignored
	Result(result probe.Result) error
	// Report renders the summary of a completed or interrupted scan
	Report(report *sweep.Report) error
}

// Format is the output format of a presenter
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New returns the presenter for format writing to w
func New(format Format, w io.Writer, colors bool) Presenter {
	if format == FormatJSON {
		return NewJSON(w)
	}
	return NewText(w, colors)
}

// lockedWriter serializes writes coming from concurrent scans
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) write(b []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.w.Write(b)
	return err
}

func joinPorts(ports []int) string {
	parts := make([]string, 0, len(ports))
	for _, port := range ports {
		parts = append(parts, strconv.Itoa(port))
	}
	return strings.Join(parts, ", ")
}

func hostStatus(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
