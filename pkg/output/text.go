package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/hostsweep/pkg/probe"
	"github.com/projectdiscovery/hostsweep/pkg/sweep"
)

// Text writes the human readable line format
type Text struct {
	out *lockedWriter
	au  *aurora.Aurora
}

// NewText creates a text presenter, colors only affect the host status word
func NewText(w io.Writer, colors bool) *Text {
	return &Text{
		out: &lockedWriter{w: w},
		au:  aurora.New(aurora.WithColors(colors)),
	}
}

func (t *Text) Result(result probe.Result) error {
	if result.Request.Kind != probe.Liveness {
		return nil
	}

	status := t.au.Red(hostStatus(false))
	if result.Succeeded {
		status = t.au.Green(hostStatus(true))
	}
	line := fmt.Sprintf("Host %s is %s\n", ipString(result.Request.IP), status)
	return t.out.write([]byte(line))
}

func (t *Text) Report(report *sweep.Report) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Total Online Hosts: %d\n", len(report.Online))
	fmt.Fprintf(&buf, "Total Offline Hosts: %d\n", report.Offline)

	if len(report.PortsRequested) > 0 {
		for _, ip := range report.HostsWithOpenPorts() {
			fmt.Fprintf(&buf, "%s has open ports: %s\n", ip, joinPorts(report.Ports(ip)))
		}
	}
	return t.out.write(buf.Bytes())
}
