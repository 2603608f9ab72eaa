package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/projectdiscovery/hostsweep/pkg/probe"
	"github.com/projectdiscovery/hostsweep/pkg/sweep"
)

type hostEvent struct {
	Type     string `json:"type"`
	Host     string `json:"host"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

type reportEvent struct {
	Type           string           `json:"type"`
	ID             string           `json:"id"`
	Network        string           `json:"network"`
	Online         []string         `json:"online"`
	OnlineCount    int              `json:"online_count"`
	OfflineCount   int              `json:"offline_count"`
	Failures       int              `json:"failures"`
	PortsRequested []int            `json:"ports_requested,omitempty"`
	OpenPorts      map[string][]int `json:"open_ports,omitempty"`
	Started        time.Time        `json:"started"`
	Finished       time.Time        `json:"finished"`
	Elapsed        string           `json:"elapsed"`
}

// JSON writes one JSON object per line
type JSON struct {
	out *lockedWriter
}

func NewJSON(w io.Writer) *JSON {
	return &JSON{out: &lockedWriter{w: w}}
}

func (j *JSON) Result(result probe.Result) error {
	if result.Request.Kind != probe.Liveness {
		return nil
	}

	event := hostEvent{
		Type:     "host",
		Host:     ipString(result.Request.IP),
		Status:   hostStatus(result.Succeeded),
		Duration: result.Duration.String(),
	}
	if result.Err != nil {
		event.Error = result.Err.Error()
	}
	return j.emit(event)
}

func (j *JSON) Report(report *sweep.Report) error {
	event := reportEvent{
		Type:         "report",
		ID:           report.ID,
		Network:      report.Network,
		Online:       make([]string, 0, len(report.Online)),
		OnlineCount:  len(report.Online),
		OfflineCount: report.Offline,
		Failures:     report.Failures,
		Started:      report.Started,
		Finished:     report.Finished,
		Elapsed:      report.Elapsed().String(),
	}
	for _, ip := range report.Online {
		event.Online = append(event.Online, ip.String())
	}
	if len(report.PortsRequested) > 0 {
		event.PortsRequested = report.PortsRequested
		event.OpenPorts = report.OpenPorts
	}
	return j.emit(event)
}

func (j *JSON) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return j.out.write(append(data, '\n'))
}
