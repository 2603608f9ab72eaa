package sweep

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/projectdiscovery/gcache"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/hostsweep/pkg/probe"
	"github.com/projectdiscovery/hostsweep/pkg/scheduler"
	"github.com/projectdiscovery/hostsweep/pkg/targets"
	sliceutil "github.com/projectdiscovery/utils/slice"
	"github.com/rs/xid"
)

const (
	DefaultConcurrency = 256
	DefaultTimeout     = time.Second
	DefaultMaxHosts    = 1 << 16
)

var (
	// ErrEnvironment is returned when every probe of a phase failed because of
	// the probing environment
	ErrEnvironment = errors.New("probing environment unavailable")
	// ErrInterrupted is returned with a partial report when the scan context ends early
	ErrInterrupted = errors.New("scan interrupted")
)

// Options configures an Orchestrator
type Options struct {
	Concurrency     int
	LivenessTimeout time.Duration
	PortTimeout     time.Duration
	// MaxHosts refuses networks with more usable hosts, 0 disables the check
	MaxHosts int
	// Prioritize probes likely online addresses first
	Prioritize bool
	// OnResult is called for every probe result from the aggregation goroutine
	OnResult func(probe.Result)
	// OnState is called on every state transition
	OnState func(State)
}

// DefaultOptions returns the default orchestration options
func DefaultOptions() Options {
	return Options{
		Concurrency:     DefaultConcurrency,
		LivenessTimeout: DefaultTimeout,
		PortTimeout:     DefaultTimeout,
		MaxHosts:        DefaultMaxHosts,
		Prioritize:      true,
	}
}

// Orchestrator runs the liveness phase and the optional port phase of a scan
type Orchestrator struct {
	options   Options
	scheduler *scheduler.Scheduler
	// warned remembers recently reported failure causes
	warned gcache.Cache[string, struct{}]
}

// New creates an orchestrator probing through prober
func New(prober probe.Prober, options Options) (*Orchestrator, error) {
	if options.LivenessTimeout <= 0 {
		options.LivenessTimeout = DefaultTimeout
	}
	if options.PortTimeout <= 0 {
		options.PortTimeout = DefaultTimeout
	}

	s, err := scheduler.New(prober, options.Concurrency)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		options:   options,
		scheduler: s,
		warned: gcache.New[string, struct{}](64).
			LRU().
			Expiration(time.Minute).
			Build(),
	}, nil
}

// ScanHosts runs a liveness scan of every usable host in cidr
func (o *Orchestrator) ScanHosts(ctx context.Context, cidr string) (*Report, error) {
	return o.scan(ctx, cidr, nil)
}

// ScanHostsAndPorts runs a liveness scan of cidr, then probes ports on the
// online hosts only. An empty port list is a plain liveness scan.
func (o *Orchestrator) ScanHostsAndPorts(ctx context.Context, cidr string, ports []int) (*Report, error) {
	for _, port := range ports {
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("%w: %d not in 1..65535", targets.ErrInvalidPortSpec, port)
		}
	}
	return o.scan(ctx, cidr, sliceutil.Dedupe(ports))
}

func (o *Orchestrator) scan(ctx context.Context, cidr string, ports []int) (*Report, error) {
	o.transition(Idle)
	o.transition(EnumeratingAddresses)

	hosts, network, err := targets.Hosts(cidr, o.options.MaxHosts)
	if err != nil {
		return nil, err
	}

	report := newReport(xid.New().String(), network.String())
	if o.options.Prioritize {
		targets.Prioritize(hosts)
	}

	o.transition(LivenessPhase)
	requests := make([]probe.Request, 0, len(hosts))
	for _, ip := range hosts {
		requests = append(requests, probe.NewLivenessRequest(ip, o.options.LivenessTimeout))
	}
	err = o.runPhase(ctx, report, requests, func(result probe.Result) {
		if result.Succeeded {
			report.markOnline(result.Request.IP)
		} else {
			report.Offline++
		}
	})
	if err != nil {
		report.finalize()
		return report, err
	}

	if len(ports) > 0 {
		report.PortsRequested = ports
	}

	if len(ports) > 0 && len(report.Online) > 0 {
		o.transition(PortPhase)
		requests = make([]probe.Request, 0, len(report.Online)*len(ports))
		for _, ip := range report.Online {
			for _, port := range ports {
				requests = append(requests, probe.NewPortRequest(ip, port, o.options.PortTimeout))
			}
		}
		err = o.runPhase(ctx, report, requests, func(result probe.Result) {
			if result.Succeeded {
				report.addOpenPort(result.Request.IP, result.Request.Port)
			}
		})
		if err != nil {
			report.finalize()
			return report, err
		}
	}

	report.finalize()
	o.transition(Complete)
	return report, nil
}

// runPhase runs one batch and feeds every result to aggregate. The results are
// consumed by this goroutine only, so aggregate needs no locking.
func (o *Orchestrator) runPhase(ctx context.Context, report *Report, requests []probe.Request, aggregate func(probe.Result)) error {
	results, err := o.scheduler.Run(ctx, requests)
	if err != nil {
		return err
	}

	var (
		failures  int
		cancelled int
		lastErr   error
	)
	for result := range results {
		switch {
		case probe.IsEnvironmentFailure(result.Err):
			failures++
			lastErr = result.Err
			o.logFailure(result)
		case result.Err != nil:
			cancelled++
		}
		aggregate(result)
		if o.options.OnResult != nil {
			o.options.OnResult(result)
		}
	}
	report.Failures += failures

	if len(requests) > 0 && failures == len(requests) {
		return fmt.Errorf("%w: all %d %s probes failed, last error: %w", ErrEnvironment, failures, requests[0].Kind, lastErr)
	}
	// a context ending after the last result leaves the phase complete
	if ctxErr := ctx.Err(); ctxErr != nil && cancelled > 0 {
		return fmt.Errorf("%w: %w", ErrInterrupted, ctxErr)
	}
	return nil
}

// logFailure logs every environment failure at verbose level and each distinct
// cause once a minute as a warning
func (o *Orchestrator) logFailure(result probe.Result) {
	gologger.Verbose().Msgf("%s probe of %s failed: %s", result.Request.Kind, result.Request.Target(), result.Err)

	cause := failureCause(result)
	if o.warned.Has(cause) {
		return
	}
	_ = o.warned.Set(cause, struct{}{})
	gologger.Warning().Msgf("%s probes are failing: %s", result.Request.Kind, result.Err)
}

// failureCause strips the target from an error message
func failureCause(result probe.Result) string {
	msg := result.Err.Error()
	msg = strings.ReplaceAll(msg, result.Request.Target(), "*")
	msg = strings.ReplaceAll(msg, result.Request.IP.String(), "*")
	return result.Request.Kind.String() + ":" + msg
}

func (o *Orchestrator) transition(state State) {
	if o.options.OnState != nil {
		o.options.OnState(state)
	}
}

// Concurrency returns the in-flight probe ceiling
func (o *Orchestrator) Concurrency() int {
	return o.scheduler.Concurrency()
}
