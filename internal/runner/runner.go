package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/hostsweep/pkg/output"
	"github.com/projectdiscovery/hostsweep/pkg/probe"
	"github.com/projectdiscovery/hostsweep/pkg/sweep"
	"github.com/projectdiscovery/hostsweep/pkg/targets"
	errorutil "github.com/projectdiscovery/utils/errors"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// descriptorReserve is kept free for the process itself (stdio, sockets of the pinger)
const descriptorReserve = 16

var (
	ErrNoTargets     = errors.New("no target network to sweep")
	ErrNoDescriptors = errors.New("no file descriptors available for probing")
)

// Runner contains the internal logic of the program
type Runner struct {
	options      *Options
	ports        []int
	network      *probe.Network
	presenter    output.Presenter
	orchestrator *sweep.Orchestrator
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	method, err := probe.ParseMethod(options.Method)
	if err != nil {
		return nil, err
	}

	concurrency := options.Concurrency
	if headroom, err := descriptorHeadroom(); err != nil {
		gologger.Verbose().Msgf("Could not read file descriptor limits: %s", err)
	} else {
		concurrency, err = clampConcurrency(options.Concurrency, headroom)
		if err != nil {
			return nil, err
		}
		if concurrency < options.Concurrency {
			gologger.Warning().Msgf("Lowering concurrency from %d to %d to fit the file descriptor limit", options.Concurrency, concurrency)
		}
	}
	options.Concurrency = concurrency

	pinger, used, err := probe.NewPinger(method)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("no %s liveness probe available", method)
	}
	gologger.Verbose().Msgf("Using %s liveness probes", used)

	network := probe.NewNetwork(pinger)
	r, err := newRunner(options, network, os.Stdout)
	if err != nil {
		_ = network.Close()
		return nil, err
	}
	r.network = network
	return r, nil
}

func newRunner(options *Options, prober probe.Prober, w io.Writer) (*Runner, error) {
	ports, err := targets.ParsePorts(options.Ports)
	if err != nil {
		return nil, err
	}

	format := output.FormatText
	if options.JSON {
		format = output.FormatJSON
	}
	r := &Runner{
		options:   options,
		ports:     ports,
		presenter: output.New(format, w, !options.NoColor && isTerminal(w)),
	}

	r.orchestrator, err = sweep.New(prober, sweep.Options{
		Concurrency:     options.Concurrency,
		LivenessTimeout: options.Timeout,
		PortTimeout:     options.PortTimeout,
		MaxHosts:        options.MaxHosts,
		Prioritize:      !options.Sequential,
		OnResult:        r.onResult,
		OnState: func(state sweep.State) {
			gologger.Verbose().Msgf("Sweep state: %s", state)
		},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Run sweeps every target network in turn
func (r *Runner) Run(ctx context.Context) error {
	networks := r.targets()
	if len(networks) == 0 {
		return ErrNoTargets
	}
	// a bad target aborts the run before anything is probed
	for _, network := range networks {
		if _, err := targets.ParseNetwork(network); err != nil {
			return err
		}
	}

	if r.options.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.options.ScanTimeout)
		defer cancel()
	}

	for _, network := range networks {
		stop, err := r.sweep(ctx, network)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}

// sweep scans a single network, stop is set when the scan was interrupted
func (r *Runner) sweep(ctx context.Context, network string) (stop bool, err error) {
	if ipnet, parseErr := targets.ParseNetwork(network); parseErr == nil {
		count := targets.UsableCount(ipnet)
		if count.IsInt64() {
			gologger.Info().Msgf("Sweeping %s hosts in %s", humanize.Comma(count.Int64()), ipnet)
		}
	}

	report, scanErr := r.orchestrator.ScanHostsAndPorts(ctx, network, r.ports)
	if report != nil {
		if err := r.presenter.Report(report); err != nil {
			return true, errorutil.NewWithErr(err).Msgf("could not write report")
		}
		gologger.Info().Msgf("Found %s online hosts out of %s in %s (%s)",
			humanize.Comma(int64(len(report.Online))),
			humanize.Comma(int64(report.Total())),
			report.Network,
			report.Elapsed().Round(time.Millisecond))
	}

	switch {
	case scanErr == nil:
		return false, nil
	case errors.Is(scanErr, sweep.ErrInterrupted):
		if errors.Is(scanErr, context.DeadlineExceeded) {
			gologger.Warning().Msgf("Scan timeout of %s reached, results for %s are partial", r.options.ScanTimeout, network)
		} else {
			gologger.Warning().Msgf("Sweep of %s interrupted, results are partial", network)
		}
		return true, nil
	default:
		return true, errorutil.NewWithErr(scanErr).Msgf("could not sweep %s", network)
	}
}

func (r *Runner) onResult(result probe.Result) {
	if err := r.presenter.Result(result); err != nil {
		gologger.Error().Msgf("Could not write result for %s: %s", result.Request.Target(), err)
	}
}

// targets merges positional arguments, -target values and local networks
func (r *Runner) targets() []string {
	var networks []string
	for _, value := range append(append([]string{}, r.options.args...), r.options.Targets...) {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				networks = append(networks, item)
			}
		}
	}

	if r.options.Local {
		local, err := targets.LocalNetworks()
		if err != nil {
			gologger.Warning().Msgf("Could not list local networks: %s", err)
		}
		if len(local) == 0 {
			gologger.Warning().Msg("No private local network found")
		}
		for _, ipnet := range local {
			networks = append(networks, ipnet.String())
		}
	}
	return sliceutil.Dedupe(networks)
}

// clampConcurrency fits the probe ceiling into the available descriptors
func clampConcurrency(requested, headroom int) (int, error) {
	available := headroom - descriptorReserve
	if available < 1 {
		return 0, errorutil.NewWithErr(ErrNoDescriptors).Msgf("%d descriptors left", headroom)
	}
	if requested > available {
		return available, nil
	}
	return requested, nil
}

// isTerminal keeps piped output free of ANSI codes
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Close releases the probing sockets
func (r *Runner) Close() {
	if r.network == nil {
		return
	}
	if err := r.network.Close(); err != nil {
		gologger.Verbose().Msgf("Could not close prober: %s", err)
	}
}
