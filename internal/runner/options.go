package runner

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/hostsweep/pkg/probe"
	"github.com/projectdiscovery/hostsweep/pkg/sweep"
	"github.com/projectdiscovery/hostsweep/pkg/version"
	envutil "github.com/projectdiscovery/utils/env"
	fileutil "github.com/projectdiscovery/utils/file"
)

var au *aurora.Aurora

var (
	ConcurrencyEnv = envutil.GetEnvOrDefault("HOSTSWEEP_CONCURRENCY", sweep.DefaultConcurrency)
	MethodEnv      = envutil.GetEnvOrDefault("HOSTSWEEP_METHOD", string(probe.MethodAuto))
)

// Options contains the configuration options for a sweep
type Options struct {
	ConfigFile string

	Targets goflags.StringSlice
	Local   bool
	Ports   goflags.StringSlice

	Concurrency int
	Timeout     time.Duration
	PortTimeout time.Duration
	Method      string
	MaxHosts    int
	ScanTimeout time.Duration
	Sequential  bool

	JSON    bool
	NoColor bool
	Verbose bool
	Silent  bool
	Version bool

	// positional targets
	args []string
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`hostsweep finds the live hosts of a network and the open TCP ports on them`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringSliceVarP(&options.Targets, "target", "t", nil, "network (cidr or ip) to sweep (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.BoolVarP(&options.Local, "local", "l", false, "sweep the private /24 networks of the local interfaces"),
		flagSet.StringSliceVarP(&options.Ports, "ports", "p", nil, "tcp ports to probe on online hosts (22,80,8000-8100)", goflags.CommaSeparatedStringSliceOptions),
	)

	flagSet.CreateGroup("probe", "Probe",
		flagSet.IntVarP(&options.Concurrency, "concurrency", "c", ConcurrencyEnv, "maximum number of probes in flight"),
		flagSet.DurationVar(&options.Timeout, "timeout", sweep.DefaultTimeout, "liveness probe timeout"),
		flagSet.DurationVar(&options.PortTimeout, "port-timeout", sweep.DefaultTimeout, "port probe timeout"),
		flagSet.StringVarP(&options.Method, "method", "m", MethodEnv, fmt.Sprintf("liveness probe method (%s)", methodList())),
		flagSet.IntVar(&options.MaxHosts, "max-hosts", sweep.DefaultMaxHosts, "refuse networks with more usable hosts (0 to disable)"),
		flagSet.DurationVar(&options.ScanTimeout, "scan-timeout", 0, "stop the sweep after the given time (0 to disable)"),
		flagSet.BoolVarP(&options.Sequential, "sequential", "seq", false, "probe addresses in address order instead of likely gateways first"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.BoolVarP(&options.JSON, "json", "j", false, "write output in json lines format"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", "", "cli flag configuration file"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results in output"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}
	options.args = flagSet.CommandLine.Args()

	if options.ConfigFile != "" {
		if !fileutil.FileExists(options.ConfigFile) {
			gologger.Fatal().Msgf("config file %s does not exist\n", options.ConfigFile)
		}
		if err := flagSet.MergeConfigFile(options.ConfigFile); err != nil {
			gologger.Fatal().Msgf("could not read config: %s\n", err)
		}
	}

	// configure aurora for logging
	au = aurora.New(aurora.WithColors(true))

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.Version)
		os.Exit(0)
	}

	if err := options.validate(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	// If the user desires verbose output, show verbose output
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.New(aurora.WithColors(false))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) validate() error {
	if options.Verbose && options.Silent {
		return errors.New("both verbose and silent mode specified")
	}
	if options.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", options.Concurrency)
	}
	if options.Timeout <= 0 || options.PortTimeout <= 0 {
		return errors.New("probe timeouts must be positive")
	}
	if options.MaxHosts < 0 {
		return fmt.Errorf("max-hosts must not be negative, got %d", options.MaxHosts)
	}
	if options.ScanTimeout < 0 {
		return errors.New("scan-timeout must not be negative")
	}
	if _, err := probe.ParseMethod(options.Method); err != nil {
		return err
	}
	if len(options.Targets) == 0 && len(options.args) == 0 && !options.Local {
		return errors.New("no target network specified")
	}
	return nil
}

func methodList() string {
	names := make([]string, 0, len(probe.Methods))
	for _, method := range probe.Methods {
		names = append(names, string(method))
	}
	return strings.Join(names, ", ")
}
