// Package cmd wires up the CLI flags and dispatches to discovery.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"lports/config"
	"lports/internal/api"
	"lports/internal/core"
	"lports/internal/discovery"
	"lports/internal/metrics"
	"lports/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X lports/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs lports.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr, os.Environ())
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, environ []string) error {
	cfg := &config.Config{}
	fs := flag.NewFlagSet("lports", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── inputs ───────────────────────────────────────────────────
	fs.StringVarP(&cfg.ManifestPath, "manifest", "f", config.DefaultManifestPath, "Component manifest (YAML)")
	fs.StringVar(&cfg.EnvFile, "env-file", config.DefaultEnvFile, "Environment file loaded before LPORTS_* variables")

	// ── behaviour ────────────────────────────────────────────────
	fs.BoolVar(&cfg.Check, "check", false, "Check every port against its component's definitions")
	fs.BoolVar(&cfg.Definitions, "definitions", false, "Print port definitions instead of ports")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the manifest and exit")
	fs.StringVar(&cfg.ServeAddr, "serve", "", "Serve the discovery API on ADDR (default: the manifest's discovery-api address)")
	fs.Lookup("serve").NoOptDefVal = config.ServeFromManifest
	fs.DurationVar(&cfg.Watch, "watch", 0, "Re-discover on an interval and print changes")
	fs.Lookup("watch").NoOptDefVal = config.DefaultWatchInterval.String()

	// ── output ───────────────────────────────────────────────────
	fs.StringVarP(&cfg.Output, "output", "o", config.DefaultOutput, "Output format: table, json, or auto")
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}
	if showHelp {
		printUsage(stderr, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "lports %s\n", version)
		return nil
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v (use --help for usage)", fs.Args())
	}

	// ── environment ──────────────────────────────────────────────
	if err := config.LoadEnvFile(cfg.EnvFile); err != nil {
		return err
	}
	applyEnv(fs, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Verbose)

	// ── manifest ─────────────────────────────────────────────────
	m, err := config.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return err
	}
	if n := config.ApplyPropertyOverrides(m, environ); n > 0 {
		logger.Verbose("applied %d property overrides from the environment", n)
	}
	insts, err := core.BuildAll(m)
	if err != nil {
		return err
	}

	mc := metrics.New()
	host := discovery.New(
		discovery.WithLogger(logger.Named("discovery")),
		discovery.WithMetrics(mc),
		discovery.WithConformanceCheck(cfg.Check),
	)
	for _, inst := range insts {
		if _, err := host.Register(inst); err != nil {
			return err
		}
	}

	// ── dispatch ─────────────────────────────────────────────────
	format := resolveOutput(cfg.Output, stdout)
	switch {
	case cfg.DryRun:
		fmt.Fprintf(stdout, "%s: %d components OK\n", cfg.ManifestPath, len(insts))
		return nil

	case cfg.Definitions:
		return printDefinitions(stdout, format, host.Definitions())

	case cfg.ServeAddr != "":
		addr, err := serveAddr(cfg.ServeAddr, insts, logger)
		if err != nil {
			return err
		}
		srv, err := api.New(host, mc, logger.Named("api"))
		if err != nil {
			return err
		}
		return srv.Serve(ctx, addr)

	case cfg.Watch > 0:
		logger.Info("watching %d components every %s", len(insts), cfg.Watch)
		return host.Watch(ctx, cfg.Watch, func(snap discovery.Snapshot, c discovery.Changes) {
			printChanges(stdout, format, snap, c) //nolint:errcheck
		})
	}

	snap, err := host.Discover(ctx)
	if err != nil {
		return err
	}
	if err := printSnapshot(stdout, format, snap); err != nil {
		return err
	}
	if cfg.Check {
		if n := snap.Violations(); n > 0 {
			return fmt.Errorf("%d non-conforming ports", n)
		}
	}
	logger.Debug("metrics: %s", mc.JSON())
	return nil
}

// applyEnv overlays LPORTS_* variables on everything the command line
// did not set explicitly.
func applyEnv(fs *flag.FlagSet, cfg *config.Config) {
	env := *cfg
	config.LoadFromEnv(&env)

	if !fs.Changed("manifest") {
		cfg.ManifestPath = env.ManifestPath
	}
	if !fs.Changed("output") {
		cfg.Output = env.Output
	}
	if !fs.Changed("check") {
		cfg.Check = env.Check
	}
	if !fs.Changed("serve") {
		cfg.ServeAddr = env.ServeAddr
	}
	if !fs.Changed("watch") {
		cfg.Watch = env.Watch
	}
	if !fs.Changed("verbose") {
		cfg.Verbose = env.Verbose
	}
}

// serveAddr resolves --serve.  An explicit address that differs from the
// manifest's discovery-api component is served anyway, with a warning,
// since the reported port would then be wrong.
func serveAddr(flagAddr string, insts []core.Instance, logger *util.Logger) (string, error) {
	described, err := core.APIAddr(insts)
	if flagAddr == config.ServeFromManifest {
		return described, err
	}
	if err == nil && described != flagAddr {
		logger.Warn("serving on %s but the discovery-api component reports %s", flagAddr, described)
	}
	return flagAddr, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `lports – listen port discovery v%s

Reports the ports a set of configured components listen on, without
starting any of them.

Usage:
  lports [options]                        Discover once and print
  lports --watch[=5s] [options]           Print changes as they happen
  lports --serve[=ADDR] [options]         Serve the discovery API
  lports --definitions [options]          Print declared port definitions

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Environment:
  LPORTS_MANIFEST, LPORTS_OUTPUT, LPORTS_CHECK, LPORTS_SERVE,
  LPORTS_WATCH (seconds), LPORTS_VERBOSE
  LPORTS_PROP_<COMPONENT>_<PROPERTY>      Override a component property

Examples:
  lports -f stack.yaml                     Table of ports
  lports -f stack.yaml -o json --check     JSON, fail on undeclared protocols
  LPORTS_PROP_EDGE_PORT=9443 lports        Override edge's port
`)
}
