// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ipfw/forward"
	"github.com/bureau-foundation/ipfw/lib/config"
	"github.com/bureau-foundation/ipfw/lib/process"
	"github.com/bureau-foundation/ipfw/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		process.Fatal(err)
	}
}

// options holds the parsed command line.
type options struct {
	flagSet *pflag.FlagSet

	configPath  string
	v6Only      bool
	logFormat   string
	verbose     bool
	showHelp    bool
	showVersion bool

	// listen and target are the positional arguments, empty when
	// omitted.
	listen string
	target string
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}
	flagSet := pflag.NewFlagSet("ipfw", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: $"+config.EnvironmentVariable+")")
	flagSet.BoolVar(&opts.v6Only, "v6-only", false, "only accept IPv6 connections")
	flagSet.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flagSet.BoolVarP(&opts.showHelp, "help", "h", false, "show help")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	opts.flagSet = flagSet

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	switch positional := flagSet.Args(); len(positional) {
	case 0:
	case 2:
		opts.listen, opts.target = positional[0], positional[1]
	default:
		return nil, fmt.Errorf("expected <listen-addr> <target-addr>, got %d argument(s)", len(positional))
	}
	return opts, nil
}

// resolveConfig loads the config file, if any, and applies the
// command-line values that were given explicitly.
func (o *options) resolveConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case o.configPath != "":
		cfg, err = config.LoadFile(o.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if o.listen != "" {
		cfg.Listen = o.listen
		cfg.Target = o.target
	}
	if o.flagSet.Changed("v6-only") {
		cfg.V6Only = o.v6Only
	}
	if o.flagSet.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, logConfig config.LogConfig) *slog.Logger {
	handlerOptions := &slog.HandlerOptions{Level: logConfig.SlogLevel()}
	if logConfig.Format == config.FormatJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOptions))
	}
	return slog.New(slog.NewTextHandler(w, handlerOptions))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout)
			return nil
		}
		return err
	}
	if opts.showHelp {
		printUsage(stdout)
		return nil
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "ipfw %s\n", version.Info())
		return nil
	}

	cfg, err := opts.resolveConfig()
	if err != nil {
		return err
	}

	listenAddr, err := forward.ParseEndpoint(forward.RoleListen, cfg.Listen)
	if err != nil {
		return err
	}
	targetAddr, err := forward.ParseEndpoint(forward.RoleTarget, cfg.Target)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cfg.Log)
	slog.SetDefault(logger)
	logger.Info("starting ipfw", "version", version.Info())

	forwarder := &forward.Forwarder{
		ListenAddr: listenAddr,
		TargetAddr: targetAddr,
		V6Only:     cfg.V6Only,
		Logger:     logger,
	}
	err = forwarder.Run(ctx)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.Info("shutdown complete")
		return nil
	}
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `ipfw - Forward TCP connections to a single target

USAGE
    ipfw [flags] <listen-addr> <target-addr>
    ipfw [flags] --config <file>

Addresses are numeric: 127.0.0.1:8080 or [::1]:8080.

FLAGS
    -c, --config <file>     YAML config file (default: $IPFW_CONFIG)
        --v6-only           Only accept IPv6 connections
        --log-format <fmt>  Log format: text (default) or json
    -v, --verbose           Enable debug logging
    -h, --help              Show this help
        --version           Print version information

The target is probed continuously. If it cannot be connected to, ipfw
exits with status 1.

EXAMPLES
    # Forward local port 9001 to a service on 9002
    ipfw 127.0.0.1:9001 127.0.0.1:9002

    # Accept IPv6 clients only
    ipfw --v6-only '[::]:443' '10.0.0.5:8443'
`)
}
