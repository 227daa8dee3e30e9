// Command cdpctl drives the OpenCDP client from the command line. It reads
// its configuration from CDP_* environment variables (and an optional .env
// file) and runs a single operation per invocation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/notifyhub/opencdp-go/internal/config"
	"github.com/notifyhub/opencdp-go/pkg/cdp"
)

var errUsage = errors.New("usage")

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, logger *zap.Logger) error {
	fs := flag.NewFlagSet("cdpctl", flag.ContinueOnError)
	fs.SetOutput(out)
	envFile := fs.String("env-file", ".env", "optional dotenv file with CDP_* variables")
	showMetrics := fs.Bool("metrics", false, "print client metrics after the command")
	fs.Usage = func() { usage(fs, out) }

	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		usage(fs, out)
		return errUsage
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(out, "unknown command %q\n", name)
		usage(fs, out)
		return errUsage
	}

	// ---- configuration ----
	cfg, err := config.Load(*envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	reg := prometheus.NewRegistry()
	clientCfg, err := cfg.ClientConfig(logger, reg)
	if err != nil {
		return fmt.Errorf("client config: %w", err)
	}
	client := cdp.NewClient(clientCfg)

	// ---- command ----
	cmdErr := cmd.run(ctx, client, fs.Args()[1:], out)

	if *showMetrics {
		if err := writeMetrics(reg, out); err != nil {
			return errors.Join(cmdErr, err)
		}
	}
	return cmdErr
}

func usage(fs *flag.FlagSet, out io.Writer) {
	fmt.Fprintln(out, "usage: cdpctl [flags] <command> [command flags]")
	fmt.Fprintln(out, "\ncommands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(out, "  %-16s %s\n", n, commands[n].summary)
	}
	fmt.Fprintln(out, "\nflags:")
	fs.PrintDefaults()
}

func writeMetrics(reg prometheus.Gatherer, out io.Writer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
