// Command streamquery decodes recorded query answer streams and saved search
// responses.
//
// Usage:
//
//	streamquery replay [flags] <capture|glob|->...
//	streamquery results [flags] <response|glob|->...
//
// Global flags:
//
//	--config string  Path to config file (default $XDG_CONFIG_HOME/streamquery/config.yaml)
//	-v, --verbose    Log decoder diagnostics at debug level
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fwojciec/streamquery"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "streamquery: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// app carries the state shared by all subcommands. cfg and logger are set
// once flags are parsed.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	theme  streamquery.Theme

	configPath string
	verbose    bool

	cfg    *Config
	logger *zap.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		theme:  streamquery.DefaultTheme(),
	}

	root := &cobra.Command{
		Use:           "streamquery",
		Short:         "Decode query answer streams and search responses",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/streamquery/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log decoder diagnostics at debug level")

	root.AddCommand(a.replayCmd(), a.resultsCmd())
	return root
}

func (a *app) setup() error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	logger, err := newLogger(a.stderr, level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}
