package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tenantrating/devtools/config"
	"github.com/tenantrating/devtools/logging"
)

const version = "0.1.0"

// app carries what every subcommand needs once the root command has run.
type app struct {
	configPath string
	verbose    bool

	cfg     *config.Config
	logger  *slog.Logger
	closeFn func()
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{closeFn: func() {}}

	rootCmd := &cobra.Command{
		Use:           "devtools",
		Short:         "Tenant rating maintenance tools",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level, err := logging.ParseLevel(cfg.Logging.Level)
			if err != nil {
				return err
			}
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger, a.closeFn = logging.Setup(stderr, level, cfg.Logging.SeqURL)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default "+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newInspectCmd(a),
		newSpliceCmd(a),
		newServeCmd(a),
	)
	return rootCmd, a
}

// run executes the command line and reports any failure as a single
// "Error: ..." line on stdout. The error is returned for tests only; the
// process still terminates normally.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd, a := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	defer func() { a.closeFn() }()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_ = run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
