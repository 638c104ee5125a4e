// cli.go - Command-line interface
//
// The root command runs the multiplexer. Flags override the environment and config
// file for one run.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/natb1/tabmux/internal/app"
	"github.com/natb1/tabmux/internal/config"
	"github.com/natb1/tabmux/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X github.com/natb1/tabmux/pkg/cli.Version=..."
var Version = "dev"

// Options holds the root command flags
type Options struct {
	Shell      string
	Dir        string
	ConfigFile string
}

// runFunc starts the multiplexer; replaced in tests
type runFunc func(ctx context.Context, opts app.RunOptions) error

// NewRootCommand builds the tabmux command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(app.Run)
}

func newRootCommand(run runFunc) *cobra.Command {
	var opts Options

	root := &cobra.Command{
		Use:   "tabmux",
		Short: "Run several shells in tabs inside one terminal",
		Long: `tabmux hosts several interactive shells, each behind its own pseudo-terminal,
and shows one of them at a time. Background tabs keep running and keep their output.

Keys:
  ctrl+t           open a new tab
  ctrl+w           close the active tab
  ctrl+right/left  switch to the next/previous tab
  ctrl+q           quit, closing every tab

Every other key goes to the active shell. Bindings can be changed in the config file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMultiplexer(cmd.Context(), opts, run)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.Shell, "shell", "", "shell for every tab (default $SHELL)")
	flags.StringVar(&opts.Dir, "cwd", "", "working directory of new tabs (default current directory)")
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "YAML config file (default $TABMUX_CONFIG)")

	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) error {
	_, err := fmt.Fprintf(w, "tabmux %s\n", Version)
	return err
}

// Execute runs the root command with SIGINT and SIGTERM cancelling the run
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func runMultiplexer(ctx context.Context, opts Options, run runFunc) error {
	cfg, err := config.LoadFile(opts.ConfigFile)
	if err != nil {
		return err
	}

	if opts.Dir != "" {
		info, err := os.Stat(opts.Dir)
		if err != nil {
			return fmt.Errorf("invalid --cwd: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("invalid --cwd: %s is not a directory", opts.Dir)
		}
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	if cfg.Logging.File != "" {
		logCfg.OutputPaths = []string{cfg.Logging.File}
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger = logger.Named("tabmux")
	logger.Info("starting",
		zap.String("version", Version),
		zap.String("shell", opts.Shell),
		zap.String("config", cfg.File))

	err = run(ctx, app.RunOptions{
		Config: cfg,
		Shell:  opts.Shell,
		Dir:    opts.Dir,
		Logger: logger,
	})
	if err != nil {
		logger.Error("multiplexer failed", zap.Error(err))
		return err
	}
	logger.Info("exited")
	return nil
}
