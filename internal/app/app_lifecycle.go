// app_lifecycle.go - Multiplexer startup, run and shutdown

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/natb1/tabmux/internal/config"
	"github.com/natb1/tabmux/internal/metrics"
	"github.com/natb1/tabmux/internal/terminal"
	"github.com/natb1/tabmux/internal/ui"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// RunOptions configures one multiplexer run
type RunOptions struct {
	Config *config.Config
	// Shell overrides the configured shell for every tab
	Shell string
	// Dir is the working directory of new tabs; empty means the current directory
	Dir string

	Logger *zap.Logger

	// Input and Output default to the process's stdin and stdout
	Input  io.Reader
	Output io.Writer

	// Spawner replaces the pty spawner, for tests
	Spawner terminal.Spawner
	// ProgramOptions are appended to the Bubble Tea program options
	ProgramOptions []tea.ProgramOption
}

// Run bootstraps the first shell and runs the UI until the user quits or ctx ends.
// Every session is destroyed before it returns.
func Run(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var in io.Reader = os.Stdin
	if opts.Input != nil {
		in = opts.Input
	}
	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m, err := startMetrics(ctx, cfg.Metrics.Addr, logger)
	if err != nil {
		return err
	}

	ui.SetColorProfile(termenv.NewOutput(out).EnvColorProfile())

	width, height := hostSize(out, cfg.Terminal)
	cols, rows := ui.TerminalArea(width, height)

	registry := terminal.NewRegistry(terminal.Options{
		Spawner:       opts.Spawner,
		Shell:         cfg.Shell,
		Dir:           opts.Dir,
		BufferCeiling: cfg.Buffer.Ceiling,
		BufferFloor:   cfg.Buffer.Floor,
		Logger:        logger,
		Metrics:       m,
	})

	keys := ui.NewKeyMap(cfg.Keys)
	controller := NewController(ControllerOptions{
		Registry: registry,
		Keys:     keys,
		Logger:   logger,
		Cols:     cols,
		Rows:     rows,
		Shell:    opts.Shell,
	})

	if err := controller.Bootstrap(); err != nil {
		registry.Close()
		return err
	}
	defer controller.Quit()

	logger.Info("multiplexer started",
		zap.String("session", controller.ActiveID()),
		zap.Int("cols", cols),
		zap.Int("rows", rows))

	model := NewModel(controller, registry, keys, width, height, logger)
	programOpts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	}, opts.ProgramOptions...)

	_, err = tea.NewProgram(model, programOpts...).Run()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("failed to run multiplexer: %w", err)
	}
	return nil
}

// startMetrics serves metrics when addr is set; otherwise metrics are disabled
func startMetrics(ctx context.Context, addr string, logger *zap.Logger) (*metrics.Metrics, error) {
	if addr == "" {
		return nil, nil
	}

	m := metrics.New()
	// Serve logs its own failures; the multiplexer keeps running without the endpoint
	if _, err := metrics.Serve(ctx, addr, m, logger.Named("metrics")); err != nil {
		return nil, fmt.Errorf("failed to start metrics endpoint: %w", err)
	}
	return m, nil
}

// hostSize returns the host terminal size, falling back to the configured size
func hostSize(out io.Writer, fallback config.TerminalConfig) (width, height int) {
	if f, ok := out.(*os.File); ok {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return fallback.Cols, fallback.Rows
}
