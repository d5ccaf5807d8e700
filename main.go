package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/supermatter/audio"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/game"
	"github.com/pthm-cable/supermatter/monitor"
	"github.com/pthm-cable/supermatter/tui"
)

var (
	configPath  string
	logFormat   string
	logLevel    string
	outputDir   string
	snapshotDir string
	seed        int64
	maxTicks    int
	monitorAddr string
	logStats    bool
	watchRate   time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "supermatter",
		Short:         "supermatter engine room simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return err
			}
			return config.Init(configPath)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config.yaml (empty = use defaults)")
	pf.StringVar(&logFormat, "log-format", "json", "log format: json or text")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation headless",
		RunE:  runHeadless,
	}
	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the simulation in a window",
		RunE:  runGUI,
	}
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "run the simulation with a terminal dashboard",
		RunE:  runWatch,
	}
	watchCmd.Flags().DurationVar(&watchRate, "rate", 100*time.Millisecond, "wall time between ticks")

	for _, cmd := range []*cobra.Command{runCmd, guiCmd, watchCmd} {
		f := cmd.Flags()
		f.StringVar(&outputDir, "output", "", "directory for CSV telemetry and the config snapshot")
		f.StringVar(&snapshotDir, "snapshots", "", "directory for bookmark snapshots")
		f.Int64Var(&seed, "seed", 0, "RNG seed (0 = config seed, then time based)")
		f.IntVar(&maxTicks, "ticks", 0, "stop after N ticks (0 = unlimited)")
		f.StringVar(&monitorAddr, "monitor", "", "serve the websocket monitor on this address")
		f.BoolVar(&logStats, "log-stats", false, "log every telemetry window")
	}

	plotCmd := &cobra.Command{
		Use:   "plot [reactor.csv]",
		Short: "chart recorded telemetry in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}
	plotCmd.Flags().StringVar(&plotMetric, "metric", "power", "metric: "+metricNames())
	plotCmd.Flags().Uint32Var(&plotReactor, "reactor", 0, "only this reactor (0 = all)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "chart height in rows")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Cfg().Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	rootCmd.AddCommand(runCmd, guiCmd, watchCmd, plotCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog handler.
func setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("log level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q", logFormat)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// newGame builds a game with the observers the flags ask for. The
// returned cleanup stops them.
func newGame(ctx context.Context, headless bool) (*game.Game, func(), error) {
	cfg := config.Cfg()
	logger := slog.Default()
	opts := game.Options{
		Config:      cfg,
		Headless:    headless,
		Seed:        seed,
		OutputDir:   outputDir,
		SnapshotDir: snapshotDir,
		LogStats:    logStats,
		Logger:      logger,
	}

	var stops []func()
	cleanup := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	addr := monitorAddr
	if addr == "" {
		addr = cfg.Monitor.Addr
	}
	if addr != "" {
		hub := monitor.NewHub(cfg.Monitor, logger)
		opts.Monitor = hub
		go func() {
			if err := monitor.Serve(ctx, addr, hub); err != nil {
				logger.Error("monitor stopped", "error", err)
			}
		}()
		stops = append(stops, func() { hub.Close() })
	}

	if cfg.Audio.Enabled {
		sb := audio.NewSoundBoard(cfg, logger)
		if err := sb.Initialize(); err != nil {
			logger.Warn("audio unavailable", "error", err)
		} else {
			opts.Sound = sb
			stops = append(stops, sb.Close)
		}
	}

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	stops = append(stops, func() {
		if err := g.Close(); err != nil {
			logger.Error("failed to close telemetry", "error", err)
		}
	})
	return g, cleanup, nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	g, cleanup, err := newGame(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	slog.Info("starting headless simulation", "seed", g.Seed(), "max_ticks", maxTicks)
	for ctx.Err() == nil {
		g.UpdateHeadless()
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
	return nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg := config.Cfg()
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Supermatter")
	defer rl.CloseWindow()
	rl.SetWindowState(rl.FlagWindowResizable)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	// Escape deselects in the inspector
	rl.SetExitKey(0)

	g, cleanup, err := newGame(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		g.Update()
		g.Draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	// The dashboard owns the terminal
	slog.SetDefault(slog.New(slog.DiscardHandler))

	g, cleanup, err := newGame(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	p := tea.NewProgram(tui.NewModel(g, watchRate), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
