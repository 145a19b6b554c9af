package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/photonsim/internal/compute"
	"github.com/san-kum/photonsim/internal/config"
	"github.com/san-kum/photonsim/internal/display"
	"github.com/san-kum/photonsim/internal/spectrum"
	"github.com/san-kum/photonsim/internal/storage"
	"github.com/san-kum/photonsim/internal/viz"
	"github.com/san-kum/photonsim/internal/world"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	outputDir  string
	logLevel   string

	iterations    int
	snapshotEvery int
	makeGIF       bool
	backendName   string
	workers       int
	seed          uint64
	spawnRate     float64
	ttl           int
	windowCap     int
	fadeOutSpeed  float64
	timeSpeed     float64
	width         int
	height        int
	gravityMode   string

	// live and window previews
	frameRate int
	cols      int
	rows      int
	scale     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "photonsim",
		Short:         "photon light-transport simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a preset scene")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", config.DefaultOutputDir, "output directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save frames",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	simFlags(runCmd)
	runCmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "number of ticks")
	runCmd.Flags().IntVar(&snapshotEvery, "snapshot-every", 0, "save a frame every n ticks, 0 saves only the last")
	runCmd.Flags().BoolVar(&makeGIF, "gif", false, "also write an animated gif of the frames")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "preview the simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	simFlags(liveCmd)
	liveCmd.Flags().IntVar(&iterations, "iterations", 0, "stop after n ticks, 0 runs until quit")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&cols, "cols", 64, "image width in terminal cells")
	liveCmd.Flags().IntVar(&rows, "rows", 32, "image height in terminal cells")

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "preview the simulation in a desktop window",
		Args:  cobra.NoArgs,
		RunE:  runWindow,
	}
	simFlags(windowCmd)
	windowCmd.Flags().IntVar(&iterations, "iterations", 0, "stop after n ticks, 0 runs until closed")
	windowCmd.Flags().IntVar(&frameRate, "fps", 30, "ticks per second")
	windowCmd.Flags().IntVar(&scale, "scale", 1, "window scale factor")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot photon counts of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	backendsCmd := &cobra.Command{
		Use:   "backends",
		Short: "list compute backends",
		Args:  cobra.NoArgs,
		RunE:  listBackends,
	}

	rootCmd.AddCommand(runCmd, liveCmd, windowCmd, listCmd, plotCmd, presetsCmd, backendsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&backendName, "backend", "auto", "compute backend: auto, cpu or opencl")
	cmd.Flags().IntVar(&workers, "workers", 0, "cpu workers, 0 uses every core")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed, 0 picks one from the clock")
	cmd.Flags().Float64Var(&spawnRate, "spawn-rate", config.DefaultSpawnRate, "photons per unit luminosity per tick")
	cmd.Flags().IntVar(&ttl, "ttl", config.DefaultTTL, "photon lifetime in ticks")
	cmd.Flags().IntVar(&windowCap, "window-cap", config.DefaultWindowCap, "batches kept in flight")
	cmd.Flags().Float64Var(&fadeOutSpeed, "fade", config.DefaultFadeOutSpeed, "canvas fade factor per tick")
	cmd.Flags().Float64Var(&timeSpeed, "time-speed", config.DefaultTimeSpeed, "photon step length per tick")
	cmd.Flags().IntVar(&width, "width", config.DefaultCanvasSize, "canvas width")
	cmd.Flags().IntVar(&height, "height", config.DefaultCanvasSize, "canvas height")
	cmd.Flags().StringVar(&gravityMode, "gravity", "direct", "gravity solver: direct or barneshut")
}

// loadConfig resolves the config layers and applies the flags the user
// actually set on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(preset, configFile)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("output") {
		cfg.OutputDirectory = outputDir
	}
	if changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if changed("iterations") {
		cfg.Iterations = iterations
	}
	if changed("snapshot-every") {
		cfg.SnapshotEvery = snapshotEvery
	}
	if changed("gif") {
		cfg.GIF = makeGIF
	}
	if changed("backend") {
		cfg.Backend = backendName
	}
	if changed("workers") {
		cfg.Workers = workers
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("spawn-rate") {
		cfg.PhotonSpawnRate = spawnRate
	}
	if changed("ttl") {
		cfg.PhotonTTL = ttl
	}
	if changed("window-cap") {
		cfg.WindowCap = windowCap
	}
	if changed("fade") {
		cfg.FadeOutSpeed = fadeOutSpeed
	}
	if changed("time-speed") {
		cfg.TimeSpeed = timeSpeed
	}
	if changed("width") {
		cfg.Canvas.Width = width
	}
	if changed("height") {
		cfg.Canvas.Height = height
	}
	if changed("gravity") {
		cfg.Gravity.Mode = gravityMode
	}
}

// openStore finds the run store the same way run does.
func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := config.Resolve(preset, configFile)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	return storage.New(cfg.OutputDirectory), nil
}

func sceneName() string {
	if preset != "" {
		return preset
	}
	return "scene"
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	st := storage.New(cfg.OutputDirectory)
	run, err := st.Create(storage.RunMetadata{
		Scene:        sceneName(),
		Seed:         s.seed,
		Backend:      s.backend.Name(),
		Stars:        len(s.world.Stars()),
		Width:        cfg.Canvas.Width,
		Height:       cfg.Canvas.Height,
		SpawnRate:    cfg.PhotonSpawnRate,
		TTL:          cfg.PhotonTTL,
		WindowCap:    cfg.WindowCap,
		FadeOutSpeed: cfg.FadeOutSpeed,
	})
	if err != nil {
		return err
	}
	if cfg.GIF {
		run.EnableGIF()
	}

	logger.Info("starting run",
		"id", run.ID(),
		"backend", s.backend.Name(),
		"stars", len(s.world.Stars()),
		"iterations", cfg.Iterations,
		"seed", s.seed)

	cv := s.world.Canvas()
	lastFrame := -1
	snap := func(iter int) error {
		path, err := run.WriteFrame(iter, cv.Render(spectrum.Default, cfg.Canvas.Gamma))
		if err != nil {
			return err
		}
		lastFrame = iter
		logger.Debug("saved frame", "path", path)
		return nil
	}

	k0, p0 := s.world.Energy()
	startEnergy, endEnergy := k0+p0, k0+p0

	start := time.Now()
	runErr := s.world.Run(ctx, cfg.Iterations, func(ts world.TickStats) error {
		logger.Debug("tick",
			"iteration", ts.Iteration,
			"elapsed", ts.Elapsed,
			"absorbed", ts.Absorbed,
			"live", ts.Live,
			"canvas_weight", ts.CanvasWeight)
		endEnergy = ts.Energy
		if err := run.Record(ts); err != nil {
			return err
		}
		if cfg.SnapshotEvery > 0 && (ts.Iteration+1)%cfg.SnapshotEvery == 0 {
			return snap(ts.Iteration)
		}
		return nil
	})

	// An interrupted run still keeps what it produced.
	if last := s.world.Iteration() - 1; last >= 0 && last != lastFrame {
		if err := snap(last); err != nil && runErr == nil {
			runErr = err
		}
	}
	if err := run.Close(); err != nil && runErr == nil {
		runErr = err
	}

	meta := run.Metadata()
	logger.Info("run finished",
		"id", meta.ID,
		"dir", run.Dir(),
		"iterations", meta.Iterations,
		"frames", len(meta.Frames),
		"spawned", meta.Totals.Spawned,
		"absorbed", meta.Totals.Absorbed,
		"elapsed", time.Since(start).Round(time.Millisecond))
	if startEnergy != 0 {
		logger.Info("energy", "start", startEnergy, "end", endEnergy,
			"drift", (endEnergy-startEnergy)/math.Abs(startEnergy))
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	st := storage.New(cfg.OutputDirectory)
	if err := st.Init(); err != nil {
		return err
	}
	snapshot := func(iter int) (string, error) {
		path := filepath.Join(st.BaseDir(), fmt.Sprintf("live_%05d.png", iter))
		if err := storage.SavePNG(path, s.world.Canvas().Render(spectrum.Default, cfg.Canvas.Gamma)); err != nil {
			return "", err
		}
		return "saved " + path, nil
	}

	fps := frameRate
	if fps <= 0 {
		fps = 30
	}
	m := viz.NewModel(ctx, s.world, viz.Options{
		Title:    sceneName(),
		Backend:  s.backend.Name(),
		Cols:     cols,
		Rows:     rows,
		Gamma:    cfg.Canvas.Gamma,
		Limit:    cfg.Iterations,
		Interval: time.Second / time.Duration(fps),
		Snapshot: snapshot,
	})
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func runWindow(cmd *cobra.Command, args []string) error {
	if !display.Available() {
		return display.ErrUnavailable
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	return display.Run(ctx, s.world, display.Options{
		Title: "photonsim - " + sceneName(),
		Scale: scale,
		Gamma: cfg.Canvas.Gamma,
		Limit: cfg.Iterations,
		TPS:   frameRate,
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tBACKEND\tSTARS\tITER\tFRAMES\tABSORBED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Backend,
			run.Stars,
			run.Iterations,
			len(run.Frames),
			run.Totals.Absorbed,
		)
	}
	return w.Flush()
}

type plotSeries struct {
	caption string
	value   func(world.TickStats) float64
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("ticks: %d\n\n", len(stats))

	series := []plotSeries{
		{"photons absorbed per tick", func(s world.TickStats) float64 { return float64(s.Absorbed) }},
		{"photons in flight", func(s world.TickStats) float64 { return float64(s.Live) }},
		{"tick time (ms)", func(s world.TickStats) float64 { return float64(s.Elapsed) / float64(time.Millisecond) }},
		{"canvas weight", func(s world.TickStats) float64 { return s.CanvasWeight }},
	}
	if stats[0].Energy != 0 {
		series = append(series, plotSeries{"star energy", func(s world.TickStats) float64 { return s.Energy }})
	}
	for _, sr := range series {
		data := make([]float64, len(stats))
		for i, s := range stats {
			data[i] = sr.value(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func listBackends(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tAVAILABLE\tDETAIL")
	for _, b := range compute.Backends() {
		fmt.Fprintf(w, "%s\t%t\t%s\n", b.Name, b.Available, b.Detail)
	}
	return w.Flush()
}
