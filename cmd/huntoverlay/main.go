package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"

	"huntoverlay/pkg/config"
	"huntoverlay/pkg/core"
	"huntoverlay/pkg/dataset"
	"huntoverlay/pkg/db"
	"huntoverlay/pkg/logging"
	"huntoverlay/pkg/model"
	"huntoverlay/pkg/probe"
	"huntoverlay/pkg/projection"
	"huntoverlay/pkg/settings"
	"huntoverlay/pkg/snapshot"
	"huntoverlay/pkg/store"
	"huntoverlay/pkg/version"
	"huntoverlay/pkg/viewmodel"
)

// Run modes.
const (
	modeHeadless = "headless"
	modeDump     = "dump"
	modeSnapshot = "snapshot"
	modePreview  = "preview"
)

var (
	configPath = flag.String("config", "configs/huntoverlay.yaml", "Path to the application config")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	runMode    = flag.String("mode", modeHeadless, "Run mode: dump, snapshot, preview, headless")
	outPath    = flag.String("out", "overlay.png", "Output path for -mode snapshot")
	screenSize = flag.String("screen", "", "Screen size as WxH (default: defaults.screen_width x screen_height)")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config generated at %s\n", *configPath)
		return
	}

	config.LoadEnv(".env")

	opts := runOptions{
		Mode:   *runMode,
		Out:    *outPath,
		Screen: *screenSize,
		Stdout: os.Stdout,
	}
	if err := run(context.Background(), *configPath, opts); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	Mode   string
	Out    string
	Screen string
	Stdout io.Writer
}

// app holds the wired components for one run.
type app struct {
	cfg      *config.Config
	dataDir  string
	aspect   string
	screenW  int
	screenH  int
	ds       *dataset.Dataset
	defaults settings.Defaults
	settings *settings.Store
	saver    *core.Saver
	vm       *viewmodel.ViewModel
	loop     *core.Loop
	vmOpts   viewmodel.Options
	closeDB  func()
}

func run(ctx context.Context, cfgPath string, opts runOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	switch opts.Mode {
	case modeHeadless, modeDump, modeSnapshot, modePreview:
	default:
		return fmt.Errorf("unknown mode %q", opts.Mode)
	}

	// 1. Config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Logging. The preview owns the terminal, so nothing may print to it.
	if opts.Mode == modePreview {
		logging.Console = io.Discard
	}
	logCleanup, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	defer logCleanup()

	slog.Info("HuntOverlay Started", "version", version.Version, "mode", opts.Mode)

	w, h, err := parseScreen(opts.Screen, cfg)
	if err != nil {
		return err
	}

	a, err := setup(ctx, cfg, w, h)
	if err != nil {
		return err
	}
	defer a.closeDB()

	switch opts.Mode {
	case modeDump:
		err = a.dump(opts.Stdout)
	case modeSnapshot:
		err = a.snapshot(opts.Out)
	case modePreview:
		err = a.runPreview(ctx)
	default:
		err = a.runHeadless(ctx)
	}
	if err != nil {
		return err
	}

	// Dump and snapshot never started the loop; flush whatever is pending here.
	if opts.Mode == modeDump || opts.Mode == modeSnapshot {
		a.saver.Stop()
		if err := a.saver.Flush(context.Background()); err != nil {
			slog.Error("Final settings flush failed", "error", err)
		}
	}
	slog.Info("HuntOverlay stopped")
	return nil
}

// parseScreen reads a WxH size, falling back to the configured default screen.
func parseScreen(s string, cfg *config.Config) (w, h int, err error) {
	if s == "" {
		return cfg.Defaults.ScreenWidth, cfg.Defaults.ScreenHeight, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid screen size %q: want WxH", s)
	}
	w, err = strconv.Atoi(strings.TrimSpace(ws))
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid screen width in %q", s)
	}
	h, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid screen height in %q", s)
	}
	return w, h, nil
}

func setup(ctx context.Context, cfg *config.Config, w, h int) (*app, error) {
	a := &app{
		cfg:     cfg,
		dataDir: cfg.ResolveDataDir(),
		aspect:  projection.AspectLabel(w, h),
		screenW: w,
		screenH: h,
		closeDB: func() {},
	}
	slog.Info("Data directory", "path", a.dataDir, "aspect", a.aspect)

	// 3. Startup checks
	probes := []probe.Probe{
		{Name: "Data Directory", Check: probe.WritableDir(a.dataDir), Critical: true},
		{Name: "Log Directory", Check: probe.WritableDir(filepath.Dir(cfg.Log.Server.Path))},
	}
	if cfg.Persistence.Backend == "file" {
		probes = append(probes, probe.Probe{
			Name:     "Settings File",
			Check:    probe.FileAbsentOrRegular(cfg.DataFile(a.dataDir, cfg.Paths.Settings)),
			Critical: true,
		})
	}
	if err := probe.Summarize(probe.Run(ctx, probes)); err != nil {
		return nil, fmt.Errorf("startup checks failed: %w", err)
	}

	// 4. Dataset
	ds, err := loadDataset(cfg, a.dataDir)
	if err != nil {
		return nil, err
	}
	a.ds = ds
	if err := probe.Covered("map", cfg.MapIDs(), ds.MapIDs())(ctx); err != nil {
		slog.Warn("Configured map has no POIs", "error", err)
	}

	// 5. Settings
	backend, closeDB, err := openSettingsBackend(cfg, a.dataDir)
	if err != nil {
		return nil, err
	}
	a.closeDB = closeDB

	a.defaults = settings.Defaults{
		Categories: ds.Categories(),
		MapIDs:     cfg.MapIDs(),
		Rect:       projection.AspectRect(w, h),
		Hidden:     cfg.Defaults.HiddenPOIs,
		ScaleMin:   cfg.Overlay.ScaleMin,
		ScaleMax:   cfg.Overlay.ScaleMax,
	}
	a.settings = settings.NewStore(backend, a.defaults)
	state := a.settings.Load(ctx)

	// 6. View model, saver and control loop
	a.saver = core.NewSaver(a.settings, cfg.Persistence.Debounce.Std(), func(err error) {
		// Surfaces in the panel status line through the log capture.
		slog.Error("Settings could not be saved", "location", a.settings.Location(), "error", err)
	})
	a.vmOpts = viewmodel.Options{
		ReferenceWidth: cfg.Overlay.ReferenceWidth,
		HitRadius:      cfg.Overlay.HitRadius,
		ScaleStep:      cfg.Overlay.ScaleStep,
		Maps:           cfg.Maps,
	}
	a.vm = viewmodel.New(ds, a.defaults, state, a.vmOpts, a.saver.Schedule)
	a.loop = core.NewLoop(a.vm, a.saver, 0)

	// Save once so the file carries every filled-in default.
	if err := a.saver.Flush(ctx); err != nil {
		slog.Warn("Initial settings save failed", "error", err)
	}
	return a, nil
}

// loadDataset seeds missing files from the bundled copies and loads them.
// A corrupt dataset is restored once; a second failure aborts startup.
func loadDataset(cfg *config.Config, dataDir string) (*dataset.Dataset, error) {
	files := []struct{ path, name string }{
		{cfg.DataFile(dataDir, cfg.Paths.Dataset), dataset.DataFile},
		{cfg.DataFile(dataDir, cfg.Paths.Styles), dataset.StyleFile},
	}
	for _, f := range files {
		created, err := dataset.EnsureFile(f.path, f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", f.name, err)
		}
		if created {
			slog.Info("Seeded bundled data file", "path", f.path)
		}
	}

	st := dataset.NewStore(files[0].path, files[1].path)
	ds, err := st.Load()
	if err == nil {
		return ds, nil
	}

	var dce *dataset.DataCorruptError
	if !errors.As(err, &dce) {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Warn("Dataset corrupt, restoring bundled files", "error", err)
	for _, f := range files {
		if rerr := dataset.Restore(f.path, f.name); rerr != nil {
			return nil, fmt.Errorf("failed to restore %s: %w", f.name, rerr)
		}
	}
	ds, err = st.Load()
	if err != nil {
		return nil, fmt.Errorf("dataset still corrupt after restoring bundled files: %w", err)
	}
	slog.Info("Bundled dataset restored", "pois", len(ds.POIs()))
	return ds, nil
}

func openSettingsBackend(cfg *config.Config, dataDir string) (settings.Backend, func(), error) {
	if cfg.Persistence.Backend != "sqlite" {
		return settings.NewFileBackend(cfg.DataFile(dataDir, cfg.Paths.Settings)), func() {}, nil
	}

	dbPath := cfg.DataFile(dataDir, cfg.Persistence.DBPath)
	d, err := db.Init(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init settings db: %w", err)
	}
	st := store.NewSQLiteStore(d)
	closeFn := func() {
		if err := st.Close(); err != nil {
			slog.Warn("Failed to close settings db", "error", err)
		}
	}
	return settings.NewSQLiteBackend(st), closeFn, nil
}

// shownModel is a detached view model with the overlay forced visible, used by
// dump and snapshot. It never persists.
func (a *app) shownModel() *viewmodel.ViewModel {
	st := a.vm.State()
	st.Overlay.OverlayVisible = true
	if !st.Overlay.MasterEnabled {
		slog.Warn("Master toggle is off, nothing will be drawn")
	}
	return viewmodel.New(a.ds, a.defaults, st, a.vmOpts, nil)
}

type dumpDoc struct {
	Version string             `json:"version"`
	Map     string             `json:"map"`
	Aspect  string             `json:"aspect"`
	Rect    model.Rect         `json:"rect"`
	Scale   float64            `json:"scale"`
	Markers []model.Renderable `json:"markers"`
}

func (a *app) dump(w io.Writer) error {
	vm := a.shownModel()
	st := vm.State()
	doc := dumpDoc{
		Version: settings.Version,
		Map:     st.Overlay.ActiveMapID,
		Aspect:  a.aspect,
		Rect:    vm.EffectiveRect(),
		Scale:   st.Overlay.GlobalScale,
		Markers: vm.RenderList(),
	}
	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode render list: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write render list: %w", err)
	}
	return nil
}

func (a *app) snapshot(path string) error {
	vm := a.shownModel()
	st := vm.State()
	outline := model.Color{R: 255, G: 255, B: 255, A: 128}.RGBA()
	img := snapshot.Render(vm.RenderList(), vm.EffectiveRect(), snapshot.Options{
		Width:   a.screenW,
		Height:  a.screenH,
		Outline: &outline,
		Caption: fmt.Sprintf("%s  scale %.2f  %s", st.Overlay.ActiveMapID, st.Overlay.GlobalScale, a.aspect),
	})
	if err := snapshot.WritePNG(path, img); err != nil {
		return err
	}
	slog.Info("Snapshot written", "path", path)
	return nil
}

func (a *app) runHeadless(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	go func() {
		select {
		case <-quit:
			slog.Info("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return a.loop.Run(ctx)
}

func (a *app) runPreview(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	pctx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		return a.loop.Run(pctx)
	})
	g.Go(func() error {
		// Leaving the preview stops the loop, which flushes on exit.
		defer stop()
		return runPreview(pctx, a)
	})
	return g.Wait()
}
