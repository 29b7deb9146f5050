package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/audio"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hud"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/touch"
	"github.com/ayusman/mudra/internal/tray"
	"github.com/ayusman/mudra/internal/tui"
)

// Run modes.
const (
	modeServer = "server"
	modeTray   = "tray"
	modeTUI    = "tui"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	mode := flag.String("mode", modeServer, "run mode: server, tray or tui")
	replay := flag.String("replay", "", "replay a JSONL touch trace instead of the configured source")
	addr := flag.String("addr", "", "HTTP listen address (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *replay != "" {
		cfg.Touch.Source = config.SourceReplay
		cfg.Touch.Trace = *replay
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	switch *mode {
	case modeServer, modeTray, modeTUI:
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}

	if *mode == modeTUI {
		// The terminal belongs to the TUI; keep the log out of it.
		f, err := tea.LogToFile("mudra.log", "mudra")
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg, *mode); err != nil {
		log.Fatalf("mudra: %v", err)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg config.Config, mode string) error {
	fmt.Fprintln(os.Stderr, "Mudra - Touch Gesture Recognition")

	feed, err := openFeed(cfg.Touch)
	if err != nil {
		return err
	}
	defer feed.Close()

	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	plugins := plugin.NewManager(cfg.Plugins.Dir)
	if err := plugins.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	for _, p := range plugins.List() {
		log.Printf("Loaded plugin %s %s", p.Manifest.Name, p.Manifest.Version)
	}

	panel := hud.NewPanel(cfg.HUD.ClearAfter)
	a, err := app.New(app.Config{
		Feed:          feed,
		Gesture:       cfg.Gesture,
		TickInterval:  cfg.TickInterval,
		Store:         st,
		JournalKeep:   cfg.Store.Keep,
		Plugins:       plugins,
		PluginTimeout: cfg.Plugins.Timeout,
		Panel:         panel,
	})
	if err != nil {
		return err
	}

	hub := server.NewHub()
	srv := server.New(server.Config{
		StaticDir:      findWebDir(),
		Store:          st,
		Plugins:        plugins,
		Control:        a,
		Hub:            hub,
		HUD:            hud.NewDisplay(panel),
		StreamInterval: time.Second / time.Duration(cfg.HUD.StreamFPS),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(gctx) })
	g.Go(func() error {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		return srv.ListenAndServe(gctx, cfg.Server.Addr)
	})

	id, events := a.Subscribe(0)
	defer a.Unsubscribe(id)
	g.Go(func() error {
		hub.Run(gctx, events)
		return nil
	})

	if cfg.Audio.Enabled {
		if mode == modeTUI && cfg.Audio.Output == "" {
			log.Printf("Audio feedback needs an output file in tui mode, disabled")
		} else {
			id, events := a.Subscribe(0)
			defer a.Unsubscribe(id)
			g.Go(func() error { return runAudio(gctx, cfg.Audio, events) })
		}
	}

	switch mode {
	case modeTray:
		runTray(gctx, stop, a, "http://"+dashboardHost(cfg.Server.Addr))
	case modeTUI:
		id, events := a.Subscribe(0)
		defer a.Unsubscribe(id)
		if err := tui.Run(gctx, a, panel, events); err != nil {
			log.Printf("TUI: %v", err)
		}
	default:
		<-gctx.Done()
	}
	stop()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("Dropped %d events to slow consumers", a.Dropped())
	return nil
}

// openFeed builds the configured touch source.
func openFeed(cfg config.Touch) (touch.Feed, error) {
	switch cfg.Source {
	case config.SourceSerial:
		feed, err := touch.OpenSerial(cfg.Port, cfg.Serial, cfg.Mapping, cfg.CorruptionLimit)
		if err != nil {
			return nil, err
		}
		log.Printf("Reading touch frames from %s", cfg.Port)
		return feed, nil
	case config.SourceReplay:
		f, err := os.Open(cfg.Trace)
		if err != nil {
			return nil, fmt.Errorf("open trace: %w", err)
		}
		defer f.Close()
		frames, err := touch.ReadTrace(f)
		if err != nil {
			return nil, fmt.Errorf("read trace %s: %w", cfg.Trace, err)
		}
		log.Printf("Replaying %d frames from %s", len(frames), cfg.Trace)
		return touch.NewReplayFeed(frames), nil
	default:
		// No touch hardware: an empty feed never reports a frame.
		return touch.NewMockFeed(), nil
	}
}

// runAudio plays tone sequences to the configured output, or stdout when
// none is set. Opening a FIFO blocks until a player attaches.
func runAudio(ctx context.Context, cfg config.Audio, events <-chan gesture.Event) error {
	var out io.Writer = os.Stdout
	if cfg.Output != "" {
		f, err := os.OpenFile(cfg.Output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open audio output: %w", err)
		}
		defer f.Close()
		out = f
	}

	synth := audio.Synth{SampleRate: cfg.SampleRate, Amplitude: cfg.Amplitude}
	log.Printf("Audio feedback at %d Hz", synth.SampleRate)
	audio.NewFeedback(out, synth, cfg.Gap).Run(ctx, events)
	return nil
}

func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, dashboard string) {
	t := tray.New(a.IsEnabled())
	t.OnToggle(func(enabled bool) {
		if err := a.SetEnabled(enabled); err != nil {
			log.Printf("Failed to save recognition state: %v", err)
		}
	})
	t.OnReset(a.Reset)
	t.OnDashboard(func() {
		if err := openBrowser(dashboard); err != nil {
			log.Printf("Failed to open dashboard: %v", err)
		}
	})
	t.OnQuit(stop)

	id, events := a.Subscribe(0)
	defer a.Unsubscribe(id)
	go t.Watch(ctx, events)
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

// dashboardHost turns a listen address into something a browser can open.
func dashboardHost(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func openBrowser(url string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	return exec.Command(name, url).Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
