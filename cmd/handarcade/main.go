package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/handarcade/internal/app"
	"github.com/ayusman/handarcade/internal/config"
	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/log"
	"github.com/ayusman/handarcade/internal/server"
	"github.com/ayusman/handarcade/internal/store"
	"github.com/ayusman/handarcade/internal/tray"
)

func main() {
	if err := run(); err != nil {
		log.Error("handarcade failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log.Init(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	appCfg, err := app.FromEnv(cfg)
	if err != nil {
		return err
	}
	frames := server.NewFrameHub()
	snapshots := server.NewSnapshotHub()
	appCfg.Store = st
	appCfg.Frames = frames
	appCfg.Snapshots = snapshots

	a := app.New(appCfg)
	if err := a.DiscoverPlugins(); err != nil {
		log.Warn("plugin discovery failed", "dir", cfg.PluginDir, "error", err)
	}
	if err := a.LoadState(); err != nil {
		return err
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		log.Info("serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Engine:    a,
		Plugins:   a.PluginManager(),
		Frames:    frames,
		Snapshots: snapshots,
	})

	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			serveErr <- err
			stop()
		}
	}()

	if cfg.Tray {
		runTray(ctx, stop, a, browserURL(cfg.Addr))
	} else {
		<-ctx.Done()
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	default:
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("server shutdown", "error", err)
	}
	return nil
}

// runTray blocks in the system tray until Quit is clicked or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, url string) {
	t := tray.New()
	t.SetEnabled(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnSelect(func(ex game.Exercise) {
		if err := a.Select(ex); err != nil {
			log.Warn("select from tray", "exercise", ex.Slug(), "error", err)
		}
	})
	t.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			log.Warn("open browser", "url", url, "error", err)
		}
	})
	t.OnQuit(stop)
	a.OnSnapshot(t.Update)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches "web", "../web", "../../web" and the data directory for
// the static web client. It returns "" when none exists.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
