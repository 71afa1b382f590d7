// Command window runs the effects scene in a desktop window. The window's
// frame loop drives the engine directly instead of a background ticker.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/server"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/settings"
)

// pixelsPerUnit scales viewport units to window pixels.
const pixelsPerUnit = 6

func main() {
	logger := config.NewLogger(os.Stderr, "fx-window")

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := settings.NewFileStore(config.GetEnv("FX_SETTINGS", "fx-settings.yaml"))
	current, err := store.Load(ctx)
	if err != nil {
		logger.Warn("loading settings, using config defaults", "err", err)
		current = cfg.Settings
	}
	live := settings.NewLive(current)
	persister := settings.NewPersister(live, store, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		persister.Run(ctx)
	}()

	srv := server.New(server.Options{
		Config:       cfg,
		Live:         live,
		Logger:       logger,
		OnTierChange: persister.PersistTier,
	})

	username := config.GetEnv("USER", "player")
	g := newGame(srv, username, persister.Schedule, logger)

	ebiten.SetWindowTitle("Trader FX")
	ebiten.SetWindowSize(int(cfg.Viewport.Width*pixelsPerUnit), int(cfg.Viewport.Height*pixelsPerUnit))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.FrameRate)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("window closed", "err", err)
	}

	srv.UnregisterClient(g.me.ID)
	srv.Step()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		logger.Warn("settings flush timed out")
	}
	logger.Info("effects stopped", "stats", srv.Stats())
}
