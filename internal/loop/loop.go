// Package loop runs a local single-user effects session: a server and one
// client in the same process, sharing the terminal.
package loop

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/client"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/server"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/settings"
)

// Options configures a local session.
type Options struct {
	Config config.Config
	// Store persists settings between sessions. Nil keeps them in memory.
	Store        settings.Store
	Logger       *log.Logger
	TermSizeFunc draw.TermSizeFunc
	Username     string
}

// Run starts the session and blocks until the user quits. Settings changed
// during the session are flushed to the store before Run returns.
func Run(r *bufio.Reader, w io.Writer, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	current := opts.Config.Settings
	if opts.Store != nil {
		loaded, err := opts.Store.Load(ctx)
		if err != nil {
			logger.Warn("loading settings, using defaults", "err", err)
		} else {
			current = loaded
		}
	}
	live := settings.NewLive(current)

	var (
		wg         sync.WaitGroup
		onTier     func(quality.Change)
		onSettings func(fx.Settings)
	)
	if opts.Store != nil {
		p := settings.NewPersister(live, opts.Store, logger)
		onTier = p.PersistTier
		onSettings = p.Schedule
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(ctx)
		}()
	}

	srv := server.New(server.Options{
		Config:       opts.Config,
		Live:         live,
		Logger:       logger,
		OnTierChange: onTier,
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		srv.Run(ctx)
	}()

	username := opts.Username
	if username == "" {
		username = "you"
	}
	c := client.NewClient(srv, r, w, client.ClientOptions{
		TermSizeFunc: opts.TermSizeFunc,
		Username:     username,
		OnSettings:   onSettings,
		Logger:       logger,
	})
	err := c.Run()

	cancel()
	wg.Wait()
	return err
}
