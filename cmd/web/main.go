package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/server"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/settings"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/web"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

//go:embed index.html
var htmlPage string

func main() {
	logger := config.NewLogger(os.Stderr, "fx-web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}

	ctx, cancelServer := context.WithCancel(context.Background())

	store, closeStore, err := settings.OpenFromEnv(ctx, "fx-settings.yaml")
	if err != nil {
		logger.Fatal("opening settings store", "err", err)
	}
	defer closeStore()

	current, err := store.Load(ctx)
	if err != nil {
		logger.Warn("loading settings, using config defaults", "err", err)
		current = cfg.Settings
	}
	live := settings.NewLive(current)
	persister := settings.NewPersister(live, store, logger)

	fxServer := server.New(server.Options{
		Config:       cfg,
		Live:         live,
		Logger:       logger,
		OnTierChange: persister.PersistTier,
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		fxServer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		persister.Run(ctx)
	}()

	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.Handle("/ws", web.NewHandler(fxServer, web.HandlerConfig{
		Logger:     logger,
		OnSettings: persister.Schedule,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %d clients\n", fxServer.Clients())
	})

	addr := net.JoinHostPort(host, port)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting web server", "addr", "http://"+addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	fxServer.Shutdown(5 * time.Second)
	cancelServer()
	wg.Wait()
	logger.Info("effects server stopped", "stats", fxServer.Stats())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
