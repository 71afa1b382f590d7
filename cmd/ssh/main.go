package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/client"
	loopconfig "github.com/Unity-Lab-AI/Trader-sub009/internal/loop/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/server"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/settings"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

// Shared effects server - every SSH viewer sees the same scene.
var (
	fxServer  *server.Server
	persister *settings.Persister
	logger    *log.Logger
)

func main() {
	logger = config.NewLogger(os.Stderr, "fx-ssh")

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}

	ctx, cancelServer := context.WithCancel(context.Background())

	store, closeStore, err := settings.OpenFromEnv(ctx, "/app/data/fx-settings.yaml")
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
	persister = settings.NewPersister(live, store, logger)

	fxServer = server.New(server.Options{
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

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			sessionMiddleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Notify viewers and wait for them to disconnect, then stop the engine
	// and flush settings.
	fxServer.Shutdown(15 * time.Second)
	cancelServer()
	wg.Wait()
	logger.Info("effects server stopped", "stats", fxServer.Stats())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

// sessionMiddleware handles SSH sessions and runs a client for each.
func sessionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		logger.Info("new session", "user", sess.User(), "term", pty.Term,
			"width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		username := sess.User()
		if len(username) > loopconfig.MaxUsernameLength {
			username = username[:loopconfig.MaxUsernameLength]
		}

		c := client.NewClient(fxServer, bufio.NewReader(sess), sess, client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     username,
			OnSettings:   persister.Schedule,
			Logger:       logger,
		})
		if err := c.Run(); err != nil {
			logger.Error("session error", "user", sess.User(), "err", err)
		}

		logger.Info("session ended", "user", sess.User())
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
