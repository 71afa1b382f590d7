// Package server hosts one effects engine shared by every connected client.
package server

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/anim"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/clock"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/engine"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/object"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/settings"
)

// Host is the interface clients use to communicate with the effects server.
// Decouples the Client from the concrete Server implementation, enabling
// testing and network-based front ends.
type Host interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(id uuid.UUID)
	Post(id uuid.UUID, t engine.Trigger) bool
	View() *object.View
	Layout() Layout
	Settings() *settings.Live
}

// Server owns the engine and the scene it renders into. The engine is only
// touched from the Run goroutine; clients reach it through Post.
type Server struct {
	engine *engine.Engine
	scene  *object.Scene
	live   *settings.Live
	layout Layout
	logger *log.Logger

	tickTime time.Duration
	onTier   func(quality.Change)

	clients      map[uuid.UUID]*ClientHandle
	spawned      int
	registerCh   chan *ClientHandle
	unregisterCh chan uuid.UUID
	mu           sync.RWMutex
}

// Compile-time check that Server implements Host.
var _ Host = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       uuid.UUID
	Username string
	Hero     fx.Handle        // this client's character in the scene
	EventsCh chan ClientEvent // Events sent to client (shutdown, tier changes)
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
	Tier quality.Change // for EventTierChanged
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
	EventTierChanged
)

// Options configures a Server.
type Options struct {
	Config config.Config
	// Live holds the settings the engine reads each tick. Nil starts from
	// Config.Settings.
	Live   *settings.Live
	Logger *log.Logger
	Clock  clock.Clock
	Rand   *rand.Rand
	// OnTierChange is called on the tick goroutine after every tier change,
	// before clients are notified.
	OnTierChange func(quality.Change)
}

// New creates a server with the demo scene in place and its ambient
// animations running.
func New(opts Options) *Server {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	live := opts.Live
	if live == nil {
		live = settings.NewLive(cfg.Settings)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Server{
		live:         live,
		layout:       NewLayout(cfg.Viewport.Width, cfg.Viewport.Height),
		logger:       logger,
		tickTime:     cfg.FrameTime(),
		onTier:       opts.OnTierChange,
		clients:      make(map[uuid.UUID]*ClientHandle),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan uuid.UUID, 16),
	}
	s.scene = object.NewScene(cfg.Viewport.Width, cfg.Viewport.Height, logger)
	for _, a := range s.layout.Actors(rng) {
		s.scene.Add(a)
	}

	eo := cfg.EngineOptions()
	eo.Clock = opts.Clock
	eo.Settings = live
	eo.Renderer = s.scene
	eo.Logger = logger
	eo.Rand = rng
	eo.OnTierChange = s.tierChanged
	s.engine = engine.New(eo)

	s.startAmbient()
	return s
}

// startAmbient starts the looping animations that make the scene feel alive.
func (s *Server) startAmbient() {
	s.engine.Animate(anim.Spec{
		Category: fx.CategoryUI,
		Target:   HandleSpinner,
		Kind:     anim.KindSpinner,
		Duration: 1500 * time.Millisecond,
		Loop:     true,
	})
	s.engine.BuildingAction(HandleMill, "production", 1)
}

// Engine returns the underlying engine. It must only be driven from the
// goroutine running Run, or before Run starts.
func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.logger.Info("effects server running", "engine", s.engine.ID(), "tick", s.tickTime)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()

		s.Step()

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < s.tickTime {
			time.Sleep(s.tickTime - elapsed)
		}
	}
}

// Step applies pending registrations and advances the engine by one frame.
// Hosts that own their frame loop call it instead of Run.
func (s *Server) Step() *fx.Frame {
	s.processRegistrations()
	return s.engine.Step()
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.broadcast(ClientEvent{Type: EventServerShutdown})

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client and returns its handle. The hero
// appears in the scene on the next tick.
func (s *Server) RegisterClient(username string) *ClientHandle {
	id := uuid.New()
	handle := &ClientHandle{
		ID:       id,
		Username: username,
		Hero:     fx.Handle("hero:" + id.String()[:8]),
		EventsCh: make(chan ClientEvent, 16),
	}
	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client and its hero from the server.
func (s *Server) UnregisterClient(id uuid.UUID) {
	s.unregisterCh <- id
}

// Post queues a trigger from a client. It returns false when the client is
// unknown or the engine mailbox is full.
func (s *Server) Post(id uuid.UUID, t engine.Trigger) bool {
	s.mu.RLock()
	_, ok := s.clients[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return s.engine.Post(t)
}

// View returns the latest published scene view.
func (s *Server) View() *object.View {
	return s.scene.View()
}

// Layout returns the demo layout.
func (s *Server) Layout() Layout {
	return s.layout
}

// Settings returns the live settings the engine reads.
func (s *Server) Settings() *settings.Live {
	return s.live
}

// Stats returns the engine counters.
func (s *Server) Stats() engine.Stats {
	return s.engine.Stats()
}

// Clients returns the number of registered clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()

			s.scene.Add(Hero(handle.Hero, handle.Username, s.layout.HeroSpawn(s.spawned)))
			s.spawned++
			s.engine.Animate(anim.Spec{
				Category: fx.CategoryCharacter,
				Target:   handle.Hero,
				Kind:     anim.KindSpawn,
				Duration: 500 * time.Millisecond,
			})
			s.logger.Info("client joined", "id", handle.ID, "user", handle.Username)

		case id := <-s.unregisterCh:
			s.mu.Lock()
			handle, ok := s.clients[id]
			if ok {
				close(handle.EventsCh)
				delete(s.clients, id)
			}
			s.mu.Unlock()
			if ok {
				s.engine.CancelTarget(handle.Hero, "")
				s.scene.Remove(handle.Hero)
				s.logger.Info("client left", "id", id, "user", handle.Username)
			}

		default:
			return
		}
	}
}

// tierChanged runs on the tick goroutine.
func (s *Server) tierChanged(ch quality.Change) {
	if s.onTier != nil {
		s.onTier(ch)
	}
	s.broadcast(ClientEvent{Type: EventTierChanged, Tier: ch})
}

// broadcast sends ev to every client without blocking.
func (s *Server) broadcast(ev ClientEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ev:
		default:
		}
	}
}
