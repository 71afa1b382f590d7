// Package web streams scene views to browsers over websockets and accepts
// triggers back.
package web

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/engine"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/server"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/object"
)

// DefaultInterval is how often a view is pushed to each browser.
const DefaultInterval = time.Second / 30

// HeroTarget in an inbound trigger's target is replaced by the sender's hero.
const HeroTarget fx.Handle = "hero"

const writeWait = 2 * time.Second

type clientMessage struct {
	Type     string          `json:"type"` // trigger, move, settings
	Trigger  *engine.Trigger `json:"trigger,omitempty"`
	To       *fx.Vec2        `json:"to,omitempty"`
	Speed    string          `json:"speed,omitempty"`
	Settings *fx.Settings    `json:"settings,omitempty"`
}

type serverMessage struct {
	Type     string        `json:"type"` // hello, view, event
	Hero     fx.Handle     `json:"hero,omitempty"`
	View     *object.View  `json:"view,omitempty"`
	Event    string        `json:"event,omitempty"`
	Settings *fx.Settings  `json:"settings,omitempty"`
	Layout   server.Layout `json:"layout"`
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Logger   *log.Logger
	Interval time.Duration
	// OnSettings is called after a browser replaces the settings.
	OnSettings func(fx.Settings)
}

// Handler upgrades requests to websockets and runs one client session per
// connection.
type Handler struct {
	host       server.Host
	logger     *log.Logger
	interval   time.Duration
	onSettings func(fx.Settings)
	upgrader   websocket.Upgrader
}

// NewHandler constructs a websocket handler for the given host.
func NewHandler(h server.Host, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Handler{
		host:       h,
		logger:     logger,
		interval:   interval,
		onSettings: cfg.OnSettings,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "web"
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	handle := h.host.RegisterClient(name)
	defer h.host.UnregisterClient(handle.ID)
	logger := h.logger.With("client", handle.ID.String()[:8])
	logger.Info("browser connected", "name", name, "remote", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.readLoop(conn, handle, logger)
	}()

	h.writeLoop(conn, handle, done, logger)
	logger.Info("browser disconnected")
}

// writeLoop is the only writer on conn. It returns when the reader stops,
// the server closes the session, or a write fails.
func (h *Handler) writeLoop(conn *websocket.Conn, handle *server.ClientHandle, done <-chan struct{}, logger *log.Logger) {
	send := func(msg serverMessage) bool {
		data, err := json.Marshal(msg)
		if err != nil {
			logger.Error("marshal message", "type", msg.Type, "err", err)
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, data) == nil
	}

	var live *fx.Settings
	if l := h.host.Settings(); l != nil {
		s := l.Settings()
		live = &s
	}
	if !send(serverMessage{Type: "hello", Hero: handle.Hero, Settings: live, Layout: h.host.Layout()}) {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-done:
			return
		case ev, ok := <-handle.EventsCh:
			if !ok {
				return
			}
			switch ev.Type {
			case server.EventServerShutdown:
				send(serverMessage{Type: "event", Event: "shutdown"})
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			case server.EventTierChanged:
				if !send(serverMessage{Type: "event", Event: "tier:" + ev.Tier.To.String()}) {
					return
				}
			}
		case <-ticker.C:
			v := h.host.View()
			if v.Seq == lastSeq {
				continue
			}
			lastSeq = v.Seq
			if !send(serverMessage{Type: "view", View: v}) {
				return
			}
		}
	}
}

// readLoop decodes inbound messages until the connection fails.
func (h *Handler) readLoop(conn *websocket.Conn, handle *server.ClientHandle, logger *log.Logger) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Debug("discarding malformed message", "err", err)
			continue
		}

		switch msg.Type {
		case "trigger":
			if msg.Trigger == nil {
				continue
			}
			t := *msg.Trigger
			if t.Target == HeroTarget {
				t.Target = handle.Hero
			}
			h.post(handle, t, logger)
		case "move":
			if msg.To == nil {
				continue
			}
			hero, ok := h.host.View().Actor(handle.Hero)
			if !ok {
				continue
			}
			speed := engine.SpeedKind(msg.Speed)
			if speed == "" {
				speed = engine.SpeedWalk
			}
			h.post(handle, engine.Trigger{
				Kind:   engine.TriggerCharacterMove,
				Target: handle.Hero,
				From:   hero.Pos,
				To:     *msg.To,
				Speed:  speed,
			}, logger)
		case "settings":
			live := h.host.Settings()
			if msg.Settings == nil || live == nil {
				continue
			}
			live.Set(*msg.Settings)
			if h.onSettings != nil {
				h.onSettings(*msg.Settings)
			}
		default:
			logger.Debug("unknown message type", "type", msg.Type)
		}
	}
}

func (h *Handler) post(handle *server.ClientHandle, t engine.Trigger, logger *log.Logger) {
	if !h.host.Post(handle.ID, t) {
		logger.Debug("trigger dropped", "kind", t.Kind)
	}
}
