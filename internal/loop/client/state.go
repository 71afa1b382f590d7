package client

import (
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/input"
)

// Screen represents the current phase for a client.
type Screen int

const (
	ScreenStart    Screen = iota // Title screen with controls
	ScreenLive                   // Scene with HUD
	ScreenShutdown               // Server is shutting down
)

// ClientState holds per-connection state. Each client has its own instance,
// managed by the Client.
type ClientState struct {
	Input   input.Input
	Screen  Screen
	Running bool // Client loop running
	// Run makes hero moves use the run speed.
	Run       bool
	Traveling bool // caravan journey started by this client

	termSizeFunc  draw.TermSizeFunc
	delta         time.Duration // Frame delta time (client-side)
	lastMove      time.Time     // limits held-key moves to one per moveRepeat
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool
	wasInactive   bool
	prevScreen    Screen
	notice        string // transient HUD message
	noticeUntil   time.Time
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Screen:     ScreenStart,
		prevScreen: ScreenStart,
		Running:    true,
	}
}

// setNotice shows msg in the HUD for d.
func (s *ClientState) setNotice(msg string, d time.Duration) {
	s.notice = msg
	s.noticeUntil = time.Now().Add(d)
}

// Notice returns the active HUD message, if any.
func (s *ClientState) Notice() string {
	if time.Now().After(s.noticeUntil) {
		return ""
	}
	return s.notice
}
