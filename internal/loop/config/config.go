// Package config centralizes the demo host's tunable parameters.
package config

import "time"

// Terminal limits. Larger terminals are letterboxed with a border.
const (
	MaxTermWidth  = 240
	MaxTermHeight = 80
)

// Session
const (
	MaxUsernameLength = 16 // Maximum display length for usernames
	HeroStep          = 12 // Logical units a hero moves per key press
	GoldAmount        = 120
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)
