// Package input turns a raw terminal byte stream into demo actions.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a direction key is considered "held" after
// its last press.
const keyHoldDuration = 30 * time.Millisecond

// Action is a one-shot effect request bound to a key.
type Action uint8

const (
	ActionNone Action = iota
	ActionGold
	ActionSpend
	ActionLevelUp
	ActionTrade
	ActionTradeFail
	ActionBuild
	ActionUpgrade
	ActionDamage
	ActionDestroy
	ActionTravel
	ActionProjectile
	ActionShake
	ActionItemUse
	ActionRun
	ActionToggleParticles
	ActionToggleAnimations
	ActionToggleShake
	ActionToggleWeather
	ActionToggleReducedMotion
	ActionCycleQuality
)

var actionNames = [...]string{
	"none", "gold", "spend", "level_up", "trade", "trade_fail",
	"build", "upgrade", "damage", "destroy", "travel", "projectile",
	"shake", "item_use", "run", "toggle_particles", "toggle_animations",
	"toggle_shake", "toggle_weather", "toggle_reduced_motion", "cycle_quality",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

var actionKeys = map[byte]Action{
	'g':  ActionGold,
	'x':  ActionSpend,
	'l':  ActionLevelUp,
	't':  ActionTrade,
	'f':  ActionTradeFail,
	'b':  ActionBuild,
	'u':  ActionUpgrade,
	'h':  ActionDamage,
	'k':  ActionDestroy,
	'v':  ActionTravel,
	'p':  ActionProjectile,
	'e':  ActionShake,
	'i':  ActionItemUse,
	'\t': ActionRun,
	'z':  ActionToggleParticles,
	'n':  ActionToggleAnimations,
	'r':  ActionToggleShake,
	'y':  ActionToggleWeather,
	'm':  ActionToggleReducedMotion,
	'c':  ActionCycleQuality,
}

// ForKey returns the action bound to key, ignoring case.
func ForKey(b byte) (Action, bool) {
	a, ok := actionKeys[lower(b)]
	return a, ok
}

// Input represents the current frame's input state.
type Input struct {
	Quit   bool
	Left   bool
	Right  bool
	Up     bool
	Down   bool
	Space  bool
	Enter  bool
	Escape bool
	// Actions are the one-shot keys pressed since the last read, in order.
	Actions []Action
	// Weather is the weather key pressed (0-4), or -1.
	Weather int
	Pressed []byte
}

// Any reports whether anything at all was pressed.
func (in Input) Any() bool {
	return len(in.Pressed) > 0
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	quit   time.Time
	left   time.Time
	right  time.Time
	up     time.Time
	down   time.Time
	space  time.Time
	enter  time.Time
	escape time.Time
}

// Stream delivers input bytes via a channel and tracks key state for
// held directions.
type Stream struct {
	ch    chan byte
	state keyState
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking).
// A closed stream reads as Quit.
func ReadInput(s *Stream) Input {
	var buf []byte
	closed := false

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := s.decode(buf, time.Now())
	if closed {
		in.Quit = true
	}
	return in
}

// decode parses buf, updating held-key timestamps and collecting one-shot
// actions.
func (s *Stream) decode(buf []byte, now time.Time) Input {
	in := Input{Weather: -1, Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			handled := true
			switch buf[i+2] {
			case 'A':
				s.state.up = now
			case 'B':
				s.state.down = now
			case 'C':
				s.state.right = now
			case 'D':
				s.state.left = now
			default:
				handled = false
			}
			if handled {
				i += 2
				continue
			}
		}

		switch b {
		case 'q', 'Q':
			s.state.quit = now
		case 'a', 'A':
			s.state.left = now
		case 'd', 'D':
			s.state.right = now
		case 'w', 'W':
			s.state.up = now
		case 's', 'S':
			s.state.down = now
		case ' ':
			s.state.space = now
		case '\n', '\r':
			s.state.enter = now
		case '\x1b':
			s.state.escape = now
		case '0', '1', '2', '3', '4':
			in.Weather = int(b - '0')
		default:
			if a, ok := actionKeys[lower(b)]; ok {
				in.Actions = append(in.Actions, a)
			}
		}
	}

	in.Quit = now.Sub(s.state.quit) < keyHoldDuration
	in.Left = now.Sub(s.state.left) < keyHoldDuration
	in.Right = now.Sub(s.state.right) < keyHoldDuration
	in.Up = now.Sub(s.state.up) < keyHoldDuration
	in.Down = now.Sub(s.state.down) < keyHoldDuration
	in.Space = now.Sub(s.state.space) < keyHoldDuration
	in.Enter = now.Sub(s.state.enter) < keyHoldDuration
	in.Escape = now.Sub(s.state.escape) < keyHoldDuration
	return in
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
