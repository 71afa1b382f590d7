package fx

import "time"

// Transform is a per-tick snapshot of how a visual target should be drawn.
type Transform struct {
	// Translate is an offset from the target's rest placement, or a viewport
	// position when Absolute is set.
	Translate Vec2    `json:"translate"`
	Absolute  bool    `json:"absolute,omitempty"`
	Scale     float64 `json:"scale"`
	Rotate    float64 `json:"rotate"` // degrees
	Opacity   float64 `json:"opacity"`
	Frame     int     `json:"frame,omitempty"` // sprite frame index
}

// Identity returns the transform that leaves a target at rest.
func Identity() Transform {
	return Transform{Scale: 1, Opacity: 1}
}

// Overlay describes a persistent full-viewport layer (fog, sandstorm).
type Overlay struct {
	Kind     WeatherKind `json:"kind"`
	Opacity  float64     `json:"opacity"`
	Color    string      `json:"color"`
	Gradient [2]float64  `json:"gradient"` // opacity at top and bottom edge
	Drift    float64     `json:"drift"`    // horizontal phase in [0,1)
}

// Source identifies which component produced a command.
type Source uint8

const (
	SourceParticle Source = iota
	SourceAnimation
	SourceShake
	SourceWeather
)

var sourceNames = [...]string{"particle", "animation", "shake", "weather"}

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Command is one renderer record: either a transform for a handle or an
// overlay descriptor.
type Command struct {
	Source    Source    `json:"source"`
	Handle    Handle    `json:"handle,omitempty"`
	Transform Transform `json:"transform"`
	Hint      string    `json:"hint,omitempty"` // colour or sprite reference, opaque to the engine
	Overlay   *Overlay  `json:"overlay,omitempty"`
}

// Frame is the output of one scheduler tick.
type Frame struct {
	Seq        uint64      `json:"seq"`
	At         time.Time   `json:"at"`
	Tier       Tier        `json:"tier"`
	FPS        float64     `json:"fps"`
	Weather    WeatherKind `json:"weather"`
	Particles  int         `json:"particles"`
	Animations int         `json:"animations"`
	Commands   []Command   `json:"commands"`
}
