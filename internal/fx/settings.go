package fx

// QualityMode is the user-facing quality preference: pinned to a tier or
// left to the adaptive controller.
type QualityMode string

const (
	QualityAuto   QualityMode = "auto"
	QualityLow    QualityMode = "low"
	QualityMedium QualityMode = "medium"
	QualityHigh   QualityMode = "high"
)

// Pinned reports the tier a non-auto mode pins to.
func (m QualityMode) Pinned() (Tier, bool) {
	switch m {
	case QualityLow:
		return TierLow, true
	case QualityMedium:
		return TierMedium, true
	case QualityHigh:
		return TierHigh, true
	default:
		return TierMedium, false
	}
}

// Settings is the configuration surface read by the engine every tick.
type Settings struct {
	Quality               QualityMode `json:"quality" yaml:"quality"`
	AnimationsEnabled     bool        `json:"animations_enabled" yaml:"animations_enabled"`
	ReducedMotion         bool        `json:"reduced_motion" yaml:"reduced_motion"`
	ParticlesEnabled      bool        `json:"particles_enabled" yaml:"particles_enabled"`
	ScreenShakeEnabled    bool        `json:"screen_shake_enabled" yaml:"screen_shake_enabled"`
	WeatherEffectsEnabled bool        `json:"weather_effects_enabled" yaml:"weather_effects_enabled"`
	// LastTier is the most recent tier chosen by the adaptive controller,
	// used as the starting tier of the next session.
	LastTier Tier `json:"last_tier" yaml:"last_tier"`
}

// DefaultSettings enables every effect with automatic quality.
func DefaultSettings() Settings {
	return Settings{
		Quality:               QualityAuto,
		AnimationsEnabled:     true,
		ParticlesEnabled:      true,
		ScreenShakeEnabled:    true,
		WeatherEffectsEnabled: true,
		LastTier:              TierMedium,
	}
}
