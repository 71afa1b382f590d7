package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/engine"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
)

// Config is the engine configuration file.
type Config struct {
	Settings  fx.Settings     `yaml:"settings"`
	Viewport  Viewport        `yaml:"viewport"`
	Particles ParticleLimits  `yaml:"particles"`
	Animation AnimationConfig `yaml:"animation"`
	Quality   QualityConfig   `yaml:"quality"`
	Mailbox   int             `yaml:"mailbox"`
	FrameRate int             `yaml:"frame_rate"`
}

// Viewport is the logical drawing area effects are positioned in.
type Viewport struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ParticleLimits are the per-tier particle budgets.
type ParticleLimits struct {
	Low    TierLimits `yaml:"low"`
	Medium TierLimits `yaml:"medium"`
	High   TierLimits `yaml:"high"`
}

// TierLimits mirrors quality.Limits.
type TierLimits struct {
	MaxParticles    int     `yaml:"max_particles"`
	BurstScale      float64 `yaml:"burst_scale"`
	WeatherEmitters int     `yaml:"weather_emitters"`
}

// AnimationConfig bounds the animation registry.
type AnimationConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// QualityConfig tunes the adaptive quality controller.
type QualityConfig struct {
	Window       time.Duration `yaml:"window"`
	DemoteBelow  float64       `yaml:"demote_below"`
	PromoteAbove float64       `yaml:"promote_above"`
}

// Default returns the stock configuration.
func Default() Config {
	d := quality.DefaultTable
	return Config{
		Settings: fx.DefaultSettings(),
		Viewport: Viewport{Width: 120, Height: 80},
		Particles: ParticleLimits{
			Low:    fromLimits(d[fx.TierLow]),
			Medium: fromLimits(d[fx.TierMedium]),
			High:   fromLimits(d[fx.TierHigh]),
		},
		Animation: AnimationConfig{MaxEntries: 512},
		Quality: QualityConfig{
			Window:       quality.DefaultWindow,
			DemoteBelow:  quality.DefaultDemoteBelow,
			PromoteAbove: quality.DefaultPromoteAbove,
		},
		Mailbox:   engine.DefaultMailboxSize,
		FrameRate: 60,
	}
}

func fromLimits(l quality.Limits) TierLimits {
	return TierLimits{
		MaxParticles:    l.MaxParticles,
		BurstScale:      l.BurstScale,
		WeatherEmitters: l.WeatherEmitters,
	}
}

func (t TierLimits) limits() quality.Limits {
	return quality.Limits{
		MaxParticles:    t.MaxParticles,
		BurstScale:      t.BurstScale,
		WeatherEmitters: t.WeatherEmitters,
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from FX_* environment variables.
func (c *Config) ApplyEnv() {
	if q := GetEnv("FX_QUALITY", ""); q != "" {
		c.Settings.Quality = fx.QualityMode(q)
	}
	c.Settings.AnimationsEnabled = GetEnvBool("FX_ANIMATIONS", c.Settings.AnimationsEnabled)
	c.Settings.ReducedMotion = GetEnvBool("FX_REDUCED_MOTION", c.Settings.ReducedMotion)
	c.Settings.ParticlesEnabled = GetEnvBool("FX_PARTICLES", c.Settings.ParticlesEnabled)
	c.Settings.ScreenShakeEnabled = GetEnvBool("FX_SCREEN_SHAKE", c.Settings.ScreenShakeEnabled)
	c.Settings.WeatherEffectsEnabled = GetEnvBool("FX_WEATHER", c.Settings.WeatherEffectsEnabled)
	c.Animation.MaxEntries = GetEnvInt("FX_MAX_ANIMATIONS", c.Animation.MaxEntries)
	c.Mailbox = GetEnvInt("FX_MAILBOX", c.Mailbox)
	c.FrameRate = GetEnvInt("FX_FRAME_RATE", c.FrameRate)
	c.Quality.DemoteBelow = GetEnvFloat("FX_DEMOTE_BELOW", c.Quality.DemoteBelow)
	c.Quality.PromoteAbove = GetEnvFloat("FX_PROMOTE_ABOVE", c.Quality.PromoteAbove)
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Settings.Quality {
	case fx.QualityAuto, fx.QualityLow, fx.QualityMedium, fx.QualityHigh:
	default:
		return fmt.Errorf("settings.quality: unknown mode %q", c.Settings.Quality)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport: size must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height)
	}
	tiers := []struct {
		name string
		l    TierLimits
	}{{"low", c.Particles.Low}, {"medium", c.Particles.Medium}, {"high", c.Particles.High}}
	for _, t := range tiers {
		if t.l.MaxParticles < 0 || t.l.WeatherEmitters < 0 {
			return fmt.Errorf("particles.%s: negative limit", t.name)
		}
		if t.l.BurstScale < 0 || t.l.BurstScale > 1 {
			return fmt.Errorf("particles.%s.burst_scale: %v outside [0,1]", t.name, t.l.BurstScale)
		}
	}
	if c.Particles.Low.MaxParticles > c.Particles.Medium.MaxParticles ||
		c.Particles.Medium.MaxParticles > c.Particles.High.MaxParticles {
		return errors.New("particles: max_particles must not decrease with tier")
	}
	if c.Animation.MaxEntries <= 0 {
		return fmt.Errorf("animation.max_entries: must be positive, got %d", c.Animation.MaxEntries)
	}
	if c.Quality.Window <= 0 {
		return fmt.Errorf("quality.window: must be positive, got %s", c.Quality.Window)
	}
	if c.Quality.PromoteAbove <= c.Quality.DemoteBelow {
		return fmt.Errorf("quality: promote_above (%v) must exceed demote_below (%v)",
			c.Quality.PromoteAbove, c.Quality.DemoteBelow)
	}
	if c.Mailbox <= 0 {
		return fmt.Errorf("mailbox: must be positive, got %d", c.Mailbox)
	}
	if c.FrameRate <= 0 || c.FrameRate > 1000 {
		return fmt.Errorf("frame_rate: %d outside (0,1000]", c.FrameRate)
	}
	return nil
}

// Limits returns the per-tier table.
func (c Config) Limits() quality.Table {
	return quality.Table{
		fx.TierLow:    c.Particles.Low.limits(),
		fx.TierMedium: c.Particles.Medium.limits(),
		fx.TierHigh:   c.Particles.High.limits(),
	}
}

// FrameTime is the host tick interval.
func (c Config) FrameTime() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// EngineOptions maps the configuration onto engine options. Collaborators
// (clock, settings source, renderer, logger) are left for the caller.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		Limits: c.Limits(),
		Quality: quality.Options{
			Window:       c.Quality.Window,
			DemoteBelow:  c.Quality.DemoteBelow,
			PromoteAbove: c.Quality.PromoteAbove,
		},
		MaxAnimations: c.Animation.MaxEntries,
		Viewport:      fx.Vec2{X: c.Viewport.Width, Y: c.Viewport.Height},
		MailboxSize:   c.Mailbox,
	}
}

// FromEnv loads the file named by FX_CONFIG (if any), applies FX_*
// overrides and validates the result.
func FromEnv() (Config, error) {
	cfg, err := Load(GetEnv("FX_CONFIG", ""))
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
