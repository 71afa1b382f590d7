package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("FX_TEST_STR", "x")
	t.Setenv("FX_TEST_INT", " 42 ")
	t.Setenv("FX_TEST_BAD", "nope")
	t.Setenv("FX_TEST_FLOAT", "0.25")
	t.Setenv("FX_TEST_BOOL", "false")

	assert.Equal(t, "x", GetEnv("FX_TEST_STR", "y"))
	assert.Equal(t, "y", GetEnv("FX_TEST_UNSET", "y"))
	assert.Equal(t, 42, GetEnvInt("FX_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("FX_TEST_BAD", 1))
	assert.Equal(t, 0.25, GetEnvFloat("FX_TEST_FLOAT", 1))
	assert.Equal(t, 1.0, GetEnvFloat("FX_TEST_BAD", 1))
	assert.False(t, GetEnvBool("FX_TEST_BOOL", true))
	assert.True(t, GetEnvBool("FX_TEST_BAD", true))
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, quality.DefaultTable, cfg.Limits())
	assert.Equal(t, time.Second/60, cfg.FrameTime())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.yaml")
	data := `
settings:
  quality: high
  reduced_motion: true
  weather_effects_enabled: false
particles:
  high:
    max_particles: 500
    burst_scale: 1
    weather_emitters: 60
quality:
  window: 2s
frame_rate: 30
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, fx.QualityHigh, cfg.Settings.Quality)
	assert.True(t, cfg.Settings.ReducedMotion)
	assert.False(t, cfg.Settings.WeatherEffectsEnabled)
	assert.True(t, cfg.Settings.AnimationsEnabled)
	assert.Equal(t, 500, cfg.Limits().For(fx.TierHigh).MaxParticles)
	assert.Equal(t, 30, cfg.Limits().For(fx.TierLow).MaxParticles)
	assert.Equal(t, 2*time.Second, cfg.Quality.Window)
	assert.Equal(t, 30, cfg.FrameRate)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frame_rate: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FX_QUALITY", "low")
	t.Setenv("FX_PARTICLES", "0")
	t.Setenv("FX_MAILBOX", "16")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, fx.QualityLow, cfg.Settings.Quality)
	assert.False(t, cfg.Settings.ParticlesEnabled)
	assert.Equal(t, 16, cfg.Mailbox)
	assert.Equal(t, 60, cfg.FrameRate)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"quality mode", func(c *Config) { c.Settings.Quality = "ultra" }},
		{"viewport", func(c *Config) { c.Viewport.Width = 0 }},
		{"burst scale", func(c *Config) { c.Particles.Medium.BurstScale = 2 }},
		{"tier order", func(c *Config) { c.Particles.Low.MaxParticles = 1000 }},
		{"animations", func(c *Config) { c.Animation.MaxEntries = 0 }},
		{"band", func(c *Config) { c.Quality.PromoteAbove = c.Quality.DemoteBelow }},
		{"mailbox", func(c *Config) { c.Mailbox = -1 }},
		{"frame rate", func(c *Config) { c.FrameRate = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Mailbox = 8
	opts := cfg.EngineOptions()
	assert.Equal(t, 8, opts.MailboxSize)
	assert.Equal(t, 512, opts.MaxAnimations)
	assert.Equal(t, fx.Vec2{X: 120, Y: 80}, opts.Viewport)
	assert.Equal(t, quality.DefaultWindow, opts.Quality.Window)
}

func TestFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frame_rate: 30\n"), 0o644))
	t.Setenv("FX_CONFIG", path)
	t.Setenv("FX_MAILBOX", "64")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.FrameRate)
	assert.Equal(t, 64, cfg.Mailbox)

	t.Setenv("FX_FRAME_RATE", "0")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestNewLogger_LevelFromEnv(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("FX_LOG_LEVEL", "warn")
	logger := NewLogger(&buf, "fx")
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "fx")
}
