package fx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTier_StepsAreClamped(t *testing.T) {
	assert.Equal(t, TierLow, TierLow.Demote())
	assert.Equal(t, TierLow, TierMedium.Demote())
	assert.Equal(t, TierHigh, TierMedium.Promote())
	assert.Equal(t, TierHigh, TierHigh.Promote())
}

func TestQualityMode_Pinned(t *testing.T) {
	tier, ok := QualityHigh.Pinned()
	assert.True(t, ok)
	assert.Equal(t, TierHigh, tier)

	_, ok = QualityAuto.Pinned()
	assert.False(t, ok)
}

func TestEnums_DecodeByName(t *testing.T) {
	var o Overlay
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"sandstorm","opacity":0.4}`), &o))
	assert.Equal(t, WeatherSandstorm, o.Kind)

	var s Settings
	require.NoError(t, json.Unmarshal([]byte(`{"quality":"low","last_tier":"high"}`), &s))
	assert.Equal(t, QualityLow, s.Quality)
	assert.Equal(t, TierHigh, s.LastTier)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"hail"}`), &o))
}

func TestVec2(t *testing.T) {
	a := Vec2{X: 3, Y: 4}
	assert.Equal(t, 5.0, a.Len())
	assert.Equal(t, Vec2{X: 6, Y: 8}, a.Add(a))
	assert.Equal(t, Vec2{}, a.Sub(a))
	assert.Equal(t, Vec2{X: 1.5, Y: 2}, Vec2{}.Lerp(a, 0.5))
	assert.Equal(t, "particle:7", string(ParticleHandle(7)))
}
