package quality

import "github.com/Unity-Lab-AI/Trader-sub009/internal/fx"

// Limits are the per-tier budgets producers scale themselves by.
type Limits struct {
	MaxParticles    int
	BurstScale      float64
	WeatherEmitters int
}

// Table holds one Limits per tier, indexed by fx.Tier.
type Table [3]Limits

// DefaultTable is the stock budget: 30/100/200 particles.
var DefaultTable = Table{
	fx.TierLow:    {MaxParticles: 30, BurstScale: 0.3, WeatherEmitters: 8},
	fx.TierMedium: {MaxParticles: 100, BurstScale: 0.6, WeatherEmitters: 20},
	fx.TierHigh:   {MaxParticles: 200, BurstScale: 1.0, WeatherEmitters: 40},
}

// For returns the limits for tier t.
func (tb Table) For(t fx.Tier) Limits {
	if int(t) >= len(tb) {
		return tb[len(tb)-1]
	}
	return tb[t]
}

// ScaleCount scales a burst size by the tier's burst factor. Any positive
// request yields at least one particle.
func (l Limits) ScaleCount(n int) int {
	if n <= 0 {
		return 0
	}
	scaled := int(float64(n)*l.BurstScale + 0.5)
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}
