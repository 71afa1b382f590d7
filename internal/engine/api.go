package engine

import (
	"math"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/anim"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/particle"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/physics"
)

// SpeedKind selects how fast a character crosses a move.
type SpeedKind string

const (
	SpeedWalk    SpeedKind = "walk"
	SpeedRun     SpeedKind = "run"
	SpeedInstant SpeedKind = "instant"
)

// Per-unit travel costs and clamps for distance based durations.
const (
	walkPerUnit    = 40 * time.Millisecond
	runPerUnit     = 20 * time.Millisecond
	minMove        = 150 * time.Millisecond
	maxMove        = 2 * time.Second
	journeyPerUnit = 30 * time.Millisecond
	minJourney     = 800 * time.Millisecond
	maxJourney     = 4 * time.Second
	projectileUnit = 12 * time.Millisecond
	minProjectile  = 10 * projectileUnit
	maxProjectile  = 3 * time.Second
)

// Duration of the fixed length reactions.
var buildingDurations = map[string]time.Duration{
	anim.KindConstruct: time.Second,
	anim.KindUpgrade:   800 * time.Millisecond,
	anim.KindDamage:    300 * time.Millisecond,
	anim.KindDestroy:   600 * time.Millisecond,
	anim.KindProduce:   1200 * time.Millisecond,
}

// CharacterMove animates target from one position to another.
func (e *Engine) CharacterMove(target fx.Handle, from, to fx.Vec2, speed SpeedKind) {
	e.Dispatch(Trigger{Kind: TriggerCharacterMove, Target: target, From: from, To: to, Speed: speed})
}

// ItemUse plays the item pop on target.
func (e *Engine) ItemUse(target fx.Handle, item string) {
	e.Dispatch(Trigger{Kind: TriggerItemUse, Target: target, Item: item})
}

// BuildingAction plays one of the building kinds (construction, upgrade,
// damage, destroy, production) on target.
func (e *Engine) BuildingAction(target fx.Handle, action string, level int) {
	e.Dispatch(Trigger{Kind: TriggerBuildingAction, Target: target, Action: action, Level: level})
}

// TravelStart starts the looping journey animation.
func (e *Engine) TravelStart(target fx.Handle, from, to fx.Vec2) {
	e.Dispatch(Trigger{Kind: TriggerTravelStart, Target: target, From: from, To: to})
}

// TravelComplete stops the journey and plays the arrival.
func (e *Engine) TravelComplete(target fx.Handle) {
	e.Dispatch(Trigger{Kind: TriggerTravelComplete, Target: target})
}

// GoldTransaction bursts coins at origin: a rising spiral for income, a
// falling spray for spending.
func (e *Engine) GoldTransaction(origin fx.Vec2, amount int) {
	e.Dispatch(Trigger{Kind: TriggerGoldTransaction, Origin: origin, Amount: amount})
}

// LevelUp celebrates at origin.
func (e *Engine) LevelUp(origin fx.Vec2) {
	e.Dispatch(Trigger{Kind: TriggerLevelUp, Origin: origin})
}

// TradeComplete plays the success sparkle or the failure puff.
func (e *Engine) TradeComplete(origin fx.Vec2, success bool) {
	e.Dispatch(Trigger{Kind: TriggerTradeComplete, Origin: origin, Success: success})
}

// WeatherChange switches the ambient weather.
func (e *Engine) WeatherChange(kind fx.WeatherKind, intensity float64) {
	e.Dispatch(Trigger{Kind: TriggerWeatherChange, Weather: kind, Intensity: intensity})
}

// ScreenShake shakes the viewport unless a shake is already running.
func (e *Engine) ScreenShake(intensity float64, duration time.Duration) {
	e.Dispatch(Trigger{Kind: TriggerScreenShake, Intensity: intensity, DurationMS: duration.Milliseconds()})
}

// Projectile throws a particle along an arc from one point to another.
func (e *Engine) Projectile(from, to fx.Vec2) {
	e.Dispatch(Trigger{Kind: TriggerProjectile, From: from, To: to})
}

// Cancel stops an animation without its completion callback.
func (e *Engine) Cancel(id anim.ID) {
	e.Dispatch(Trigger{Kind: TriggerCancel, ID: id})
}

// CancelTarget stops every animation on target, or only those of kind.
func (e *Engine) CancelTarget(target fx.Handle, kind string) {
	e.Dispatch(Trigger{Kind: TriggerCancelTarget, Target: target, Action: kind})
}

// Animate starts an arbitrary animation. It returns false when animations
// are disabled.
func (e *Engine) Animate(spec anim.Spec) (anim.ID, bool) {
	id, ok := e.anims.Start(e.now(), spec)
	if !ok {
		e.featureDisabled("animate", "animations")
	}
	return id, ok
}

func (e *Engine) featureDisabled(trigger, feature string) {
	e.disabled.Add(1)
	e.log.Debug("trigger ignored", "trigger", trigger, "feature", feature, "err", fx.ErrFeatureDisabled)
}

func (e *Engine) start(now time.Time, trigger string, spec anim.Spec) {
	if _, ok := e.anims.Start(now, spec); !ok {
		e.featureDisabled(trigger, "animations")
	}
}

// burst spawns a tier scaled burst. It reports false when particles are off.
func (e *Engine) burst(now time.Time, trigger string, origin fx.Vec2, count int, b particle.Burst) bool {
	if !e.cur.ParticlesEnabled {
		e.featureDisabled(trigger, "particles")
		return false
	}
	n := e.limits.For(e.quality.Tier()).ScaleCount(count)
	e.particles.SpawnBurst(now, origin, n, b)
	return true
}

// distanceDuration scales the distance by perUnit, clamped to [lo, hi]
// before the conversion so far apart or non-finite points cannot overflow.
func distanceDuration(from, to fx.Vec2, perUnit, lo, hi time.Duration) time.Duration {
	d := physics.Distance(from, to) * float64(perUnit)
	if math.IsNaN(d) {
		return lo
	}
	return time.Duration(min(max(d, float64(lo)), float64(hi)))
}

func (e *Engine) characterMove(now time.Time, target fx.Handle, from, to fx.Vec2, speed SpeedKind) {
	var d time.Duration
	switch speed {
	case SpeedInstant:
		d = 0
	case SpeedRun:
		d = distanceDuration(from, to, runPerUnit, minMove, maxMove)
	default:
		d = distanceDuration(from, to, walkPerUnit, minMove, maxMove)
	}
	// A new move replaces the one in flight.
	e.anims.CancelTarget(target, anim.KindMove)
	e.start(now, "character_move", anim.Spec{
		Category: fx.CategoryCharacter,
		Target:   target,
		Kind:     anim.KindMove,
		Duration: d,
		Payload:  anim.Payload{From: from, To: to, Frames: anim.DefaultFrames},
	})
}

func (e *Engine) itemUse(now time.Time, target fx.Handle, item string) {
	e.start(now, "item_use", anim.Spec{
		Category: fx.CategoryCharacter,
		Target:   target,
		Kind:     anim.KindItemUse,
		Duration: 300 * time.Millisecond,
		Payload:  anim.Payload{Hint: item},
	})
}

func (e *Engine) buildingAction(now time.Time, target fx.Handle, action string, level int) {
	d, ok := buildingDurations[action]
	if !ok {
		d = 500 * time.Millisecond
	}
	e.start(now, "building_action", anim.Spec{
		Category: fx.CategoryBuilding,
		Target:   target,
		Kind:     action,
		Duration: d,
		Loop:     action == anim.KindProduce,
		Payload:  anim.Payload{Level: level},
	})
	if action == anim.KindDestroy && e.cur.ScreenShakeEnabled {
		e.shake.Trigger(now, 2, 300*time.Millisecond)
	}
}

func (e *Engine) travelStart(now time.Time, target fx.Handle, from, to fx.Vec2) {
	e.anims.CancelTarget(target, anim.KindJourney)
	e.start(now, "travel_start", anim.Spec{
		Category: fx.CategoryTravel,
		Target:   target,
		Kind:     anim.KindJourney,
		Duration: distanceDuration(from, to, journeyPerUnit, minJourney, maxJourney),
		Loop:     true,
		Payload:  anim.Payload{From: from, To: to},
	})
}

func (e *Engine) travelComplete(now time.Time, target fx.Handle) {
	e.anims.CancelTarget(target, anim.KindJourney)
	e.start(now, "travel_complete", anim.Spec{
		Category: fx.CategoryTravel,
		Target:   target,
		Kind:     anim.KindArrive,
		Duration: 400 * time.Millisecond,
	})
}

func (e *Engine) goldTransaction(now time.Time, origin fx.Vec2, amount int) {
	if amount == 0 {
		return
	}
	count := min(max(int(math.Abs(float64(amount))/10), 3), 30)
	if amount > 0 {
		e.burst(now, "gold_transaction", origin, count, particle.Burst{
			Pattern:       particle.PatternSpiral,
			Duration:      900 * time.Millisecond,
			Stagger:       15 * time.Millisecond,
			Height:        8,
			Radius:        3,
			Turns:         1.5,
			RotationSpeed: 12,
			Fade:          true,
			Hint:          "coin",
		})
		return
	}
	e.burst(now, "gold_transaction", origin, count, particle.Burst{
		Pattern:       particle.PatternRadial,
		Speed:         0.8,
		Spread:        0.4,
		Gravity:       0.08,
		Duration:      700 * time.Millisecond,
		RotationSpeed: 12,
		Fade:          true,
		Hint:          "coin-loss",
	})
}

func (e *Engine) levelUp(now time.Time, origin fx.Vec2) {
	if !e.burst(now, "level_up", origin, 40, particle.Burst{
		Pattern:  particle.PatternSpiral,
		Duration: 1200 * time.Millisecond,
		Stagger:  10 * time.Millisecond,
		Height:   12,
		Radius:   5,
		Turns:    2,
		Fade:     true,
		Hint:     "star",
	}) {
		return
	}
	e.burst(now, "level_up", origin, 20, particle.Burst{
		Pattern:  particle.PatternRadial,
		Speed:    1.2,
		Spread:   0.2,
		Duration: 600 * time.Millisecond,
		Fade:     true,
		Hint:     "sparkle",
	})
}

func (e *Engine) tradeComplete(now time.Time, origin fx.Vec2, success bool) {
	if success {
		e.burst(now, "trade_complete", origin, 24, particle.Burst{
			Pattern:       particle.PatternRadial,
			Speed:         1,
			Spread:        0.3,
			Duration:      800 * time.Millisecond,
			RotationSpeed: 6,
			Fade:          true,
			Hint:          "sparkle",
		})
		return
	}
	e.burst(now, "trade_complete", origin, 10, particle.Burst{
		Pattern:  particle.PatternRadial,
		Speed:    0.4,
		Spread:   0.6,
		Gravity:  -0.02,
		Duration: 900 * time.Millisecond,
		Scale:    1.5,
		Fade:     true,
		Hint:     "smoke",
	})
}

func (e *Engine) weatherChange(now time.Time, kind fx.WeatherKind, intensity float64) {
	if !e.cur.WeatherEffectsEnabled {
		e.featureDisabled("weather_change", "weather")
		return
	}
	if e.weather.SetWeather(now, kind, intensity) {
		e.log.Info("weather changed", "kind", kind, "intensity", e.weather.Intensity())
	}
}

func (e *Engine) screenShake(now time.Time, intensity float64, duration time.Duration) {
	if !e.cur.ScreenShakeEnabled {
		e.featureDisabled("screen_shake", "shake")
		return
	}
	e.shake.Trigger(now, intensity, duration)
}

func (e *Engine) projectile(now time.Time, from, to fx.Vec2) {
	dist := to.Sub(from).Len()
	e.burst(now, "projectile", from, 1, particle.Burst{
		Pattern:  particle.PatternArc,
		Target:   to,
		Height:   math.Max(2, dist*0.25),
		Duration: distanceDuration(from, to, projectileUnit, minProjectile, maxProjectile),
		Hint:     "projectile",
	})
}
