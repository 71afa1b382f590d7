package anim

import (
	"math"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/easing"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// Built-in kinds.
const (
	KindMove      = "move"
	KindIdle      = "idle"
	KindAttack    = "attack"
	KindHurt      = "hurt"
	KindItemUse   = "item_use"
	KindSpawn     = "spawn"
	KindConstruct = "construction"
	KindUpgrade   = "upgrade"
	KindDamage    = "damage"
	KindDestroy   = "destroy"
	KindProduce   = "production"
	KindSpinner   = "spinner"
	KindFadeIn    = "fade_in"
	KindFadeOut   = "fade_out"
	KindPulse     = "pulse"
	KindSlideIn   = "slide_in"
	KindBounce    = "bounce"
	KindJourney   = "journey"
	KindArrive    = "arrive"
	KindSparkle   = "sparkle"
	KindFloatText = "float_text"
)

// DefaultFrames is the sprite frame count used when a payload gives none.
const DefaultFrames = 4

var builtins = map[key]UpdateFunc{
	{fx.CategoryCharacter, KindMove}:    characterMove,
	{fx.CategoryCharacter, KindIdle}:    characterIdle,
	{fx.CategoryCharacter, KindAttack}:  characterAttack,
	{fx.CategoryCharacter, KindHurt}:    characterHurt,
	{fx.CategoryCharacter, KindItemUse}: characterItemUse,
	{fx.CategoryCharacter, KindSpawn}:   characterSpawn,

	{fx.CategoryBuilding, KindConstruct}: buildingConstruct,
	{fx.CategoryBuilding, KindUpgrade}:   buildingUpgrade,
	{fx.CategoryBuilding, KindDamage}:    buildingDamage,
	{fx.CategoryBuilding, KindDestroy}:   buildingDestroy,
	{fx.CategoryBuilding, KindProduce}:   buildingProduce,

	{fx.CategoryUI, KindSpinner}: uiSpinner,
	{fx.CategoryUI, KindFadeIn}:  uiFadeIn,
	{fx.CategoryUI, KindFadeOut}: uiFadeOut,
	{fx.CategoryUI, KindPulse}:   uiPulse,
	{fx.CategoryUI, KindSlideIn}: uiSlideIn,
	{fx.CategoryUI, KindBounce}:  uiBounce,

	{fx.CategoryTravel, KindJourney}: travelJourney,
	{fx.CategoryTravel, KindArrive}:  travelArrive,

	{fx.CategoryParticle, KindSparkle}:   particleSparkle,
	{fx.CategoryParticle, KindFloatText}: particleFloatText,
}

func amplitude(p Payload, def float64) float64 {
	if p.Amplitude != 0 {
		return p.Amplitude
	}
	return def
}

func easeOf(p Payload, def easing.Func) easing.Func {
	if f, ok := easing.ByName(p.Easing); ok {
		return f
	}
	return def
}

// frameIndex returns floor(progress·frames) mod frames.
func frameIndex(p Payload, progress float64) int {
	frames := p.Frames
	if frames <= 0 {
		frames = DefaultFrames
	}
	return int(math.Floor(progress*float64(frames))) % frames
}

// Character

func characterMove(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Translate = p.From.Lerp(p.To, easeOf(p, easing.InOutQuad)(progress))
	t.Absolute = true
	t.Frame = frameIndex(p, progress)
	return t
}

func characterIdle(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Translate.Y = -math.Sin(progress*2*math.Pi) * amplitude(p, 1)
	t.Frame = frameIndex(p, progress)
	return t
}

func characterAttack(_ fx.Handle, p Payload, progress float64) fx.Transform {
	dir := p.To.Sub(p.From)
	if l := dir.Len(); l > 0 {
		dir = dir.Scale(1 / l)
	} else {
		dir = fx.Vec2{X: 1}
	}
	t := fx.Identity()
	t.Translate = dir.Scale(math.Sin(progress*math.Pi) * amplitude(p, 6))
	t.Frame = frameIndex(p, progress)
	return t
}

func characterHurt(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Translate.X = math.Sin(progress*6*math.Pi) * amplitude(p, 2) * (1 - progress)
	if progress < 1 && int(math.Floor(progress*6))%2 == 0 {
		t.Opacity = 0.3
	}
	return t
}

func characterItemUse(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Scale = 1 + math.Sin(progress*math.Pi)*amplitude(p, 0.25)
	return t
}

func characterSpawn(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Scale = math.Max(0, easing.OutBack(progress))
	t.Opacity = progress
	return t
}

// Building

func buildingConstruct(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Scale = math.Max(0, easeOf(p, easing.OutBack)(progress))
	t.Opacity = math.Min(1, progress*2)
	t.Translate.Y = (1 - progress) * amplitude(p, 4)
	return t
}

func buildingUpgrade(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Scale = 1 + math.Sin(progress*4*math.Pi)*amplitude(p, 0.1)
	t.Frame = p.Level
	return t
}

func buildingDamage(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Translate.X = math.Sin(progress*8*math.Pi) * amplitude(p, 3) * (1 - progress)
	return t
}

func buildingDestroy(_ fx.Handle, p Payload, progress float64) fx.Transform {
	e := easing.InQuad(progress)
	t := fx.Identity()
	t.Scale = 1 - e*0.8
	t.Opacity = 1 - progress
	t.Rotate = e * amplitude(p, 15)
	return t
}

func buildingProduce(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Translate.Y = -math.Abs(math.Sin(progress*2*math.Pi)) * amplitude(p, 1.5)
	return t
}

// UI

func uiSpinner(_ fx.Handle, _ Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Rotate = progress * 360
	return t
}

func uiFadeIn(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Opacity = easeOf(p, easing.OutQuad)(progress)
	return t
}

func uiFadeOut(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Opacity = 1 - easeOf(p, easing.InQuad)(progress)
	return t
}

func uiPulse(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Scale = 1 + math.Sin(progress*2*math.Pi)*amplitude(p, 0.08)
	return t
}

func uiSlideIn(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Translate = p.From.Lerp(p.To, easeOf(p, easing.OutCubic)(progress))
	t.Opacity = progress
	return t
}

func uiBounce(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Translate.Y = -(1 - easing.OutBounce(progress)) * amplitude(p, 10)
	return t
}

// Travel

func travelJourney(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Translate = p.From.Lerp(p.To, easeOf(p, easing.InOutQuad)(progress))
	t.Translate.Y -= math.Abs(math.Sin(progress*8*math.Pi)) * amplitude(p, 1)
	t.Absolute = true
	t.Frame = frameIndex(p, progress)
	return t
}

func travelArrive(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Scale = 1 + math.Sin(progress*math.Pi)*amplitude(p, 0.2)
	return t
}

// Particle

func particleSparkle(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Opacity = 0.5 + 0.5*math.Sin(progress*6*math.Pi)
	t.Rotate = progress * 180
	t.Scale = 1 + math.Sin(progress*math.Pi)*amplitude(p, 0.3)
	return t
}

func particleFloatText(_ fx.Handle, p Payload, progress float64) fx.Transform {
	t := fx.Identity()
	t.Translate.Y = -progress * amplitude(p, 20)
	t.Opacity = 1 - easing.InQuad(progress)
	return t
}
