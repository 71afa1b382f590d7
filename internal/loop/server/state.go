package server

import (
	"math/rand"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/object"
)

// Shared demo actors every client sees.
const (
	HandleMarket  fx.Handle = "market"
	HandleMill    fx.Handle = "mill"
	HandleQuarry  fx.Handle = "quarry"
	HandleCaravan fx.Handle = "caravan"
	HandleSpinner fx.Handle = "spinner"
)

// Layout is the demo's fixed placement inside a w×h viewport.
type Layout struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Market      fx.Vec2 `json:"market"`
	Mill        fx.Vec2 `json:"mill"`
	Quarry      fx.Vec2 `json:"quarry"`
	CaravanFrom fx.Vec2 `json:"caravan_from"`
	CaravanTo   fx.Vec2 `json:"caravan_to"`
	Spinner     fx.Vec2 `json:"spinner"`
}

// NewLayout positions the demo actors proportionally to the viewport.
func NewLayout(w, h float64) Layout {
	return Layout{
		Width:       w,
		Height:      h,
		Market:      fx.Vec2{X: w * 0.25, Y: h * 0.35},
		Mill:        fx.Vec2{X: w * 0.75, Y: h * 0.35},
		Quarry:      fx.Vec2{X: w * 0.5, Y: h * 0.55},
		CaravanFrom: fx.Vec2{X: w * 0.1, Y: h * 0.85},
		CaravanTo:   fx.Vec2{X: w * 0.9, Y: h * 0.85},
		Spinner:     fx.Vec2{X: w - 6, Y: 6},
	}
}

// Actors returns the shared actors for this layout.
func (l Layout) Actors(rng *rand.Rand) []object.Actor {
	return []object.Actor{
		{Handle: HandleMarket, Label: "Market", Pos: l.Market, Shape: object.House(14, 10, 5), Filled: true},
		{Handle: HandleMill, Label: "Mill", Pos: l.Mill, Shape: object.House(12, 12, 6)},
		{Handle: HandleQuarry, Label: "Quarry", Pos: l.Quarry, Shape: object.Irregular(5, rng), Filled: true},
		{Handle: HandleCaravan, Label: "Caravan", Pos: l.CaravanFrom, Shape: object.Box(8, 4), Filled: true},
		{Handle: HandleSpinner, Pos: l.Spinner, Shape: object.Triangle(3, 0)},
	}
}

// HeroSpawn spreads heroes along the middle band so they do not stack.
func (l Layout) HeroSpawn(n int) fx.Vec2 {
	slots := 7
	x := l.Width * (0.2 + 0.6*float64(n%slots)/float64(slots-1))
	return fx.Vec2{X: x, Y: l.Height * 0.7}
}

// Hero returns the actor for a client's hero.
func Hero(h fx.Handle, name string, pos fx.Vec2) object.Actor {
	return object.Actor{
		Handle: h,
		Label:  name,
		Pos:    pos,
		Frames: object.Figure(8),
		Radius: 4,
	}
}
