// Package object holds the renderer side of the effects demo: drawable
// actors bound to effect handles, and the scene that applies engine frames
// to them.
package object

import (
	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
)

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas      // High-resolution canvas (2x vertical)
	Writer *draw.ChunkWriter // Text drawn after the canvas is rendered
}

// Object is anything that can draw itself.
type Object interface {
	Draw(ctx DrawContext) error
}

// Screen represents viewport dimensions in logical units.
type Screen struct {
	Width   int
	Height  int
	CenterX int
	CenterY int
}

// NewScreen returns a Screen of the given size with its center filled in.
func NewScreen(width, height int) Screen {
	return Screen{Width: width, Height: height, CenterX: width / 2, CenterY: height / 2}
}

// Contains reports whether (x, y) lies inside the screen.
func (s Screen) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(s.Width) && y < float64(s.Height)
}
