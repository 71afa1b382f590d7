package object

import "unicode/utf8"

// Text is a HUD or label string at a 1-based position relative to the
// canvas origin.
type Text struct {
	X     int
	Y     int
	Value string
	Color string
}

// Draw writes the text through the chunk writer and marks the canvas cells
// beneath it dirty so the next frame repaints them.
func (t Text) Draw(ctx DrawContext) error {
	if t.Value == "" {
		return nil
	}
	x := max(t.X, 1)
	y := max(t.Y, 1)
	if t.Color != "" {
		ctx.Writer.WriteColoredAt(x, y, t.Color, t.Value)
	} else {
		ctx.Writer.WriteAt(x, y, t.Value)
	}
	if ctx.Canvas != nil {
		ctx.Canvas.MarkTextDirty(x, y, utf8.RuneCountInString(t.Value))
	}
	return nil
}

// Centered returns a Text horizontally centred within width columns.
func Centered(width, y int, value, color string) Text {
	x := (width-utf8.RuneCountInString(value))/2 + 1
	return Text{X: x, Y: y, Value: value, Color: color}
}

var (
	_ Object = Text{}
	_ Object = ActorState{}
)
