package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(c *Canvas) string {
	var buf bytes.Buffer
	c.Render(&buf)
	return buf.String()
}

func TestCanvas_RenderOnlyChangedCells(t *testing.T) {
	c := NewCanvas(4, 2)
	c.SetFloat(0, 0)

	first := render(c)
	assert.Contains(t, first, "\033[1;1H▀")
	// Every cell is written once on the first frame.
	assert.Equal(t, 8, strings.Count(first, "\033["))

	assert.Empty(t, render(c))

	c.Clear()
	assert.Equal(t, "\033[1;1H ", render(c))
}

func TestCanvas_HalfBlocks(t *testing.T) {
	c := NewCanvas(3, 1)
	c.SetFloat(0, 0)
	c.SetFloat(1, 1)
	c.SetFloat(2, 0)
	c.SetFloat(2, 1)

	out := render(c)
	assert.Contains(t, out, "\033[1;1H▀")
	assert.Contains(t, out, "\033[1;2H▄")
	assert.Contains(t, out, "\033[1;3H█")
}

func TestCanvas_ShiftTranslatesDrawing(t *testing.T) {
	c := NewCanvas(4, 2)
	c.SetShift(2, 0)
	c.SetFloat(0, 0)
	assert.Contains(t, render(c), "\033[1;3H▀")

	col, row := c.LogicalToTerminal(0, 0)
	assert.Equal(t, 3, col)
	assert.Equal(t, 1, row)
}

func TestCanvas_BackgroundFillsEmptyCells(t *testing.T) {
	c := NewCanvas(2, 1)
	c.SetBackground(func(col, row int) rune { return BlockLight })
	c.SetFloat(0, 0)

	out := render(c)
	assert.Contains(t, out, "\033[1;1H▀")
	assert.Contains(t, out, "\033[1;2H░")

	c.SetBackground(nil)
	assert.Equal(t, "\033[1;2H ", render(c))
}

func TestCanvas_MarkTextDirtyAndForceRedraw(t *testing.T) {
	c := NewCanvas(4, 2)
	render(c)

	c.MarkTextDirty(2, 2, 2)
	out := render(c)
	assert.Equal(t, "\033[2;2H \033[2;3H ", out)

	// Out of range marks are ignored.
	c.MarkTextDirty(1, 9, 3)
	assert.Empty(t, render(c))

	c.ForceRedraw()
	assert.Equal(t, 8, strings.Count(render(c), "\033["))
}

func TestCanvas_PolygonFill(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawPolygon([]Point{{X: 2, Y: 2}, {X: 7, Y: 2}, {X: 7, Y: 7}, {X: 2, Y: 7}}, true)
	out := render(c)
	assert.Contains(t, out, "\033[3;4H█")
	assert.NotContains(t, out, "\033[3;4H ")
}

func TestCanvas_DotCoversArea(t *testing.T) {
	c := NewCanvas(10, 5)
	c.Dot(5, 5, 2)
	out := render(c)
	assert.Contains(t, out, "\033[3;5H█")
	assert.Contains(t, out, "\033[3;7H█")
}

func TestCanvas_ResizeRedraws(t *testing.T) {
	c := NewScaledCanvas(4, 2, 8, 8)
	render(c)
	c.Resize(8, 4)
	assert.Equal(t, 8, c.TerminalWidth())
	assert.Equal(t, 32, strings.Count(render(c), "\033["))
}

func TestShadeLevel(t *testing.T) {
	assert.Equal(t, ' ', ShadeLevel(0))
	assert.Equal(t, '░', ShadeLevel(0.3))
	assert.Equal(t, '▒', ShadeLevel(0.5))
	assert.Equal(t, '█', ShadeLevel(1.2))
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, 'o', Glyph("coin"))
	assert.Equal(t, '.', Glyph("mystery"))
}

func TestChunkWriter(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 1)

	cw.WriteAt(1, 1, "hi")
	cw.WriteColoredAt(3, 2, ColorYellow, "x")
	assert.Positive(t, cw.Len())
	assert.Empty(t, out.String())

	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[2;3Hhi\033[3;5H"+ColorYellow+"x"+ColorReset, out.String())
	assert.Zero(t, cw.Len())
}

func TestChunkWriter_LargeFrame(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	big := strings.Repeat("x", maxChunkSize*3+7)
	cw.WriteString(big)
	require.NoError(t, cw.Flush())
	assert.Equal(t, big, out.String())
}
