package draw

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
)

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels.
type Canvas struct {
	termWidth      int    // Actual terminal columns
	termHeight     int    // Actual terminal rows
	subPixelHeight int    // termHeight * 2
	pixels         []bool // Flat slice: [y * termWidth + x] - true if pixel is set

	// Scaling from logical to pixel coordinates
	logicalWidth  float64 // Target/logical width
	logicalHeight float64 // Target/logical height (in sub-pixels)
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	// Logical translation applied to everything drawn (viewport shake).
	shiftX, shiftY float64

	// Last rune written per terminal cell; 0 forces a rewrite.
	cells []rune
	// Background rune for empty cells (weather overlay); nil means blank.
	background func(col, row int) rune

	// Reusable buffers to reduce allocations
	renderBuf strings.Builder // Buffer for batching render output
	scaledBuf []Point         // fillPolygon vertices in pixel space
	crossings []float64       // scanline edge crossings
}

// NewCanvas creates a canvas for the given terminal dimensions.
// The canvas has 2x vertical resolution (height*2 sub-pixels).
// No scaling is applied (1:1 mapping).
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by game objects.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	subPixelHeight := termHeight * 2
	return &Canvas{
		termWidth:      termWidth,
		termHeight:     termHeight,
		subPixelHeight: subPixelHeight,
		pixels:         make([]bool, subPixelHeight*termWidth),
		cells:          make([]rune, termWidth*termHeight),
		logicalWidth:   logicalWidth,
		logicalHeight:  logicalHeight,
		scaleX:         float64(termWidth) / logicalWidth,
		scaleY:         float64(subPixelHeight) / logicalHeight,
	}
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	subPixelHeight := termHeight * 2

	// Reallocate if size changed
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]bool, subPixelHeight*termWidth)
		c.cells = make([]rune, termWidth*termHeight)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}

	// Update scale factors
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// SetShift translates everything drawn afterwards by (dx, dy) logical units.
func (c *Canvas) SetShift(dx, dy float64) {
	c.shiftX = dx
	c.shiftY = dy
}

// SetBackground sets the rune drawn in cells with no pixels. Pass nil for blank.
func (c *Canvas) SetBackground(fn func(col, row int) rune) {
	c.background = fn
}

// ForceRedraw makes the next Render rewrite every cell.
func (c *Canvas) ForceRedraw() {
	clear(c.cells)
}

// MarkTextDirty marks n cells starting at the 1-based canvas position
// (col, row) as overwritten by text, so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	row--
	if row < 0 || row >= c.termHeight {
		return
	}
	for x := max(col-1, 0); x < col-1+n && x < c.termWidth; x++ {
		c.cells[row*c.termWidth+x] = 0
	}
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// toPixel maps a logical position to pixel coordinates.
func (c *Canvas) toPixel(x, y float64) (int, int) {
	px, py := c.pixelSpace(Point{X: x, Y: y})
	return int(math.Round(px)), int(math.Round(py))
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = true
	}
}

// Set sets a pixel at logical coordinates (applies scaling).
func (c *Canvas) Set(x, y int) {
	c.setPixel(c.toPixel(float64(x), float64(y)))
}

// SetFloat sets a pixel using float logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64) {
	c.setPixel(c.toPixel(x, y))
}

// Dot draws a square of side size (logical units) centred on (x, y).
func (c *Canvas) Dot(x, y, size float64) {
	if size <= 1 {
		c.SetFloat(x, y)
		return
	}
	x0, y0 := c.toPixel(x-size/2, y-size/2)
	x1, y1 := c.toPixel(x+size/2, y+size/2)
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			c.setPixel(px, py)
		}
	}
}

// DrawLine draws a line between two logical points. It steps once per
// pixel along the longer axis, so short lines on a coarse canvas still
// produce at least one pixel.
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1, y1 := c.pixelSpace(p1)
	x2, y2 := c.pixelSpace(p2)

	steps := int(math.Ceil(max(math.Abs(x2-x1), math.Abs(y2-y1))))
	if steps == 0 {
		c.setPixel(int(math.Round(x1)), int(math.Round(y1)))
		return
	}
	dx := (x2 - x1) / float64(steps)
	dy := (y2 - y1) / float64(steps)
	for i := 0; i <= steps; i++ {
		c.setPixel(int(math.Round(x1+dx*float64(i))), int(math.Round(y1+dy*float64(i))))
	}
}

// pixelSpace maps a logical point to unrounded pixel coordinates.
func (c *Canvas) pixelSpace(p Point) (float64, float64) {
	return (p.X + c.shiftX) * c.scaleX, (p.Y + c.shiftY) * c.scaleY
}

// DrawPolygon draws a closed outline through points, filling the interior
// when filled is set. Two points draw a single segment.
func (c *Canvas) DrawPolygon(points []Point, filled bool) {
	switch len(points) {
	case 0:
		return
	case 1:
		c.SetFloat(points[0].X, points[0].Y)
		return
	case 2:
		c.DrawLine(points[0], points[1])
		return
	}

	if filled {
		c.fillPolygon(points)
	}
	for i, p := range points {
		c.DrawLine(p, points[(i+1)%len(points)])
	}
}

// fillPolygon fills using even-odd scanlines through pixel centres. Rows
// outside the canvas are skipped.
func (c *Canvas) fillPolygon(points []Point) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]

	top, bottom := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		x, y := c.pixelSpace(p)
		scaled[i] = Point{X: x, Y: y}
		top = min(top, y)
		bottom = max(bottom, y)
	}

	first := max(int(math.Floor(top)), 0)
	last := min(int(math.Ceil(bottom)), c.subPixelHeight-1)
	for y := first; y <= last; y++ {
		scan := float64(y) + 0.5
		xs := c.crossings[:0]
		prev := scaled[len(scaled)-1]
		for _, cur := range scaled {
			if (prev.Y <= scan) != (cur.Y <= scan) {
				xs = append(xs, prev.X+(scan-prev.Y)/(cur.Y-prev.Y)*(cur.X-prev.X))
			}
			prev = cur
		}
		c.crossings = xs
		slices.Sort(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Ceil(xs[i])); x <= int(math.Floor(xs[i+1])); x++ {
				c.setPixel(x, y)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render outputs the canvas to the writer using half-block characters.
// Only cells that changed since the previous Render are written.
func (c *Canvas) Render(w io.Writer) {
	// Reset and pre-grow buffer for better performance
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 4)

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth
		bottomRow := row*2+1 < c.subPixelHeight

		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			bottom := bottomRow && c.pixels[bottomOffset+col]

			var ch rune
			switch {
			case top && bottom:
				ch = BlockFull
			case top:
				ch = BlockUpperHalf
			case bottom:
				ch = BlockLowerHalf
			case c.background != nil:
				ch = c.background(col, row)
			default:
				ch = BlockEmpty
			}

			cell := row*c.termWidth + col
			if c.cells[cell] == ch {
				continue
			}
			c.cells[cell] = ch
			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH%c", row+1+c.offsetRow, col+1+c.offsetCol, ch)
		}
	}

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
// Draws horizontal borders when there is vertical offset, vertical borders
// when there is horizontal offset, and corners when both are present.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	buf.Grow((c.termWidth+2)*2 + c.termHeight*2*12) // Estimate buffer size

	if hasV {
		// Top border
		if hasH {
			// Full top: ┌───┐
			fmt.Fprintf(&buf, "\033[%d;%dH┌%s┐", top, left, strings.Repeat("─", c.termWidth))
		} else {
			// Top without corners: ───
			fmt.Fprintf(&buf, "\033[%d;%dH%s", top, c.offsetCol+1, strings.Repeat("─", c.termWidth))
		}

		// Bottom border
		if hasH {
			// Full bottom: └───┘
			fmt.Fprintf(&buf, "\033[%d;%dH└%s┘", bottom, left, strings.Repeat("─", c.termWidth))
		} else {
			// Bottom without corners: ───
			fmt.Fprintf(&buf, "\033[%d;%dH%s", bottom, c.offsetCol+1, strings.Repeat("─", c.termWidth))
		}
	}

	if hasH {
		// Side borders: │ ... │
		startRow := top + 1
		endRow := bottom
		if !hasV {
			// No horizontal borders, side bars span full canvas height
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			fmt.Fprintf(&buf, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}

	io.WriteString(w, buf.String())
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to 1-based terminal position (col, row).
// This is useful for placing text overlays at positions matching canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1, py/2 + 1
}
