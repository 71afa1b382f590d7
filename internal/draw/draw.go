// Package draw renders effect frames to a terminal: a half-block canvas for
// shapes and particles, shade characters for weather overlays, and a chunked
// writer for text.
package draw

// Point represents a 2D coordinate in logical space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shade characters from lightest to darkest.
var Shades = []rune{' ', '░', '▒', '▓', '█'}

// ShadeLevel returns a shade character for a value between 0.0 (empty) and 1.0 (solid).
func ShadeLevel(intensity float64) rune {
	if intensity <= 0 {
		return Shades[0]
	}
	if intensity >= 1 {
		return Shades[len(Shades)-1]
	}
	idx := int(intensity * float64(len(Shades)-1))
	return Shades[idx]
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockLight     = '░'
	BlockMedium    = '▒'
	BlockDark      = '▓'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// ANSI colors used by the HUD and labels.
const (
	ColorReset      = "\033[0m"
	ColorDim        = "\033[2m"
	ColorYellow     = "\033[33m"
	ColorBrightCyan = "\033[96m"
)

// MinVisibleOpacity is the opacity below which particles are not drawn.
// Half-block pixels have no alpha, so faint particles are hidden instead.
const MinVisibleOpacity = 0.25

// Glyphs used for particle render hints when drawn as text.
var hintGlyphs = map[string]rune{
	"coin":       'o',
	"coin-loss":  'o',
	"star":       '*',
	"sparkle":    '+',
	"smoke":      '~',
	"projectile": '•',
	"rain":       '|',
	"snow":       '*',
}

// Glyph returns the character for a particle hint, '.' when unknown.
func Glyph(hint string) rune {
	if r, ok := hintGlyphs[hint]; ok {
		return r
	}
	return '.'
}
