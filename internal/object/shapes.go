package object

import (
	"math"
	"math/rand"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
)

// Irregular returns a rock-like outline: 8-12 vertices whose distance from
// the center varies by ±30% around radius.
func Irregular(radius float64, rng *rand.Rand) []draw.Point {
	n := 8 + rng.Intn(5)
	pts := make([]draw.Point, n)
	for i := range pts {
		r := radius * (0.7 + rng.Float64()*0.6)
		a := float64(i) / float64(n) * 2 * math.Pi
		pts[i] = draw.Point{X: math.Cos(a) * r, Y: math.Sin(a) * r}
	}
	return pts
}

// Triangle returns an isosceles triangle pointing along angle (radians).
func Triangle(size, angle float64) []draw.Point {
	left := angle + 2.5
	right := angle - 2.5
	return []draw.Point{
		{X: math.Cos(angle) * size, Y: math.Sin(angle) * size},
		{X: math.Cos(left) * size * 0.7, Y: math.Sin(left) * size * 0.7},
		{X: math.Cos(right) * size * 0.7, Y: math.Sin(right) * size * 0.7},
	}
}

// Box returns a w×h rectangle centred on the origin.
func Box(w, h float64) []draw.Point {
	return []draw.Point{
		{X: -w / 2, Y: -h / 2},
		{X: w / 2, Y: -h / 2},
		{X: w / 2, Y: h / 2},
		{X: -w / 2, Y: h / 2},
	}
}

// House returns a w×h box with a pitched roof of height roof on top.
func House(w, h, roof float64) []draw.Point {
	return []draw.Point{
		{X: -w / 2, Y: h / 2},
		{X: -w / 2, Y: -h / 2},
		{X: 0, Y: -h/2 - roof},
		{X: w / 2, Y: -h / 2},
		{X: w / 2, Y: h / 2},
	}
}

// Figure returns walking frames for a character of the given height: the
// body shape with the feet alternately apart and together.
func Figure(height float64) [][]draw.Point {
	w := height * 0.4
	frame := func(stride float64) []draw.Point {
		return []draw.Point{
			{X: 0, Y: -height / 2},
			{X: w / 2, Y: -height / 6},
			{X: stride, Y: height / 2},
			{X: 0, Y: height / 4},
			{X: -stride, Y: height / 2},
			{X: -w / 2, Y: -height / 6},
		}
	}
	return [][]draw.Point{
		frame(w * 0.6),
		frame(w * 0.3),
		frame(w * 0.1),
		frame(w * 0.3),
	}
}

// Diamond returns a rhombus of the given radius.
func Diamond(r float64) []draw.Point {
	return []draw.Point{{X: 0, Y: -r}, {X: r, Y: 0}, {X: 0, Y: r}, {X: -r, Y: 0}}
}
