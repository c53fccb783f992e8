package main

import (
	"math"

	"github.com/ha1tch/arrowgram/pkg/layout"
)

// cellAspect is the height of a terminal cell in units of its width.
const cellAspect = 2.0

const (
	minScale = 1.0 / 64
	maxScale = 2.0
)

// view maps diagram coordinates onto terminal cells.
type view struct {
	originX, originY float64 // diagram point drawn at cell (0, 0)
	scale            float64 // cells per diagram pixel, horizontally
}

// fitView centres the viewport rectangle in a w×h cell canvas.
func fitView(vp layout.Rect, w, h int) view {
	if w <= 0 || h <= 0 || vp.W <= 0 || vp.H <= 0 {
		return view{originX: vp.X, originY: vp.Y, scale: 1.0 / 8}
	}
	scale := math.Min(float64(w)/vp.W, float64(h)*cellAspect/vp.H)
	scale = math.Max(minScale, math.Min(maxScale, scale))
	return view{scale: scale}.centredOn(vp.X+vp.W/2, vp.Y+vp.H/2, w, h)
}

// centredOn moves the origin so that diagram point (cx, cy) sits in the
// middle of the canvas.
func (v view) centredOn(cx, cy float64, w, h int) view {
	v.originX = cx - float64(w)/2/v.scale
	v.originY = cy - float64(h)/2*cellAspect/v.scale
	return v
}

// project returns the cell holding diagram point p.
func (v view) project(p layout.Point) (int, int) {
	x, y := v.cellCoords(p)
	return int(math.Floor(x)), int(math.Floor(y))
}

func (v view) cellCoords(p layout.Point) (float64, float64) {
	return (p.X - v.originX) * v.scale, (p.Y - v.originY) * v.scale / cellAspect
}

// pan shifts the view by whole cells.
func (v view) pan(dx, dy int) view {
	v.originX += float64(dx) / v.scale
	v.originY += float64(dy) * cellAspect / v.scale
	return v
}

// zoom scales the view by f around the canvas centre.
func (v view) zoom(f float64, w, h int) view {
	cx := v.originX + float64(w)/2/v.scale
	cy := v.originY + float64(h)/2*cellAspect/v.scale
	v.scale = math.Max(minScale, math.Min(maxScale, v.scale*f))
	return v.centredOn(cx, cy, w, h)
}

// cell is one glyph placed on the canvas.
type cell struct {
	x, y int
	r    rune
}

// trace samples a polyline into canvas cells, one glyph per cell stepped.
// Dashed lines keep every other cell.
func (v view) trace(pts []layout.Point, dashed bool) []cell {
	var out []cell
	seen := make(map[[2]int]bool)
	n := 0
	for i := 1; i < len(pts); i++ {
		x0, y0 := v.cellCoords(pts[i-1])
		x1, y1 := v.cellCoords(pts[i])
		dx, dy := x1-x0, y1-y0
		r := lineGlyph(dx, dy)
		steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
		for s := 0; s <= steps; s++ {
			t := 0.0
			if steps > 0 {
				t = float64(s) / float64(steps)
			}
			x := int(math.Floor(x0 + dx*t))
			y := int(math.Floor(y0 + dy*t))
			if seen[[2]int{x, y}] {
				continue
			}
			seen[[2]int{x, y}] = true
			n++
			if dashed && n%2 == 0 {
				continue
			}
			out = append(out, cell{x, y, r})
		}
	}
	return out
}

// lineGlyph picks a box-drawing character for a step in cell space.
func lineGlyph(dx, dy float64) rune {
	ax, ay := math.Abs(dx), math.Abs(dy)
	switch {
	case ay <= ax/2:
		return '─'
	case ax <= ay/2:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

var headGlyphs = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// headGlyph returns the arrow character closest to a travel direction given
// in diagram radians. Screen y grows downward.
func headGlyph(angle float64) rune {
	a := math.Atan2(math.Sin(angle)/cellAspect, math.Cos(angle))
	octant := int(math.Round(a/(math.Pi/4))) % 8
	if octant < 0 {
		octant += 8
	}
	return headGlyphs[octant]
}
