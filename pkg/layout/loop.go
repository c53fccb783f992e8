// Self-loop geometry: a circular arc that leaves and re-enters the same
// endpoint, bulging away from it.

package layout

import (
	"math"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
)

// LoopParams configures a self-loop.
type LoopParams struct {
	Radius float64 // loop circle radius
	Angle  float64 // bulge direction in degrees from the positive x-axis
}

// loopParams returns the arrow's loop parameters with defaults applied.
func loopParams(a arrowgram.Arrow, o Options) LoopParams {
	p := LoopParams{Radius: a.Radius, Angle: o.LoopAngle}
	if p.Radius <= 0 {
		p.Radius = o.LoopRadius
	}
	if a.Angle != nil {
		p.Angle = *a.Angle
	}
	return p
}

// CircleIntersections returns the intersection points of a circle of radius
// r around c and a circle of radius r0 around c0. The half-chord clamps to
// zero when the circles do not meet, so the result is always finite.
func CircleIntersections(c Point, r float64, c0 Point, r0 float64) (Point, Point) {
	d := dist(c, c0)
	if d == 0 {
		p := c.Add(Point{r, 0})
		return p, p
	}
	// a is measured from c towards c0.
	a := (r*r - r0*r0 + d*d) / (2 * d)
	h := math.Sqrt(math.Max(0, r*r-a*a))
	u := c0.Sub(c).Scale(1 / d)
	base := c.Add(u.Scale(a))
	perp := Point{-u.Y, u.X}
	return base.Add(perp.Scale(h)), base.Sub(perp.Scale(h))
}

// SelfLoop computes the loop circle for an endpoint. Start and end are where
// the circle crosses the endpoint's radius.
func SelfLoop(at Endpoint, p LoopParams) Loop {
	dir := polar(p.Angle * math.Pi / 180)
	center := at.Pos.Add(dir.Scale(p.Radius))
	start, end := CircleIntersections(center, p.Radius, at.Pos, at.Radius)
	return Loop{Center: center, Radius: p.Radius, Start: start, End: end}
}

// loopArc returns the large-arc primitive from start to end around the
// loop centre, travelling the far way round so it bulges outward.
func loopArc(l Loop, dash string, width float64) PathPrimitive {
	a0 := math.Atan2(l.Start.Y-l.Center.Y, l.Start.X-l.Center.X)
	a1 := math.Atan2(l.End.Y-l.Center.Y, l.End.X-l.Center.X)
	center := l.Center
	return PathPrimitive{
		Kind:     PathArc,
		Points:   []Point{l.Start, l.End},
		Center:   &center,
		Radius:   l.Radius,
		LargeArc: true,
		Sweep:    normAngle(a1-a0) > math.Pi,
		Dash:     dash,
		Width:    width,
	}
}

// arcTangents returns the travel direction at both ends of an arc.
func arcTangents(p PathPrimitive) (float64, float64) {
	c := *p.Center
	a0 := math.Atan2(p.Points[0].Y-c.Y, p.Points[0].X-c.X)
	a1 := math.Atan2(p.Points[1].Y-c.Y, p.Points[1].X-c.X)
	if p.Sweep {
		return a0 + math.Pi/2, a1 + math.Pi/2
	}
	return a0 - math.Pi/2, a1 - math.Pi/2
}

func loopGeometry(a arrowgram.Arrow, at Endpoint, o Options) Geometry {
	params := loopParams(a, o)
	main := SelfLoop(at, params)
	dir := polar(params.Angle * math.Pi / 180)

	level := a.Level()
	dash := a.Body().DashArray()
	g := Geometry{
		Theta:    params.Angle * math.Pi / 180,
		Tail:     main.Start,
		Head:     main.End,
		Control:  main.Center,
		Midpoint: main.Center.Add(dir.Scale(params.Radius)),
		Loop:     &main,
	}

	// Parallel copies are concentric arcs on the same centre.
	for i := 0; i < level; i++ {
		r := params.Radius + (float64(i)-float64(level-1)/2)*o.LineSpacing
		l := main
		l.Radius = r
		l.Start, l.End = CircleIntersections(main.Center, r, at.Pos, at.Radius)
		g.Paths = append(g.Paths, loopArc(l, dash, o.StrokeWidth))
	}

	g.TailAngle, g.HeadAngle = arcTangents(loopArc(main, dash, o.StrokeWidth))
	g.TailAnchor, g.HeadAnchor = markerAnchors(g.Paths, g.TailAngle, g.HeadAngle, o)
	return g
}
