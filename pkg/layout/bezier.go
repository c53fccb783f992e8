// Curve evaluation and flattening for drawing surfaces that cannot stroke
// SVG path data directly.

package layout

import "math"

// Sampling density used by Flatten.
const (
	QuadSteps = 32
	ArcSteps  = 48
)

// QuadAt evaluates the quadratic Bézier p0, c, p1 at parameter t ∈ [0,1].
func QuadAt(p0, c, p1 Point, t float64) Point {
	mt := 1 - t
	return Point{
		X: mt*mt*p0.X + 2*mt*t*c.X + t*t*p1.X,
		Y: mt*mt*p0.Y + 2*mt*t*c.Y + t*t*p1.Y,
	}
}

// QuadTangent returns the derivative of the quadratic Bézier at t.
func QuadTangent(p0, c, p1 Point, t float64) Point {
	mt := 1 - t
	return Point{
		X: 2*mt*(c.X-p0.X) + 2*t*(p1.X-c.X),
		Y: 2*mt*(c.Y-p0.Y) + 2*t*(p1.Y-c.Y),
	}
}

// QuadMidpoint returns the point of the quadratic Bézier at t=0.5:
// 0.25*p0 + 0.5*c + 0.25*p1.
func QuadMidpoint(p0, c, p1 Point) Point {
	return Point{
		X: 0.25*p0.X + 0.5*c.X + 0.25*p1.X,
		Y: 0.25*p0.Y + 0.5*c.Y + 0.25*p1.Y,
	}
}

// arcSpan returns the start angle and the signed angular extent of an arc
// traversed from start to end around center.
func arcSpan(center, start, end Point, sweep bool) (float64, float64) {
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a1 := math.Atan2(end.Y-center.Y, end.X-center.X)
	if sweep {
		return a0, normAngle(a1 - a0)
	}
	return a0, -normAngle(a0 - a1)
}

// normAngle maps an angle into [0, 2π).
func normAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Flatten approximates the primitive with a polyline.
func (p PathPrimitive) Flatten() []Point {
	switch p.Kind {
	case PathQuad:
		if len(p.Points) != 3 {
			return p.Points
		}
		out := make([]Point, 0, QuadSteps+1)
		for i := 0; i <= QuadSteps; i++ {
			t := float64(i) / QuadSteps
			out = append(out, QuadAt(p.Points[0], p.Points[1], p.Points[2], t))
		}
		return out

	case PathArc:
		if len(p.Points) != 2 || p.Center == nil {
			return p.Points
		}
		c := *p.Center
		a0, span := arcSpan(c, p.Points[0], p.Points[1], p.Sweep)
		out := make([]Point, 0, ArcSteps+1)
		for i := 0; i <= ArcSteps; i++ {
			a := a0 + span*float64(i)/ArcSteps
			out = append(out, Point{c.X + p.Radius*math.Cos(a), c.Y + p.Radius*math.Sin(a)})
		}
		return out
	}
	return p.Points
}

// PolylineLength returns the total length of a polyline.
func PolylineLength(pts []Point) float64 {
	length := 0.0
	for i := 1; i < len(pts); i++ {
		length += dist(pts[i-1], pts[i])
	}
	return length
}

// DashPolyline splits a polyline into the "on" runs of a dash pattern
// given as alternating on/off lengths. A nil pattern returns the polyline.
func DashPolyline(pts []Point, pattern []float64) [][]Point {
	if len(pattern) == 0 || len(pts) < 2 {
		return [][]Point{pts}
	}
	total := 0.0
	for _, v := range pattern {
		total += v
	}
	if total <= 0 {
		return [][]Point{pts}
	}

	var runs [][]Point
	cur := []Point{pts[0]}
	idx := 0
	left := pattern[0]
	on := true

	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := dist(a, b)
		pos := 0.0
		for seg-pos > left {
			pos += left
			q := lerp(a, b, pos/seg)
			if on {
				cur = append(cur, q)
				runs = append(runs, cur)
				cur = nil
			} else {
				cur = []Point{q}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = pattern[idx]
		}
		left -= seg - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		runs = append(runs, cur)
	}
	return runs
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func lerp(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

func polar(angle float64) Point {
	return Point{math.Cos(angle), math.Sin(angle)}
}
