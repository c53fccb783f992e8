package layout

import (
	"math"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
)

// Geometry is the drawable shape of one arrow before decoration.
type Geometry struct {
	Theta      float64 // direction between the raw anchors
	Tail, Head Point   // shifted and trimmed centre-line endpoints
	Control    Point   // quadratic control point (chord midpoint when straight)
	TailAngle  float64 // tangent at the tail, pointing along travel
	HeadAngle  float64 // tangent at the head, pointing along travel
	Paths      []PathPrimitive
	TailAnchor Point // where the tail marker sits
	HeadAnchor Point // where the head marker sits
	Midpoint   Point // label and higher-order anchor
	Loop       *Loop
}

// ArrowGeometry builds the path geometry of an arrow between two resolved
// endpoints. Arrows whose endpoints are the same are drawn as self-loops.
func ArrowGeometry(a arrowgram.Arrow, from, to Endpoint, o Options) Geometry {
	o = o.withDefaults()
	if a.IsLoop() {
		return loopGeometry(a, from, o)
	}
	return straightGeometry(a, from, to, o)
}

func straightGeometry(a arrowgram.Arrow, from, to Endpoint, o Options) Geometry {
	d := to.Pos.Sub(from.Pos)
	theta := math.Atan2(d.Y, d.X)
	u := polar(theta)
	n := polar(theta - math.Pi/2)

	start := from.Pos.Add(n.Scale(a.Shift))
	end := to.Pos.Add(n.Scale(a.Shift))

	tail := start.Add(u.Scale(from.Radius))
	head := end.Sub(u.Scale(to.Radius))
	control := lerp(tail, head, 0.5).Add(n.Scale(a.Curve))

	g := Geometry{
		Theta:     theta,
		Tail:      tail,
		Head:      head,
		Control:   control,
		TailAngle: theta,
		HeadAngle: theta,
	}
	if a.Curve != 0 {
		g.TailAngle = math.Atan2(control.Y-tail.Y, control.X-tail.X)
		g.HeadAngle = math.Atan2(head.Y-control.Y, head.X-control.X)
	}

	level := a.Level()
	dash := a.Body().DashArray()
	for i := 0; i < level; i++ {
		off := n.Scale((float64(i) - float64(level-1)/2) * o.LineSpacing)
		t, h := tail.Add(off), head.Add(off)
		p := PathPrimitive{Dash: dash, Width: o.StrokeWidth}
		if a.Curve == 0 {
			p.Kind = PathLine
			p.Points = []Point{t, h}
		} else {
			p.Kind = PathQuad
			p.Points = []Point{t, control.Add(off), h}
		}
		g.Paths = append(g.Paths, p)
	}

	g.TailAnchor, g.HeadAnchor = markerAnchors(g.Paths, g.TailAngle, g.HeadAngle, o)
	g.Midpoint = QuadMidpoint(tail, control, head)
	return g
}

// markerAnchors places the markers at the path ends. Bundles of parallel
// copies put them at the bundle centre, pushed forward by MarkerSize/2.5.
func markerAnchors(paths []PathPrimitive, tailAngle, headAngle float64, o Options) (Point, Point) {
	first, last := paths[0].Points, paths[len(paths)-1].Points
	tail := lerp(first[0], last[0], 0.5)
	head := lerp(first[len(first)-1], last[len(last)-1], 0.5)
	if len(paths) == 1 {
		return tail, head
	}
	push := o.MarkerSize / 2.5
	return tail.Add(polar(tailAngle).Scale(push)), head.Add(polar(headAngle).Scale(push))
}

// endpointRadius is the trim distance contributed by an arrow endpoint: a
// fixed margin plus half the bundle thickness, padded for deeper nesting.
func endpointRadius(level, depth int, o Options) float64 {
	half := (float64(level-1)*o.LineSpacing + o.StrokeWidth) / 2
	r := o.EndpointMargin + half
	if depth > 1 {
		r += float64(depth-1) * o.DepthPadding
	}
	return r
}
