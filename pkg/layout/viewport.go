package layout

// Bounds accumulates the extent of a set of points.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
	empty                  bool
}

// NewBounds returns an empty accumulator.
func NewBounds() *Bounds {
	return &Bounds{empty: true}
}

// Add extends the bounds to include p.
func (b *Bounds) Add(p Point) {
	if b.empty {
		b.MinX, b.MaxX = p.X, p.X
		b.MinY, b.MaxY = p.Y, p.Y
		b.empty = false
		return
	}
	if p.X < b.MinX {
		b.MinX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	}
	if p.X > b.MaxX {
		b.MaxX = p.X
	}
	if p.Y > b.MaxY {
		b.MaxY = p.Y
	}
}

// Empty reports whether no point has been added.
func (b *Bounds) Empty() bool {
	return b.empty
}

// Rect returns the bounds grown by pad on every side.
func (b *Bounds) Rect(pad float64) Rect {
	return Rect{
		X: b.MinX - pad,
		Y: b.MinY - pad,
		W: (b.MaxX - b.MinX) + 2*pad,
		H: (b.MaxY - b.MinY) + 2*pad,
	}
}

// Viewport bounds every resolved anchor plus the circle crossings of each
// self-loop. A diagram without nodes gets the fallback rectangle.
func Viewport(nodes []NodeModel, arrows []ArrowModel, o Options) Rect {
	o = o.withDefaults()
	if len(nodes) == 0 {
		return o.Fallback
	}

	b := NewBounds()
	for _, n := range nodes {
		b.Add(n.Pos)
	}
	for _, a := range arrows {
		b.Add(a.Midpoint)
		if a.Loop != nil {
			b.Add(a.Loop.Start)
			b.Add(a.Loop.End)
		}
	}
	return b.Rect(o.Padding)
}
