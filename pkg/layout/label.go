package layout

import (
	"math"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
)

// ArrowLabel returns the label anchor for an arrow. Standard arrows anchor
// at the Bézier midpoint, offset by LabelGap to the left or right of travel
// for those alignments. Self-loops anchor just outside the loop apex.
func ArrowLabel(a arrowgram.Arrow, g Geometry, o Options) Label {
	o = o.withDefaults()
	l := Label{Text: a.Label, Anchor: g.Midpoint, Alignment: a.Alignment()}

	if g.Loop != nil {
		dir := polar(g.Theta)
		l.Anchor = g.Loop.Center.Add(dir.Scale(g.Loop.Radius + o.LabelGap))
		return l
	}

	left := polar(g.Theta - math.Pi/2)
	switch l.Alignment {
	case arrowgram.AlignLeft:
		l.Anchor = l.Anchor.Add(left.Scale(o.LabelGap))
	case arrowgram.AlignRight:
		l.Anchor = l.Anchor.Sub(left.Scale(o.LabelGap))
	}
	return l
}

// NodeLabel anchors a node's label at the node itself.
func NodeLabel(n arrowgram.Node) Label {
	return Label{Text: n.Label, Anchor: Point{n.Left, n.Top}}
}
