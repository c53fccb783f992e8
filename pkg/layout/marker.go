package layout

import (
	"math"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
)

// Placement says which end of an arrow a marker decorates.
type Placement int

const (
	PlacementHead Placement = iota
	PlacementTail
)

// MarkerStyle carries the drawing constants for markers.
type MarkerStyle struct {
	Size        float64 // wing length
	HalfAngle   float64 // radians between axis and wing
	EpiSpacing  float64 // axial offset of the second epi chevron
	StrokeWidth float64
}

func markerStyle(o Options) MarkerStyle {
	return MarkerStyle{
		Size:        o.MarkerSize,
		HalfAngle:   o.ChevronAngle * math.Pi / 180,
		EpiSpacing:  o.EpiSpacing,
		StrokeWidth: o.StrokeWidth,
	}
}

// RenderMarkerName parses a style name and renders it. Empty or unknown
// names render nothing.
func RenderMarkerName(name string, at Point, angle float64, p Placement, st MarkerStyle) []PathPrimitive {
	return RenderMarker(arrowgram.ParseMarker(name), at, angle, p, st)
}

// RenderMarker produces the stroke primitives of a marker whose tip sits at
// at and whose axis points back along the tangent angle.
//
// normal draws at the head only, mono at the tail only, epi at either end.
func RenderMarker(m arrowgram.Marker, at Point, angle float64, p Placement, st MarkerStyle) []PathPrimitive {
	switch m {
	case arrowgram.MarkerNormal:
		if p == PlacementTail {
			return nil
		}
		return []PathPrimitive{chevron(at, angle, st)}

	case arrowgram.MarkerEpi:
		back := polar(angle).Scale(-st.EpiSpacing)
		return []PathPrimitive{
			chevron(at, angle, st),
			chevron(at.Add(back), angle, st),
		}

	case arrowgram.MarkerMono:
		if p != PlacementTail {
			return nil
		}
		return []PathPrimitive{chevron(at, angle, st)}
	}
	return nil
}

// chevron is a two-stroke V with its tip at the anchor.
func chevron(tip Point, angle float64, st MarkerStyle) PathPrimitive {
	w1 := tip.Add(polar(angle + math.Pi - st.HalfAngle).Scale(st.Size))
	w2 := tip.Add(polar(angle + math.Pi + st.HalfAngle).Scale(st.Size))
	return PathPrimitive{
		Kind:   PathPolyline,
		Points: []Point{w1, tip, w2},
		Width:  st.StrokeWidth,
	}
}
