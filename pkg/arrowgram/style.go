package arrowgram

import "strings"

// Marker is an arrowhead or arrow-tail decoration.
type Marker int

const (
	MarkerNone   Marker = iota // No decoration
	MarkerNormal               // Single chevron
	MarkerEpi                  // Double chevron (↠)
	MarkerMono                 // Tail chevron (↣), only drawn at the tail
)

// ParseMarker maps a style name to a Marker. Matching is case-insensitive;
// unknown names behave as "none".
func ParseMarker(name string) Marker {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "normal", "arrowhead", "default":
		return MarkerNormal
	case "epi", "two heads":
		return MarkerEpi
	case "mono", "tail":
		return MarkerMono
	}
	return MarkerNone
}

func (m Marker) String() string {
	switch m {
	case MarkerNormal:
		return "normal"
	case MarkerEpi:
		return "epi"
	case MarkerMono:
		return "mono"
	}
	return "none"
}

// Body is the stroke pattern of an arrow.
type Body int

const (
	BodySolid Body = iota
	BodyDashed
	BodyDotted
)

// ParseBody maps a style name to a Body. Unknown names behave as "solid".
func ParseBody(name string) Body {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dashed":
		return BodyDashed
	case "dotted":
		return BodyDotted
	}
	return BodySolid
}

func (b Body) String() string {
	switch b {
	case BodyDashed:
		return "dashed"
	case BodyDotted:
		return "dotted"
	}
	return "solid"
}

// DashArray returns the stroke dash pattern in coordinate units, or "" for solid.
func (b Body) DashArray() string {
	switch b {
	case BodyDashed:
		return "8,6"
	case BodyDotted:
		return "2,5"
	}
	return ""
}

// Dashes returns the dash pattern as on/off lengths, nil for solid.
func (b Body) Dashes() []float64 {
	switch b {
	case BodyDashed:
		return []float64{8, 6}
	case BodyDotted:
		return []float64{2, 5}
	}
	return nil
}

// Alignment is the placement of an arrow label relative to its stroke.
type Alignment string

const (
	AlignOver  Alignment = "over"
	AlignLeft  Alignment = "left"
	AlignRight Alignment = "right"
)

// Normalize maps empty or unknown values to AlignOver.
func (al Alignment) Normalize() Alignment {
	switch Alignment(strings.ToLower(string(al))) {
	case AlignLeft:
		return AlignLeft
	case AlignRight:
		return AlignRight
	}
	return AlignOver
}
