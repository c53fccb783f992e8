// Package arrowgram provides the diagram specification model: named nodes at
// fixed positions and named arrows whose endpoints are nodes or other arrows.
package arrowgram

import (
	"fmt"
	"strings"
)

// Node is a fixed-position named anchor.
type Node struct {
	Name  string  `json:"name"`
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
	Label string  `json:"label"`
}

// StyleName wraps a symbolic style name as it appears in the JSON input.
type StyleName struct {
	Name string `json:"name"`
}

// Style holds the optional decorations of an arrow.
type Style struct {
	Head  *StyleName `json:"head,omitempty"`
	Tail  *StyleName `json:"tail,omitempty"`
	Body  *StyleName `json:"body,omitempty"`
	Level int        `json:"level,omitempty"` // parallel stroke count, >= 1
}

// Arrow is a directed connector between two endpoints. From and To name a
// Node or another Arrow. Unnamed arrows cannot be referenced.
type Arrow struct {
	Name           string    `json:"name,omitempty"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Label          string    `json:"label,omitempty"`
	Curve          float64   `json:"curve,omitempty"`
	Shift          float64   `json:"shift,omitempty"`
	LabelAlignment Alignment `json:"label_alignment,omitempty"`
	Radius         float64   `json:"radius,omitempty"` // self-loop circle radius
	Angle          *float64  `json:"angle,omitempty"`  // self-loop bulge direction, degrees
	Style          *Style    `json:"style,omitempty"`
}

// Spec is a complete diagram specification.
type Spec struct {
	Nodes  []Node  `json:"nodes"`
	Arrows []Arrow `json:"arrows"`
}

// New creates an empty specification.
func New() *Spec {
	return &Spec{
		Nodes:  make([]Node, 0),
		Arrows: make([]Arrow, 0),
	}
}

// AddNode adds a node to the specification.
func (s *Spec) AddNode(name string, left, top float64, label string) {
	s.Nodes = append(s.Nodes, Node{Name: name, Left: left, Top: top, Label: label})
}

// AddArrow appends an arrow to the specification.
func (s *Spec) AddArrow(a Arrow) {
	s.Arrows = append(s.Arrows, a)
}

// NodeIndex returns the index of a node, or -1 if not found.
func (s *Spec) NodeIndex(name string) int {
	for i, n := range s.Nodes {
		if n.Name == name {
			return i
		}
	}
	return -1
}

// ArrowIndex returns the index of the last arrow with the given name, or -1.
func (s *Spec) ArrowIndex(name string) int {
	if name == "" {
		return -1
	}
	for i := len(s.Arrows) - 1; i >= 0; i-- {
		if s.Arrows[i].Name == name {
			return i
		}
	}
	return -1
}

// Validate checks structural rules the JSON schema cannot express.
func (s *Spec) Validate() error {
	nodes := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.Name == "" {
			return NewError(KindSpecParse, fmt.Sprintf("node %d has no name", i))
		}
		if nodes[n.Name] {
			return NewError(KindSpecParse, fmt.Sprintf("duplicate node name %q", n.Name))
		}
		nodes[n.Name] = true
	}

	for i, a := range s.Arrows {
		if a.From == "" || a.To == "" {
			return NewError(KindSpecParse, fmt.Sprintf("arrow %d: from and to are required", i))
		}
		if a.Name != "" && nodes[a.Name] {
			return NewError(KindSpecParse,
				fmt.Sprintf("arrow %d: name %q is already used by a node", i, a.Name))
		}
		if a.Style != nil && a.Style.Level < 0 {
			return NewError(KindSpecParse, fmt.Sprintf("arrow %d: negative level", i))
		}
	}

	return nil
}

// IsLoop reports whether the arrow starts and ends on the same endpoint.
func (a Arrow) IsLoop() bool {
	return a.From == a.To
}

// Head returns the head marker. An absent head draws the default chevron.
func (a Arrow) Head() Marker {
	if a.Style == nil || a.Style.Head == nil {
		return MarkerNormal
	}
	return ParseMarker(a.Style.Head.Name)
}

// Tail returns the tail marker.
func (a Arrow) Tail() Marker {
	if a.Style == nil || a.Style.Tail == nil {
		return MarkerNone
	}
	return ParseMarker(a.Style.Tail.Name)
}

// Body returns the stroke pattern.
func (a Arrow) Body() Body {
	if a.Style == nil || a.Style.Body == nil {
		return BodySolid
	}
	return ParseBody(a.Style.Body.Name)
}

// Level returns the parallel stroke count, at least 1.
func (a Arrow) Level() int {
	if a.Style == nil || a.Style.Level < 1 {
		return 1
	}
	return a.Style.Level
}

// Alignment returns the label alignment, defaulting to AlignOver.
func (a Arrow) Alignment() Alignment {
	return a.LabelAlignment.Normalize()
}

// DisplayName identifies the arrow in messages.
func (a Arrow) DisplayName(index int) string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("#%d(%s->%s)", index, a.From, a.To)
}

// String returns a string representation of the specification.
func (s *Spec) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Spec: %d nodes, %d arrows\n", len(s.Nodes), len(s.Arrows)))
	for _, n := range s.Nodes {
		sb.WriteString(fmt.Sprintf("  node %s @ (%g, %g)\n", n.Name, n.Left, n.Top))
	}
	for i, a := range s.Arrows {
		sb.WriteString(fmt.Sprintf("  arrow %s: %s -> %s\n", a.DisplayName(i), a.From, a.To))
	}
	return sb.String()
}
