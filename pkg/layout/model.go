package layout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
)

// Point represents a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p*k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// PathKind selects how a PathPrimitive's points are interpreted.
type PathKind string

const (
	PathLine     PathKind = "line"     // Points: start, end
	PathQuad     PathKind = "quad"     // Points: start, control, end
	PathArc      PathKind = "arc"      // Points: start, end; Center, Radius, flags
	PathPolyline PathKind = "polyline" // Points: vertices
)

// PathPrimitive is one stroked path with its dash attributes.
type PathPrimitive struct {
	Kind     PathKind `json:"kind"`
	Points   []Point  `json:"points"`
	Center   *Point   `json:"center,omitempty"`
	Radius   float64  `json:"radius,omitempty"`
	LargeArc bool     `json:"large_arc,omitempty"`
	Sweep    bool     `json:"sweep,omitempty"`
	Dash     string   `json:"dash,omitempty"`
	Width    float64  `json:"width"`
}

// D returns the SVG path data for the primitive.
func (p PathPrimitive) D() string {
	if len(p.Points) == 0 {
		return ""
	}
	var sb strings.Builder
	start := p.Points[0]
	sb.WriteString(fmt.Sprintf("M%.2f,%.2f", start.X, start.Y))

	switch p.Kind {
	case PathQuad:
		if len(p.Points) == 3 {
			sb.WriteString(fmt.Sprintf(" Q%.2f,%.2f %.2f,%.2f",
				p.Points[1].X, p.Points[1].Y, p.Points[2].X, p.Points[2].Y))
		}
	case PathArc:
		if len(p.Points) == 2 {
			sb.WriteString(fmt.Sprintf(" A%.2f,%.2f 0 %d %d %.2f,%.2f",
				p.Radius, p.Radius, boolFlag(p.LargeArc), boolFlag(p.Sweep),
				p.Points[1].X, p.Points[1].Y))
		}
	default:
		for _, q := range p.Points[1:] {
			sb.WriteString(fmt.Sprintf(" L%.2f,%.2f", q.X, q.Y))
		}
	}
	return sb.String()
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Label is a text anchored at a point.
type Label struct {
	Text      string              `json:"text"`
	Anchor    Point               `json:"anchor"`
	Alignment arrowgram.Alignment `json:"alignment,omitempty"`
}

// Endpoint is the resolved anchor for a node or a named arrow.
type Endpoint struct {
	Name   string  `json:"name"`
	Pos    Point   `json:"pos"`
	Radius float64 `json:"radius"`
	Depth  int     `json:"depth"` // 0 for nodes, max(from, to)+1 for arrows
	IsNode bool    `json:"is_node"`
}

// Loop describes the circle a self-loop arrow is drawn on.
type Loop struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Start  Point   `json:"start"`
	End    Point   `json:"end"`
}

// NodeModel is a node ready for drawing.
type NodeModel struct {
	Name  string `json:"name"`
	Pos   Point  `json:"pos"`
	Label Label  `json:"label"`
}

// ArrowModel is the render model for one arrow.
type ArrowModel struct {
	Key       string          `json:"key"`
	Index     int             `json:"index"` // position in the specification
	Spec      arrowgram.Arrow `json:"spec"`
	From      Endpoint        `json:"from"`
	To        Endpoint        `json:"to"`
	Depth     int             `json:"depth"`
	Paths     []PathPrimitive `json:"paths"`
	Label     Label           `json:"label"`
	Heads     []PathPrimitive `json:"heads"`
	Tail      []PathPrimitive `json:"tail"`
	Midpoint  Point           `json:"midpoint"`
	Control   Point           `json:"control"`
	TailAngle float64         `json:"tail_angle"`
	HeadAngle float64         `json:"head_angle"`
	Loop      *Loop           `json:"loop,omitempty"`
}

// Diagram is the complete render model of one specification.
type Diagram struct {
	Nodes     []NodeModel         `json:"nodes"`
	Arrows    []ArrowModel        `json:"arrows"`
	Viewport  Rect                `json:"viewport"`
	Error     string              `json:"error"` // empty on success
	Endpoints map[string]Endpoint `json:"-"`
}

// Endpoint returns the resolved endpoint registered under name.
func (d *Diagram) Endpoint(name string) (Endpoint, bool) {
	ep, ok := d.Endpoints[name]
	return ep, ok
}

// Arrow returns the model of the arrow at the given specification index.
func (d *Diagram) Arrow(index int) (ArrowModel, bool) {
	for _, a := range d.Arrows {
		if a.Index == index {
			return a, true
		}
	}
	return ArrowModel{}, false
}

// JSON serializes the diagram.
func (d *Diagram) JSON(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}
