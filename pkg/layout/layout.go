// Package layout turns a diagram specification into a render model: it
// resolves arrow endpoints (including arrows anchored on other arrows),
// builds path geometry, places markers and labels, and bounds the result.
//
// Every entry point is a pure function of its input.
package layout

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
)

// keySpace namespaces the deterministic arrow keys.
var keySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://arrowgram.dev/arrow"))

// ArrowKey returns a stable key for the arrow at index in a specification.
func ArrowKey(index int, a arrowgram.Arrow) string {
	id := fmt.Sprintf("%d|%s|%s|%s", index, a.Name, a.From, a.To)
	return uuid.NewSHA1(keySpace, []byte(id)).String()
}

// Resolution is the outcome of endpoint resolution.
type Resolution struct {
	Endpoints map[string]Endpoint
	Arrows    []ArrowModel // in resolution order
	Passes    int
}

// Resolve seeds the endpoint table with the nodes, then lays out arrows in
// dependency order, publishing each named arrow's midpoint as a new
// endpoint. It fails with an UnresolvableReferences error naming the
// stragglers when references are cyclic or dangling.
//
// When two arrows share a name, the one resolved last wins.
func Resolve(spec *arrowgram.Spec, o Options) (*Resolution, error) {
	o = o.withDefaults()

	res, ord := resolve(spec, o)
	if !ord.Complete() {
		names := ord.UnresolvedNames(spec)
		o.Logger.Debug("endpoint resolution failed",
			slog.Int("passes", ord.Passes), slog.Any("unresolved", names))
		return nil, arrowgram.Unresolvable(names)
	}

	o.Logger.Debug("endpoints resolved",
		slog.Int("arrows", len(res.Arrows)), slog.Int("passes", res.Passes))
	return res, nil
}

// ResolvePartial lays out every arrow that can be resolved and returns the
// indices of those that cannot. Converters use it to skip arrows instead of
// failing the whole specification.
func ResolvePartial(spec *arrowgram.Spec, o Options) (*Resolution, []int) {
	res, ord := resolve(spec, o.withDefaults())
	return res, ord.Unresolved
}

func resolve(spec *arrowgram.Spec, o Options) (*Resolution, arrowgram.Ordering) {
	endpoints := make(map[string]Endpoint, len(spec.Nodes)+len(spec.Arrows))
	for _, n := range spec.Nodes {
		endpoints[n.Name] = Endpoint{
			Name:   n.Name,
			Pos:    Point{n.Left, n.Top},
			Radius: o.NodeRadius,
			IsNode: true,
		}
	}

	ord := spec.Order()
	res := &Resolution{
		Endpoints: endpoints,
		Arrows:    make([]ArrowModel, 0, len(ord.Arrows)),
		Passes:    ord.Passes,
	}
	for _, i := range ord.Arrows {
		a := spec.Arrows[i]
		from, to := endpoints[a.From], endpoints[a.To]
		m := BuildArrow(i, a, from, to, o)
		res.Arrows = append(res.Arrows, m)

		if a.Name != "" {
			endpoints[a.Name] = Endpoint{
				Name:   a.Name,
				Pos:    m.Midpoint,
				Radius: endpointRadius(a.Level(), m.Depth, o),
				Depth:  m.Depth,
			}
		}
	}
	return res, ord
}

// BuildArrow computes the full render model of one arrow.
func BuildArrow(index int, a arrowgram.Arrow, from, to Endpoint, o Options) ArrowModel {
	o = o.withDefaults()
	g := ArrowGeometry(a, from, to, o)
	st := markerStyle(o)

	return ArrowModel{
		Key:       ArrowKey(index, a),
		Index:     index,
		Spec:      a,
		From:      from,
		To:        to,
		Depth:     max(from.Depth, to.Depth) + 1,
		Paths:     g.Paths,
		Label:     ArrowLabel(a, g, o),
		Heads:     RenderMarker(a.Head(), g.HeadAnchor, g.HeadAngle, PlacementHead, st),
		Tail:      RenderMarker(a.Tail(), g.TailAnchor, g.TailAngle, PlacementTail, st),
		Midpoint:  g.Midpoint,
		Control:   g.Control,
		TailAngle: g.TailAngle,
		HeadAngle: g.HeadAngle,
		Loop:      g.Loop,
	}
}

// Build lays out a parsed specification.
func Build(spec *arrowgram.Spec, o Options) (*Diagram, error) {
	o = o.withDefaults()

	res, err := Resolve(spec, o)
	if err != nil {
		return nil, err
	}

	nodes := make([]NodeModel, 0, len(spec.Nodes))
	for _, n := range spec.Nodes {
		nodes = append(nodes, NodeModel{Name: n.Name, Pos: Point{n.Left, n.Top}, Label: NodeLabel(n)})
	}

	return &Diagram{
		Nodes:     nodes,
		Arrows:    res.Arrows,
		Viewport:  Viewport(nodes, res.Arrows, o),
		Endpoints: res.Endpoints,
	}, nil
}

// Render parses raw JSON and lays it out. Any failure yields an empty
// diagram with the fallback viewport and the error message set.
func Render(data []byte, o Options) *Diagram {
	o = o.withDefaults()

	spec, err := arrowgram.ParseJSON(data)
	if err == nil {
		var d *Diagram
		if d, err = Build(spec, o); err == nil {
			return d
		}
	}
	o.Logger.Debug("layout failed", slog.String("error", err.Error()))
	return Failed(err, o)
}

// Failed returns the error state of a diagram.
func Failed(err error, o Options) *Diagram {
	o = o.withDefaults()
	return &Diagram{
		Nodes:     []NodeModel{},
		Arrows:    []ArrowModel{},
		Viewport:  o.Fallback,
		Error:     err.Error(),
		Endpoints: map[string]Endpoint{},
	}
}
