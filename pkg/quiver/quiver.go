// Package quiver converts specifications to and from the quiver array format
// used in q.uiver.app share links.
//
// The wire format is a JSON array
//
//	[0, vertexCount, [x, y, label]..., [source, target, label, alignment, options]...]
//
// where positions are grid cells and edge endpoints index earlier cells,
// vertices first. The array is base64-encoded into a "#q=" URL fragment.
package quiver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
)

const (
	// Version is the only supported array format version.
	Version = 0
	// GridScale is the number of pixels per quiver grid cell.
	GridScale = 150.0
	// CurveScale converts quiver curve and offset units to pixels.
	CurveScale = -25.0
	// DefaultBaseURL prefixes the fragment produced by URL.
	DefaultBaseURL = "https://q.uiver.app/"
)

// Alignment codes on the wire.
const (
	alignLeft   = 0
	alignCentre = 1
	alignRight  = 2
	alignOver   = 3
)

// EdgeOptions is the options object of an edge.
type EdgeOptions struct {
	Curve  float64    `json:"curve,omitempty"`
	Offset float64    `json:"offset,omitempty"`
	Level  int        `json:"level,omitempty"`
	Style  *EdgeStyle `json:"style,omitempty"`
}

// EdgeStyle carries the arrow decorations quiver understands.
type EdgeStyle struct {
	Heads     string `json:"heads,omitempty"`
	Tails     string `json:"tails,omitempty"`
	DashStyle string `json:"dash_style,omitempty"`
}

// Options configures the codec.
type Options struct {
	Logger  *slog.Logger
	BaseURL string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	return o
}

// EncodeArray converts a specification to the quiver array. Arrows are
// emitted in dependency order so each edge only references earlier cells.
// Arrows whose endpoints cannot be resolved are skipped with a warning.
func EncodeArray(s *arrowgram.Spec, o Options) []any {
	o = o.withDefaults()

	cells := make(map[string]int, len(s.Nodes)+len(s.Arrows))
	out := []any{Version, len(s.Nodes)}
	for i, n := range s.Nodes {
		cells[n.Name] = i
		out = append(out, []any{
			int(math.Round(n.Left / GridScale)),
			int(math.Round(n.Top / GridScale)),
			n.Label,
		})
	}

	ord := s.Order()
	for _, i := range ord.Unresolved {
		a := s.Arrows[i]
		warnSkip(o.Logger, a.DisplayName(i), a.From, a.To, "unresolvable endpoint")
	}

	next := len(s.Nodes)
	for _, i := range ord.Arrows {
		a := s.Arrows[i]
		out = append(out, []any{
			cells[a.From],
			cells[a.To],
			a.Label,
			encodeAlignment(a.Alignment()),
			encodeOptions(a),
		})
		if a.Name != "" {
			cells[a.Name] = next
		}
		next++
	}
	return out
}

// Encode returns the base64 payload for a specification.
func Encode(s *arrowgram.Spec, o Options) (string, error) {
	data, err := json.Marshal(EncodeArray(s, o))
	if err != nil {
		return "", arrowgram.NewError(arrowgram.KindEncoding, "marshal quiver array").WithCause(err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// URL returns a share link for a specification.
func URL(s *arrowgram.Spec, o Options) (string, error) {
	o = o.withDefaults()
	payload, err := Encode(s, o)
	if err != nil {
		return "", err
	}
	return o.BaseURL + "#q=" + payload, nil
}

func encodeAlignment(al arrowgram.Alignment) int {
	switch al {
	case arrowgram.AlignLeft:
		return alignLeft
	case arrowgram.AlignRight:
		return alignRight
	}
	return alignOver
}

func encodeOptions(a arrowgram.Arrow) EdgeOptions {
	opts := EdgeOptions{
		Curve:  a.Curve / CurveScale,
		Offset: a.Shift / CurveScale,
	}
	if lvl := a.Level(); lvl > 1 {
		opts.Level = lvl
	}

	var st EdgeStyle
	switch a.Head() {
	case arrowgram.MarkerNone:
		st.Heads = "none"
	case arrowgram.MarkerEpi:
		st.Heads = "epi"
	}
	switch a.Tail() {
	case arrowgram.MarkerMono:
		st.Tails = "mono"
	case arrowgram.MarkerEpi:
		st.Tails = "epi"
	}
	switch a.Body() {
	case arrowgram.BodyDashed:
		st.DashStyle = "dashed"
	case arrowgram.BodyDotted:
		st.DashStyle = "dotted"
	}
	if st != (EdgeStyle{}) {
		opts.Style = &st
	}
	return opts
}

// Payload extracts the base64 payload from a share URL, a "#q=" fragment
// or a bare payload.
func Payload(input string) string {
	p := strings.TrimSpace(input)
	if i := strings.Index(p, "q="); i >= 0 && (i == 0 || p[i-1] == '#' || p[i-1] == '&' || p[i-1] == '?') {
		p = p[i+2:]
	}
	if i := strings.IndexAny(p, "&#"); i >= 0 {
		p = p[:i]
	}
	return strings.NewReplacer("%2B", "+", "%2F", "/", "%3D", "=", "%2b", "+", "%2f", "/", "%3d", "=").Replace(p)
}

// Decode parses a share URL, fragment or payload into a specification.
func Decode(input string, o Options) (*arrowgram.Spec, error) {
	payload := Payload(input)
	if payload == "" {
		return arrowgram.New(), nil
	}

	var data []byte
	var err error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err = enc.DecodeString(payload); err == nil {
			break
		}
	}
	if err != nil {
		return nil, arrowgram.NewError(arrowgram.KindEncoding, "invalid base64 payload").WithCause(err)
	}
	return DecodeArray(data, o)
}

// DecodeArray parses the JSON quiver array. Vertices become nodes named
// v<i>; edges become arrows named e<j> after their position among the
// edges. Edges that reference missing or later cells are skipped with a
// warning, as are their dependants.
func DecodeArray(data []byte, o Options) (*arrowgram.Spec, error) {
	o = o.withDefaults()

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, arrowgram.NewError(arrowgram.KindEncoding, "quiver payload is not a JSON array").WithCause(err)
	}

	s := arrowgram.New()
	if len(raw) == 0 {
		return s, nil
	}

	var version int
	if err := json.Unmarshal(raw[0], &version); err != nil || version != Version {
		return nil, arrowgram.NewError(arrowgram.KindEncoding, fmt.Sprintf("unsupported quiver version %s", raw[0]))
	}
	if len(raw) == 1 {
		return s, nil
	}

	var count int
	if err := json.Unmarshal(raw[1], &count); err != nil || count < 0 || count > len(raw)-2 {
		return nil, arrowgram.NewError(arrowgram.KindEncoding, fmt.Sprintf("bad vertex count %s", raw[1]))
	}

	cells := make([]string, 0, len(raw)-2)
	for i := 0; i < count; i++ {
		n, err := decodeVertex(raw[2+i])
		if err != nil {
			return nil, arrowgram.NewError(arrowgram.KindEncoding, fmt.Sprintf("vertex %d", i)).WithCause(err)
		}
		n.Name = fmt.Sprintf("v%d", i)
		s.Nodes = append(s.Nodes, n)
		cells = append(cells, n.Name)
	}

	for j, msg := range raw[2+count:] {
		name := fmt.Sprintf("e%d", j)
		a, src, tgt, err := decodeEdge(msg)
		if err == nil {
			a.Name = name
			a.From, err = cellName(cells, src)
			if err == nil {
				a.To, err = cellName(cells, tgt)
			}
		}
		if err != nil {
			warnSkip(o.Logger, name, a.From, a.To, err.Error())
			// Keep indices aligned; an empty slot resolves nothing.
			cells = append(cells, "")
			continue
		}
		s.Arrows = append(s.Arrows, a)
		cells = append(cells, name)
	}
	return s, nil
}

func cellName(cells []string, idx int) (string, error) {
	if idx < 0 || idx >= len(cells) {
		return "", fmt.Errorf("reference to missing cell %d", idx)
	}
	if cells[idx] == "" {
		return "", fmt.Errorf("reference to skipped cell %d", idx)
	}
	return cells[idx], nil
}

func decodeVertex(msg json.RawMessage) (arrowgram.Node, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(msg, &fields); err != nil {
		return arrowgram.Node{}, err
	}
	if len(fields) < 2 {
		return arrowgram.Node{}, fmt.Errorf("vertex needs x and y")
	}
	var x, y float64
	if err := json.Unmarshal(fields[0], &x); err != nil {
		return arrowgram.Node{}, err
	}
	if err := json.Unmarshal(fields[1], &y); err != nil {
		return arrowgram.Node{}, err
	}
	n := arrowgram.Node{Left: x * GridScale, Top: y * GridScale}
	if len(fields) > 2 {
		// Labels of other types are dropped.
		_ = json.Unmarshal(fields[2], &n.Label)
	}
	return n, nil
}

func decodeEdge(msg json.RawMessage) (arrowgram.Arrow, int, int, error) {
	var a arrowgram.Arrow
	var fields []json.RawMessage
	if err := json.Unmarshal(msg, &fields); err != nil {
		return a, 0, 0, err
	}
	if len(fields) < 2 {
		return a, 0, 0, fmt.Errorf("edge needs source and target")
	}

	var src, tgt int
	if err := json.Unmarshal(fields[0], &src); err != nil {
		return a, 0, 0, fmt.Errorf("bad source: %w", err)
	}
	if err := json.Unmarshal(fields[1], &tgt); err != nil {
		return a, 0, 0, fmt.Errorf("bad target: %w", err)
	}

	if len(fields) > 2 {
		_ = json.Unmarshal(fields[2], &a.Label)
	}

	a.LabelAlignment = arrowgram.AlignLeft
	if len(fields) > 3 {
		var code int
		if err := json.Unmarshal(fields[3], &code); err == nil {
			a.LabelAlignment = decodeAlignment(code)
		}
	}

	if len(fields) > 4 {
		var opts EdgeOptions
		if err := json.Unmarshal(fields[4], &opts); err == nil {
			applyOptions(&a, opts)
		}
	}
	return a, src, tgt, nil
}

// decodeAlignment maps a wire code to an alignment. Centre has no
// counterpart and is drawn like over.
func decodeAlignment(code int) arrowgram.Alignment {
	switch code {
	case alignLeft:
		return arrowgram.AlignLeft
	case alignRight:
		return arrowgram.AlignRight
	case alignCentre, alignOver:
		return arrowgram.AlignOver
	}
	return arrowgram.AlignLeft
}

func applyOptions(a *arrowgram.Arrow, opts EdgeOptions) {
	a.Curve = opts.Curve * CurveScale
	a.Shift = opts.Offset * CurveScale

	var st arrowgram.Style
	if opts.Level > 1 {
		st.Level = opts.Level
	}
	if opts.Style != nil {
		switch opts.Style.Heads {
		case "none":
			st.Head = &arrowgram.StyleName{Name: "none"}
		case "epi":
			st.Head = &arrowgram.StyleName{Name: "epi"}
		}
		switch opts.Style.Tails {
		case "mono":
			st.Tail = &arrowgram.StyleName{Name: "mono"}
		case "epi":
			st.Tail = &arrowgram.StyleName{Name: "epi"}
		}
		switch opts.Style.DashStyle {
		case "dashed":
			st.Body = &arrowgram.StyleName{Name: "dashed"}
		case "dotted":
			st.Body = &arrowgram.StyleName{Name: "dotted"}
		}
	}
	if st != (arrowgram.Style{}) {
		a.Style = &st
	}
}

func warnSkip(log *slog.Logger, arrow, from, to, reason string) {
	log.Warn("skipping arrow",
		slog.String("arrow", arrow),
		slog.String("from", from),
		slog.String("to", to),
		slog.String("reason", reason),
		slog.String("kind", string(arrowgram.KindEncoding)))
}
