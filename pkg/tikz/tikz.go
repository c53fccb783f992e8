// Package tikz exports specifications as tikz-cd diagrams.
package tikz

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
	"github.com/ha1tch/arrowgram/pkg/layout"
)

const (
	// DefaultThreshold is the pixel distance within which node coordinates
	// share a row or column.
	DefaultThreshold = 40.0
	// PixelsPerEx converts shift distances to ex units.
	PixelsPerEx = 5.0
)

// Options configures the exporter.
type Options struct {
	Threshold float64
	Layout    layout.Options
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Layout.Logger == nil {
		o.Layout.Logger = o.Logger
	}
	return o
}

// Cell is a 1-based grid position.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("%d-%d", c.Row, c.Col)
}

// Grid assigns every node a cell by clustering its coordinates. Sorted
// coordinates start a new row (or column) when they are more than
// threshold beyond the first coordinate of the current one.
func Grid(nodes []arrowgram.Node, threshold float64) map[string]Cell {
	tops := make([]float64, len(nodes))
	lefts := make([]float64, len(nodes))
	for i, n := range nodes {
		tops[i] = n.Top
		lefts[i] = n.Left
	}
	rows := cluster(tops, threshold)
	cols := cluster(lefts, threshold)

	cells := make(map[string]Cell, len(nodes))
	for i, n := range nodes {
		cells[n.Name] = Cell{Row: rows[i], Col: cols[i]}
	}
	return cells
}

// cluster returns the 1-based cluster index of each value.
func cluster(values []float64, threshold float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]int, len(values))
	group := 0
	start := math.Inf(-1)
	for _, i := range idx {
		if values[i]-start > threshold {
			group++
			start = values[i]
		}
		out[i] = group
	}
	return out
}

// Export renders a specification as a tikzcd environment. Arrows with
// unresolvable endpoints are skipped with a warning.
func Export(s *arrowgram.Spec, o Options) string {
	o = o.withDefaults()
	cells := Grid(s.Nodes, o.Threshold)

	var sb strings.Builder
	sb.WriteString("\\begin{tikzcd}\n")
	writeMatrix(&sb, s.Nodes, cells, o.Logger)

	res, unresolved := layout.ResolvePartial(s, o.Layout)
	for _, i := range unresolved {
		a := s.Arrows[i]
		o.Logger.Warn("skipping arrow",
			slog.String("arrow", a.DisplayName(i)),
			slog.String("from", a.From),
			slog.String("to", a.To),
			slog.String("reason", "unresolvable endpoint"),
			slog.String("kind", string(arrowgram.KindEncoding)))
	}

	// Arrows used as endpoints carry a phantom label to attach to.
	referenced := make(map[string]bool)
	for _, m := range res.Arrows {
		referenced[m.Spec.From] = true
		referenced[m.Spec.To] = true
	}

	phantoms := make(map[string]int)
	for _, m := range res.Arrows {
		opts := arrowOptions(m, o)
		opts = append(opts, "from="+endpointRef(m.Spec.From, cells, phantoms))
		opts = append(opts, "to="+endpointRef(m.Spec.To, cells, phantoms))

		if name := m.Spec.Name; name != "" && referenced[name] {
			if _, isNode := cells[name]; !isNode {
				k := len(phantoms)
				phantoms[name] = k
				opts = append(opts, fmt.Sprintf(`""{name=%d, anchor=center, inner sep=0}`, k))
			}
		}
		sb.WriteString("\t\\arrow[" + strings.Join(opts, ", ") + "]\n")
	}

	sb.WriteString("\\end{tikzcd}\n")
	return sb.String()
}

// Write exports a specification to w.
func Write(w io.Writer, s *arrowgram.Spec, o Options) error {
	_, err := io.WriteString(w, Export(s, o))
	return err
}

func writeMatrix(sb *strings.Builder, nodes []arrowgram.Node, cells map[string]Cell, log *slog.Logger) {
	rows, cols := 0, 0
	for _, c := range cells {
		rows = max(rows, c.Row)
		cols = max(cols, c.Col)
	}
	if rows == 0 {
		return
	}

	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
	}
	for _, n := range nodes {
		c := cells[n.Name]
		text := stripMath(n.Label)
		if cur := grid[c.Row-1][c.Col-1]; cur != "" {
			log.Warn("nodes share a cell",
				slog.String("node", n.Name),
				slog.String("cell", c.String()))
			text = cur + ` \; ` + text
		}
		grid[c.Row-1][c.Col-1] = text
	}

	for r, row := range grid {
		// Trailing empty cells are dropped.
		last := len(row)
		for last > 0 && row[last-1] == "" {
			last--
		}
		sb.WriteString("\t" + strings.Join(row[:last], " & "))
		if r < len(grid)-1 {
			sb.WriteString(` \\`)
		}
		sb.WriteString("\n")
	}
}

func endpointRef(name string, cells map[string]Cell, phantoms map[string]int) string {
	if c, ok := cells[name]; ok {
		return c.String()
	}
	return strconv.Itoa(phantoms[name])
}

// arrowOptions returns the option list of an arrow, without endpoints.
func arrowOptions(m layout.ArrowModel, o Options) []string {
	a := m.Spec
	var opts []string

	if a.Label != "" {
		opts = append(opts, labelOption(a.Label, a.Alignment()))
	}
	if tok := bodyToken(a.Tail(), a.Head()); tok != "->" {
		opts = append(opts, tok)
	}

	switch a.Level() {
	case 1:
	case 2:
		opts = append(opts, "double")
	default:
		opts = append(opts, "triple")
	}

	switch a.Body() {
	case arrowgram.BodyDashed:
		opts = append(opts, "dashed")
	case arrowgram.BodyDotted:
		opts = append(opts, "dotted")
	}

	if a.IsLoop() {
		angle := 45.0
		if m.Loop != nil {
			c := m.Loop.Center.Sub(m.From.Pos)
			// tikz measures angles with y pointing up.
			angle = -math.Atan2(c.Y, c.X) * 180 / math.Pi
		}
		opts = append(opts, fmt.Sprintf("loop, out=%d, in=%d, distance=2em",
			int(math.Round(angle-30)), int(math.Round(angle+30))))
	} else if a.Curve != 0 {
		d := layout.PolylineLength([]layout.Point{m.From.Pos, m.To.Pos})
		bend := math.Atan2(2*math.Abs(a.Curve), d) * 180 / math.Pi
		side := "left"
		if a.Curve < 0 {
			side = "right"
		}
		opts = append(opts, fmt.Sprintf("bend %s=%d", side, int(math.Round(bend))))
	}

	if a.Shift != 0 {
		side := "left"
		if a.Shift < 0 {
			side = "right"
		}
		ex := math.Round(math.Abs(a.Shift)/PixelsPerEx*100) / 100
		opts = append(opts, fmt.Sprintf("shift %s=%sex", side, strconv.FormatFloat(ex, 'f', -1, 64)))
	}
	return opts
}

// bodyToken combines the tail and head markers into a tikz arrow
// specification such as ">->>".
func bodyToken(tail, head arrowgram.Marker) string {
	tip := func(m arrowgram.Marker) string {
		switch m {
		case arrowgram.MarkerEpi:
			return ">>"
		case arrowgram.MarkerNormal, arrowgram.MarkerMono:
			return ">"
		}
		return ""
	}
	t := ""
	if tail == arrowgram.MarkerMono || tail == arrowgram.MarkerEpi {
		t = tip(tail)
	}
	h := ""
	if head == arrowgram.MarkerNormal || head == arrowgram.MarkerEpi {
		h = tip(head)
	}
	return t + "-" + h
}

func labelOption(label string, al arrowgram.Alignment) string {
	text := stripMath(label)
	if strings.ContainsAny(text, `,]="`) {
		text = "{" + text + "}"
	}
	q := `"` + text + `"`
	switch al {
	case arrowgram.AlignRight:
		return q + "'"
	case arrowgram.AlignOver:
		return q + " description"
	}
	return q
}

// stripMath removes one pair of surrounding dollar signs.
func stripMath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, "$") && strings.HasSuffix(s, "$") {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
