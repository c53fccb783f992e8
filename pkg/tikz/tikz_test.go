package tikz

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
)

func testOptions() (Options, *bytes.Buffer) {
	var buf bytes.Buffer
	return Options{Logger: slog.New(slog.NewTextHandler(&buf, nil))}, &buf
}

func TestCluster(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []int
	}{
		{"empty", nil, []int{}},
		{"single", []float64{7}, []int{1}},
		{"within threshold", []float64{0, 30, 100, 135}, []int{1, 1, 2, 2}},
		{"unsorted", []float64{300, 0, 150, 10}, []int{3, 1, 2, 1}},
		{"chained values split", []float64{0, 35, 70}, []int{1, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cluster(tt.values, DefaultThreshold))
		})
	}
}

func TestGrid(t *testing.T) {
	nodes := []arrowgram.Node{
		{Name: "A", Left: 0, Top: 0},
		{Name: "B", Left: 205, Top: 12},
		{Name: "C", Left: 10, Top: 190},
	}
	assert.Equal(t, map[string]Cell{
		"A": {1, 1},
		"B": {1, 2},
		"C": {2, 1},
	}, Grid(nodes, DefaultThreshold))
}

func TestExport(t *testing.T) {
	s := arrowgram.New()
	s.AddNode("A", 0, 0, "$A$")
	s.AddNode("B", 200, 0, "B")
	s.AddNode("C", 0, 200, "C")
	s.AddArrow(arrowgram.Arrow{Name: "f", From: "A", To: "B", Label: "$f$", LabelAlignment: arrowgram.AlignLeft})
	s.AddArrow(arrowgram.Arrow{From: "A", To: "C", Label: "g", Curve: 50, LabelAlignment: arrowgram.AlignRight})
	s.AddArrow(arrowgram.Arrow{From: "B", To: "C", Label: "h", Shift: 10,
		Style: &arrowgram.Style{Body: &arrowgram.StyleName{Name: "dashed"}, Level: 2}})
	s.AddArrow(arrowgram.Arrow{From: "f", To: "C", Curve: -50,
		Style: &arrowgram.Style{Head: &arrowgram.StyleName{Name: "epi"}, Tail: &arrowgram.StyleName{Name: "mono"}}})

	o, _ := testOptions()
	want := "\\begin{tikzcd}\n" +
		"\tA & B \\\\\n" +
		"\tC\n" +
		"\t\\arrow[\"f\", from=1-1, to=1-2, \"\"{name=0, anchor=center, inner sep=0}]\n" +
		"\t\\arrow[\"g\"', bend left=27, from=1-1, to=2-1]\n" +
		"\t\\arrow[\"h\" description, double, dashed, shift left=2ex, from=1-2, to=2-1]\n" +
		"\t\\arrow[>->>, bend right=24, from=0, to=2-1]\n" +
		"\\end{tikzcd}\n"
	assert.Equal(t, want, Export(s, o))
}

func TestBodyToken(t *testing.T) {
	tests := []struct {
		tail, head arrowgram.Marker
		want       string
	}{
		{arrowgram.MarkerNone, arrowgram.MarkerNormal, "->"},
		{arrowgram.MarkerNone, arrowgram.MarkerEpi, "->>"},
		{arrowgram.MarkerMono, arrowgram.MarkerNormal, ">->"},
		{arrowgram.MarkerEpi, arrowgram.MarkerNone, ">>-"},
		{arrowgram.MarkerNormal, arrowgram.MarkerNone, "-"},
		{arrowgram.MarkerNone, arrowgram.MarkerMono, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, bodyToken(tt.tail, tt.head))
		})
	}
}

func TestLabelOption(t *testing.T) {
	assert.Equal(t, `"x"`, labelOption("$x$", arrowgram.AlignLeft))
	assert.Equal(t, `"x"'`, labelOption("x", arrowgram.AlignRight))
	assert.Equal(t, `"x" description`, labelOption(" $ x $ ", arrowgram.AlignOver))
	assert.Equal(t, `"{f(a, b)}"`, labelOption("f(a, b)", arrowgram.AlignLeft))
	assert.Equal(t, `"$"`, labelOption("$", arrowgram.AlignLeft))
}

func TestExportLevelsAndLoops(t *testing.T) {
	s := arrowgram.New()
	s.AddNode("A", 0, 0, "A")
	s.AddArrow(arrowgram.Arrow{From: "A", To: "A", Style: &arrowgram.Style{Level: 3}})

	o, _ := testOptions()
	out := Export(s, o)
	assert.Contains(t, out, "triple")
	assert.Contains(t, out, "loop, out=-75, in=-15, distance=2em")
	assert.Contains(t, out, "from=1-1, to=1-1")
}

func TestExportSkipsUnresolvable(t *testing.T) {
	s := arrowgram.New()
	s.AddNode("A", 0, 0, "A")
	s.AddNode("B", 100, 0, "B")
	s.AddArrow(arrowgram.Arrow{Name: "f", From: "A", To: "ghost"})
	s.AddArrow(arrowgram.Arrow{From: "A", To: "B"})

	o, logs := testOptions()
	out := Export(s, o)

	assert.Contains(t, out, `\arrow[from=1-1, to=1-2]`)
	assert.NotContains(t, out, "ghost")
	assert.Contains(t, logs.String(), "skipping arrow")
	assert.Contains(t, logs.String(), "arrow=f")
	assert.Contains(t, logs.String(), "reason=\"unresolvable endpoint\"")
}

func TestExportSharedCell(t *testing.T) {
	s := arrowgram.New()
	s.AddNode("A", 0, 0, "A")
	s.AddNode("B", 10, 5, "B")

	o, logs := testOptions()
	out := Export(s, o)

	assert.Contains(t, out, `A \; B`)
	assert.Contains(t, logs.String(), "nodes share a cell")
}

func TestExportEmpty(t *testing.T) {
	o, _ := testOptions()
	assert.Equal(t, "\\begin{tikzcd}\n\\end{tikzcd}\n", Export(arrowgram.New(), o))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	o, _ := testOptions()
	require.NoError(t, Write(&buf, arrowgram.New(), o))
	assert.Contains(t, buf.String(), "tikzcd")
}
