package quiver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
)

func quietOptions() (Options, *bytes.Buffer) {
	var buf bytes.Buffer
	return Options{Logger: slog.New(slog.NewTextHandler(&buf, nil))}, &buf
}

func sampleSpec() *arrowgram.Spec {
	s := arrowgram.New()
	s.AddNode("A", 0, 0, "A")
	s.AddNode("B", 150, 0, "B")
	s.AddNode("C", 150, 150, "C")
	s.AddArrow(arrowgram.Arrow{Name: "f", From: "A", To: "B", Label: "f", LabelAlignment: arrowgram.AlignLeft})
	s.AddArrow(arrowgram.Arrow{From: "B", To: "C", Label: "g", Curve: 50, Shift: -25,
		LabelAlignment: arrowgram.AlignRight,
		Style: &arrowgram.Style{
			Head:  &arrowgram.StyleName{Name: "epi"},
			Tail:  &arrowgram.StyleName{Name: "mono"},
			Body:  &arrowgram.StyleName{Name: "dashed"},
			Level: 2,
		}})
	s.AddArrow(arrowgram.Arrow{From: "f", To: "C", LabelAlignment: arrowgram.AlignOver,
		Style: &arrowgram.Style{Head: &arrowgram.StyleName{Name: "none"}, Body: &arrowgram.StyleName{Name: "dotted"}}})
	return s
}

func TestEncodeArray(t *testing.T) {
	o, _ := quietOptions()
	data, err := json.Marshal(EncodeArray(sampleSpec(), o))
	require.NoError(t, err)

	want := `[0,3,[0,0,"A"],[1,0,"B"],[1,1,"C"],` +
		`[0,1,"f",0,{}],` +
		`[1,2,"g",2,{"curve":-2,"offset":1,"level":2,"style":{"heads":"epi","tails":"mono","dash_style":"dashed"}}],` +
		`[3,2,"",3,{"style":{"heads":"none","dash_style":"dotted"}}]]`
	assert.JSONEq(t, want, string(data))
}

func TestEncodeRoundsToGrid(t *testing.T) {
	s := arrowgram.New()
	s.AddNode("A", 160, 220, "")
	o, _ := quietOptions()

	data, err := json.Marshal(EncodeArray(s, o))
	require.NoError(t, err)
	assert.JSONEq(t, `[0,1,[1,1,""]]`, string(data))
}

func TestEncodeOrdersReferencedArrowsFirst(t *testing.T) {
	s := arrowgram.New()
	s.AddNode("A", 0, 0, "")
	s.AddNode("B", 150, 0, "")
	s.AddArrow(arrowgram.Arrow{From: "f", To: "B"})
	s.AddArrow(arrowgram.Arrow{Name: "f", From: "A", To: "B"})
	o, _ := quietOptions()

	arr := EncodeArray(s, o)
	require.Len(t, arr, 6)
	assert.Equal(t, 0, arr[4].([]any)[0])
	assert.Equal(t, 2, arr[5].([]any)[0])
}

func TestEncodeSkipsDanglingArrows(t *testing.T) {
	s := arrowgram.New()
	s.AddNode("A", 0, 0, "")
	s.AddArrow(arrowgram.Arrow{Name: "bad", From: "A", To: "nowhere"})
	s.AddArrow(arrowgram.Arrow{From: "A", To: "A"})
	o, logs := quietOptions()

	arr := EncodeArray(s, o)
	assert.Len(t, arr, 4)
	assert.Contains(t, logs.String(), "arrow=bad")
	assert.Contains(t, logs.String(), "to=nowhere")
	assert.Contains(t, logs.String(), "EncodingError")
}

func TestDecodeArray(t *testing.T) {
	data := `[0,2,[0,0,"A"],[2,1,"B"],
		[0,1,"f"],
		[0,1,"g",1,{"curve":2,"offset":-1,"level":3,"style":{"heads":"arrowhead","tails":"epi","dash_style":"solid"}}],
		[2,0,"h",3,{"style":{"heads":"harpoon","body":{"name":"squiggly"}}}]]`
	o, _ := quietOptions()

	s, err := DecodeArray([]byte(data), o)
	require.NoError(t, err)

	assert.Equal(t, []arrowgram.Node{
		{Name: "v0", Left: 0, Top: 0, Label: "A"},
		{Name: "v1", Left: 300, Top: 150, Label: "B"},
	}, s.Nodes)
	require.Len(t, s.Arrows, 3)

	f := s.Arrows[0]
	assert.Equal(t, "e0", f.Name)
	assert.Equal(t, "v0", f.From)
	assert.Equal(t, "v1", f.To)
	assert.Equal(t, arrowgram.AlignLeft, f.LabelAlignment)
	assert.Nil(t, f.Style)

	g := s.Arrows[1]
	assert.Equal(t, arrowgram.AlignOver, g.LabelAlignment)
	assert.InDelta(t, -50, g.Curve, 1e-9)
	assert.InDelta(t, 25, g.Shift, 1e-9)
	assert.Equal(t, 3, g.Level())
	assert.Equal(t, arrowgram.MarkerNormal, g.Head())
	assert.Equal(t, arrowgram.MarkerEpi, g.Tail())
	assert.Equal(t, arrowgram.BodySolid, g.Body())

	h := s.Arrows[2]
	assert.Equal(t, "e0", h.From)
	assert.Equal(t, "v0", h.To)
	assert.Nil(t, h.Style, "unknown styles are dropped")
}

func TestDecodeSkipsBadReferences(t *testing.T) {
	data := `[0,1,[0,0,"A"],[0,7],[0,0],[1,0],[2,0]]`
	o, logs := quietOptions()

	s, err := DecodeArray([]byte(data), o)
	require.NoError(t, err)

	// e0 is dangling, e1 a loop, e2 depends on e0, e3 on e1.
	require.Len(t, s.Arrows, 2)
	assert.Equal(t, "e1", s.Arrows[0].Name)
	assert.Equal(t, "e3", s.Arrows[1].Name)
	assert.Equal(t, "e1", s.Arrows[1].From)
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping arrow"))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad base64", "#q=!!!"},
		{"not an array", base64.StdEncoding.EncodeToString([]byte(`{"a":1}`))},
		{"wrong version", base64.StdEncoding.EncodeToString([]byte(`[1,0]`))},
		{"bad count", base64.StdEncoding.EncodeToString([]byte(`[0,5,[0,0]]`))},
		{"bad vertex", base64.StdEncoding.EncodeToString([]byte(`[0,1,"x"]`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := quietOptions()
			_, err := Decode(tt.input, o)
			require.Error(t, err)
			assert.True(t, arrowgram.IsEncoding(err))
		})
	}
}

func TestPayload(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"WzAsMF0=", "WzAsMF0="},
		{"#q=WzAsMF0=", "WzAsMF0="},
		{"https://q.uiver.app/#q=WzAsMF0=", "WzAsMF0="},
		{"https://q.uiver.app/#q=WzAsMF0%3D&macro_url=x", "WzAsMF0="},
		{"  q=WzAsMF0=\n", "WzAsMF0="},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Payload(tt.input))
		})
	}
}

func TestURL(t *testing.T) {
	o, _ := quietOptions()
	u, err := URL(sampleSpec(), o)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, DefaultBaseURL+"#q="))

	o.BaseURL = "http://localhost/"
	u, err = URL(arrowgram.New(), o)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/#q=WzAsMF0=", u)
}

func TestRoundTrip(t *testing.T) {
	o, _ := quietOptions()
	orig := sampleSpec()

	u, err := URL(orig, o)
	require.NoError(t, err)
	got, err := Decode(u, o)
	require.NoError(t, err)

	require.Len(t, got.Nodes, len(orig.Nodes))
	for i, n := range orig.Nodes {
		assert.Equal(t, n.Left, got.Nodes[i].Left)
		assert.Equal(t, n.Top, got.Nodes[i].Top)
		assert.Equal(t, n.Label, got.Nodes[i].Label)
	}

	// Decoded names differ; compare topology through the cell names.
	rename := map[string]string{"A": "v0", "B": "v1", "C": "v2", "f": "e0"}
	require.Len(t, got.Arrows, len(orig.Arrows))
	for i, a := range orig.Arrows {
		b := got.Arrows[i]
		assert.Equal(t, rename[a.From], b.From, "arrow %d from", i)
		assert.Equal(t, rename[a.To], b.To, "arrow %d to", i)
		assert.Equal(t, a.Label, b.Label)
		assert.InDelta(t, a.Curve, b.Curve, 1e-9)
		assert.InDelta(t, a.Shift, b.Shift, 1e-9)
		assert.Equal(t, a.Alignment(), b.Alignment())
		assert.Equal(t, a.Head(), b.Head())
		assert.Equal(t, a.Tail(), b.Tail())
		assert.Equal(t, a.Body(), b.Body())
		assert.Equal(t, a.Level(), b.Level())
	}
}
