package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const square = `{
  "nodes": [
    {"name": "A", "left": 0, "top": 0, "label": "A"},
    {"name": "B", "left": 150, "top": 0, "label": "B"},
    {"name": "C", "left": 0, "top": 150, "label": "C"},
    {"name": "D", "left": 150, "top": 150, "label": "D"}
  ],
  "arrows": [
    {"name": "f", "from": "A", "to": "B", "label": "f"},
    {"name": "g", "from": "C", "to": "D", "label": "g", "label_alignment": "right"},
    {"from": "f", "to": "g", "label": "α", "style": {"level": 2}},
    {"from": "B", "to": "B", "label": "id"}
  ]
}`

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return result{code, out.String(), errOut.String()}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestUsage(t *testing.T) {
	r := runCLI(t, "")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Commands:")

	r = runCLI(t, "", "help")
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.stdout, "arrowgram render")

	r = runCLI(t, "", "frobnicate")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Unknown command: frobnicate")
}

func TestGlobalFlags(t *testing.T) {
	rest, verbose, cfg := globalFlags([]string{"render", "-v", "x.json", "-config", "c.yaml", "-o", "y.svg"})
	assert.Equal(t, []string{"render", "x.json", "-o", "y.svg"}, rest)
	assert.True(t, verbose)
	assert.Equal(t, "c.yaml", cfg)
}

func TestRenderSVGToStdout(t *testing.T) {
	spec := writeFile(t, "square.json", square)
	r := runCLI(t, "", "render", spec)

	require.Equal(t, 0, r.code, r.stderr)
	assert.True(t, strings.HasPrefix(r.stdout, "<?xml"))
	assert.Equal(t, 4, strings.Count(r.stdout, `class="arrow-group"`))
}

func TestRenderFiles(t *testing.T) {
	spec := writeFile(t, "square.json", square)
	dir := t.TempDir()

	svgPath := filepath.Join(dir, "out.svg")
	r := runCLI(t, "", "render", spec, "-o", svgPath)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stderr, "Written: "+svgPath)

	pngPath := filepath.Join(dir, "out.png")
	r = runCLI(t, "", "render", spec, "-o", pngPath, "--scale", "1")
	require.Equal(t, 0, r.code, r.stderr)
	data, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	r = runCLI(t, "", "render", spec, "-o", filepath.Join(dir, "out.gif"))
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Unknown output format")
}

func TestRenderErrorStateExitsNonZero(t *testing.T) {
	r := runCLI(t, `{"arrows":[{"from":"A","to":"B"}]}`, "render", "-")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, `class="error"`)
	assert.Contains(t, r.stderr, "UnresolvableReferences")
}

func TestLayoutJSON(t *testing.T) {
	r := runCLI(t, square, "layout", "-")
	require.Equal(t, 0, r.code, r.stderr)

	var model struct {
		Nodes    []json.RawMessage `json:"nodes"`
		Arrows   []json.RawMessage `json:"arrows"`
		Viewport map[string]float64 `json:"viewport"`
		Error    string            `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &model))
	assert.Len(t, model.Nodes, 4)
	assert.Len(t, model.Arrows, 4)
	assert.Empty(t, model.Error)
	assert.Greater(t, model.Viewport["w"], 150.0)

	r = runCLI(t, `{"nodes": [`, "layout", "-", "--pretty")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, `"error": "[SpecParseError]`)
}

func TestLayoutQuery(t *testing.T) {
	r := runCLI(t, square, "layout", "-", "--query", ".nodes[].name")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "\"A\"\n\"B\"\n\"C\"\n\"D\"\n", r.stdout)

	r = runCLI(t, square, "layout", "-", "-q", "[.arrows[] | select(.loop != null)] | length")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "1\n", r.stdout)

	r = runCLI(t, square, "layout", "-", "-q", "[.arrows[].depth] | max")
	assert.Equal(t, "2\n", r.stdout)

	r = runCLI(t, square, "layout", "-", "--query", ".viewport", "--pretty")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "\n  \"h\": ")

	r = runCLI(t, square, "layout", "-", "--query", ".nodes[")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "jq parse error")
}

func TestValidate(t *testing.T) {
	r := runCLI(t, square, "validate", "-")
	assert.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "valid specification with 4 nodes, 4 arrows")

	r = runCLI(t, `{"nodes":[{"name":"A","left":"x","top":0}]}`, "validate", "-")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Validation failed")
	assert.Contains(t, r.stderr, "/nodes/0/left")

	r = runCLI(t, `{"nodes":[{"name":"A","left":0,"top":0}],"arrows":[{"name":"f","from":"A","to":"f"}]}`, "validate", "-")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "UnresolvableReferences")
}

func TestInfo(t *testing.T) {
	r := runCLI(t, square, "info", "-")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Nodes:        4")
	assert.Contains(t, r.stdout, "Named:        2")
	assert.Contains(t, r.stdout, "Self-loops:   1")
	assert.Contains(t, r.stdout, "Higher-order: 1")
	assert.Contains(t, r.stdout, "Max depth:    2")
}

func TestQuiverRoundTrip(t *testing.T) {
	r := runCLI(t, square, "quiver", "encode", "-", "--url")
	require.Equal(t, 0, r.code, r.stderr)
	url := strings.TrimSpace(r.stdout)
	assert.True(t, strings.HasPrefix(url, "https://q.uiver.app/#q="))

	r = runCLI(t, "", "quiver", "decode", url)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, `"name":"v3"`)
	assert.Contains(t, r.stdout, `"from":"e0","to":"e1"`)

	r = runCLI(t, "", "quiver", "decode", "#q=***")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "EncodingError")

	r = runCLI(t, "", "quiver", "transcode", "x")
	assert.Equal(t, 1, r.code)
}

func TestTikz(t *testing.T) {
	r := runCLI(t, square, "tikz", "-")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "\\begin{tikzcd}")
	assert.Contains(t, r.stdout, "A & B \\\\")
	assert.Contains(t, r.stdout, "from=0, to=1")
}

func TestConfigFile(t *testing.T) {
	cfg := writeFile(t, "arrowgram.yaml", "padding: 10\nsvg:\n  background: none\n")
	r := runCLI(t, square, "-config", cfg, "render", "-")
	require.Equal(t, 0, r.code, r.stderr)

	// The leftmost anchors sit at x=0.
	assert.Contains(t, r.stdout, `viewBox="-10.00 `)
	assert.NotContains(t, r.stdout, "<rect")

	r = runCLI(t, square, "-config", filepath.Join(t.TempDir(), "missing.yaml"), "render", "-")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "error reading config file")
}
