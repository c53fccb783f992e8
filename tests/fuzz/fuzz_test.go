// Package fuzz provides fuzz testing for the specification parser, the
// layout engine and the quiver decoder.
// Run with: go test -fuzz=FuzzRender -fuzztime=30s ./tests/fuzz/
package fuzz

import (
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
	"github.com/ha1tch/arrowgram/pkg/layout"
	"github.com/ha1tch/arrowgram/pkg/quiver"
	"github.com/ha1tch/arrowgram/pkg/tikz"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func options() layout.Options {
	o := layout.DefaultOptions()
	o.Logger = quiet
	return o
}

// FuzzRender feeds arbitrary bytes to the layout engine. It must never
// panic, and a diagram is either an error state or a complete model.
func FuzzRender(f *testing.F) {
	// Seed with valid specifications
	f.Add(`{"nodes":[{"name":"A","left":0,"top":0,"label":"A"},{"name":"B","left":150,"top":0,"label":"B"}],"arrows":[{"name":"f","from":"A","to":"B"}]}`)
	f.Add(`{"nodes":[{"name":"A","left":0,"top":0}],"arrows":[{"from":"A","to":"A","radius":10,"angle":-90}]}`)
	f.Add(`{"nodes":[{"name":"A","left":0,"top":0},{"name":"B","left":0,"top":0}],"arrows":[{"from":"A","to":"B","curve":30}]}`)
	f.Add(`{"nodes":[{"name":"A","left":0,"top":0},{"name":"B","left":90,"top":0}],"arrows":[{"name":"f","from":"A","to":"B"},{"from":"f","to":"f","style":{"level":3}}]}`)

	// Seed with edge cases
	f.Add(``)
	f.Add(`{}`)
	f.Add(`[]`)
	f.Add(`{"nodes":null,"arrows":null}`)
	f.Add(`{"nodes":[{"name":"A","left":1e308,"top":-1e308}]}`)
	f.Add(`{"arrows":[{"name":"f","from":"f","to":"f"}]}`)

	f.Fuzz(func(t *testing.T, data string) {
		d := layout.Render([]byte(data), options())
		if d == nil {
			t.Fatal("nil diagram")
		}
		if d.Error != "" && (len(d.Arrows) != 0 || len(d.Nodes) != 0) {
			t.Errorf("error state carries a partial model: %s", d.Error)
		}
		if len(d.Nodes) == 0 && d.Viewport != options().Fallback {
			t.Errorf("empty diagram viewport = %+v", d.Viewport)
		}
	})
}

// FuzzQuiverDecode tests the quiver decoder with arbitrary arrays.
func FuzzQuiverDecode(f *testing.F) {
	f.Add(`[0,0]`)
	f.Add(`[0,2,[0,0,"A"],[1,0,"B"],[0,1,"f",0,{"curve":2,"offset":-1,"level":2,"style":{"heads":"epi","tails":"mono","dash_style":"dashed"}}]]`)
	f.Add(`[0,1,[0,0],[0,0],[0,1],[1,0]]`)
	f.Add(`[0,2,[0,0],[1,1],[0,1],[2,0],[2,2]]`)
	f.Add(`[1,0]`)
	f.Add(`[0,-1]`)
	f.Add(`[0,5]`)
	f.Add(`{"q":1}`)
	f.Add(`[0,1,["x","y"]]`)
	f.Add(`[0,1,[0,0],[0,0,null,"left",[]]]`)

	f.Fuzz(func(t *testing.T, data string) {
		o := quiver.Options{Logger: quiet}
		s, err := quiver.Decode(base64.StdEncoding.EncodeToString([]byte(data)), o)
		if err != nil {
			if !arrowgram.IsEncoding(err) {
				t.Errorf("unexpected error kind: %v", err)
			}
			return
		}

		// Decoded specifications always reference earlier cells.
		if _, unresolved := layout.ResolvePartial(s, options()); len(unresolved) != 0 {
			t.Errorf("decoded arrows %v do not resolve", unresolved)
		}

		// A decoded specification survives another trip.
		if _, err := quiver.Encode(s, o); err != nil {
			t.Errorf("re-encode: %v", err)
		}
		_ = tikz.Export(s, tikz.Options{Logger: quiet, Layout: options()})
	})
}

// FuzzPayload checks that link parsing never panics.
func FuzzPayload(f *testing.F) {
	f.Add("https://q.uiver.app/#q=WzAsMF0=")
	f.Add("https://q.uiver.app/?q=WzAsMF0%3D&embed")
	f.Add("#q=")
	f.Add("q=q=q=")
	f.Add("%2B%2F%3D")

	f.Fuzz(func(t *testing.T, input string) {
		_ = quiver.Payload(input)
		_, _ = quiver.Decode(input, quiver.Options{Logger: quiet})
	})
}
