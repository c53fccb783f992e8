package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
	"github.com/ha1tch/arrowgram/pkg/layout"
)

// SVG renders a diagram as a standalone SVG document. A failed diagram
// renders its error message inside the fallback viewport.
func SVG(d *layout.Diagram, opts SVGOptions) string {
	opts = opts.withDefaults()
	vp := d.Viewport
	labelSize := opts.FontSize - 2

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%.2f %.2f %.2f %.2f">
<style>
  .node { font-family: serif; font-style: italic; font-size: %.0fpx; text-anchor: middle; dominant-baseline: middle; fill: %s; }
  .arrow { fill: none; stroke: %s; stroke-linecap: round; }
  .marker { fill: none; stroke: %s; stroke-linecap: round; stroke-linejoin: round; }
  .label { font-family: serif; font-style: italic; font-size: %.0fpx; text-anchor: middle; dominant-baseline: middle; fill: %s; }
  .label-over { paint-order: stroke; stroke: %s; stroke-width: 4px; stroke-linejoin: round; }
  .error { font-family: sans-serif; font-size: 12px; fill: #c62828; }
</style>
`, vp.W, vp.H, vp.X, vp.Y, vp.W, vp.H,
		opts.FontSize, opts.Color, opts.Color, opts.Color, labelSize, opts.Color, haloColor(opts)))

	if opts.Background != "none" {
		sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>
`, vp.X, vp.Y, vp.W, vp.H, html.EscapeString(opts.Background)))
	}

	if d.Error != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" class="error">%s</text>
`, vp.X+10, vp.Y+20, html.EscapeString(d.Error)))
		sb.WriteString("</svg>\n")
		return sb.String()
	}

	// Arrows first so node labels sit on top.
	for _, a := range d.Arrows {
		sb.WriteString(fmt.Sprintf(`<g class="arrow-group" id="arrow-%s" data-index="%d">
`, a.Key, a.Index))
		for _, p := range a.Paths {
			writePath(&sb, "arrow", p, opts)
		}
		for _, p := range a.Heads {
			writePath(&sb, "marker", p, opts)
		}
		for _, p := range a.Tail {
			writePath(&sb, "marker", p, opts)
		}
		if a.Label.Text != "" {
			class := "label"
			if a.Label.Alignment == arrowgram.AlignOver {
				class += " label-over"
			}
			sb.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" class="%s">%s</text>
`, a.Label.Anchor.X, a.Label.Anchor.Y, class, html.EscapeString(a.Label.Text)))
		}
		sb.WriteString("</g>\n")
	}

	for _, n := range d.Nodes {
		text := n.Label.Text
		if text == "" {
			text = n.Name
		}
		sb.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" class="node" data-name="%s">%s</text>
`, n.Pos.X, n.Pos.Y, html.EscapeString(n.Name), html.EscapeString(text)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG renders a diagram to w.
func WriteSVG(w io.Writer, d *layout.Diagram, opts SVGOptions) error {
	_, err := io.WriteString(w, SVG(d, opts))
	return err
}

func writePath(sb *strings.Builder, class string, p layout.PathPrimitive, opts SVGOptions) {
	width := p.Width
	if opts.StrokeWidth > 0 {
		width = opts.StrokeWidth
	}
	sb.WriteString(fmt.Sprintf(`<path d="%s" class="%s" stroke-width="%.2f"`, p.D(), class, width))
	if p.Dash != "" {
		sb.WriteString(fmt.Sprintf(` stroke-dasharray="%s"`, p.Dash))
	}
	sb.WriteString("/>\n")
}

func haloColor(opts SVGOptions) string {
	if opts.Background == "none" {
		return "white"
	}
	return html.EscapeString(opts.Background)
}
