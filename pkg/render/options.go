// Package render paints a layout.Diagram onto drawing surfaces.
package render

// SVGOptions controls SVG output.
type SVGOptions struct {
	FontSize    float64 `yaml:"font_size"`    // node label size; arrow labels are two points smaller
	StrokeWidth float64 `yaml:"stroke_width"` // overrides the widths carried by the primitives
	Background  string  `yaml:"background"`   // fill colour, "none" for transparent
	Color       string  `yaml:"color"`        // stroke and text colour
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		FontSize:   16,
		Background: "white",
		Color:      "#333",
	}
}

func (o SVGOptions) withDefaults() SVGOptions {
	d := DefaultSVGOptions()
	if o.FontSize == 0 {
		o.FontSize = d.FontSize
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	if o.Color == "" {
		o.Color = d.Color
	}
	return o
}

// PNGOptions configures PNG rendering. When Width and Height are both set
// the viewport is fitted into them; otherwise the image is the viewport
// size multiplied by Scale. Neither side ever exceeds MaxSize: a larger
// diagram is scaled down to fit.
type PNGOptions struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Scale    float64 `yaml:"scale"`
	FontSize float64 `yaml:"font_size"`
	MaxSize  int     `yaml:"max_size"`
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Scale:    2,
		FontSize: 14,
		MaxSize:  4096,
	}
}

func (o PNGOptions) withDefaults() PNGOptions {
	d := DefaultPNGOptions()
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	if o.FontSize == 0 {
		o.FontSize = d.FontSize
	}
	if o.MaxSize <= 0 {
		o.MaxSize = d.MaxSize
	}
	return o
}
