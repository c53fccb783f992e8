package layout

import "log/slog"

// Options controls geometry constants. Lengths are in diagram pixels.
type Options struct {
	NodeRadius     float64 `yaml:"node_radius"`     // trim distance at node endpoints
	MarkerSize     float64 `yaml:"marker_size"`     // chevron wing length
	ChevronAngle   float64 `yaml:"chevron_angle"`   // chevron half-angle, degrees
	EpiSpacing     float64 `yaml:"epi_spacing"`     // axial gap of the second epi chevron
	LineSpacing    float64 `yaml:"line_spacing"`    // distance between parallel copies
	StrokeWidth    float64 `yaml:"stroke_width"`    // stroke thickness
	EndpointMargin float64 `yaml:"endpoint_margin"` // trim distance at arrow endpoints
	DepthPadding   float64 `yaml:"depth_padding"`   // extra trim per nesting depth above 1
	LabelGap       float64 `yaml:"label_gap"`       // label offset for left/right alignment
	LoopRadius     float64 `yaml:"loop_radius"`     // self-loop circle radius
	LoopAngle      float64 `yaml:"loop_angle"`      // self-loop bulge direction, degrees
	Padding        float64 `yaml:"padding"`         // viewport padding

	Fallback Rect         `yaml:"-"` // viewport used when there is nothing to bound
	Logger   *slog.Logger `yaml:"-"`
}

// DefaultOptions returns the standard geometry constants.
func DefaultOptions() Options {
	return Options{
		NodeRadius:     25,
		MarkerSize:     10,
		ChevronAngle:   30,
		EpiSpacing:     5,
		LineSpacing:    4,
		StrokeWidth:    1.5,
		EndpointMargin: 6,
		DepthPadding:   2,
		LabelGap:       12,
		LoopRadius:     40,
		LoopAngle:      45,
		Padding:        50,
		Fallback:       Rect{X: 0, Y: 0, W: 400, H: 300},
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.NodeRadius == 0 {
		o.NodeRadius = d.NodeRadius
	}
	if o.MarkerSize == 0 {
		o.MarkerSize = d.MarkerSize
	}
	if o.ChevronAngle == 0 {
		o.ChevronAngle = d.ChevronAngle
	}
	if o.EpiSpacing == 0 {
		o.EpiSpacing = d.EpiSpacing
	}
	if o.LineSpacing == 0 {
		o.LineSpacing = d.LineSpacing
	}
	if o.StrokeWidth == 0 {
		o.StrokeWidth = d.StrokeWidth
	}
	if o.EndpointMargin == 0 {
		o.EndpointMargin = d.EndpointMargin
	}
	if o.DepthPadding == 0 {
		o.DepthPadding = d.DepthPadding
	}
	if o.LabelGap == 0 {
		o.LabelGap = d.LabelGap
	}
	if o.LoopRadius == 0 {
		o.LoopRadius = d.LoopRadius
	}
	if o.LoopAngle == 0 {
		o.LoopAngle = d.LoopAngle
	}
	if o.Padding == 0 {
		o.Padding = d.Padding
	}
	if o.Fallback.W == 0 || o.Fallback.H == 0 {
		o.Fallback = d.Fallback
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
