// Native PNG rendering of the diagram render model.
// Mirrors the SVG output using Go's image packages.

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
	"github.com/ha1tch/arrowgram/pkg/layout"
)

const (
	supersample     = 4    // oversampling factor used before downscaling
	maxSupersampled = 8192 // longest side of the oversampled image
)

// Colors used in rendering
var (
	colorWhite = color.RGBA{255, 255, 255, 255}
	colorInk   = color.RGBA{51, 51, 51, 255}  // #333
	colorError = color.RGBA{198, 40, 40, 255} // #c62828
)

// canvas maps diagram coordinates onto a supersampled image.
type canvas struct {
	img    *image.RGBA
	z      *vector.Rasterizer
	k      float64      // image pixels per diagram pixel
	origin layout.Point // diagram point at the image's top-left corner
	face   font.Face
	node   font.Face
}

func (c *canvas) pt(p layout.Point) (float64, float64) {
	return (p.X - c.origin.X) * c.k, (p.Y - c.origin.Y) * c.k
}

// stroke adds a polyline of the given diagram width to the rasterizer as a
// chain of square-capped quads, all wound the same way.
func (c *canvas) stroke(pts []layout.Point, width float64) {
	hw := width * c.k / 2
	for i := 1; i < len(pts); i++ {
		x0, y0 := c.pt(pts[i-1])
		x1, y1 := c.pt(pts[i])
		dx, dy := x1-x0, y1-y0
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		ux, uy := dx/l*hw, dy/l*hw
		x0, y0 = x0-ux, y0-uy
		x1, y1 = x1+ux, y1+uy
		nx, ny := -uy, ux

		c.z.MoveTo(float32(x0+nx), float32(y0+ny))
		c.z.LineTo(float32(x1+nx), float32(y1+ny))
		c.z.LineTo(float32(x1-nx), float32(y1-ny))
		c.z.LineTo(float32(x0-nx), float32(y0-ny))
		c.z.ClosePath()
	}
}

// flush paints everything accumulated in the rasterizer.
func (c *canvas) flush(col color.Color) {
	b := c.img.Bounds()
	c.z.Draw(c.img, b, image.NewUniform(col), image.Point{})
	c.z.Reset(b.Dx(), b.Dy())
}

// text draws s centred on at. A halo clears the background behind it.
func (c *canvas) text(face font.Face, at layout.Point, s string, col color.Color, halo bool) {
	x, y := c.pt(at)
	width := font.MeasureString(face, s).Ceil()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()

	left := int(x) - width/2
	baseline := int(y) + (ascent-descent)/2

	if halo {
		pad := int(2 * c.k)
		r := image.Rect(left-pad, baseline-ascent-pad, left+width+pad, baseline+descent+pad)
		draw.Draw(c.img, r, image.NewUniform(colorWhite), image.Point{}, draw.Src)
	}

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(left), Y: fixed.I(baseline)},
	}
	d.DrawString(s)
}

// RenderPNG renders a diagram to PNG format.
// Uses 4x supersampling for smoother output.
func RenderPNG(d *layout.Diagram, w io.Writer, opts PNGOptions) error {
	img, err := Image(d, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Image rasterizes a diagram.
func Image(d *layout.Diagram, opts PNGOptions) (*image.RGBA, error) {
	opts = opts.withDefaults()
	width, height, k, origin := frame(d.Viewport, opts)
	ss := supersampleFactor(width, height)

	large, err := renderLarge(d, opts, width*ss, height*ss, k*float64(ss), origin)
	if err != nil {
		return nil, err
	}

	// Downsample to target size using high-quality interpolation
	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return final, nil
}

// frame picks the output size, the scale and the diagram origin. Both sides
// are bounded by opts.MaxSize.
func frame(vp layout.Rect, opts PNGOptions) (int, int, float64, layout.Point) {
	vw, vh := math.Max(vp.W, 1), math.Max(vp.H, 1)
	if opts.Width > 0 && opts.Height > 0 {
		w, h := min(opts.Width, opts.MaxSize), min(opts.Height, opts.MaxSize)
		k := math.Min(float64(w)/vw, float64(h)/vh)
		origin := layout.Point{
			X: vp.X - (float64(w)/k-vw)/2,
			Y: vp.Y - (float64(h)/k-vh)/2,
		}
		return w, h, k, origin
	}

	k := opts.Scale
	if long := math.Max(vw, vh); long*k > float64(opts.MaxSize) {
		k = float64(opts.MaxSize) / long
	}
	width := min(int(math.Ceil(vw*k)), opts.MaxSize)
	height := min(int(math.Ceil(vh*k)), opts.MaxSize)
	return max(width, 1), max(height, 1), k, layout.Point{X: vp.X, Y: vp.Y}
}

// supersampleFactor lowers the oversampling for large outputs so the
// intermediate image stays within maxSupersampled on its long side.
func supersampleFactor(width, height int) int {
	ss := supersample
	for ss > 1 && max(width, height)*ss > maxSupersampled {
		ss--
	}
	return ss
}

func newFace(size float64) (font.Face, error) {
	size = math.Max(size, 1)
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone, // supersampled instead
	})
}

func renderLarge(d *layout.Diagram, opts PNGOptions, width, height int, k float64, origin layout.Point) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)

	face, err := newFace((opts.FontSize - 2) * k)
	if err != nil {
		return nil, err
	}
	defer face.Close()
	nodeFace, err := newFace(opts.FontSize * k)
	if err != nil {
		return nil, err
	}
	defer nodeFace.Close()

	c := &canvas{
		img:    img,
		z:      vector.NewRasterizer(width, height),
		k:      k,
		origin: origin,
		face:   face,
		node:   nodeFace,
	}

	if d.Error != "" {
		c.text(face, layout.Point{X: d.Viewport.X + d.Viewport.W/2, Y: d.Viewport.Y + 20}, d.Error, colorError, false)
		return img, nil
	}

	for _, a := range d.Arrows {
		drawArrow(c, a)
	}
	c.flush(colorInk)

	for _, a := range d.Arrows {
		if a.Label.Text != "" {
			c.text(c.face, a.Label.Anchor, a.Label.Text, colorInk, a.Label.Alignment == arrowgram.AlignOver)
		}
	}
	for _, n := range d.Nodes {
		text := n.Label.Text
		if text == "" {
			text = n.Name
		}
		c.text(c.node, n.Pos, text, colorInk, false)
	}
	return img, nil
}

// drawArrow strokes an arrow's paths, applying dash patterns by arc length
// over the flattened path, then its markers.
func drawArrow(c *canvas, a layout.ArrowModel) {
	dashes := a.Spec.Body().Dashes()
	for _, p := range a.Paths {
		for _, run := range layout.DashPolyline(p.Flatten(), dashes) {
			c.stroke(run, p.Width)
		}
	}
	for _, p := range a.Heads {
		c.stroke(p.Flatten(), p.Width)
	}
	for _, p := range a.Tail {
		c.stroke(p.Flatten(), p.Width)
	}
}
