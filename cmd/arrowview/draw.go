package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/arrowgram/pkg/layout"
)

// Styles
var (
	styleDefault  = tcell.StyleDefault
	styleNode     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleArrow    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleHigher   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 162, 200)) // Lilac
	styleHead     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleLabel    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo  = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

func (vw *Viewer) draw() {
	vw.screen.Clear()
	w, h := vw.screen.Size()
	canvasH := h - 2 // status and help bars

	if vw.diagram != nil {
		if vw.diagram.Error != "" {
			vw.drawError(w, canvasH)
		} else {
			vw.drawCanvas(w, canvasH)
		}
	}
	vw.drawStatusBar(w, h)
}

func (vw *Viewer) drawCanvas(w, h int) {
	// Arrows first so node names stay readable.
	for _, a := range vw.diagram.Arrows {
		vw.drawArrow(a, w, h)
	}
	for _, a := range vw.diagram.Arrows {
		vw.drawLabel(a.Label, w, h, styleLabel)
	}
	for _, n := range vw.diagram.Nodes {
		if plainText(n.Label.Text) == "" {
			x, y := vw.view.project(n.Pos)
			vw.setCell(x, y, '•', w, h, styleNode)
			continue
		}
		vw.drawLabel(n.Label, w, h, styleNode)
	}
}

func (vw *Viewer) drawArrow(a layout.ArrowModel, w, h int) {
	style := styleArrow
	if a.Depth > 1 {
		style = styleHigher
	}

	var tip layout.Point
	for _, p := range a.Paths {
		pts := p.Flatten()
		for _, c := range vw.view.trace(pts, p.Dash != "") {
			vw.setCell(c.x, c.y, c.r, w, h, style)
		}
		if len(pts) > 0 {
			tip = tip.Add(pts[len(pts)-1])
		}
	}

	if len(a.Heads) == 0 || len(a.Paths) == 0 {
		return
	}
	// Parallel strokes share one head at their mean end point.
	tip = tip.Scale(1 / float64(len(a.Paths)))
	x, y := vw.view.project(tip)
	vw.setCell(x, y, headGlyph(a.HeadAngle), w, h, styleHead)
}

// drawLabel centres text on the label anchor. TeX math delimiters are
// dropped since the terminal cannot typeset them.
func (vw *Viewer) drawLabel(l layout.Label, w, h int, style tcell.Style) {
	text := plainText(l.Text)
	if text == "" {
		return
	}
	x, y := vw.view.project(l.Anchor)
	vw.drawClipped(x-len([]rune(text))/2, y, text, w, h, style)
}

func (vw *Viewer) drawError(w, h int) {
	lines := []string{"Layout failed", "", vw.diagram.Error}
	for i, line := range lines {
		x := (w - len([]rune(line))) / 2
		vw.drawClipped(max(0, x), h/2-1+i, line, w, h, styleError)
	}
}

func (vw *Viewer) drawStatusBar(w, h int) {
	y := h - 1

	for x := 0; x < w; x++ {
		vw.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	info := "[No file]"
	if vw.source != "" {
		info = vw.source
		if len(info) > 30 {
			info = filepath.Base(info)
		}
	}
	if d := vw.diagram; d != nil && d.Error == "" {
		info += fmt.Sprintf("  %d nodes, %d arrows", len(d.Nodes), len(d.Arrows))
	}
	vw.drawString(1, y, info, styleStatus)

	zoom := fmt.Sprintf("%.0f%%", vw.view.scale*100*8)
	vw.drawString(w/2-len(zoom)/2, y, zoom, styleStatus)

	if vw.message != "" {
		style := styleMsgInfo
		if vw.messageType == MsgError {
			elapsed := time.Now().UnixMilli() - vw.messageFlashStart
			style = styleMsgError
			if elapsed >= 0 && elapsed < 500 && (elapsed/125)%2 == 1 {
				style = style.Reverse(true)
			}
		}
		vw.drawString(w-len([]rune(vw.message))-2, y, vw.message, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		vw.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	vw.drawString(1, y, helpText, styleHelp)
}

const helpText = "Arrows/hjkl:Pan  +/-:Zoom  0:Fit  r:Reload  q:Quit"

func (vw *Viewer) setCell(x, y int, r rune, w, h int, style tcell.Style) {
	if x < 0 || x >= w || y < 0 || y >= h {
		return
	}
	vw.screen.SetContent(x, y, r, nil, style)
}

func (vw *Viewer) drawClipped(x, y int, s string, w, h int, style tcell.Style) {
	for i, r := range []rune(s) {
		vw.setCell(x+i, y, r, w, h, style)
	}
}

func (vw *Viewer) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		vw.screen.SetContent(x+i, y, r, nil, style)
	}
}

func plainText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, "$") && strings.HasSuffix(s, "$") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
