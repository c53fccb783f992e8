// Command arrowview is a terminal viewer for arrowgram diagrams.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/arrowgram/pkg/config"
	"github.com/ha1tch/arrowgram/pkg/layout"
	"github.com/ha1tch/arrowgram/pkg/quiver"
)

// Viewer holds all viewer state
type Viewer struct {
	screen  tcell.Screen
	source  string // file path or quiver link
	opts    layout.Options
	diagram *layout.Diagram
	view    view
	fitted  bool

	message           string
	messageType       MessageType
	messageFlashStart int64
}

type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
)

const panStep = 4

func main() {
	args := os.Args[1:]
	configPath := ""
	if len(args) >= 2 && (args[0] == "-config" || args[0] == "--config") {
		configPath = args[1]
		args = args[2:]
	}
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: arrowview [-config file] <spec.json|quiver link>")
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// The screen owns the terminal, so layout warnings are discarded.
	cfg.Layout.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	vw := &Viewer{source: args[0], opts: cfg.Layout}
	if err := vw.load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", vw.source, err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.Clear()

	vw.screen = screen
	vw.run()

	screen.Fini()
}

func (vw *Viewer) run() {
	for {
		if !vw.fitted {
			vw.fit()
		}
		vw.draw()
		vw.screen.Show()

		switch ev := vw.screen.PollEvent().(type) {
		case *tcell.EventResize:
			vw.screen.Sync()
			vw.fitted = false
		case *tcell.EventKey:
			if vw.handleKey(ev) {
				return
			}
		case nil:
			return
		}
	}
}

// handleKey applies one key press and reports whether to quit.
func (vw *Viewer) handleKey(ev *tcell.EventKey) bool {
	w, h := vw.canvasSize()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		vw.view = vw.view.pan(-panStep, 0)
	case tcell.KeyRight:
		vw.view = vw.view.pan(panStep, 0)
	case tcell.KeyUp:
		vw.view = vw.view.pan(0, -panStep/2)
	case tcell.KeyDown:
		vw.view = vw.view.pan(0, panStep/2)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case 'h':
			vw.view = vw.view.pan(-panStep, 0)
		case 'l':
			vw.view = vw.view.pan(panStep, 0)
		case 'k':
			vw.view = vw.view.pan(0, -panStep/2)
		case 'j':
			vw.view = vw.view.pan(0, panStep/2)
		case '+', '=':
			vw.view = vw.view.zoom(1.25, w, h)
		case '-', '_':
			vw.view = vw.view.zoom(0.8, w, h)
		case '0':
			vw.fit()
		case 'r', 'R':
			if err := vw.load(); err != nil {
				vw.showMessage("Reload failed: "+err.Error(), MsgError)
			} else {
				vw.showMessage("Reloaded", MsgInfo)
			}
		}
	}
	return false
}

func (vw *Viewer) canvasSize() (int, int) {
	if vw.screen == nil {
		return 0, 0
	}
	w, h := vw.screen.Size()
	return w, h - 2
}

func (vw *Viewer) fit() {
	w, h := vw.canvasSize()
	vw.view = fitView(vw.diagram.Viewport, w, h)
	vw.fitted = true
}

func (vw *Viewer) showMessage(msg string, msgType MessageType) {
	vw.message = msg
	vw.messageType = msgType
	vw.messageFlashStart = time.Now().UnixMilli()
}

// load reads the source again and lays it out. Layout failures are shown in
// the canvas; only an unreadable source is an error.
func (vw *Viewer) load() error {
	data, err := os.ReadFile(vw.source)
	if err == nil {
		vw.diagram = layout.Render(data, vw.opts)
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) || !isQuiverLink(vw.source) {
		return err
	}

	s, err := quiver.Decode(vw.source, quiver.Options{Logger: vw.opts.Logger})
	if err != nil {
		return err
	}
	d, err := layout.Build(s, vw.opts)
	if err != nil {
		d = layout.Failed(err, vw.opts)
	}
	vw.diagram = d
	return nil
}

func isQuiverLink(s string) bool {
	return strings.Contains(s, "q=")
}
