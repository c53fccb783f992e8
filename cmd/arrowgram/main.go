// Command arrowgram lays out and converts commutative diagram specifications.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ha1tch/arrowgram/pkg/arrowgram"
	"github.com/ha1tch/arrowgram/pkg/config"
	"github.com/ha1tch/arrowgram/pkg/layout"
	"github.com/ha1tch/arrowgram/pkg/query"
	"github.com/ha1tch/arrowgram/pkg/quiver"
	"github.com/ha1tch/arrowgram/pkg/render"
	"github.com/ha1tch/arrowgram/pkg/tikz"
)

const usage = `arrowgram - commutative diagram layout toolkit

Usage:
  arrowgram [-v] [-config file] <command> [options]

Commands:
  render     Render a specification to SVG or PNG
  layout     Print the computed render model as JSON
  validate   Validate a specification
  info       Show specification information
  quiver     Encode to or decode from a quiver share link
  tikz       Export a tikz-cd diagram

Examples:
  arrowgram render square.json -o square.svg
  arrowgram render square.json -o square.png --scale 3
  arrowgram layout square.json --pretty
  arrowgram layout square.json --query '.arrows[].midpoint'
  arrowgram quiver encode square.json --url
  arrowgram quiver decode 'https://q.uiver.app/#q=WzAsMF0='
  arrowgram tikz square.json -o square.tex

A specification path of "-" reads standard input.
Use "arrowgram <command> -h" for more information about a command.
`

// app carries what every command needs.
type app struct {
	config config.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a command line and returns the exit code.
func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	args, verbose, configPath := globalFlags(argv)
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cfg.Layout.Logger = log

	a := &app{config: cfg, log: log, stdout: stdout, stderr: stderr, stdin: stdin}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "render":
		return a.cmdRender(args)
	case "layout":
		return a.cmdLayout(args)
	case "validate":
		return a.cmdValidate(args)
	case "info":
		return a.cmdInfo(args)
	case "quiver":
		return a.cmdQuiver(args)
	case "tikz":
		return a.cmdTikz(args)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(stderr, usage)
		return 1
	}
}

// globalFlags strips -v and -config from anywhere on the command line.
func globalFlags(argv []string) ([]string, bool, string) {
	var rest []string
	verbose := false
	configPath := ""
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-v", "--verbose":
			verbose = true
		case "-config", "--config":
			if i+1 < len(argv) {
				configPath = argv[i+1]
				i++
			}
		default:
			rest = append(rest, argv[i])
		}
	}
	return rest, verbose, configPath
}

func wantsHelp(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return true
		}
	}
	return false
}

func (a *app) fail(format string, args ...any) int {
	fmt.Fprintf(a.stderr, format+"\n", args...)
	return 1
}

func (a *app) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or to stdout when path is empty.
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "Written: %s\n", path)
	return nil
}

func (a *app) loadSpec(path string) (*arrowgram.Spec, error) {
	data, err := a.readInput(path)
	if err != nil {
		return nil, err
	}
	return arrowgram.ParseJSON(data)
}

func (a *app) cmdRender(args []string) int {
	if len(args) < 1 || wantsHelp(args) {
		return a.fail("Usage: arrowgram render <spec.json> [-o output.svg|output.png] [--width N] [--height N] [--scale K]")
	}

	input := args[0]
	var output string
	png := a.config.PNG

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "--width", "--height", "--scale":
			if i+1 >= len(args) {
				return a.fail("Missing value for %s", args[i])
			}
			v, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				return a.fail("Bad value for %s: %v", args[i], err)
			}
			switch args[i] {
			case "--width":
				png.Width = int(v)
			case "--height":
				png.Height = int(v)
			case "--scale":
				png.Scale = v
			}
			i++
		}
	}

	data, err := a.readInput(input)
	if err != nil {
		return a.fail("Error loading %s: %v", input, err)
	}
	d := layout.Render(data, a.config.Layout)

	var out bytes.Buffer
	switch strings.ToLower(filepath.Ext(output)) {
	case ".png":
		err = render.RenderPNG(d, &out, png)
	case "", ".svg":
		err = render.WriteSVG(&out, d, a.config.SVG)
	default:
		return a.fail("Unknown output format: %s", filepath.Ext(output))
	}
	if err != nil {
		return a.fail("Error rendering %s: %v", input, err)
	}
	if err := a.writeOutput(output, out.Bytes()); err != nil {
		return a.fail("Error writing %s: %v", output, err)
	}

	if d.Error != "" {
		return a.fail("Error: %s", d.Error)
	}
	return 0
}

func (a *app) cmdLayout(args []string) int {
	if len(args) < 1 || wantsHelp(args) {
		return a.fail("Usage: arrowgram layout <spec.json> [--pretty] [--query jq] [-o output.json]")
	}

	input := args[0]
	var output, expr string
	pretty := false
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "-q", "--query":
			if i+1 < len(args) {
				expr = args[i+1]
				i++
			}
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		}
	}

	data, err := a.readInput(input)
	if err != nil {
		return a.fail("Error loading %s: %v", input, err)
	}
	d := layout.Render(data, a.config.Layout)

	var out []byte
	if expr != "" {
		out, err = queryLayout(d, expr, pretty)
		if err != nil {
			return a.fail("Error querying layout: %v", err)
		}
	} else {
		out, err = d.JSON(pretty)
		if err != nil {
			return a.fail("Error encoding layout: %v", err)
		}
	}
	if err := a.writeOutput(output, append(out, '\n')); err != nil {
		return a.fail("Error writing %s: %v", output, err)
	}
	if d.Error != "" {
		return 1
	}
	return 0
}

// queryLayout runs a jq filter over the render model and returns each
// result as one JSON document per line.
func queryLayout(d *layout.Diagram, expr string, pretty bool) ([]byte, error) {
	results, err := query.Run(context.Background(), expr, d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for i, r := range results {
		var line []byte
		if pretty {
			line, err = json.MarshalIndent(r, "", "  ")
		} else {
			line, err = json.Marshal(r)
		}
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}

func (a *app) cmdValidate(args []string) int {
	if len(args) < 1 || wantsHelp(args) {
		return a.fail("Usage: arrowgram validate <spec.json>")
	}

	input := args[0]
	s, err := a.loadSpec(input)
	if err == nil {
		_, err = layout.Resolve(s, a.config.Layout)
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "Validation failed: %v\n", err)
		var ae *arrowgram.Error
		if errors.As(err, &ae) {
			for _, v := range ae.Violations {
				fmt.Fprintf(a.stderr, "  %s\n", v)
			}
		}
		return 1
	}

	fmt.Fprintf(a.stdout, "%s: valid specification with %d nodes, %d arrows\n",
		input, len(s.Nodes), len(s.Arrows))
	return 0
}

func (a *app) cmdInfo(args []string) int {
	if len(args) < 1 || wantsHelp(args) {
		return a.fail("Usage: arrowgram info <spec.json>")
	}

	input := args[0]
	s, err := a.loadSpec(input)
	if err != nil {
		return a.fail("Error loading %s: %v", input, err)
	}

	named, loops, higher := 0, 0, 0
	for _, ar := range s.Arrows {
		if ar.Name != "" {
			named++
		}
		if ar.IsLoop() {
			loops++
		}
		if s.NodeIndex(ar.From) < 0 || s.NodeIndex(ar.To) < 0 {
			higher++
		}
	}

	fmt.Fprintf(a.stdout, "Nodes:        %d\n", len(s.Nodes))
	fmt.Fprintf(a.stdout, "Arrows:       %d\n", len(s.Arrows))
	fmt.Fprintf(a.stdout, "Named:        %d\n", named)
	fmt.Fprintf(a.stdout, "Self-loops:   %d\n", loops)
	fmt.Fprintf(a.stdout, "Higher-order: %d\n", higher)

	ord := s.Order()
	fmt.Fprintf(a.stdout, "Passes:       %d\n", ord.Passes)
	if !ord.Complete() {
		fmt.Fprintf(a.stdout, "Unresolved:   %s\n", strings.Join(ord.UnresolvedNames(s), ", "))
		return 0
	}

	d, err := layout.Build(s, a.config.Layout)
	if err != nil {
		return a.fail("Error: %v", err)
	}
	depth := 0
	for _, m := range d.Arrows {
		depth = max(depth, m.Depth)
	}
	vp := d.Viewport
	fmt.Fprintf(a.stdout, "Max depth:    %d\n", depth)
	fmt.Fprintf(a.stdout, "Viewport:     %.1f %.1f %.1f %.1f\n", vp.X, vp.Y, vp.W, vp.H)
	return 0
}

func (a *app) cmdQuiver(args []string) int {
	if len(args) < 2 || wantsHelp(args) {
		return a.fail("Usage: arrowgram quiver encode <spec.json> [--url] [--base URL]\n       arrowgram quiver decode <payload|url> [--pretty] [-o output.json]")
	}

	sub, input := args[0], args[1]
	opts := quiver.Options{Logger: a.log}
	var output string
	asURL, pretty := false, false
	for i := 2; i < len(args); i++ {
		switch args[i] {
		case "--url":
			asURL = true
		case "--pretty":
			pretty = true
		case "--base":
			if i+1 < len(args) {
				opts.BaseURL = args[i+1]
				asURL = true
				i++
			}
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		}
	}

	switch sub {
	case "encode":
		s, err := a.loadSpec(input)
		if err != nil {
			return a.fail("Error loading %s: %v", input, err)
		}
		var out string
		if asURL {
			out, err = quiver.URL(s, opts)
		} else {
			out, err = quiver.Encode(s, opts)
		}
		if err != nil {
			return a.fail("Error encoding: %v", err)
		}
		if err := a.writeOutput(output, []byte(out+"\n")); err != nil {
			return a.fail("Error writing %s: %v", output, err)
		}
		return 0

	case "decode":
		payload := input
		if input == "-" {
			data, err := io.ReadAll(a.stdin)
			if err != nil {
				return a.fail("Error reading input: %v", err)
			}
			payload = string(data)
		}
		s, err := quiver.Decode(payload, opts)
		if err != nil {
			return a.fail("Error decoding: %v", err)
		}
		data, err := arrowgram.ToJSON(s, pretty)
		if err != nil {
			return a.fail("Error encoding specification: %v", err)
		}
		if err := a.writeOutput(output, append(data, '\n')); err != nil {
			return a.fail("Error writing %s: %v", output, err)
		}
		return 0
	}
	return a.fail("Unknown quiver command: %s", sub)
}

func (a *app) cmdTikz(args []string) int {
	if len(args) < 1 || wantsHelp(args) {
		return a.fail("Usage: arrowgram tikz <spec.json> [-o output.tex] [--threshold px]")
	}

	input := args[0]
	var output string
	opts := tikz.Options{Logger: a.log, Layout: a.config.Layout}
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "--threshold":
			if i+1 < len(args) {
				v, err := strconv.ParseFloat(args[i+1], 64)
				if err != nil {
					return a.fail("Bad threshold: %v", err)
				}
				opts.Threshold = v
				i++
			}
		}
	}

	s, err := a.loadSpec(input)
	if err != nil {
		return a.fail("Error loading %s: %v", input, err)
	}
	if err := a.writeOutput(output, []byte(tikz.Export(s, opts))); err != nil {
		return a.fail("Error writing %s: %v", output, err)
	}
	return 0
}
