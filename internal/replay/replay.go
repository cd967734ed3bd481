// Package replay drives a tool.Controller from a recorded pointer script,
// one JSON object per line:
//
//	{"op":"tool","tool":"line"}
//	{"op":"color","color":"#ff0000"}
//	{"op":"press","button":"primary","x":5,"y":5}
//	{"op":"hover","x":5,"y":45}
//	{"op":"scroll","delta":1}
//
// Blank lines and lines starting with # are skipped.
package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"CircuiPlanner/internal/log"
	"CircuiPlanner/internal/tool"
)

var ErrUnknownOp = errors.New("unknown op")

// Event is one scripted input.
type Event struct {
	Op     string  `json:"op"`
	Tool   string  `json:"tool,omitempty"`
	Color  string  `json:"color,omitempty"`
	Button string  `json:"button,omitempty"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Delta  float64 `json:"delta,omitempty"`
}

func (e Event) point() image.Point { return image.Pt(e.X, e.Y) }

// Apply feeds e to c. A malformed colour is logged and skipped, the
// active colour stays as it was.
func (e Event) Apply(c *tool.Controller) error {
	switch e.Op {
	case "tool":
		t, err := tool.Parse(e.Tool)
		if err != nil {
			return err
		}
		c.SetTool(t)
	case "color", "colour":
		if err := c.SetColorHex(e.Color); err != nil {
			log.With("replay").Warnf("[REPLAY] %v, keeping %s", err, c.Color())
		}
	case "press", "drag", "release":
		b, err := tool.ParseButton(e.Button)
		if err != nil {
			return err
		}
		switch e.Op {
		case "press":
			c.Press(b, e.point())
		case "drag":
			c.Drag(b, e.point())
		default:
			c.Release(b, e.point())
		}
	case "hover", "move":
		c.Hover(e.point())
	case "scroll":
		c.Scroll(e.Delta)
	case "cancel":
		c.Cancel()
	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, e.Op)
	}
	return nil
}

// Parse reads a whole script. Errors name the offending line.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var e Event
		dec := json.NewDecoder(strings.NewReader(line))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if e.Op == "" {
			return nil, fmt.Errorf("line %d: missing op", n)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("could not read script: %w", err)
	}
	return events, nil
}

// Run parses the script from r and applies every event to c in order. It
// stops at the first event that cannot be applied.
func Run(c *tool.Controller, r io.Reader) (int, error) {
	events, err := Parse(r)
	if err != nil {
		return 0, err
	}
	for i, e := range events {
		if err := e.Apply(c); err != nil {
			return i, fmt.Errorf("event %d (%s): %w", i+1, e.Op, err)
		}
	}
	log.With("replay").Infof("[REPLAY] applied %d events, grid revision %d", len(events), c.Grid().Revision())
	return len(events), nil
}
