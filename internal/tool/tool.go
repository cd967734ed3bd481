package tool

import (
	"fmt"
	"strings"
)

// Tool is the active toolbar tool. Only Point, Erase, Line and Move act on
// the canvas; the rest can be selected but do nothing yet.
type Tool int

const (
	Point Tool = iota
	Erase
	Line
	Move
	Add
	Colorpick
	Bucket
	Text
	Download
	Open
)

var names = [...]string{"Point", "Erase", "Line", "Move", "Add", "Colorpick", "Bucket", "Text", "Download", "Open"}

func All() []Tool {
	out := make([]Tool, len(names))
	for i := range names {
		out[i] = Tool(i)
	}
	return out
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(names) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return names[t]
}

// Active reports whether the tool has canvas behaviour.
func (t Tool) Active() bool {
	switch t {
	case Point, Erase, Line, Move:
		return true
	}
	return false
}

// Parse looks a tool up by name, ignoring case.
func Parse(name string) (Tool, error) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// Button identifies the pointer button behind an event.
type Button int

const (
	Primary Button = iota
	Secondary
	// Middle is the pan trigger; it pans whatever tool is active.
	Middle
)

func (b Button) String() string {
	switch b {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Middle:
		return "middle"
	}
	return fmt.Sprintf("Button(%d)", int(b))
}

func ParseButton(name string) (Button, error) {
	switch strings.ToLower(name) {
	case "", "primary", "left":
		return Primary, nil
	case "secondary", "right":
		return Secondary, nil
	case "middle":
		return Middle, nil
	}
	return 0, fmt.Errorf("unknown button %q", name)
}
