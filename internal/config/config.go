// Package config holds the command-line surface shared by every command and
// the TOML loader that lets a file supply the same flags.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"

	"CircuiPlanner/internal/state"
)

// Paths searched for a configuration file when --config is not given.
var Paths = []string{"~/.config/circuiplanner/config.toml", "circuiplanner.toml"}

// Globals are flags accepted before any command.
type Globals struct {
	Config   kong.ConfigFlag `help:"TOML file with flag values (keys are flag names)." type:"path"`
	LogLevel string          `help:"Log level." default:"info" enum:"debug,info,warn,error"`
}

// Canvas sizes the grid and bounds its zoom.
type Canvas struct {
	Cols         int `help:"Grid columns." default:"180"`
	Rows         int `help:"Grid rows." default:"140"`
	PixelSize    int `help:"Initial screen pixels per cell." default:"10"`
	MinPixelSize int `help:"Zoom-out limit in pixels per cell." default:"2"`
	MaxPixelSize int `help:"Zoom-in limit in pixels per cell." default:"20"`
}

func (c *Canvas) Validate() error {
	switch {
	case c.Cols < 1 || c.Rows < 1:
		return fmt.Errorf("invalid grid size %dx%d", c.Cols, c.Rows)
	case c.MinPixelSize < 1:
		return fmt.Errorf("invalid min pixel size: %d", c.MinPixelSize)
	case c.MaxPixelSize < c.MinPixelSize:
		return fmt.Errorf("max pixel size %d below min %d", c.MaxPixelSize, c.MinPixelSize)
	}
	return nil
}

// New builds the grid and view the flags describe.
func (c *Canvas) New() (*state.Grid, *state.View) {
	return state.NewGrid(c.Cols, c.Rows), state.NewView(c.PixelSize, c.MinPixelSize, c.MaxPixelSize)
}

// TOML is a kong.ConfigurationLoader. Keys match long flag names, with
// either dashes or underscores; a table named after the command scopes
// keys to it, e.g. [replay] out = "line.png".
func TOML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}
	return kong.ResolverFunc(func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if cmd := commandName(kctx); cmd != "" {
			if table, ok := values[cmd].(map[string]any); ok {
				if v, ok := lookup(table, flag.Name); ok {
					return v, nil
				}
			}
		}
		if v, ok := lookup(values, flag.Name); ok {
			return v, nil
		}
		return nil, nil
	}), nil
}

func commandName(kctx *kong.Context) string {
	if kctx == nil {
		return ""
	}
	if sel := kctx.Selected(); sel != nil {
		return sel.Name
	}
	return ""
}

func lookup(values map[string]any, name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		v, ok := values[key]
		if !ok {
			continue
		}
		switch v.(type) {
		case map[string]any:
			continue
		case []any:
			return v, true
		default:
			return fmt.Sprint(v), true
		}
	}
	return nil, false
}
