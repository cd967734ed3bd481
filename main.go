package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"CircuiPlanner/internal/config"
	"CircuiPlanner/internal/export"
	"CircuiPlanner/internal/log"
	"CircuiPlanner/internal/net"
	"CircuiPlanner/internal/replay"
	"CircuiPlanner/internal/tool"
	"CircuiPlanner/internal/ui"
)

type CLI struct {
	config.Globals

	Edit     EditCmd     `cmd:"" default:"withargs" help:"Open the editor (default)."`
	Replay   ReplayCmd   `cmd:"" help:"Run a pointer script headlessly and save the PNG."`
	Discover DiscoverCmd `cmd:"" help:"List export servers on the local network."`
}

type EditCmd struct {
	config.Canvas `embed:""`

	Out   string `help:"PNG file written by the Save action." default:"pixel_art.png" type:"path"`
	Serve string `help:"Share the drawing read-only over HTTP on this address, e.g. :8989." placeholder:"ADDR"`
}

func (c *EditCmd) Run(g *config.Globals) error {
	grid, view := c.New()
	ctrl := tool.NewController(grid, view)

	var hub *net.Hub
	if c.Serve != "" {
		hub = net.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := net.Serve(ctx, hub, c.Serve); err != nil {
				log.With("net").Errorf("[NET] export server stopped: %v", err)
			}
		}()
	}

	log.Info("Starting editor with a %dx%d grid", grid.Cols(), grid.Rows())
	ui.RunApp(ctrl, hub, c.Out)
	return nil
}

type ReplayCmd struct {
	Script string `arg:"" help:"JSON-lines pointer script, - for stdin."`

	config.Canvas `embed:""`

	Out string `help:"PNG file to write." default:"pixel_art.png" type:"path"`
}

func (c *ReplayCmd) Run(g *config.Globals) error {
	var in io.Reader = os.Stdin
	if c.Script != "-" {
		f, err := os.Open(c.Script)
		if err != nil {
			return fmt.Errorf("could not open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	grid, view := c.New()
	ctrl := tool.NewController(grid, view)
	if _, err := replay.Run(ctrl, in); err != nil {
		return fmt.Errorf("replay %s: %w", c.Script, err)
	}
	return export.SaveFile(c.Out, grid, view.PixelSize())
}

type DiscoverCmd struct {
	Timeout time.Duration `help:"How long to listen for answers." default:"2s"`
}

func (c *DiscoverCmd) Run(g *config.Globals) error {
	return discover(os.Stdout, c.Timeout)
}

func discover(w io.Writer, timeout time.Duration) error {
	found := 0
	err := net.Browse(timeout, func(p net.Peer) {
		found++
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.URL(), p.Session)
	})
	if err != nil {
		return err
	}
	if found == 0 {
		log.Info("[NET] no export servers found")
	}
	return nil
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("circuiplanner"),
		kong.Description("Pixel-art circuit sketching on a cell grid."),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, kong.Configuration(config.TOML, config.Paths...))
	if err != nil {
		log.Fatal("Failed to build command line: %v", err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := log.SetLevel(cli.LogLevel); err != nil {
		parser.FatalIfErrorf(err)
	}
	kctx.FatalIfErrorf(kctx.Run(&cli.Globals))
}
