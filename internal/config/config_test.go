package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	Globals

	Edit struct {
		Canvas `embed:""`
	} `cmd:"" default:"withargs"`
	Replay struct {
		Canvas `embed:""`
		Out    string `default:"pixel_art.png"`
	} `cmd:""`
}

func parse(t *testing.T, cfg string, args ...string) (*testCLI, error) {
	t.Helper()
	var opts []kong.Option
	if cfg != "" {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
		opts = append(opts, kong.Configuration(TOML, path))
	}
	var cli testCLI
	parser, err := kong.New(&cli, opts...)
	if err != nil {
		return nil, err
	}
	_, err = parser.Parse(args)
	return &cli, err
}

func TestDefaults(t *testing.T) {
	cli, err := parse(t, "")
	require.NoError(t, err)
	assert.Equal(t, Canvas{Cols: 180, Rows: 140, PixelSize: 10, MinPixelSize: 2, MaxPixelSize: 20}, cli.Edit.Canvas)
	assert.Equal(t, "info", cli.LogLevel)
}

func TestTOMLValues(t *testing.T) {
	cfg := `
log_level = "debug"
cols = 80
rows = 40

[replay]
pixel-size = 4
out = "line.png"
`
	cli, err := parse(t, cfg, "replay")
	require.NoError(t, err)
	assert.Equal(t, "debug", cli.LogLevel)
	assert.Equal(t, 80, cli.Replay.Cols)
	assert.Equal(t, 40, cli.Replay.Rows)
	assert.Equal(t, 4, cli.Replay.PixelSize)
	assert.Equal(t, "line.png", cli.Replay.Out)
}

func TestFlagsBeatTOML(t *testing.T) {
	cli, err := parse(t, "cols = 80\n", "edit", "--cols", "12")
	require.NoError(t, err)
	assert.Equal(t, 12, cli.Edit.Cols)
}

func TestBadTOML(t *testing.T) {
	_, err := parse(t, "cols = = 3")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	_, err := parse(t, "", "edit", "--cols", "0")
	assert.Error(t, err)
	_, err = parse(t, "", "edit", "--min-pixel-size", "8", "--max-pixel-size", "4")
	assert.Error(t, err)

	c := Canvas{Cols: 3, Rows: 2, PixelSize: 50, MinPixelSize: 2, MaxPixelSize: 20}
	require.NoError(t, c.Validate())
	g, v := c.New()
	assert.Equal(t, 3, g.Cols())
	assert.Equal(t, 20, v.PixelSize())
}
