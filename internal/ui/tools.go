package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"CircuiPlanner/internal/state"
	"CircuiPlanner/internal/tool"
)

var palette = []state.Color{
	state.Black,
	{R: 255},
	{G: 255},
	{B: 255},
	{R: 255, G: 255},
	{R: 255, G: 255, B: 255},
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
	rect     *canvas.Rectangle
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	s.rect = canvas.NewRectangle(s.Color)
	s.rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(s.rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// show changes the colour drawn, not the one reported on tap.
func (s *colorSwatch) show(c color.Color) {
	if s.rect == nil {
		return
	}
	s.rect.FillColor = c
	s.rect.Refresh()
}

func toolIcon(t tool.Tool) fyne.Resource {
	switch t {
	case tool.Point:
		return theme.DocumentCreateIcon()
	case tool.Erase:
		return theme.DeleteIcon()
	case tool.Line:
		return theme.ContentRemoveIcon()
	case tool.Move:
		return theme.ZoomFitIcon()
	case tool.Add:
		return theme.ContentAddIcon()
	case tool.Colorpick:
		return theme.ColorPaletteIcon()
	case tool.Bucket:
		return theme.ColorChromaticIcon()
	case tool.Text:
		return theme.DocumentIcon()
	case tool.Download:
		return theme.DownloadIcon()
	case tool.Open:
		return theme.FolderOpenIcon()
	}
	return theme.QuestionIcon()
}

// Toolbar is the strip above the canvas: one button per tool, the colour
// palette and the Save action.
type Toolbar struct {
	widget.BaseWidget

	board   *Canvas
	window  fyne.Window
	status  *widget.Label
	out     string
	buttons map[tool.Tool]*widget.Button
	current *colorSwatch
	hex     *widget.Entry
	content fyne.CanvasObject
}

// NewToolbar builds the toolbar. Save writes to out; results and errors
// are reported through status.
func NewToolbar(w fyne.Window, board *Canvas, status *widget.Label, out string) *Toolbar {
	tb := &Toolbar{
		board:   board,
		window:  w,
		status:  status,
		out:     out,
		buttons: make(map[tool.Tool]*widget.Button),
	}

	tools := container.NewHBox()
	for _, t := range tool.All() {
		t := t
		btn := widget.NewButtonWithIcon("", toolIcon(t), func() { tb.selectTool(t) })
		if !t.Active() {
			btn.SetText(t.String())
		}
		tb.buttons[t] = btn
		tools.Add(btn)
	}

	onColorTapped := func(c color.Color) {
		tb.setColor(state.FromColor(c))
	}
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}
	tb.current = newColorSwatch(board.Controller().Color(), func(color.Color) { tb.pickColor() })

	tb.hex = widget.NewEntry()
	tb.hex.SetText(board.Controller().Color().Hex())
	tb.hex.OnSubmitted = func(s string) {
		if err := board.SetColorHex(s); err != nil {
			tb.report(fmt.Sprintf("Invalid colour %q, expected #RRGGBB", s))
			tb.hex.SetText(board.Controller().Color().Hex())
			return
		}
		tb.setColor(board.Controller().Color())
	}
	hexBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(90, 35)), tb.hex)

	save := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), tb.save),
	)

	tb.content = container.NewHBox(
		widget.NewLabel("Tool:"),
		tools,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		tb.current,
		hexBox,
		widget.NewSeparator(),
		save,
		layout.NewSpacer(),
	)
	tb.ExtendBaseWidget(tb)
	tb.highlight()
	return tb
}

func (tb *Toolbar) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(tb.content)
}

func (tb *Toolbar) selectTool(t tool.Tool) {
	tb.board.SetTool(t)
	tb.highlight()
}

func (tb *Toolbar) highlight() {
	active := tb.board.Controller().Tool()
	for t, btn := range tb.buttons {
		if t == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

func (tb *Toolbar) setColor(c state.Color) {
	tb.board.SetColor(c)
	tb.current.show(c)
	tb.hex.SetText(c.Hex())
}

func (tb *Toolbar) pickColor() {
	picker := dialog.NewColorPicker("Color", "Choose the drawing colour", func(c color.Color) {
		tb.setColor(state.FromColor(c))
	}, tb.window)
	picker.Advanced = true
	picker.SetColor(tb.board.Controller().Color())
	picker.Show()
}

func (tb *Toolbar) save() {
	if err := tb.board.Save(tb.out); err != nil {
		tb.report("Error saving: " + err.Error())
		return
	}
	tb.report("Saved " + tb.out)
}

func (tb *Toolbar) report(text string) {
	if tb.status != nil {
		tb.status.SetText(text)
	}
}
