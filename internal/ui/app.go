package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"CircuiPlanner/internal/net"
	"CircuiPlanner/internal/tool"
)

// Layout builds the editor content for w: toolbar on top, status line at
// the bottom and the canvas filling the rest.
func Layout(w fyne.Window, ctrl *tool.Controller, hub *net.Hub, out string) (*Canvas, *Toolbar) {
	board := NewCanvas(ctrl, hub)
	status := widget.NewLabel(board.Status())
	board.OnChange = func() {
		status.SetText(board.Status())
	}
	toolbar := NewToolbar(w, board, status, out)

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, board))
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		if e.Name == fyne.KeyEscape {
			board.Cancel()
		}
	})
	return board, toolbar
}

// RunApp opens the editor window and blocks until it is closed.
func RunApp(ctrl *tool.Controller, hub *net.Hub, out string) {
	myApp := app.New()
	myWindow := myApp.NewWindow("CircuiPlanner")
	myWindow.Resize(fyne.NewSize(1024, 768))

	board, _ := Layout(myWindow, ctrl, hub, out)

	// Focus loss drops an in-progress line.
	myApp.Lifecycle().SetOnExitedForeground(board.Cancel)

	myWindow.ShowAndRun()
}
