package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type AppOptions struct {
	Title     string
	ShareLink string
	Export    ExportSize
}

// App is the desktop window around one board. Create it, bind the
// controller, then call Run on the main goroutine.
type App struct {
	fyneApp  fyne.App
	window   fyne.Window
	board    *BoardWidget
	presence *widget.Label
	opt      AppOptions
}

func NewApp(opt AppOptions) *App {
	if opt.Title == "" {
		opt.Title = "Shared Whiteboard"
	}
	a := app.NewWithID("board.sharedboard")
	w := a.NewWindow(opt.Title)
	w.Resize(fyne.NewSize(1024, 768))
	return &App{
		fyneApp:  a,
		window:   w,
		board:    NewBoardWidget(),
		presence: widget.NewLabel(""),
		opt:      opt,
	}
}

func (a *App) Board() *BoardWidget { return a.board }

func (a *App) SetPresence(members []string) {
	text := strings.Join(members, ", ")
	fyne.Do(func() { a.presence.SetText(text) })
}

// Run builds the window for ctrl and blocks until it is closed. started runs
// once the event loop is up, which is when frames may start arriving.
func (a *App) Run(ctrl Controller, started func()) {
	a.board.Bind(ctrl)
	toolbar := NewToolbar(ctrl, a.window, a.opt.Export)

	link := widget.NewEntry()
	link.SetText(a.opt.ShareLink)
	link.Disable()
	footer := container.NewBorder(nil, nil, a.board.StatusBar(), a.presence, link)

	a.window.SetContent(container.NewBorder(toolbar, footer, nil, nil, a.board))
	a.fyneApp.Lifecycle().SetOnStarted(func() {
		if started != nil {
			started()
		}
		ctrl.Refresh()
	})
	a.window.ShowAndRun()
}
