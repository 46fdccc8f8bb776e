package ui

import (
	"context"
	"image/color"
	"io"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SharedBoard/internal/export"
	"SharedBoard/internal/input"
	"SharedBoard/internal/render"
	"SharedBoard/internal/state"
)

// palette holds the swatches offered in the toolbar.
var palette = []string{"#000000", "#ff0000", "#00aa00", "#0000ff", "#ffcc00", "#ffffff"}

type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ParseColor(s.Hex))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// ExportSize is the page size used for PDF and PNG exports.
type ExportSize struct {
	Width, Height int
	DPR           float64
}

// toolActions builds one toolbar entry per tool, in the order the toolbar
// shows them.
func toolActions(ctrl Controller) []widget.ToolbarItem {
	tools := []struct {
		tool state.Tool
		icon fyne.Resource
	}{
		{state.ToolPencil, theme.DocumentCreateIcon()},
		{state.ToolEraser, theme.DeleteIcon()},
		{state.ToolRectangle, theme.CheckButtonIcon()},
		{state.ToolEllipse, theme.RadioButtonIcon()},
		{state.ToolPan, theme.ViewFullScreenIcon()},
	}
	items := make([]widget.ToolbarItem, 0, len(tools))
	for _, t := range tools {
		tool := t.tool
		items = append(items, widget.NewToolbarAction(t.icon, func() { ctrl.SetTool(tool) }))
	}
	return items
}

func NewToolbar(ctrl Controller, win fyne.Window, size ExportSize) fyne.CanvasObject {
	items := toolActions(ctrl)
	items = append(items,
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), ctrl.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), ctrl.Redo),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), ctrl.ZoomIn),
		widget.NewToolbarAction(theme.ZoomOutIcon(), ctrl.ZoomOut),
		widget.NewToolbarAction(theme.ZoomFitIcon(), ctrl.ResetView),
	)
	tb := widget.NewToolbar(items...)

	swatches := make([]fyne.CanvasObject, 0, len(palette))
	for _, hex := range palette {
		swatches = append(swatches, newColorSwatch(hex, ctrl.SetColor))
	}
	colorBox := container.NewHBox(swatches...)

	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(input.DefaultSize)
	strokeSlider.OnChanged = ctrl.SetSize
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	exportMenu := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), nil)
	exportMenu.OnTapped = func() {
		menu := fyne.NewMenu("",
			fyne.NewMenuItem("PDF", func() { saveAs(win, ctrl, "board.pdf", pdfWriter(size)) }),
			fyne.NewMenuItem("PNG", func() { saveAs(win, ctrl, "board.png", pngWriter(size)) }),
		)
		widget.ShowPopUpMenuAtRelativePosition(menu, win.Canvas(), fyne.NewPos(0, exportMenu.Size().Height), exportMenu)
	}

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
		exportMenu,
	)
}

type frameWriter func(w io.Writer, f render.Frame) error

func pdfWriter(size ExportSize) frameWriter {
	return func(w io.Writer, f render.Frame) error {
		return export.WritePDF(w, f, float64(size.Width), float64(size.Height))
	}
}

func pngWriter(size ExportSize) frameWriter {
	return func(w io.Writer, f render.Frame) error {
		return export.WritePNG(w, f, size.Width, size.Height, size.DPR)
	}
}

// saveAs asks for a destination and writes the current frame to it. The
// in-progress overlay is left out.
func saveAs(win fyne.Window, ctrl Controller, name string, write frameWriter) {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		f, err := ctrl.Frame(ctx)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		f.Overlay = nil
		if err := write(uc, f); err != nil {
			dialog.ShowError(err, win)
		}
	}, win)
	d.SetFileName(name)
	d.Show()
}
