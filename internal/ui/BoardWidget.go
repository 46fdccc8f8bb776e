package ui

import (
	"context"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"SharedBoard/internal/geom"
	"SharedBoard/internal/render"
	"SharedBoard/internal/state"
)

// Controller is what the board and toolbar drive. *session.Session
// implements it.
type Controller interface {
	PointerDown(geom.Point)
	PointerMove(geom.Point)
	PointerUp(geom.Point)
	PointerLeave()

	SetTool(state.Tool)
	SetColor(string)
	SetSize(float64)
	Undo()
	Redo()
	ZoomIn()
	ZoomOut()
	ResetView()
	Refresh()

	Frame(ctx context.Context) (render.Frame, error)
}

// BoardWidget shows the latest frame and forwards pointer input. It keeps
// no drawing state of its own.
type BoardWidget struct {
	widget.BaseWidget

	ctrl Controller

	mu     sync.RWMutex
	frame  render.Frame
	last   geom.Point
	active bool

	statusBar *widget.Label
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget() *BoardWidget {
	b := &BoardWidget{
		frame:     render.Frame{Transform: geom.Identity()},
		statusBar: widget.NewLabel("Ready"),
	}
	b.ExtendBaseWidget(b)
	return b
}

// Bind connects the widget to its controller. Events before Bind are
// ignored.
func (b *BoardWidget) Bind(c Controller) { b.ctrl = c }

// SetFrame stores f and schedules a repaint. Safe from any goroutine.
func (b *BoardWidget) SetFrame(f render.Frame) {
	b.mu.Lock()
	b.frame = f
	b.mu.Unlock()
	fyne.Do(b.Refresh)
}

func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() { b.statusBar.SetText(text) })
}

func (b *BoardWidget) StatusBar() *widget.Label { return b.statusBar }

func toPoint(p fyne.Position) geom.Point {
	return geom.Pt(float64(p.X), float64(p.Y))
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if b.ctrl == nil || e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.active = true
	b.last = toPoint(e.Position)
	b.ctrl.PointerDown(b.last)
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if b.ctrl == nil || e.Button != desktop.MouseButtonPrimary || !b.active {
		return
	}
	b.active = false
	b.ctrl.PointerUp(toPoint(e.Position))
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.ctrl == nil || !b.active {
		return
	}
	b.last = toPoint(e.Position)
	b.ctrl.PointerMove(b.last)
}

// DragEnd can arrive without a MouseUp when the button is released outside
// the widget.
func (b *BoardWidget) DragEnd() {
	if b.ctrl == nil || !b.active {
		return
	}
	b.active = false
	b.ctrl.PointerUp(b.last)
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	if b.ctrl == nil || !b.active {
		return
	}
	b.last = toPoint(e.Position)
	b.ctrl.PointerMove(b.last)
}

func (b *BoardWidget) MouseOut() {
	if b.ctrl == nil || !b.active {
		return
	}
	b.active = false
	b.ctrl.PointerLeave()
}

// Scrolled zooms with the wheel.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	if b.ctrl == nil {
		return
	}
	switch {
	case e.Scrolled.DY > 0:
		b.ctrl.ZoomIn()
	case e.Scrolled.DY < 0:
		b.ctrl.ZoomOut()
	}
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardWidgetRenderer{board: b}
}

type boardWidgetRenderer struct {
	board   *BoardWidget
	size    fyne.Size
	objects []fyne.CanvasObject
}

func (r *boardWidgetRenderer) rebuild() {
	r.board.mu.RLock()
	f := r.board.frame
	r.board.mu.RUnlock()

	s := newCanvasSurface(r.size)
	if err := f.Draw(s); err != nil {
		slog.Warn("frame not drawn", "component", "ui", "err", err)
		return
	}
	r.objects = s.objects
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *boardWidgetRenderer) Refresh() {
	r.rebuild()
	for _, o := range r.objects {
		o.Refresh()
	}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.size = size
	r.rebuild()
}

func (r *boardWidgetRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }
func (r *boardWidgetRenderer) Destroy()           {}
