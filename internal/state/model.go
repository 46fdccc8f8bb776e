package state

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"SharedBoard/internal/geom"
)

type Tool string

const (
	ToolPencil    Tool = "pencil"
	ToolEraser    Tool = "eraser"
	ToolRectangle Tool = "rectangle"
	ToolEllipse   Tool = "ellipse"
	// ToolPan only drives the view. It never produces an Action.
	ToolPan Tool = "pan"
)

// Drawable reports whether strokes made with t become actions.
func (t Tool) Drawable() bool {
	switch t {
	case ToolPencil, ToolEraser, ToolRectangle, ToolEllipse:
		return true
	}
	return false
}

// Background is the canvas colour. Eraser strokes are painted with it.
const Background = "#ffffff"

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrDuplicateID   = errors.New("duplicate action id")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Action is one committed drawing operation. It is immutable once created:
// the log only moves actions between its sequences.
type Action struct {
	ID          string       `json:"id"`
	Tool        Tool         `json:"tool"`
	Color       string       `json:"color"`
	StrokeWidth float64      `json:"strokeWidth"`
	Path        []geom.Point `json:"path"`
	Timestamp   time.Time    `json:"timestamp"`
	Author      string       `json:"author,omitempty"`
}

// Validate checks the fields every replica relies on.
func (a Action) Validate() error {
	switch {
	case a.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidAction)
	case !a.Tool.Drawable():
		return fmt.Errorf("%w: tool %q", ErrInvalidAction, a.Tool)
	case len(a.Path) == 0:
		return fmt.Errorf("%w: empty path", ErrInvalidAction)
	case !(a.StrokeWidth > 0):
		return fmt.Errorf("%w: stroke width %v", ErrInvalidAction, a.StrokeWidth)
	case a.Tool != ToolEraser && !hexColor.MatchString(a.Color):
		return fmt.Errorf("%w: color %q", ErrInvalidAction, a.Color)
	}
	return nil
}

// First and Last return the endpoints that shapes are drawn from.
func (a Action) First() geom.Point { return a.Path[0] }
func (a Action) Last() geom.Point  { return a.Path[len(a.Path)-1] }

// StrokeColor is the colour replay paints with.
func (a Action) StrokeColor() string {
	if a.Tool == ToolEraser {
		return Background
	}
	return a.Color
}

func (a Action) clone() Action {
	a.Path = append([]geom.Point(nil), a.Path...)
	return a
}
