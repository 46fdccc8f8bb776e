package state

import (
	"time"

	"github.com/google/uuid"

	"SharedBoard/internal/geom"
)

// NewClientID returns an identifier for one participant session.
func NewClientID() string {
	return uuid.NewString()
}

// Factory stamps new local actions with an id, author and creation time.
type Factory struct {
	Author string
	Now    func() time.Time
	NewID  func() string
}

func NewFactory(author string) *Factory {
	return &Factory{Author: author, Now: time.Now, NewID: uuid.NewString}
}

// New builds an action from a captured path. The path is copied.
func (f *Factory) New(tool Tool, color string, width float64, path []geom.Point) Action {
	a := Action{
		ID:          f.NewID(),
		Tool:        tool,
		Color:       color,
		StrokeWidth: width,
		Path:        path,
		Timestamp:   f.Now().UTC(),
		Author:      f.Author,
	}
	return a.clone()
}
