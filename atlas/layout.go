package atlas

import (
	"image"

	"github.com/pkg/errors"
)

// Layout is an ordered list of rectangles over a sheet of Size pixels.
type Layout struct {
	Size     image.Point
	Textures []image.Rectangle
}

// NewLayout returns an empty layout for a sheet of the passed size.
func NewLayout(size image.Point) *Layout {
	return &Layout{Size: size}
}

// Add appends r and returns its index.
func (l *Layout) Add(r image.Rectangle) int {
	l.Textures = append(l.Textures, r)
	return len(l.Textures) - 1
}

// Len returns the number of rectangles in the layout.
func (l *Layout) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Textures)
}

// Rect returns the rectangle at index i.
func (l *Layout) Rect(i int) (image.Rectangle, bool) {
	if i < 0 || i >= l.Len() {
		return image.Rectangle{}, false
	}
	return l.Textures[i], true
}

// Contains reports whether rectangle i lies within the sheet bounds.
//
// Descriptors are trusted, so Build never calls this; it exists for tools that
// want to warn about suspicious sheets.
func (l *Layout) Contains(i int) bool {
	r, ok := l.Rect(i)
	if !ok {
		return false
	}
	return r.In(image.Rectangle{Max: l.Size})
}

// Build constructs a layout for a sheet of the passed size, adding one
// rectangle per sub-texture in the order given.
func Build(size image.Point, subs []SubTexture) (*Layout, error) {
	l := &Layout{
		Size:     size,
		Textures: make([]image.Rectangle, 0, len(subs)),
	}
	for i, s := range subs {
		r, err := s.Rect()
		if err != nil {
			return nil, errors.Wrapf(err, "sub-texture %d", i)
		}
		l.Add(r)
	}
	return l, nil
}
