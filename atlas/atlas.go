// Package atlas holds the geometry of a sprite sheet: the named sub-textures
// found in a descriptor, and the ordered layout of rectangles that runtime code
// indexes into.
//
// A Layout never repacks its input. Rectangle i always describes the i-th
// sub-texture that was added, so an index obtained from a descriptor remains
// valid for the lifetime of the layout.
package atlas

import (
	"fmt"
	"image"
	"math"

	"github.com/pkg/errors"
)

// ErrOverflow is returned when a sub-texture's far corner cannot be
// represented.
var ErrOverflow = errors.New("atlas: rectangle corner overflows")

// SubTexture is one named region of the sheet, as written in the descriptor.
type SubTexture struct {
	Name   string
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

// Rect returns the region as a rectangle spanning (X, Y) to (X+Width, Y+Height).
func (s SubTexture) Rect() (image.Rectangle, error) {
	maxX, ok := addCorner(s.X, s.Width)
	if !ok {
		return image.Rectangle{}, errors.Wrapf(ErrOverflow, "%q: x=%d width=%d", s.Name, s.X, s.Width)
	}
	maxY, ok := addCorner(s.Y, s.Height)
	if !ok {
		return image.Rectangle{}, errors.Wrapf(ErrOverflow, "%q: y=%d height=%d", s.Name, s.Y, s.Height)
	}
	// image.Rect would canonicalize; the corners are already ordered.
	return image.Rectangle{
		Min: image.Point{X: int(s.X), Y: int(s.Y)},
		Max: image.Point{X: maxX, Y: maxY},
	}, nil
}

func (s SubTexture) String() string {
	return fmt.Sprintf("%s@%d,%d+%dx%d", s.Name, s.X, s.Y, s.Width, s.Height)
}

// addCorner adds in uint64 and checks the result against both uint32 and the
// platform int, so that 32-bit builds fail the same way instead of wrapping.
func addCorner(origin, extent uint32) (int, bool) {
	sum := uint64(origin) + uint64(extent)
	if sum > math.MaxUint32 || sum > uint64(math.MaxInt) {
		return 0, false
	}
	return int(sum), true
}
