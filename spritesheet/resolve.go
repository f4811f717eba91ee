package spritesheet

import (
	"image"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-spritesheet/assets"
	"badc0de.net/pkg/go-spritesheet/atlas"
)

// Resolve looks up a sheet loaded into reg and its layout.
func Resolve(reg *assets.Registry, h assets.Handle) (*Asset, *atlas.Layout, error) {
	v, ok := reg.Get(h)
	if !ok {
		return nil, nil, errors.Wrapf(assets.ErrUnknownHandle, "sheet %v", h)
	}
	a, ok := v.(*Asset)
	if !ok {
		return nil, nil, errors.Errorf("spritesheet: %v holds a %T, not a sprite sheet", h, v)
	}
	lv, ok := reg.Get(a.Layout)
	if !ok {
		return nil, nil, errors.Wrapf(assets.ErrUnknownHandle, "layout %v", a.Layout)
	}
	return a, lv.(*atlas.Layout), nil
}

// Region cuts rectangle i of the layout out of the decoded sheet image. The
// returned image shares pixels with sheet.
func Region(sheet image.Image, layout *atlas.Layout, i int) (image.Image, error) {
	r, ok := layout.Rect(i)
	if !ok {
		return nil, errors.Errorf("spritesheet: region %d out of range [0,%d)", i, layout.Len())
	}
	si, ok := sheet.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, errors.Errorf("spritesheet: %T does not support SubImage", sheet)
	}
	return si.SubImage(r.Add(sheet.Bounds().Min)), nil
}
