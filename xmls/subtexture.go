package xmls

import (
	"fmt"
	"io"
	"strconv"

	"badc0de.net/pkg/go-spritesheet/atlas"
)

// InvalidSubTextureError reports the first SubTexture element that lacks a
// required attribute or carries a value that is not a valid pixel count.
type InvalidSubTextureError struct {
	Index  int // position among the SubTexture elements
	Line   int
	Attr   string
	Value  string
	Reason string
}

func (e *InvalidSubTextureError) Error() string {
	return fmt.Sprintf("xmls: SubTexture %d (line %d): attribute %q %s", e.Index, e.Line, e.Attr, e.Reason)
}

// SubTexture validates the element and returns the region it describes.
//
// name must be present and non-empty. x, y, width and height must be present
// and parse as unsigned 32-bit decimal integers.
func (e Element) SubTexture() (atlas.SubTexture, error) {
	name, ok := e.Attribute("name")
	if !ok {
		return atlas.SubTexture{}, &InvalidSubTextureError{Line: e.Line, Attr: "name", Reason: "is missing"}
	}
	if name == "" {
		return atlas.SubTexture{}, &InvalidSubTextureError{Line: e.Line, Attr: "name", Reason: "is empty"}
	}

	var v [4]uint32
	for i, attr := range [...]string{"x", "y", "width", "height"} {
		s, ok := e.Attribute(attr)
		if !ok {
			return atlas.SubTexture{}, &InvalidSubTextureError{Line: e.Line, Attr: attr, Reason: "is missing"}
		}
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return atlas.SubTexture{}, &InvalidSubTextureError{Line: e.Line, Attr: attr, Value: s, Reason: fmt.Sprintf("is not a pixel count: %q", s)}
		}
		v[i] = uint32(n)
	}

	return atlas.SubTexture{
		Name:   name,
		X:      v[0],
		Y:      v[1],
		Width:  v[2],
		Height: v[3],
	}, nil
}

// SubTextures validates all elements. Either every element is valid and the
// regions are returned in the same order, or the first invalid element is
// reported and nothing is returned.
func SubTextures(elems []Element) ([]atlas.SubTexture, error) {
	subs := make([]atlas.SubTexture, 0, len(elems))
	for i, e := range elems {
		s, err := e.SubTexture()
		if err != nil {
			err.(*InvalidSubTextureError).Index = i
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// ReadSubTextures reads a descriptor from r and validates its regions.
func ReadSubTextures(r io.Reader) ([]atlas.SubTexture, error) {
	elems, err := ReadSubTextureElements(r)
	if err != nil {
		return nil, err
	}
	return SubTextures(elems)
}
