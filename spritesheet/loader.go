package spritesheet

import (
	"bytes"
	"context"
	"image"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-spritesheet/assets"
	"badc0de.net/pkg/go-spritesheet/atlas"
	"badc0de.net/pkg/go-spritesheet/paths"
	"badc0de.net/pkg/go-spritesheet/xmls"
)

// LayoutLabel is the label under which the atlas layout of a sheet is
// registered.
const LayoutLabel = "texture_atlas_layout"

// DefaultImageExt is the extension of the companion image.
const DefaultImageExt = ".png"

// LoadContext is what the loader needs from the host asset system.
// *assets.LoadContext implements it.
type LoadContext interface {
	// AssetPath is the path of the descriptor being loaded.
	AssetPath() string
	// LoadDirect loads the image at path and returns its configuration
	// before returning.
	LoadDirect(ctx context.Context, path string) (image.Config, error)
	// Load returns a long-lived handle to the image at path; it may be
	// decoded later.
	Load(path string) assets.Handle
	// AddLabeled registers a sub-asset of the asset being loaded.
	AddLabeled(label string, asset interface{}) assets.Handle
}

// Asset is a loaded sprite sheet.
type Asset struct {
	// Textures lists the regions in document order. Textures[i] is
	// rectangle i of the layout.
	Textures []atlas.SubTexture
	// Sheet refers to the companion image.
	Sheet assets.Handle
	// Layout refers to the *atlas.Layout registered under LayoutLabel.
	Layout assets.Handle
}

// Len returns the number of regions.
func (a *Asset) Len() int { return len(a.Textures) }

// Index returns the index of the first region called name.
func (a *Asset) Index(name string) (int, bool) {
	for i, t := range a.Textures {
		if t.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Loader loads descriptors. The zero value is ready to use.
type Loader struct {
	// ImageExt replaces the descriptor's extension to find the image.
	// DefaultImageExt is used when empty.
	ImageExt string
	// Observer, if set, is called as the load moves through its states.
	Observer Observer
}

// Extensions implements assets.Loader.
func (l *Loader) Extensions() []string { return []string{"xml"} }

// LoadAsset implements assets.Loader.
func (l *Loader) LoadAsset(ctx context.Context, r io.Reader, lc *assets.LoadContext) (interface{}, error) {
	a, err := l.Load(ctx, r, lc)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Register adds a Loader for descriptors to reg and returns it.
func Register(reg *assets.Registry) *Loader {
	l := &Loader{}
	reg.Register(l)
	return l
}

func (l *Loader) imageExt() string {
	if l.ImageExt == "" {
		return DefaultImageExt
	}
	return l.ImageExt
}

func (l *Loader) enter(path string, s State) {
	if l.Observer != nil {
		l.Observer(path, s, nil)
	}
}

func (l *Loader) fail(kind ErrorKind, path string, err error) error {
	e := &Error{Kind: kind, Path: path, Err: err}
	if l.Observer != nil {
		l.Observer(path, Failed, e)
	}
	return e
}

// Load reads the descriptor from r and assembles the Asset. The companion
// image's dimensions are fetched before the descriptor is read; if that fails
// r is left untouched.
//
// The layout is registered through lc only after everything else succeeded.
func (l *Loader) Load(ctx context.Context, r io.Reader, lc LoadContext) (*Asset, error) {
	path := lc.AssetPath()
	l.enter(path, Start)

	imagePath := paths.WithExt(path, l.imageExt())
	l.enter(path, ImageDimensionsPending)
	cfg, err := lc.LoadDirect(ctx, imagePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, l.fail(KindIO, path, ctxErr)
		}
		return nil, l.fail(KindDependencyLoad, imagePath, err)
	}
	sheet := lc.Load(imagePath)

	l.enter(path, DescriptorParsing)
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, l.fail(KindIO, path, errors.Wrap(err, "reading descriptor"))
	}
	if err := ctx.Err(); err != nil {
		return nil, l.fail(KindIO, path, err)
	}
	elems, err := xmls.ReadSubTextureElements(bytes.NewReader(body))
	if err != nil {
		return nil, l.fail(KindDescriptorSyntax, path, err)
	}

	l.enter(path, Validating)
	subs, err := xmls.SubTextures(elems)
	if err != nil {
		return nil, l.fail(KindInvalidSubTexture, path, err)
	}

	l.enter(path, AtlasBuilding)
	layout, err := atlas.Build(image.Pt(cfg.Width, cfg.Height), subs)
	if err != nil {
		return nil, l.fail(KindInvalidSubTexture, path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, l.fail(KindIO, path, err)
	}

	a := &Asset{
		Textures: subs,
		Sheet:    sheet,
		Layout:   lc.AddLabeled(LayoutLabel, layout),
	}
	l.enter(path, Assembled)
	return a, nil
}
