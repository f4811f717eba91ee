package assets

import (
	"context"
	"image"
)

type labeledAsset struct {
	handle Handle
	label  string
	value  interface{}
}

// LoadContext is handed to a Loader for the duration of one load. Anything
// the loader registers through it is staged and becomes visible only when the
// load succeeds.
type LoadContext struct {
	reg  *Registry
	path string

	handle  Handle
	deps    []Handle
	labeled []labeledAsset
}

// AssetPath returns the path of the asset being loaded.
func (lc *LoadContext) AssetPath() string { return lc.path }

// LoadDirect decodes the configuration of the image at path and returns it
// before the current load completes.
func (lc *LoadContext) LoadDirect(ctx context.Context, path string) (image.Config, error) {
	return lc.reg.ImageConfig(ctx, path)
}

// Load returns a handle to the image at path without decoding it. The asset
// being loaded keeps a reference to it for as long as it stays loaded.
func (lc *LoadContext) Load(path string) Handle {
	h := lc.reg.acquireImage(path)
	lc.deps = append(lc.deps, h)
	return h
}

// AddLabeled stages value as a sub-asset named label and returns the handle it
// will have once the load succeeds.
func (lc *LoadContext) AddLabeled(label string, value interface{}) Handle {
	lc.reg.mu.Lock()
	h := lc.reg.reserveLocked()
	lc.reg.mu.Unlock()
	lc.labeled = append(lc.labeled, labeledAsset{handle: h, label: label, value: value})
	return h
}

// discardLocked drops everything the load staged. The registry's mutex must
// be held.
func (lc *LoadContext) discardLocked() {
	for _, d := range lc.deps {
		lc.reg.releaseLocked(d)
	}
	lc.deps = nil
	lc.labeled = nil
}

// commitLocked makes the loaded value and its labeled sub-assets visible,
// with refs references held on it. The registry's mutex must be held.
func (lc *LoadContext) commitLocked(value interface{}, refs int) Handle {
	r := lc.reg
	h := r.reserveLocked()
	e := &entry{
		path:     lc.path,
		refs:     refs,
		value:    value,
		deps:     lc.deps,
		children: make(map[string]Handle, len(lc.labeled)),
	}
	for _, la := range lc.labeled {
		r.entries[la.handle] = &entry{
			path:   lc.path,
			label:  la.label,
			value:  la.value,
			parent: h,
		}
		e.children[la.label] = la.handle
	}
	r.entries[h] = e
	r.byPath[lc.path] = h
	lc.handle = h
	return h
}
