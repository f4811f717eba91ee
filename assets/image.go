package assets

import (
	"context"
	"image"
	"io"

	// Formats companion images may come in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/pkg/errors"
)

// acquireImage returns a referenced handle for the image at path, creating an
// undecoded entry if needed.
func (r *Registry) acquireImage(path string) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.byPath[path]; ok {
		r.entries[h].refs++
		return h
	}
	h := r.reserveLocked()
	r.entries[h] = &entry{path: path, refs: 1}
	r.byPath[path] = h
	return h
}

func (r *Registry) open(path string) (io.ReadSeekCloser, error) {
	f, err := r.src.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "assets: opening %q", path)
	}
	return f, nil
}

// ImageConfig returns the dimensions and color model of the image at path.
// Concurrent calls for the same path share one decode, and results are cached
// for the life of the registry.
func (r *Registry) ImageConfig(ctx context.Context, path string) (image.Config, error) {
	r.mu.Lock()
	c, ok := r.configs[path]
	r.mu.Unlock()
	if ok {
		return c, nil
	}

	ch := r.configGroup.DoChan(path, func() (interface{}, error) {
		f, err := r.open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		c, format, err := image.DecodeConfig(f)
		if err != nil {
			return nil, errors.Wrapf(err, "assets: decoding image config of %q", path)
		}
		if c.Width <= 0 || c.Height <= 0 {
			return nil, errors.Errorf("assets: %s image %q has no pixels (%dx%d)", format, path, c.Width, c.Height)
		}
		r.mu.Lock()
		r.configs[path] = c
		r.mu.Unlock()
		return c, nil
	})

	select {
	case <-ctx.Done():
		return image.Config{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return image.Config{}, res.Err
		}
		return res.Val.(image.Config), nil
	}
}

// Image decodes the pixels behind an image handle, once.
func (r *Registry) Image(h Handle) (image.Image, error) {
	r.mu.Lock()
	e, ok := r.entries[h]
	if !ok {
		r.mu.Unlock()
		return nil, ErrUnknownHandle
	}
	if e.img != nil {
		img := e.img
		r.mu.Unlock()
		return img, nil
	}
	path := e.path
	r.mu.Unlock()

	v, err, _ := r.imageGroup.Do(path, func() (interface{}, error) {
		f, err := r.open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, errors.Wrapf(err, "assets: decoding image %q", path)
		}
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	img := v.(image.Image)

	r.mu.Lock()
	if e, ok := r.entries[h]; ok {
		e.img = img
	}
	r.mu.Unlock()
	return img, nil
}
