// Package assets is an in-memory asset registry.
//
// Loaders are registered per file extension. Loading a path opens it through
// a paths.Source, runs the matching loader and, only if the loader succeeds,
// commits the result together with any labeled sub-assets the loader produced.
// Everything the registry hands out is referred to by a Handle; handles are
// reference counted and the last Release evicts the asset, its labeled
// sub-assets, and drops the references it held on its dependencies.
//
// Image files are understood natively: ImageConfig decodes just the header of
// an image (shared between concurrent callers and cached), and Image decodes
// its pixels on first use.
package assets

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"badc0de.net/pkg/go-spritesheet/paths"
)

// ErrNoLoader is returned when no loader is registered for a path's extension.
var ErrNoLoader = errors.New("assets: no loader for extension")

// ErrUnknownHandle is returned for handles that were never issued or have
// been evicted.
var ErrUnknownHandle = errors.New("assets: unknown handle")

// Handle refers to an asset held by a Registry. The zero Handle refers to
// nothing.
type Handle struct {
	id uint64
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.id == 0 }

func (h Handle) String() string { return fmt.Sprintf("asset#%d", h.id) }

// Loader turns the bytes of an asset into a value.
type Loader interface {
	// Extensions lists the file extensions (without the dot) this loader
	// handles.
	Extensions() []string
	// LoadAsset reads the asset from r. The returned value is committed to the
	// registry only if err is nil.
	LoadAsset(ctx context.Context, r io.Reader, lc *LoadContext) (interface{}, error)
}

type entry struct {
	path  string
	label string
	refs  int

	value interface{}

	// image entries
	img image.Image

	parent   Handle
	children map[string]Handle
	deps     []Handle
}

// Registry holds loaded assets. It is safe for concurrent use.
type Registry struct {
	src paths.Source

	mu      sync.Mutex
	loaders map[string]Loader
	nextID  uint64
	entries map[Handle]*entry
	byPath  map[string]Handle
	configs map[string]image.Config

	loading map[string]*call

	configGroup singleflight.Group
	imageGroup  singleflight.Group
}

// NewRegistry returns an empty registry reading assets from src.
func NewRegistry(src paths.Source) *Registry {
	return &Registry{
		src:     src,
		loaders: make(map[string]Loader),
		entries: make(map[Handle]*entry),
		byPath:  make(map[string]Handle),
		configs: make(map[string]image.Config),
		loading: make(map[string]*call),
	}
}

// Register makes l responsible for the extensions it lists. A later
// registration for the same extension replaces the earlier one.
func (r *Registry) Register(l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range l.Extensions() {
		glog.V(1).Infof("assets: registering loader %T for .%s", l, ext)
		r.loaders[ext] = l
	}
}

func (r *Registry) reserveLocked() Handle {
	r.nextID++
	return Handle{id: r.nextID}
}

// call is a load in progress, shared by every caller asking for its path.
type call struct {
	done    chan struct{} // closed under Registry.mu once h and err are set
	cancel  context.CancelFunc
	waiters int

	h   Handle
	err error
}

// Load loads the asset at path, or returns the already loaded one. Either way
// the caller holds one reference to the returned handle.
//
// Concurrent calls for the same path share one load. The load runs detached
// from any single caller's cancellation; a caller whose ctx is done stops
// waiting, and the load itself is abandoned once no caller waits for it.
func (r *Registry) Load(ctx context.Context, path string) (Handle, error) {
	r.mu.Lock()
	if h, ok := r.byPath[path]; ok {
		r.entries[h].refs++
		r.mu.Unlock()
		return h, nil
	}
	c, ok := r.loading[path]
	if !ok {
		lctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c = &call{done: make(chan struct{}), cancel: cancel}
		r.loading[path] = c
		go r.load(lctx, path, c)
	}
	c.waiters++
	r.mu.Unlock()

	select {
	case <-c.done:
		return c.h, c.err
	case <-ctx.Done():
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-c.done:
		// The load finished meanwhile and counted this caller.
		if c.err == nil {
			r.releaseLocked(c.h)
		}
	default:
		c.waiters--
		if c.waiters == 0 {
			c.cancel()
			if r.loading[path] == c {
				delete(r.loading, path)
			}
		}
	}
	return Handle{}, ctx.Err()
}

// load runs the loader for path and commits the result with one reference
// per caller still waiting on c.
func (r *Registry) load(ctx context.Context, path string, c *call) {
	defer c.cancel()
	lc, v, err := r.run(ctx, path)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loading[path] == c {
		delete(r.loading, path)
	}
	switch {
	case err != nil:
		if lc != nil {
			lc.discardLocked()
		}
		glog.V(1).Infof("assets: loading %q failed: %v", path, err)
	case c.waiters == 0:
		lc.discardLocked()
		err = context.Canceled
		glog.V(1).Infof("assets: loading %q abandoned", path)
	default:
		c.h = lc.commitLocked(v, c.waiters)
		glog.V(1).Infof("assets: loaded %q as %v with %d labeled sub-assets", path, c.h, len(lc.labeled))
	}
	c.err = err
	close(c.done)
}

func (r *Registry) run(ctx context.Context, path string) (*LoadContext, interface{}, error) {
	ext := paths.Ext(path)
	r.mu.Lock()
	l, ok := r.loaders[ext]
	r.mu.Unlock()
	if !ok {
		return nil, nil, errors.Wrapf(ErrNoLoader, "%q", path)
	}

	f, err := r.src.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "assets: opening %q", path)
	}
	defer f.Close()

	lc := &LoadContext{reg: r, path: path}
	v, err := l.LoadAsset(ctx, f, lc)
	return lc, v, err
}

// LoadAll loads all paths concurrently. If any load fails, the references
// taken by the successful ones are released and the first error is returned.
func (r *Registry) LoadAll(ctx context.Context, assetPaths []string) ([]Handle, error) {
	handles := make([]Handle, len(assetPaths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range assetPaths {
		i, p := i, p
		g.Go(func() error {
			h, err := r.Load(gctx, p)
			if err != nil {
				return errors.Wrapf(err, "loading %q", p)
			}
			handles[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, h := range handles {
			if !h.IsZero() {
				r.Release(h)
			}
		}
		return nil, err
	}
	return handles, nil
}

// ownerLocked resolves a labeled sub-asset to the asset that owns it.
func (r *Registry) ownerLocked(h Handle) (Handle, *entry, bool) {
	e, ok := r.entries[h]
	if !ok {
		return Handle{}, nil, false
	}
	if !e.parent.IsZero() {
		h = e.parent
		if e, ok = r.entries[h]; !ok {
			return Handle{}, nil, false
		}
	}
	return h, e, true
}

// Retain adds a reference to h. References to a labeled sub-asset are held
// on the asset that owns it.
func (r *Registry) Retain(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, e, ok := r.ownerLocked(h)
	if !ok {
		return ErrUnknownHandle
	}
	e.refs++
	return nil
}

// Release drops a reference to h, evicting the asset once none remain.
// Labeled sub-assets live as long as their parent; releasing one releases
// the parent.
func (r *Registry) Release(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked(h)
}

func (r *Registry) releaseLocked(h Handle) {
	h, e, ok := r.ownerLocked(h)
	if !ok {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	glog.V(1).Infof("assets: evicting %q (%v)", e.path, h)
	delete(r.entries, h)
	if r.byPath[e.path] == h {
		delete(r.byPath, e.path)
	}
	for _, c := range e.children {
		delete(r.entries, c)
	}
	for _, d := range e.deps {
		r.releaseLocked(d)
	}
}

// Get returns the value of a loaded asset or labeled sub-asset. Image handles
// that have not been decoded yet have no value; use Image for those.
func (r *Registry) Get(h Handle) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok || e.value == nil {
		return nil, false
	}
	return e.value, true
}

// Labeled returns the handle of the sub-asset that the load of h registered
// under label.
func (r *Registry) Labeled(h Handle, label string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return Handle{}, false
	}
	c, ok := e.children[label]
	return c, ok
}

// Path returns the path h was loaded from, with "#label" appended for labeled
// sub-assets.
func (r *Registry) Path(h Handle) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return "", false
	}
	if e.label != "" {
		return e.path + "#" + e.label, true
	}
	return e.path, true
}

// Refs returns the number of references held on h, or on its owner for a
// labeled sub-asset.
func (r *Registry) Refs(h Handle) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, e, ok := r.ownerLocked(h); ok {
		return e.refs
	}
	return 0
}

// Len returns the number of entries, including labeled sub-assets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
