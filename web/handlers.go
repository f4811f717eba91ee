// Package web serves loaded sprite sheets over HTTP: their metadata as JSON,
// and individual regions as images.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/andybons/gogif"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-spritesheet/assets"
	"badc0de.net/pkg/go-spritesheet/atlas"
	"badc0de.net/pkg/go-spritesheet/spritesheet"
)

// generation is bumped whenever the way responses are generated changes.
const generation = 1

type Handler struct {
	reg *assets.Registry

	mu     sync.Mutex
	sheets map[string]assets.Handle
}

// NewHandler constructs a web handler serving sheets from reg. Sheets are
// loaded on first request and kept loaded until Close.
func NewHandler(reg *assets.Registry) *Handler {
	return &Handler{
		reg:    reg,
		sheets: make(map[string]assets.Handle),
	}
}

// Close releases every sheet the handler loaded.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p, sh := range h.sheets {
		h.reg.Release(sh)
		delete(h.sheets, p)
	}
}

func (h *Handler) sheet(r *http.Request, tr trace.Trace) (assets.Handle, *spritesheet.Asset, *atlas.Layout, error) {
	p := mux.Vars(r)["path"]

	h.mu.Lock()
	sh, ok := h.sheets[p]
	h.mu.Unlock()
	if !ok {
		tr.LazyPrintf("loading %q", p)
		var err error
		sh, err = h.reg.Load(r.Context(), p)
		if err != nil {
			return assets.Handle{}, nil, nil, err
		}
		h.mu.Lock()
		if prev, ok := h.sheets[p]; ok {
			// Lost a race with another request; keep one reference.
			h.reg.Release(sh)
			sh = prev
		} else {
			h.sheets[p] = sh
		}
		h.mu.Unlock()
	}
	a, layout, err := spritesheet.Resolve(h.reg, sh)
	if err != nil {
		return assets.Handle{}, nil, nil, err
	}
	return sh, a, layout, nil
}

func httpError(w http.ResponseWriter, tr trace.Trace, err error) {
	tr.LazyPrintf("%v", err)
	tr.SetError()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, err.Error(), http.StatusNotFound)
	case spritesheet.IsKind(err, spritesheet.KindDescriptorSyntax), spritesheet.IsKind(err, spritesheet.KindInvalidSubTexture):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		glog.Errorf("web: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// notModified answers conditional requests; it returns true if the response
// has been written.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

type regionJSON struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	X      uint32 `json:"x"`
	Y      uint32 `json:"y"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	// Outside is set for regions that do not fit on the sheet.
	Outside bool `json:"outside,omitempty"`
}

type sheetJSON struct {
	Path    string       `json:"path"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Image   string       `json:"image,omitempty"`
	Regions []regionJSON `json:"regions"`
}

func (h *Handler) metadataHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.metadata", r.URL.Path)
	defer tr.Finish()

	sh, a, layout, err := h.sheet(r, tr)
	if err != nil {
		httpError(w, tr, err)
		return
	}

	inline := r.URL.Query().Get("inline") == "1"
	mime := "application/json"
	etag := fmt.Sprintf(`W/"sheet:%d:%v:%t:%s"`, generation, sh, inline, mime)
	if notModified(w, r, etag) {
		return
	}

	out := sheetJSON{
		Path:    mux.Vars(r)["path"],
		Width:   layout.Size.X,
		Height:  layout.Size.Y,
		Regions: make([]regionJSON, 0, a.Len()),
	}
	for i, t := range a.Textures {
		out.Regions = append(out.Regions, regionJSON{
			Index:   i,
			Name:    t.Name,
			X:       t.X,
			Y:       t.Y,
			Width:   t.Width,
			Height:  t.Height,
			Outside: !layout.Contains(i),
		})
	}
	if inline {
		img, err := h.reg.Image(a.Sheet)
		if err != nil {
			httpError(w, tr, err)
			return
		}
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, img); err != nil {
			httpError(w, tr, err)
			return
		}
		out.Image = dataurl.New(buf.Bytes(), "image/png").String()
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(&out); err != nil {
		httpError(w, tr, err)
		return
	}
	writeBody(w, mime, buf)
}

// writeBody answers 200 with an already encoded body, so that encoding
// failures can still be reported with an error status.
func writeBody(w http.ResponseWriter, mime string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *Handler) writeRegion(w http.ResponseWriter, r *http.Request, tr trace.Trace, sh assets.Handle, a *spritesheet.Asset, layout *atlas.Layout, idx int) {
	if idx < 0 || idx >= a.Len() {
		http.Error(w, "no such region", http.StatusNotFound)
		return
	}
	mime := "image/png"
	etag := fmt.Sprintf(`W/"region:%d:%v:%d:%s"`, generation, sh, idx, mime)
	if notModified(w, r, etag) {
		return
	}

	sheet, err := h.reg.Image(a.Sheet)
	if err != nil {
		httpError(w, tr, err)
		return
	}
	img, err := spritesheet.Region(sheet, layout, idx)
	if err != nil {
		httpError(w, tr, err)
		return
	}
	tr.LazyPrintf("region %d %q %v", idx, a.Textures[idx].Name, img.Bounds())
	if img.Bounds().Empty() {
		tr.SetError()
		http.Error(w, fmt.Sprintf("region %d (%s) has no pixels", idx, a.Textures[idx].Name), http.StatusUnprocessableEntity)
		return
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		httpError(w, tr, err)
		return
	}
	writeBody(w, mime, buf)
}

func (h *Handler) regionHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.region", r.URL.Path)
	defer tr.Finish()

	idx, err := strconv.Atoi(mux.Vars(r)["idx"])
	if err != nil {
		http.Error(w, "idx not a number", http.StatusBadRequest)
		return
	}
	sh, a, layout, err := h.sheet(r, tr)
	if err != nil {
		httpError(w, tr, err)
		return
	}
	h.writeRegion(w, r, tr, sh, a, layout, idx)
}

func (h *Handler) namedRegionHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.region", r.URL.Path)
	defer tr.Finish()

	sh, a, layout, err := h.sheet(r, tr)
	if err != nil {
		httpError(w, tr, err)
		return
	}
	idx, ok := a.Index(mux.Vars(r)["name"])
	if !ok {
		http.Error(w, "no such region", http.StatusNotFound)
		return
	}
	h.writeRegion(w, r, tr, sh, a, layout, idx)
}

// animationHandler renders all regions whose names start with the prefix
// query parameter as frames of an animated GIF, in sheet order. Regions
// without pixels are skipped.
func (h *Handler) animationHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.animation", r.URL.Path)
	defer tr.Finish()

	sh, a, layout, err := h.sheet(r, tr)
	if err != nil {
		httpError(w, tr, err)
		return
	}
	prefix := r.URL.Query().Get("prefix")
	delay := 10
	if d := r.URL.Query().Get("delay"); d != "" {
		delay, _ = strconv.Atoi(d)
		// ignore invalid delay
	}

	mime := "image/gif"
	etag := fmt.Sprintf(`W/"anim:%d:%v:%q:%d:%s"`, generation, sh, prefix, delay, mime)
	if notModified(w, r, etag) {
		return
	}

	sheet, err := h.reg.Image(a.Sheet)
	if err != nil {
		httpError(w, tr, err)
		return
	}

	g := gif.GIF{}
	quantizer := gogif.MedianCutQuantizer{NumColor: 255} // Up to 255 colors plus 1 space for transparency.
	for i, t := range a.Textures {
		if !strings.HasPrefix(t.Name, prefix) {
			continue
		}
		region, err := spritesheet.Region(sheet, layout, i)
		if err != nil {
			httpError(w, tr, err)
			return
		}
		if region.Bounds().Empty() {
			tr.LazyPrintf("skipping empty region %d %q", i, t.Name)
			continue
		}
		bounds := image.Rectangle{Max: region.Bounds().Size()}
		img := image.NewNRGBA(bounds)
		draw.Draw(img, bounds, region, region.Bounds().Min, draw.Src)

		pal := image.NewPaletted(bounds, nil)
		quantizer.Quantize(pal, bounds, img, image.Point{})

		// gogif's MedianCutQuantizer leaves no room for transparency. Redraw
		// onto a palette that starts with color.Transparent, so that empty
		// pixels default to it.
		palTransparent := image.NewPaletted(bounds, append(color.Palette{color.Transparent}, pal.Palette...))
		draw.Draw(palTransparent, bounds, img, image.Point{}, draw.Over)

		g.Image = append(g.Image, palTransparent)
		g.Delay = append(g.Delay, delay)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
		if bounds.Dx() > g.Config.Width {
			g.Config.Width = bounds.Dx()
		}
		if bounds.Dy() > g.Config.Height {
			g.Config.Height = bounds.Dy()
		}
	}
	if len(g.Image) == 0 {
		http.Error(w, "no regions match prefix", http.StatusNotFound)
		return
	}
	g.BackgroundIndex = 0

	buf := &bytes.Buffer{}
	if err := gif.EncodeAll(buf, &g); err != nil {
		httpError(w, tr, err)
		return
	}
	writeBody(w, mime, buf)
}

// RegisterRoutes adds the sheet routes to r. Sheet paths may contain slashes
// and must end in .xml.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	const sheet = "/sheet/{path:.+\\.xml}"
	r.HandleFunc(sheet+"/anim.gif", h.animationHandler).Methods(http.MethodGet)
	r.HandleFunc(sheet+"/name/{name}", h.namedRegionHandler).Methods(http.MethodGet)
	r.HandleFunc(sheet+"/{idx:[0-9]+}.png", h.regionHandler).Methods(http.MethodGet)
	r.HandleFunc(sheet, h.metadataHandler).Methods(http.MethodGet)
}
