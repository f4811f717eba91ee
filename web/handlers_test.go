package web

import (
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"badc0de.net/pkg/go-spritesheet/assets"
	"badc0de.net/pkg/go-spritesheet/paths"
	"badc0de.net/pkg/go-spritesheet/spritesheet"
	"badc0de.net/pkg/go-spritesheet/ttesting"
)

const testDescriptor = `<TextureAtlas imagePath="sheet.png">
	<SubTexture name="walk1" x="0" y="0" width="4" height="4"/>
	<SubTexture name="walk2" x="4" y="0" width="4" height="4"/>
	<SubTexture name="idle" x="0" y="4" width="8" height="2"/>
	<SubTexture name="huge" x="0" y="0" width="100" height="100"/>
	<SubTexture name="walk_gap" x="2" y="2" width="0" height="3"/>
</TextureAtlas>`

func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "ui"), 0755); err != nil {
		t.Fatal(err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "ui", "sheet.png"))
	if err != nil {
		t.Fatal(err)
	}
	png.Encode(f, img)
	f.Close()
	if err := os.WriteFile(filepath.Join(dir, "ui", "sheet.xml"), []byte(testDescriptor), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.xml"), []byte("<TextureAtlas>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), mustReadFile(t, filepath.Join(dir, "ui", "sheet.png")), 0644); err != nil {
		t.Fatal(err)
	}

	reg := assets.NewRegistry(paths.Dir(dir))
	spritesheet.Register(reg)
	h := NewHandler(reg)
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		h.Close()
	})
	return srv, h
}

func mustReadFile(t *testing.T, p string) []byte {
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func get(t *testing.T, url string, header ...string) *http.Response {
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp
}

func TestMetadata(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := get(t, srv.URL+"/sheet/ui/sheet.xml")
	defer resp.Body.Close()
	ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusOK)

	var got sheetJSON
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	ttesting.AssertEqualString(t, "path", got.Path, "ui/sheet.xml")
	ttesting.AssertEqualInt(t, "width", got.Width, 8)
	ttesting.AssertEqualInt(t, "height", got.Height, 6)
	ttesting.AssertEqualInt(t, "regions", len(got.Regions), 5)
	ttesting.AssertEqualString(t, "third name", got.Regions[2].Name, "idle")
	if got.Regions[2].Outside || !got.Regions[3].Outside {
		t.Errorf("outside flags: got %v and %v", got.Regions[2].Outside, got.Regions[3].Outside)
	}
	if got.Image != "" {
		t.Errorf("image inlined without being asked to")
	}

	etag := resp.Header.Get("ETag")
	resp2 := get(t, srv.URL+"/sheet/ui/sheet.xml", "If-None-Match", etag)
	resp2.Body.Close()
	ttesting.AssertEqualInt(t, "conditional status", resp2.StatusCode, http.StatusNotModified)
}

func TestMetadataInline(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := get(t, srv.URL+"/sheet/ui/sheet.xml?inline=1")
	defer resp.Body.Close()
	var got sheetJSON
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !strings.HasPrefix(got.Image, "data:image/png;base64,") {
		t.Errorf("got image %.40q", got.Image)
	}
}

func TestRegion(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, tc := range []struct {
		url  string
		size image.Point
	}{
		{"/sheet/ui/sheet.xml/2.png", image.Pt(8, 2)},
		{"/sheet/ui/sheet.xml/name/walk2", image.Pt(4, 4)},
	} {
		resp := get(t, srv.URL+tc.url)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status %d", tc.url, resp.StatusCode)
			resp.Body.Close()
			continue
		}
		img, err := png.Decode(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Errorf("%s: %v", tc.url, err)
			continue
		}
		ttesting.AssertEqualSize(t, tc.url, img.Bounds().Size(), tc.size)
	}
}

func TestEmptyRegion(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, url := range []string{
		"/sheet/ui/sheet.xml/4.png",
		"/sheet/ui/sheet.xml/name/walk_gap",
	} {
		resp := get(t, srv.URL+url)
		resp.Body.Close()
		ttesting.AssertEqualInt(t, url, resp.StatusCode, http.StatusUnprocessableEntity)
		if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
			t.Errorf("%s: got content type %q for an error", url, ct)
		}
	}
}

func TestAnimation(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := get(t, srv.URL+"/sheet/ui/sheet.xml/anim.gif?prefix=walk")
	defer resp.Body.Close()
	ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusOK)
	g, err := gif.DecodeAll(resp.Body)
	if err != nil {
		t.Fatalf("decoding gif: %v", err)
	}
	// walk_gap has no pixels and is left out.
	ttesting.AssertEqualInt(t, "frames", len(g.Image), 2)

	resp2 := get(t, srv.URL+"/sheet/ui/sheet.xml/anim.gif?prefix=run")
	resp2.Body.Close()
	ttesting.AssertEqualInt(t, "no match status", resp2.StatusCode, http.StatusNotFound)
}

func TestErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	for url, want := range map[string]int{
		"/sheet/missing.xml":         http.StatusNotFound,
		"/sheet/broken.xml":          http.StatusUnprocessableEntity,
		"/sheet/ui/sheet.xml/9.png":  http.StatusNotFound,
		"/sheet/ui/sheet.xml/name/x": http.StatusNotFound,
	} {
		resp := get(t, srv.URL+url)
		resp.Body.Close()
		ttesting.AssertEqualInt(t, url, resp.StatusCode, want)
	}
}
