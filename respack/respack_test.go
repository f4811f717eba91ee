package respack

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-spritesheet/atlas"
	"badc0de.net/pkg/go-spritesheet/spritesheet"
	"badc0de.net/pkg/go-spritesheet/ttesting"
)

func TestPutGet(t *testing.T) {
	p, err := Open(filepath.Join(t.TempDir(), "stage.res"))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	a := &spritesheet.Asset{Textures: []atlas.SubTexture{
		{Name: "b", X: 1, Y: 2, Width: 3, Height: 4},
		{Name: "a", X: 10, Y: 20, Width: 32, Height: 16},
	}}
	layout, err := atlas.Build(image.Pt(64, 64), a.Textures)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Put("ui", NewRecord("ui/sheet.xml", "ui/sheet.png", a, layout)); err != nil {
		t.Fatalf("put: %v", err)
	}

	rec, err := p.Get("ui")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	ttesting.AssertEqualString(t, "image", rec.Image, "ui/sheet.png")
	ttesting.AssertEqualInt(t, "regions", len(rec.Regions), 2)
	ttesting.AssertEqualString(t, "first region keeps its place", rec.Regions[0].Name, "b")

	got, err := rec.Layout()
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	ttesting.AssertEqualSize(t, "size", got.Size, image.Pt(64, 64))
	r, _ := got.Rect(1)
	ttesting.AssertEqualRect(t, "second rect", r, image.Rect(10, 20, 42, 36))

	names, err := p.Names()
	if err != nil || len(names) != 1 || names[0] != "ui" {
		t.Errorf("names: got %v, %v", names, err)
	}
	if _, err := p.Get("nope"); errors.Cause(err) != ErrNotFound {
		t.Errorf("missing: got %v; want ErrNotFound", err)
	}
}

func TestReadManifest(t *testing.T) {
	entries, err := ReadManifest([]byte(`
- name: space
  descriptor: space-shooter/sheet.xml
- descriptor: ui/buttons.xml
`))
	if err != nil {
		t.Fatal(err)
	}
	ttesting.AssertEqualInt(t, "entries", len(entries), 2)
	ttesting.AssertEqualString(t, "named", entries[0].Name, "space")
	ttesting.AssertEqualString(t, "derived name", entries[1].Name, "buttons")

	if _, err := ReadManifest([]byte(`- name: nothing`)); err == nil {
		t.Errorf("entry without descriptor accepted")
	}
}
