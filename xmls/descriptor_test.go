package xmls

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-spritesheet/ttesting"
)

func TestReadDescriptorNested(t *testing.T) {
	doc := `<?xml version="1.0"?>
<!-- generated -->
<TextureAtlas imagePath="sheet.png">
	<Group name="ui">
		<SubTexture name="a" x="0" y="0" width="1" height="1"/>
		<Other x="junk"/>
		<Group name="inner">
			<SubTexture name="b" x="1" y="0" width="1" height="1"></SubTexture>
		</Group>
	</Group>
	<SubTexture name="c" x="2" y="0" width="1" height="1"/>
</TextureAtlas>
`
	d, err := ReadDescriptor(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("failed to read descriptor: %v", err)
	}
	if d.Root != "TextureAtlas" || d.ImagePath != "sheet.png" {
		t.Errorf("got root %q image %q", d.Root, d.ImagePath)
	}
	ttesting.AssertEqualInt(t, "element count", len(d.Elements), 3)
	for i, want := range []string{"a", "b", "c"} {
		got, _ := d.Elements[i].Attribute("name")
		if got != want {
			t.Errorf("element %d: got name %q; want %q", i, got, want)
		}
	}
}

func TestReadDescriptorEmpty(t *testing.T) {
	for _, doc := range []string{
		`<TextureAtlas/>`,
		`<TextureAtlas imagePath="x.png"></TextureAtlas>`,
		"<?xml version=\"1.0\"?>\n<TextureAtlas>\n\t<!-- nothing -->\n</TextureAtlas>\n",
	} {
		subs, err := ReadSubTextures(strings.NewReader(doc))
		if err != nil {
			t.Errorf("%q: unexpected error: %v", doc, err)
			continue
		}
		if len(subs) != 0 {
			t.Errorf("%q: got %d regions; want none", doc, len(subs))
		}
	}
}

func TestReadDescriptorSyntaxError(t *testing.T) {
	for name, doc := range map[string]string{
		"unbalanced": `<TextureAtlas><SubTexture name="a" x="0" y="0" width="1" height="1"></TextureAtlas>`,
		"truncated":  `<TextureAtlas><SubTexture name="a" x="0" y="0" width="1" height="1"/>`,
		"bad attr":   `<TextureAtlas><SubTexture name=a/></TextureAtlas>`,
		"empty":      ``,
		"whitespace": "  \n\t",
		"two roots":  `<TextureAtlas/><TextureAtlas/>`,
		"text":       `hello <TextureAtlas/>`,
		"charset":    `<?xml version="1.0" encoding="x-unknown-charset"?><TextureAtlas/>`,
	} {
		t.Run(name, func(t *testing.T) {
			d, err := ReadDescriptor(strings.NewReader(doc))
			if d != nil {
				t.Errorf("got descriptor with %d elements; want none", len(d.Elements))
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("got %v (%T); want *SyntaxError", err, err)
			}
		})
	}
}

func TestReadDescriptorLatin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<TextureAtlas><SubTexture name=\"caf\xe9\" x=\"0\" y=\"0\" width=\"1\" height=\"1\"/></TextureAtlas>"
	subs, err := ReadSubTextures(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 1 || subs[0].Name != "café" {
		t.Errorf("got %v", subs)
	}
}

func TestReadDescriptorBOM(t *testing.T) {
	doc := "\xef\xbb\xbf<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<TextureAtlas><SubTexture name=\"a\" x=\"0\" y=\"0\" width=\"1\" height=\"1\"/></TextureAtlas>"
	subs, err := ReadSubTextures(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ttesting.AssertEqualInt(t, "regions", len(subs), 1)

	// Only a leading mark is skipped.
	doc = "<TextureAtlas/>\xef\xbb\xbf"
	if _, err := ReadDescriptor(strings.NewReader(doc)); err == nil {
		t.Errorf("%q: got no error; want *SyntaxError", doc)
	}
}

func TestReadDescriptorNamespacedElements(t *testing.T) {
	doc := `<TextureAtlas xmlns:foo="urn:foo">
	<foo:SubTexture name="skipped" x="0" y="0" width="1" height="1"/>
	<SubTexture name="kept" x="1" y="1" width="1" height="1"/>
</TextureAtlas>`
	subs, err := ReadSubTextures(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 1 || subs[0].Name != "kept" {
		t.Errorf("got %v; want only kept", subs)
	}
}

func TestSyntaxBeatsInvalidRegion(t *testing.T) {
	// The invalid region comes first, but the document is not well-formed.
	doc := `<TextureAtlas><SubTexture name="a"/><SubTexture></TextureAtlas>`
	_, err := ReadSubTextures(strings.NewReader(doc))
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("got %v; want *SyntaxError", err)
	}
}

func TestSubTexturesInvalid(t *testing.T) {
	const ok = `<SubTexture name="ok" x="0" y="0" width="1" height="1"/>`
	for _, tc := range []struct {
		elem string
		attr string
	}{
		{`<SubTexture x="0" y="0" width="1" height="1"/>`, "name"},
		{`<SubTexture name="" x="0" y="0" width="1" height="1"/>`, "name"},
		{`<SubTexture name="n" y="0" width="1" height="1"/>`, "x"},
		{`<SubTexture name="n" x="0" width="1" height="1"/>`, "y"},
		{`<SubTexture name="n" x="0" y="0" height="1"/>`, "width"},
		{`<SubTexture name="n" x="0" y="0" width="1"/>`, "height"},
		{`<SubTexture name="n" x="-1" y="0" width="1" height="1"/>`, "x"},
		{`<SubTexture name="n" x="0" y="1.5" width="1" height="1"/>`, "y"},
		{`<SubTexture name="n" x="0" y="0" width="ten" height="1"/>`, "width"},
		{`<SubTexture name="n" x="0" y="0" width="1" height=" 1"/>`, "height"},
		{`<SubTexture name="n" x="4294967296" y="0" width="1" height="1"/>`, "x"},
		{`<SubTexture name="n" x="0" y="0" width="1" height=""/>`, "height"},
	} {
		t.Run(fmt.Sprintf("%s in %s", tc.attr, tc.elem), func(t *testing.T) {
			doc := "<TextureAtlas>" + ok + ok + tc.elem + ok + "</TextureAtlas>"
			subs, err := ReadSubTextures(strings.NewReader(doc))
			if subs != nil {
				t.Errorf("got %d regions; want none", len(subs))
			}
			var ie *InvalidSubTextureError
			if !errors.As(err, &ie) {
				t.Fatalf("got %v; want *InvalidSubTextureError", err)
			}
			ttesting.AssertEqualInt(t, "index", ie.Index, 2)
			if ie.Attr != tc.attr {
				t.Errorf("got attr %q; want %q", ie.Attr, tc.attr)
			}
		})
	}
}

func TestSubTexturesDuplicateNames(t *testing.T) {
	doc := `<TextureAtlas>
		<SubTexture name="dup" x="0" y="0" width="1" height="1"/>
		<SubTexture name="dup" x="5" y="0" width="1" height="1"/>
	</TextureAtlas>`
	subs, err := ReadSubTextures(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ttesting.AssertEqualInt(t, "region count", len(subs), 2)
	ttesting.AssertEqualInt(t, "second x", int(subs[1].X), 5)
}

func TestSubTexturesIgnoresExtraAttributes(t *testing.T) {
	doc := `<TextureAtlas><SubTexture name="r" x="1" y="2" width="3" height="4" frameX="-2" rotated="true"/></TextureAtlas>`
	subs, err := ReadSubTextures(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 1 || subs[0].X != 1 || subs[0].Y != 2 || subs[0].Width != 3 || subs[0].Height != 4 {
		t.Errorf("got %+v", subs)
	}
}
