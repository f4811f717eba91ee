// Package xmls reads sprite sheet descriptors: XML documents that list named
// SubTexture rectangles of a companion image.
//
//	<TextureAtlas imagePath="sheet.png">
//		<SubTexture name="ship.png" x="0" y="0" width="99" height="75"/>
//	</TextureAtlas>
//
// Reading happens in two steps. ReadDescriptor consumes the whole document and
// collects every SubTexture element, at any depth, in document order; it only
// fails on markup that is not well-formed. SubTextures then validates the
// collected elements, failing the whole batch on the first bad one.
package xmls

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// SubTextureTag is the element name that describes one region. Elements in a
// namespace are not regions.
const SubTextureTag = "SubTexture"

// Element is a SubTexture element as found in the document, before any
// validation.
type Element struct {
	Line int
	Attr []xml.Attr
}

// Attribute returns the value of the unqualified attribute with the passed
// name.
func (e Element) Attribute(name string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Descriptor is the result of scanning a document.
type Descriptor struct {
	// Root is the local name of the document element, usually TextureAtlas.
	Root string
	// ImagePath is the root's imagePath attribute. It is informational; the
	// companion image is located by the descriptor's own path.
	ImagePath string
	Elements  []Element
}

// SyntaxError reports a descriptor that is not well-formed XML.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("xmls: descriptor syntax error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("xmls: descriptor syntax error: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
func (e *SyntaxError) Cause() error  { return e.Err }

var utf8BOM = []byte("\xef\xbb\xbf")

// skipBOM drops a leading UTF-8 byte order mark, which encoding/xml would
// otherwise report as text before the document element.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, _ := br.Peek(len(utf8BOM)); bytes.Equal(b, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}

// ReadDescriptor scans the whole document from r. No element is returned
// unless the entire document is well-formed.
func ReadDescriptor(r io.Reader) (*Descriptor, error) {
	dec := xml.NewDecoder(skipBOM(r))
	dec.CharsetReader = charset.NewReaderLabel

	d := &Descriptor{}
	depth := 0
	rootSeen := false
	for {
		line, _ := dec.InputPos()
		t, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if se, ok := err.(*xml.SyntaxError); ok {
				return nil, &SyntaxError{Line: se.Line, Err: err}
			}
			return nil, &SyntaxError{Line: line, Err: err}
		}

		switch tok := t.(type) {
		case xml.StartElement:
			if depth == 0 {
				if rootSeen {
					return nil, &SyntaxError{Line: line, Err: fmt.Errorf("unexpected element <%s> after the document element", tok.Name.Local)}
				}
				rootSeen = true
				d.Root = tok.Name.Local
				d.ImagePath, _ = Element{Attr: tok.Attr}.Attribute("imagePath")
			}
			depth++
			if tok.Name.Space == "" && tok.Name.Local == SubTextureTag {
				d.Elements = append(d.Elements, Element{
					Line: line,
					Attr: tok.Copy().Attr,
				})
			}
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(tok)) > 0 {
				return nil, &SyntaxError{Line: line, Err: fmt.Errorf("unexpected text outside of the document element")}
			}
		}
	}
	if !rootSeen {
		return nil, &SyntaxError{Err: fmt.Errorf("no document element")}
	}
	return d, nil
}

// ReadSubTextureElements returns the SubTexture elements of the document in r.
func ReadSubTextureElements(r io.Reader) ([]Element, error) {
	d, err := ReadDescriptor(r)
	if err != nil {
		return nil, err
	}
	return d.Elements, nil
}
