// Package paths locates sprite sheet assets.
//
// Assets are named by slash-separated paths relative to some root, such as
// "space-shooter/sheet.xml". A Source turns such a name into readable bytes;
// Dir, Search and HTTP are the sources provided here.
package paths

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// Source opens assets by name.
type Source interface {
	Open(name string) (io.ReadSeekCloser, error)
}

// WithExt returns name with its extension replaced by ext, keeping the
// directory and base name. ext should include the leading dot. A name without
// an extension gets ext appended.
//
// For example, WithExt("ui/sheet.xml", ".png") is "ui/sheet.png".
func WithExt(name, ext string) string {
	base := path.Base(name)
	old := path.Ext(base)
	if old == base {
		// ".xml" is a hidden file with no extension, not an empty stem.
		old = ""
	}
	return strings.TrimSuffix(name, old) + ext
}

// Ext returns the lowercased extension of name, without the dot.
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(path.Base(name)), "."))
}

// possibleDirs lists local directories searched by Find, most specific first.
func possibleDirs() []string {
	var dirs []string
	if d := os.Getenv("SPRITESHEET_ASSETS"); d != "" {
		dirs = append(dirs, d)
	}
	dirs = append(dirs,
		"assets",
		os.Args[0]+".runfiles/go_spritesheet/assets",
	)
	if gopath := os.Getenv("GOPATH"); gopath != "" {
		dirs = append(dirs, filepath.Join(gopath, "src/badc0de.net/pkg/go-spritesheet/assets"))
	}
	return dirs
}

// Find locates the passed asset in the default asset directories and returns
// a path it can be opened at, or an empty string.
//
// For example, for "sheet.xml" it may return "assets/sheet.xml".
func Find(fileName string) string {
	for _, dir := range possibleDirs() {
		p := filepath.Join(dir, filepath.FromSlash(fileName))
		if f, err := os.Open(p); err == nil {
			f.Close()
			glog.V(1).Infof("paths.Find(%q)=%s", fileName, p)
			return p
		}
	}
	return ""
}

// Default returns a Search over the default asset directories.
func Default() Search {
	var s Search
	for _, dir := range possibleDirs() {
		s = append(s, Dir(dir))
	}
	return s
}
