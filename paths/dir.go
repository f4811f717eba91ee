package paths

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Dir is a Source reading from a local directory.
type Dir string

// Open opens name below the directory. Names that would escape the directory
// are rejected.
func (d Dir) Open(name string) (io.ReadSeekCloser, error) {
	if !fs.ValidPath(name) {
		return nil, errors.Wrapf(fs.ErrInvalid, "paths.Dir(%q).Open(%q)", string(d), name)
	}
	f, err := os.Open(filepath.Join(string(d), filepath.FromSlash(name)))
	if err != nil {
		return nil, errors.Wrapf(err, "paths.Dir(%q).Open(%q)", string(d), name)
	}
	return f, nil
}

// Search is a Source that tries each of its sources in turn and returns the
// first one that opens.
type Search []Source

func (s Search) Open(name string) (io.ReadSeekCloser, error) {
	var firstErr error
	for _, src := range s {
		f, err := src.Open(name)
		if err == nil {
			return f, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.Wrapf(fs.ErrNotExist, "paths.Search.Open(%q): no sources", name)
	}
	return nil, firstErr
}
