package paths

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	cache     map[string][]byte
	cacheLock sync.Mutex
)

// HTTP is a Source fetching assets below a base URL.
//
// Bodies are kept in a process-wide cache keyed by URL, so repeated opens of
// the same asset (the companion image is opened once for its dimensions and
// once for its pixels) only hit the network once.
type HTTP struct {
	Base   string
	Client *http.Client
}

func (h HTTP) url(name string) string {
	return strings.TrimSuffix(h.Base, "/") + "/" + strings.TrimPrefix(name, "/")
}

// Open fetches name. A 404 is reported as os.ErrNotExist.
func (h HTTP) Open(name string) (io.ReadSeekCloser, error) {
	u := h.url(name)

	cacheLock.Lock()
	if buf, ok := cache[u]; ok {
		cacheLock.Unlock()
		glog.V(2).Infof("paths.HTTP: %q served from cache", u)
		return &bytesReaderWithDummyClose{bytes.NewReader(buf)}, nil
	}
	cacheLock.Unlock()

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	glog.V(1).Infof("paths.HTTP: getting %q", u)
	response, err := client.Get(u)
	if err != nil {
		return nil, errors.Wrapf(err, "paths.HTTP.Open(%q): failed to get", name)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		e := os.ErrInvalid
		if response.StatusCode == http.StatusNotFound {
			e = os.ErrNotExist
		}
		return nil, errors.Wrapf(e, "paths.HTTP.Open(%q): http response.StatusCode=%v, want 200", name, response.StatusCode)
	}

	// TODO(ivucica): Explore using ranged reads.
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, response.Body); err != nil {
		return nil, errors.Wrap(err, "copying response to seekable buffer")
	}

	cacheLock.Lock()
	if cache == nil {
		cache = make(map[string][]byte)
	}
	cache[u] = buf.Bytes()
	cacheLock.Unlock()

	return &bytesReaderWithDummyClose{bytes.NewReader(buf.Bytes())}, nil
}

type bytesReaderWithDummyClose struct {
	*bytes.Reader
}

func (bytesReaderWithDummyClose) Close() error {
	return nil
}
