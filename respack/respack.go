// Package respack stores decoded sprite sheets in a single bbolt resource
// file, so that a game can look regions up without shipping or parsing the
// XML descriptors.
package respack

import (
	"image"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v2"

	"badc0de.net/pkg/go-spritesheet/atlas"
	"badc0de.net/pkg/go-spritesheet/spritesheet"
)

var sheetsBucket = []byte("sheets")

// ErrNotFound is returned by Get for names that were never stored.
var ErrNotFound = errors.New("respack: sheet not found")

// Region is one stored sub-texture.
type Region struct {
	Name   string `yaml:"name"`
	X      uint32 `yaml:"x"`
	Y      uint32 `yaml:"y"`
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// Record is what the pack keeps per sheet.
type Record struct {
	Descriptor string   `yaml:"descriptor"`
	Image      string   `yaml:"image"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Regions    []Region `yaml:"regions"`
}

// NewRecord captures a loaded sheet.
func NewRecord(descriptor, imagePath string, a *spritesheet.Asset, layout *atlas.Layout) Record {
	rec := Record{
		Descriptor: descriptor,
		Image:      imagePath,
		Width:      layout.Size.X,
		Height:     layout.Size.Y,
		Regions:    make([]Region, 0, a.Len()),
	}
	for _, t := range a.Textures {
		rec.Regions = append(rec.Regions, Region{Name: t.Name, X: t.X, Y: t.Y, Width: t.Width, Height: t.Height})
	}
	return rec
}

// Layout rebuilds the atlas layout of the record.
func (r Record) Layout() (*atlas.Layout, error) {
	subs := make([]atlas.SubTexture, 0, len(r.Regions))
	for _, reg := range r.Regions {
		subs = append(subs, atlas.SubTexture{Name: reg.Name, X: reg.X, Y: reg.Y, Width: reg.Width, Height: reg.Height})
	}
	return atlas.Build(image.Pt(r.Width, r.Height), subs)
}

// Pack is an open resource file.
type Pack struct {
	db *bolt.DB
}

// Open opens or creates the resource file at path.
func Open(path string) (*Pack, error) {
	db, err := bolt.Open(path, 0666, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "respack: opening %q", path)
	}
	return &Pack{db: db}, nil
}

func (p *Pack) Close() error {
	return p.db.Close()
}

// Put stores rec under name, replacing any previous record.
func (p *Pack) Put(name string, rec Record) error {
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return errors.Wrapf(err, "respack: encoding %q", name)
	}
	return p.db.Update(func(tx *bolt.Tx) error {
		buck, err := tx.CreateBucketIfNotExists(sheetsBucket)
		if err != nil {
			return err
		}
		return buck.Put([]byte(name), data)
	})
}

// Get returns the record stored under name.
func (p *Pack) Get(name string) (Record, error) {
	var rec Record
	err := p.db.View(func(tx *bolt.Tx) error {
		buck := tx.Bucket(sheetsBucket)
		if buck == nil {
			return errors.Wrapf(ErrNotFound, "%q", name)
		}
		data := buck.Get([]byte(name))
		if data == nil {
			return errors.Wrapf(ErrNotFound, "%q", name)
		}
		return yaml.Unmarshal(data, &rec)
	})
	return rec, err
}

// Names lists the stored sheets in key order.
func (p *Pack) Names() ([]string, error) {
	var names []string
	err := p.db.View(func(tx *bolt.Tx) error {
		buck := tx.Bucket(sheetsBucket)
		if buck == nil {
			return nil
		}
		return buck.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
