package respack

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ManifestSuffix is the file name suffix of pack manifests.
const ManifestSuffix = ".sheets.yml"

// ManifestEntry names one descriptor to pack.
//
//	- name: space
//	  descriptor: space-shooter/sheet.xml
type ManifestEntry struct {
	Name       string `yaml:"name"`
	Descriptor string `yaml:"descriptor"`
}

// ReadManifest parses a manifest. Entries without a name are named after the
// descriptor's base name.
func ReadManifest(data []byte) ([]ManifestEntry, error) {
	entries := []ManifestEntry{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "respack: reading manifest")
	}
	for i, e := range entries {
		if e.Descriptor == "" {
			return nil, errors.Errorf("respack: manifest entry %d has no descriptor", i)
		}
		if e.Name == "" {
			base := e.Descriptor[strings.LastIndex(e.Descriptor, "/")+1:]
			entries[i].Name = strings.TrimSuffix(base, ".xml")
		}
	}
	return entries, nil
}
