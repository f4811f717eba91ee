// Command sheetpack walks a project directory for *.sheets.yml manifests,
// loads every sprite sheet they name and stores the decoded sheets in a
// resource file.
package main

import (
	"context"
	"flag"
	"os"
	"path"
	"strings"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang-collections/collections/queue"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-spritesheet/assets"
	"badc0de.net/pkg/go-spritesheet/paths"
	"badc0de.net/pkg/go-spritesheet/respack"
	"badc0de.net/pkg/go-spritesheet/spritesheet"
)

var (
	projectPath = flag.String("project", ".", "Path to the project to pack sprite sheets for.")
	imageExt    = flag.String("image_ext", spritesheet.DefaultImageExt, "extension of the companion images")
)

var resourceFilePath string

const defaultResourceFile = "stage.res"

func init() {
	// An existing resource file in the asset directories is updated in place.
	paths.SetupFilePathFlag(defaultResourceFile, "out", &resourceFilePath)
}

// manifest is a manifest file found in the project, with its slash-separated
// directory relative to the project root.
type manifest struct {
	dir     string
	entries []respack.ManifestEntry
}

type fileTracker struct {
	dir   string // relative to the project, slash separated
	entry os.DirEntry
}

func findManifests(root string) ([]manifest, error) {
	var found []manifest
	traverseQueue := queue.New()
	enqueueDir := func(dir string) error {
		entries, err := os.ReadDir(path.Join(root, dir))
		if err != nil {
			return err
		}
		for _, entry := range entries {
			traverseQueue.Enqueue(fileTracker{dir: dir, entry: entry})
		}
		return nil
	}
	if err := enqueueDir("."); err != nil {
		return nil, err
	}

	for traverseQueue.Len() > 0 {
		fsEntry := traverseQueue.Dequeue().(fileTracker)
		rel := path.Join(fsEntry.dir, fsEntry.entry.Name())

		if fsEntry.entry.IsDir() {
			if err := enqueueDir(rel); err != nil {
				return nil, err
			}
			continue
		}
		if !strings.HasSuffix(fsEntry.entry.Name(), respack.ManifestSuffix) {
			continue
		}

		data, err := os.ReadFile(path.Join(root, rel))
		if err != nil {
			return nil, err
		}
		entries, err := respack.ReadManifest(data)
		if err != nil {
			return nil, errors.Wrapf(err, "manifest %q", rel)
		}
		glog.Infof("manifest %q: %d sheets", rel, len(entries))
		found = append(found, manifest{dir: fsEntry.dir, entries: entries})
	}
	return found, nil
}

func run(ctx context.Context) error {
	manifests, err := findManifests(*projectPath)
	if err != nil {
		return err
	}

	var names, descriptors []string
	for _, m := range manifests {
		for _, e := range m.entries {
			names = append(names, e.Name)
			descriptors = append(descriptors, path.Join(m.dir, e.Descriptor))
		}
	}
	if len(descriptors) == 0 {
		glog.Infof("no sheets to pack under %q", *projectPath)
		return nil
	}

	reg := assets.NewRegistry(paths.Dir(*projectPath))
	l := spritesheet.Register(reg)
	l.ImageExt = *imageExt

	hs, err := reg.LoadAll(ctx, descriptors)
	if err != nil {
		return err
	}

	if resourceFilePath == "" {
		resourceFilePath = defaultResourceFile
	}
	pack, err := respack.Open(resourceFilePath)
	if err != nil {
		return err
	}
	defer pack.Close()

	for i, h := range hs {
		a, layout, err := spritesheet.Resolve(reg, h)
		if err != nil {
			return err
		}
		imagePath, _ := reg.Path(a.Sheet)
		if err := pack.Put(names[i], respack.NewRecord(descriptors[i], imagePath, a, layout)); err != nil {
			return err
		}
		glog.Infof("packed %q from %q: %d regions", names[i], descriptors[i], a.Len())
		reg.Release(h)
	}
	return nil
}

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if err := run(context.Background()); err != nil {
		glog.Errorf("sheetpack: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
