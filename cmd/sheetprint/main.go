// Command sheetprint loads a sprite sheet descriptor and lists its regions, or
// prints one of them on the terminal.
//
//	sheetprint -assets ./assets -sheet space-shooter/sheet.xml -list
//	sheetprint -assets ./assets -sheet space-shooter/sheet.xml -name playerShip1_blue.png
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/bradfitz/iter"
	"github.com/golang/glog"
	"github.com/nfnt/resize"

	"badc0de.net/pkg/go-spritesheet/assets"
	"badc0de.net/pkg/go-spritesheet/imageprint"
	"badc0de.net/pkg/go-spritesheet/paths"
	"badc0de.net/pkg/go-spritesheet/spritesheet"
)

var (
	assetsFlag = flag.String("assets", "", "directory or http(s) URL to load assets from; empty searches the default asset directories")
	sheetPath  = flag.String("sheet", "", "path of the descriptor, relative to -assets")
	imageExt   = flag.String("image_ext", spritesheet.DefaultImageExt, "extension of the companion image")
	list       = flag.Bool("list", false, "list regions instead of printing one")
	regionIdx  = flag.Int("index", -1, "index of the region to print")
	regionName = flag.String("name", "", "name of the region to print")
	mode       = flag.String("mode", "24bit", "output mode: 24bit, 256, none, iterm or rasterm")
	blanks     = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize   = flag.Bool("downsize", true, "whether to shrink regions larger than the terminal")
)

func listRegions(a *spritesheet.Asset, layoutLen int) {
	fmt.Printf("%d regions, %d rectangles\n", a.Len(), layoutLen)
	for i := range iter.N(a.Len()) {
		fmt.Printf("%4d %s\n", i, a.Textures[i])
	}
}

func fit(img image.Image) image.Image {
	if !*downsize {
		return img
	}
	termSize, err := GetTermSize()
	if err != nil {
		glog.V(1).Infof("no terminal size: %v", err)
		return img
	}
	if (termSize.WSXPixel != 0 && termSize.WSYPixel != 0) && (*mode == "rasterm" || *mode == "iterm") {
		// Images are drawn in native pixels; only shrink what does not fit.
		return resize.Thumbnail(termSize.WSXPixel, termSize.WSYPixel, img, resize.Lanczos3)
	}
	// Each pixel takes two columns.
	return resize.Thumbnail(termSize.WSCol/2, termSize.WSRow, img, resize.Lanczos3)
}

func run(ctx context.Context) error {
	if *sheetPath == "" {
		return fmt.Errorf("-sheet is required")
	}
	m, err := imageprint.ParseMode(*mode)
	if err != nil {
		return err
	}

	reg := assets.NewRegistry(paths.FromFlag(*assetsFlag))
	l := spritesheet.Register(reg)
	l.ImageExt = *imageExt
	l.Observer = func(path string, s spritesheet.State, err error) {
		glog.V(2).Infof("%s: %v", path, s)
	}

	h, err := reg.Load(ctx, *sheetPath)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	a, layout, err := spritesheet.Resolve(reg, h)
	if err != nil {
		return err
	}
	for i := range a.Textures {
		if !layout.Contains(i) {
			glog.Warningf("region %d (%s) does not fit on the %dx%d sheet", i, a.Textures[i].Name, layout.Size.X, layout.Size.Y)
		}
	}

	if *list || (*regionIdx < 0 && *regionName == "") {
		listRegions(a, layout.Len())
		return nil
	}

	idx := *regionIdx
	if *regionName != "" {
		var ok bool
		if idx, ok = a.Index(*regionName); !ok {
			return fmt.Errorf("no region named %q", *regionName)
		}
	}
	sheet, err := reg.Image(a.Sheet)
	if err != nil {
		return err
	}
	img, err := spritesheet.Region(sheet, layout, idx)
	if err != nil {
		return err
	}

	p := &imageprint.Printer{W: os.Stdout, Mode: m, Blanks: *blanks}
	return p.Print(fit(img))
}

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if err := run(context.Background()); err != nil {
		glog.Errorf("sheetprint: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
