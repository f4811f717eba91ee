//go:build !windows

package imageprint

import (
	"fmt"
	"image"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"
)

// printRasTerm draws an image using the RasTerm library.
//
// This should enable drawing in Kitty terminal.
func (p *Printer) printRasTerm(i image.Image) error {
	if rasterm.IsTermKitty() {
		if err := (rasterm.Settings{}).KittyWriteImage(p.W, i); err != nil {
			return err
		}
		fmt.Fprintf(p.W, "\n")
		return nil
	}
	if rasterm.IsTermItermWez() {
		if err := (rasterm.Settings{}).ItermWriteImage(p.W, i); err != nil {
			return err
		}
		fmt.Fprintf(p.W, "\n")
		return nil
	}
	if capable, err := rasterm.IsSixelCapable(); capable && err == nil {
		palettedImage := image.NewPaletted(i.Bounds(), nil)
		quantizer := gogif.MedianCutQuantizer{NumColor: 64}
		quantizer.Quantize(palettedImage, i.Bounds(), i, image.Point{})

		if err := (rasterm.Settings{}).SixelWriteImage(p.W, palettedImage); err != nil {
			return err
		}
		fmt.Fprintf(p.W, "\n")
		return nil
	}
	return fmt.Errorf("imageprint: terminal supports neither kitty, iterm nor sixel images")
}
