package imageprint

import (
	"fmt"
	"image"
)

func (p *Printer) printRasTerm(i image.Image) error {
	return fmt.Errorf("imageprint: rasterm not supported on windows")
}
