// Package imageprint prints sprite sheet regions on a terminal. It is a debug
// aid with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"

	"github.com/gookit/color"
)

// Mode selects how pixels are written.
type Mode int

const (
	// TrueColor uses 24 bit background color escape sequences.
	TrueColor Mode = iota
	// Color256 uses the xterm 256 color palette.
	Color256
	// NoColor prints ascii art only.
	NoColor
	// ITerm uses iTerm2's inline image escape sequence.
	ITerm
	// RasTerm picks kitty, iTerm or sixel output, whichever the terminal
	// supports.
	RasTerm
)

// ParseMode maps a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "24bit", "truecolor", "":
		return TrueColor, nil
	case "256":
		return Color256, nil
	case "none":
		return NoColor, nil
	case "iterm":
		return ITerm, nil
	case "rasterm":
		return RasTerm, nil
	}
	return 0, fmt.Errorf("imageprint: unknown mode %q", s)
}

// Printer writes images to W.
type Printer struct {
	W    io.Writer
	Mode Mode
	// Blanks prints colored blanks instead of ascii art shading.
	Blanks bool
}

func (p *Printer) shade(col ic.Color) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		fmt.Fprintf(p.W, "\x1b[0m  ")
		return
	}
	cell := "  "
	if !p.Blanks {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}
	r, g, b := uint8(cR>>8), uint8(cG>>8), uint8(cB>>8)
	switch p.Mode {
	case NoColor:
		fmt.Fprint(p.W, cell)
	case Color256:
		fmt.Fprint(p.W, color.RGB(r, g, b, true).C256().Sprint(cell))
	default:
		fmt.Fprintf(p.W, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", r, g, b, cell)
	}
}

// Print draws the image.
func (p *Printer) Print(i image.Image) error {
	switch p.Mode {
	case ITerm:
		return p.printITerm(i, "region.png")
	case RasTerm:
		return p.printRasTerm(i)
	}
	for y := i.Bounds().Min.Y; y < i.Bounds().Max.Y; y++ {
		for x := i.Bounds().Min.X; x < i.Bounds().Max.X; x++ {
			p.shade(i.At(x, y))
		}
		if p.Mode != NoColor {
			fmt.Fprint(p.W, "\x1b[0m")
		}
		fmt.Fprint(p.W, "\n")
	}
	return nil
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func (p *Printer) printITerm(i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return err
	}
	bEnc.Close()
	_, err := fmt.Fprintf(p.W, "\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Size().X, i.Bounds().Size().Y, b.String())
	return err
}
