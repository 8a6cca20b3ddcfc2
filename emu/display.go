package emu

import (
	"image"
	"image/color"

	"github.com/nf/c8/chip8"
)

var (
	pixelOn  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	pixelOff = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// Speaker plays a tone while the machine's sound timer is running.
type Speaker interface {
	Tone(on bool)
}

// Display is the chip8.Device attached to a running machine. It mirrors
// the machine's screen into an image and forwards tone changes to a
// Speaker.
type Display struct {
	img *image.RGBA
	ops int // total count of clear and pixel operations
	spk Speaker
}

var _ chip8.Device = (*Display)(nil)

// NewDisplay returns a blank display. The speaker may be nil.
func NewDisplay(spk Speaker) *Display {
	d := &Display{
		img: image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height)),
		spk: spk,
	}
	d.Clear()
	return d
}

func (d *Display) Clear() {
	for b := d.img.Pix; len(b) >= 4; b = b[4:] {
		b[0] = pixelOff.R
		b[1] = pixelOff.G
		b[2] = pixelOff.B
		b[3] = pixelOff.A
	}
	d.ops++
}

func (d *Display) Pixel(x, y int, on bool) {
	c := pixelOff
	if on {
		c = pixelOn
	}
	d.img.SetRGBA(x, y, c)
	d.ops++
}

func (d *Display) Tone(on bool) {
	if d.spk != nil {
		d.spk.Tone(on)
	}
}

// Image returns the display's image. It is only valid until the next
// operation on the display.
func (d *Display) Image() *image.RGBA { return d.img }
