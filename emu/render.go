package emu

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/nf/c8/chip8"
)

// Frame is a snapshot of a machine taken after a tick.
type Frame struct {
	Screen  *image.RGBA // chip8.Width x chip8.Height
	Ops     int         // display operations so far; unchanged means same Screen
	Overlay bool        // show the debug overlay

	Running bool
	Op      chip8.Op // next instruction
	PC, I   uint16
	SP      byte
	DT, ST  byte
	V       [chip8.NumRegs]byte
	Keys    [chip8.NumKeys]bool // keys seen by the last tick
}

const border = 6

var (
	backgroundColor = color.RGBA{0xff, 0xff, 0xff, 0xff}
	borderColor     = color.RGBA{0xaa, 0xaa, 0xaa, 0xff}
	textColor       = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// Layout returns the largest whole-number scaling of the screen that fits,
// with its border, centred in bounds.
func Layout(bounds image.Rectangle) image.Rectangle {
	size := bounds.Size()
	scale := min((size.X-2*border)/chip8.Width, (size.Y-2*border)/chip8.Height)
	if scale < 1 {
		scale = 1
	}
	w, h := chip8.Width*scale, chip8.Height*scale
	origin := bounds.Min.Add(image.Pt((size.X-w)/2, (size.Y-h)/2))
	return image.Rectangle{origin, origin.Add(image.Pt(w, h))}
}

// Render draws f into dst: the scaled screen inside a border, and the debug
// overlay above it if f.Overlay is set.
func Render(dst draw.Image, f *Frame) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	r := Layout(b)
	draw.Draw(dst, r.Inset(-border), image.NewUniform(borderColor), image.Point{}, draw.Src)
	draw.NearestNeighbor.Scale(dst, r, f.Screen, f.Screen.Bounds(), draw.Src, nil)
	if !f.Overlay {
		return
	}
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor),
		Face: face,
	}
	for i, line := range f.OverlayText() {
		d.Dot = fixed.P(r.Min.X, b.Min.Y+i*face.Height+face.Ascent)
		d.DrawString(line)
	}
}

// OverlayText returns the lines of the debug overlay.
func (f *Frame) OverlayText() []string {
	status := "RUNNING"
	if !f.Running {
		status = "PAUSED"
	}
	var keys, regs strings.Builder
	for i, down := range f.Keys {
		v := 0
		if down {
			v = 1
		}
		fmt.Fprintf(&keys, "%X=%d ", i, v)
	}
	for i, v := range f.V {
		fmt.Fprintf(&regs, "V%X=%.3d ", i, v)
	}
	return []string{
		fmt.Sprintf("%s %-14s | opcode: 0x%.4X | inst: 0x%.4X | PC: 0x%.4X (%.4d) | I: 0x%.4X (%.4d) | SP: %.2d | DT: %.3d | ST: %.3d",
			status, f.Op, f.Op.Word, uint16(f.Op.Family())<<12,
			f.PC, int(f.PC)-chip8.LoadAddr, f.I, f.I, f.SP, f.DT, f.ST),
		strings.TrimSpace(keys.String()),
		strings.TrimSpace(regs.String()),
	}
}
