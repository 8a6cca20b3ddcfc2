package emu

import (
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

const (
	windowWidth  = 800
	windowHeight = 600
)

// runGUI opens a window and shows frames from r until exit is closed or
// the window is closed. Key presses are sent to r.
func runGUI(r *Runner, exit <-chan bool) (err error) {
	driver.Main(func(s screen.Screen) {
		w, werr := s.NewWindow(&screen.NewWindowOptions{
			Title:  "c8",
			Width:  windowWidth,
			Height: windowHeight,
		})
		if werr != nil {
			err = werr
			return
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(update{})
					return
				}
			}
		}()

		g := &gui{s: s}
		defer g.release()

		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				if e.WidthPx+e.HeightPx == 0 {
					return
				}
				g.sz = e.Size()
				g.dirty = true

			case paint.Event:
				g.dirty = true

			case key.Event:
				if e.Direction == key.DirRelease {
					break
				}
				switch e.Code {
				case key.CodeEscape, key.CodeDeleteForward:
					return
				}
				if e.Rune > 0 {
					r.KeyRune(e.Rune)
				}

			case update:
				select {
				case f := <-r.Frames():
					if g.frame == nil || f.Ops != g.frame.Ops || f.Overlay || g.frame.Overlay {
						g.dirty = true
					}
					g.frame = f
				default:
				}
				if g.dirty && g.frame != nil {
					if err := g.draw(w); err != nil {
						log.Printf("gui: %v", err)
						return
					}
					g.dirty = false
				}

			case error:
				log.Print(e)
			}
		}
	})
	return err
}

type gui struct {
	s     screen.Screen
	buf   screen.Buffer
	sz    image.Point
	frame *Frame
	dirty bool
}

func (g *gui) draw(w screen.Window) error {
	if g.sz.X == 0 || g.sz.Y == 0 {
		g.sz = image.Point{windowWidth, windowHeight}
	}
	if g.buf == nil || g.buf.Size() != g.sz {
		g.release()
		b, err := g.s.NewBuffer(g.sz)
		if err != nil {
			return fmt.Errorf("allocating buffer: %v", err)
		}
		g.buf = b
	}
	Render(g.buf.RGBA(), g.frame)
	w.Upload(image.Point{}, g.buf, g.buf.Bounds())
	w.Publish()
	return nil
}

func (g *gui) release() {
	if g.buf != nil {
		g.buf.Release()
		g.buf = nil
	}
}
