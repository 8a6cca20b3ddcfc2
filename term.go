package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/emu"
)

// terminal displays frames in a text terminal, two pixel rows per line,
// and passes typed keys to the runner.
type terminal struct {
	s tcell.Screen
}

// newTerminal initialises s, or the controlling terminal if s is nil.
func newTerminal(s tcell.Screen) (*terminal, error) {
	if s == nil {
		var err error
		if s, err = tcell.NewScreen(); err != nil {
			return nil, err
		}
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.HideCursor()
	s.Clear()
	return &terminal{s: s}, nil
}

func (t *terminal) Close() { t.s.Fini() }

// Run draws frames from r until r is done, exiting r if escape is pressed.
func (t *terminal) Run(r *emu.Runner) {
	go t.pollKeys(r)
	for {
		select {
		case f := <-r.Frames():
			t.draw(f)
		case <-r.Done():
			return
		}
	}
}

func (t *terminal) pollKeys(r *emu.Runner) {
	for {
		switch ev := t.s.PollEvent().(type) {
		case nil:
			return // screen finalized
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				r.Exit()
				return
			case tcell.KeyRune:
				r.KeyRune(ev.Rune())
			}
		case *tcell.EventResize:
			t.s.Sync()
		}
	}
}

var (
	termOn  = tcell.ColorWhite
	termOff = tcell.ColorBlack
)

func (t *terminal) draw(f *emu.Frame) {
	lit := func(x, y int) bool { return f.Screen.RGBAAt(x, y).R >= 0x80 }
	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			top, bottom := termOff, termOff
			if lit(x, y) {
				top = termOn
			}
			if lit(x, y+1) {
				bottom = termOn
			}
			st := tcell.StyleDefault.Foreground(top).Background(bottom)
			t.s.SetContent(x, y/2, '▀', nil, st)
		}
	}
	row := chip8.Height/2 + 1
	w, _ := t.s.Size()
	for _, line := range f.OverlayText() {
		for x := 0; x < w; x++ {
			c := ' '
			if f.Overlay && x < len(line) {
				c = rune(line[x])
			}
			t.s.SetContent(x, row, c, nil, tcell.StyleDefault)
		}
		row++
	}
	t.s.Show()
}
