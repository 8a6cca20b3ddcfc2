package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/emu"
)

func TestParseAddr(t *testing.T) {
	for _, c := range []struct {
		in   string
		want uint16
		ok   bool
	}{
		{"200", 0x200, true},
		{"0x2a0", 0x2a0, true},
		{"0XFFF", 0xfff, true},
		{" 50 ", 0x50, true},
		{"1000", 0, false},
		{"", 0, false},
		{"zz", 0, false},
		{"-1", 0, false},
	} {
		g, err := parseAddr(c.in)
		if (err == nil) != c.ok || g != c.want {
			t.Errorf("parseAddr(%q) = %.4x, %v", c.in, g, err)
		}
	}
}

func TestStateMsg(t *testing.T) {
	m := chip8.NewMachine()
	m.Load([]byte{0xd0, 0x15})
	m.V[1] = 0xab
	m.I = 0x50
	m.DT = 3
	m.Stack.Push(0x204)
	msg := stateMsg(m, emu.HaltState)
	for _, want := range []string{
		"0200 d015 DRW V0, V1, 5",
		"[HALT!]",
		"v:  00 ab 00",
		"i:  0050 dt: 03 st: 00",
		"rs: ( 204 )",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("state message %q does not contain %q", msg, want)
		}
	}
	if msg := stateMsg(m, emu.BreakState); !strings.Contains(msg, "[break]") {
		t.Errorf("break state message %q", msg)
	}
}

func TestDebuggerCommands(t *testing.T) {
	r := emu.NewRunner(emu.Config{Interactive: true, Mute: true, Period: time.Millisecond}, nil)
	go r.Run([]byte{0x12, 0x00})
	defer func() {
		r.Exit()
		<-r.Done()
	}()
	d := newDebugger()
	d.run = r

	d.command("b 0x200")
	d.command("w 200")
	d.command("w2 201")
	d.command("w2 fff") // no room for two bytes
	d.command("w nope")
	d.command("pause")

	m := chip8.NewMachine()
	m.Load([]byte{0x12, 0x00, 0x34})
	got := d.watchContent(m)
	want := "[0200] brk!\n[0200]   12\n[0201] 0034"
	if got != want {
		t.Errorf("watch content is %q, want %q", got, want)
	}

	d.command("b")
	if got := d.watchContent(m); strings.Contains(got, "brk") {
		t.Errorf("break not cleared: %q", got)
	}
}

func TestTerminalDraw(t *testing.T) {
	s := tcell.NewSimulationScreen("")
	term, err := newTerminal(s)
	if err != nil {
		t.Fatal(err)
	}
	defer term.Close()
	s.SetSize(80, 25)

	d := emu.NewDisplay(nil)
	d.Pixel(0, 0, true)
	d.Pixel(1, 1, true)
	d.Pixel(63, 31, true)
	f := &emu.Frame{Screen: d.Image(), Overlay: true, Op: chip8.Decode(0x00e0), PC: 0x200}
	term.draw(f)

	for _, c := range []struct {
		x, y   int
		fg, bg tcell.Color
	}{
		{0, 0, termOn, termOff},
		{1, 0, termOff, termOn},
		{2, 0, termOff, termOff},
		{63, 15, termOff, termOn},
	} {
		r, _, st, _ := s.GetContent(c.x, c.y)
		fg, bg, _ := st.Decompose()
		if r != '▀' || fg != c.fg || bg != c.bg {
			t.Errorf("cell %d,%d is %q %v/%v, want %v/%v", c.x, c.y, r, fg, bg, c.fg, c.bg)
		}
	}

	line := func(y int) string {
		var b strings.Builder
		for x := 0; x < 80; x++ {
			r, _, _, _ := s.GetContent(x, y)
			b.WriteRune(r)
		}
		return strings.TrimRight(b.String(), " ")
	}
	if g := line(chip8.Height/2 + 1); !strings.HasPrefix(g, "PAUSED CLS") {
		t.Errorf("overlay status line is %q", g)
	}

	f.Overlay = false
	term.draw(f)
	if g := line(chip8.Height/2 + 1); g != "" {
		t.Errorf("overlay line not blanked: %q", g)
	}
}
