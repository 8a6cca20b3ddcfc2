package emu

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nf/c8/chip8"
)

func words(ws ...uint16) []byte {
	b := make([]byte, 0, len(ws)*2)
	for _, w := range ws {
		b = append(b, byte(w>>8), byte(w))
	}
	return b
}

type testRunner struct {
	*Runner
	t      *testing.T
	states chan StateKind
	errc   chan error
}

func startRunner(t *testing.T, cfg Config, rom []byte) *testRunner {
	t.Helper()
	cfg.Mute = true
	if cfg.Period == 0 {
		cfg.Period = time.Millisecond
	}
	states := make(chan StateKind, 1000)
	r := &testRunner{
		Runner: NewRunner(cfg, func(m *chip8.Machine, k StateKind) {
			if k == QuietState {
				return
			}
			select {
			case states <- k:
			default:
			}
		}),
		t:      t,
		states: states,
		errc:   make(chan error, 1),
	}
	go func() { r.errc <- r.Run(rom) }()
	t.Cleanup(func() {
		r.Exit()
		<-r.Done()
	})
	return r
}

// waitFrame returns the first frame that satisfies ok.
func (r *testRunner) waitFrame(ok func(*Frame) bool) *Frame {
	r.t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case f := <-r.Frames():
			if ok(f) {
				return f
			}
		case <-timeout:
			r.t.Fatal("timed out waiting for frame")
		}
	}
}

func (r *testRunner) waitState(k StateKind) {
	r.t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case g := <-r.states:
			if g == k {
				return
			}
		case <-timeout:
			r.t.Fatalf("timed out waiting for state %d", k)
		}
	}
}

func TestRunnerDraws(t *testing.T) {
	r := startRunner(t, Config{}, words(0xa050, 0xd015, 0x1204))
	f := r.waitFrame(func(f *Frame) bool { return f.PC == 0x204 })
	if f.Screen.RGBAAt(0, 0) != pixelOn || f.Screen.RGBAAt(1, 1) != pixelOff {
		t.Errorf("screen does not show glyph 0")
	}
	if f.Op.Kind != chip8.JP || f.I != chip8.FontAddr {
		t.Errorf("frame Op=%v I=%.4x, want JP and %.4x", f.Op, f.I, chip8.FontAddr)
	}
}

func TestRunnerKeys(t *testing.T) {
	r := startRunner(t, Config{}, words(0xf30a, 0x1202))
	r.waitFrame(func(f *Frame) bool { return f.Op.Kind == chip8.KEY })
	if !r.KeyRune('F') { // keypad E
		t.Fatal("KeyRune('F') not recognised")
	}
	f := r.waitFrame(func(f *Frame) bool { return f.PC == 0x202 })
	if f.V[3] != 0xe {
		t.Errorf("V3 = %x, want e", f.V[3])
	}
	if r.KeyRune('#') {
		t.Errorf("KeyRune('#') recognised")
	}
}

func TestRunnerHaltNonInteractive(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "dump")
	r := startRunner(t, Config{DumpFile: dump}, words(0x6001, 0xffff))
	var err error
	select {
	case err = <-r.errc:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for halt")
	}
	h, ok := err.(chip8.HaltError)
	if !ok || h.HaltCode != chip8.BadInstr || h.Offset() != 2 {
		t.Fatalf("Run returned %v, want unknown instruction at offset 2", err)
	}
	b, err := os.ReadFile(dump)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != chip8.MemSize || !bytes.Equal(b[0x200:0x204], []byte{0x60, 0x01, 0xff, 0xff}) {
		t.Errorf("dump has %d bytes, program %x", len(b), b[0x200:0x204])
	}
}

func TestRunnerHaltInteractive(t *testing.T) {
	r := startRunner(t, Config{Interactive: true}, words(0xffff))
	r.waitState(HaltState)
	r.waitFrame(func(f *Frame) bool { return !f.Running && f.PC == 0x200 })
	if err := r.Swap(words(0x6042, 0x1202)); err != nil {
		t.Fatal(err)
	}
	f := r.waitFrame(func(f *Frame) bool { return f.PC == 0x202 })
	if f.V[0] != 0x42 || !f.Running {
		t.Errorf("after swap V0=%x Running=%v", f.V[0], f.Running)
	}
	if err := r.Swap(make([]byte, chip8.MaxProgramSize+1)); err == nil {
		t.Errorf("Swap accepted an oversized program")
	}
}

func TestRunnerPauseStep(t *testing.T) {
	r := startRunner(t, Config{Interactive: true}, words(0x7001, 0x1200))
	r.Debug("pause", 0)
	r.waitState(PauseState)
	f0 := r.waitFrame(func(f *Frame) bool { return !f.Running })
	time.Sleep(10 * time.Millisecond)
	f1 := r.waitFrame(func(f *Frame) bool { return true })
	if f1.PC != f0.PC || f1.V[0] != f0.V[0] {
		t.Fatalf("paused machine moved from %.4x/%d to %.4x/%d", f0.PC, f0.V[0], f1.PC, f1.V[0])
	}

	r.Debug("step", 0)
	r.waitState(StepState)
	f2 := r.waitFrame(func(f *Frame) bool { return f.PC != f0.PC })
	if f2.Running || f2.PC != f0.PC^0x2 {
		t.Errorf("after step Running=%v PC=%.4x", f2.Running, f2.PC)
	}

	r.Debug("continue", 0)
	r.waitFrame(func(f *Frame) bool { return f.Running })
}

func TestRunnerBreak(t *testing.T) {
	r := startRunner(t, Config{Interactive: true}, words(0x7001, 0x7001, 0x1200))
	r.Debug("break", 0x202)
	r.waitState(BreakState)
	f := r.waitFrame(func(f *Frame) bool { return !f.Running })
	if f.PC != 0x202 {
		t.Errorf("stopped at %.4x, want 0202", f.PC)
	}

	// Continuing leaves the breakpoint and stops at it again.
	r.Debug("continue", 0)
	r.waitState(BreakState)
	r.Debug("break", 0)
	r.Debug("continue", 0)
	r.waitFrame(func(f *Frame) bool { return f.Running && f.PC == 0x204 })
}

func TestRunnerResetAndOverlay(t *testing.T) {
	// Count V0 up to 100 and then spin.
	prog := words(0x7001, 0x3064, 0x1200, 0x1206)
	r := startRunner(t, Config{Interactive: true, Overlay: true}, prog)
	r.waitState(ClearState)
	f := r.waitFrame(func(f *Frame) bool { return f.PC == 0x206 })
	if !f.Overlay || f.V[0] != 100 {
		t.Fatalf("Overlay=%v V0=%d, want true 100", f.Overlay, f.V[0])
	}
	r.Debug("overlay", 0)
	r.Debug("reset", 0)
	r.waitState(ClearState)
	f = r.waitFrame(func(f *Frame) bool { return f.V[0] < 100 })
	if f.Overlay {
		t.Errorf("overlay still enabled")
	}
}

func TestRunnerExit(t *testing.T) {
	r := startRunner(t, Config{Interactive: true}, words(0x1200))
	r.Exit()
	select {
	case err := <-r.errc:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for exit")
	}
	if err := r.Swap(words(0x1200)); err == nil {
		t.Errorf("Swap after exit succeeded")
	}
}

func TestRunnerLoadError(t *testing.T) {
	r := NewRunner(Config{Mute: true}, nil)
	if err := r.Run(make([]byte, chip8.MaxProgramSize+1)); err == nil {
		t.Errorf("Run accepted an oversized program")
	}
}
