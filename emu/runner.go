// Package emu runs a CHIP-8 machine in real time and connects it to a
// display, keyboard and speaker.
package emu

import (
	"fmt"
	"image"
	"log"
	"os"
	"sync"
	"time"

	"github.com/nf/c8/chip8"
)

// DefaultPeriod is the interval between ticks of the machine.
const DefaultPeriod = 15 * time.Millisecond

type Config struct {
	// GUI opens a window that displays the machine and takes key input.
	GUI bool
	// Interactive keeps the machine alive after it halts, so that it may
	// be inspected, resumed, reset or swapped for another program.
	Interactive bool
	// Period is the tick interval. If zero, DefaultPeriod is used.
	Period time.Duration
	// DumpFile, if set, receives a copy of memory when the machine halts.
	DumpFile string
	// Overlay shows the debug overlay at start.
	Overlay bool
	// Mute disables sound output.
	Mute bool

	Quirks chip8.Quirks
}

// StateKind describes why a StateFunc is being called.
type StateKind int

const (
	ClearState StateKind = iota // machine was reset
	QuietState                  // a tick passed without incident
	PauseState
	StepState
	BreakState
	HaltState
)

// StateFunc is called from the Runner's goroutine after state changes.
// It must not retain m.
type StateFunc func(m *chip8.Machine, k StateKind)

// Runner owns a Machine and drives it from a fixed-period clock. All
// interaction with the machine (keys, debugger commands, program swaps and
// display frames) is passed as messages to the goroutine started by Run.
type Runner struct {
	cfg   Config
	state StateFunc

	keys     chan byte
	debug    chan debugCmd
	swap     chan []byte
	swapDone chan error
	frames   chan *Frame

	exit     chan bool
	exitOnce sync.Once
	done     chan bool
}

type debugCmd struct {
	cmd  string
	addr uint16
}

func NewRunner(cfg Config, state StateFunc) *Runner {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	return &Runner{
		cfg:      cfg,
		state:    state,
		keys:     make(chan byte, chip8.NumKeys),
		debug:    make(chan debugCmd),
		swap:     make(chan []byte),
		swapDone: make(chan error),
		frames:   make(chan *Frame, 1),
		exit:     make(chan bool),
		done:     make(chan bool),
	}
}

// Run loads rom and executes it until Exit is called or, if the runner is
// not interactive, until the machine halts. If the GUI is enabled then Run
// drives it from the calling goroutine.
func (r *Runner) Run(rom []byte) error {
	m := chip8.NewMachine()
	m.Quirks = r.cfg.Quirks
	if err := m.Load(rom); err != nil {
		close(r.done)
		return fmt.Errorf("loading program: %v", err)
	}

	var spk Speaker
	if !r.cfg.Mute {
		s, err := NewSound()
		if err != nil {
			log.Printf("sound: %v", err)
		} else {
			defer s.Close()
			spk = s
		}
	}
	d := NewDisplay(spk)
	m.Dev = d

	errc := make(chan error, 1)
	go func() {
		defer close(r.done)
		errc <- r.loop(m, d, rom)
	}()
	if r.cfg.GUI {
		// If the GUI is enabled then Run will drive the GUI
		// until the machine loop exits.
		if err := runGUI(r, r.done); err != nil {
			r.Exit()
			<-r.done
			return fmt.Errorf("gui: %v", err)
		}
		r.Exit()
	}
	return <-errc
}

func (r *Runner) loop(m *chip8.Machine, d *Display, rom []byte) error {
	t := time.NewTicker(r.cfg.Period)
	defer t.Stop()

	var (
		recent  trace
		overlay = r.cfg.Overlay
		brk     uint16 // zero for none
		pastBrk bool
	)
	r.report(m, ClearState)
	r.publish(m, d, m.Keys, overlay)
	for {
		select {
		case <-t.C:
			if brk != 0 && m.PC == brk && m.Running && !pastBrk {
				m.Pause()
				pastBrk = true
				r.report(m, BreakState)
			}
			executing := (m.Running || m.Step) && !m.Idle()
			stepping := m.Step
			if executing {
				w, _ := m.Fetch()
				recent.Add(m.PC, w)
				pastBrk = false
			}
			keys := m.Keys
			if err := m.Tick(); err != nil {
				recent.Emit()
				recent.Reset()
				log.Printf("chip8: %v", err)
				r.dump(m)
				r.report(m, HaltState)
				if !r.cfg.Interactive {
					return err
				}
			} else if executing && stepping {
				r.report(m, StepState)
			} else {
				r.report(m, QuietState)
			}
			r.publish(m, d, keys, overlay)

		case k := <-r.keys:
			m.Press(k)

		case c := <-r.debug:
			switch c.cmd {
			case "p", "pause":
				m.Pause()
				r.report(m, PauseState)
			case "c", "continue":
				m.Resume()
			case "t", "toggle":
				m.Toggle()
				if !m.Running {
					r.report(m, PauseState)
				}
			case "s", "step":
				m.RequestStep()
			case "r", "reset":
				r.reset(m, d, rom)
				recent.Reset()
			case "b", "break":
				brk, pastBrk = c.addr, false
			case "o", "overlay":
				overlay = !overlay
			default:
				log.Printf("unknown debug command %q", c.cmd)
			}
			r.publish(m, d, m.Keys, overlay)

		case newROM := <-r.swap:
			if len(newROM) > chip8.MaxProgramSize {
				r.swapDone <- fmt.Errorf("loading program: %v", chip8.ErrProgramTooLarge)
				break
			}
			rom = newROM
			r.reset(m, d, rom)
			recent.Reset()
			r.swapDone <- nil
			r.publish(m, d, m.Keys, overlay)

		case <-r.exit:
			return nil
		}
	}
}

func (r *Runner) reset(m *chip8.Machine, d *Display, rom []byte) {
	m.Reset()
	m.Load(rom) // length is checked before rom is accepted
	d.Clear()
	d.Tone(false)
	r.report(m, ClearState)
}

func (r *Runner) report(m *chip8.Machine, k StateKind) {
	if r.state != nil {
		r.state(m, k)
	}
}

// dump writes the machine's memory to the configured dump file.
func (r *Runner) dump(m *chip8.Machine) {
	if r.cfg.DumpFile == "" {
		return
	}
	if err := os.WriteFile(r.cfg.DumpFile, m.Mem[:], 0644); err != nil {
		log.Printf("writing memory dump: %v", err)
		return
	}
	log.Printf("memory dumped to %s", r.cfg.DumpFile)
}

// publish replaces any unread frame with the current state of m.
func (r *Runner) publish(m *chip8.Machine, d *Display, keys [chip8.NumKeys]bool, overlay bool) {
	w, _ := m.Fetch()
	f := &Frame{
		Screen:  image.NewRGBA(d.img.Rect),
		Ops:     d.ops,
		Overlay: overlay,
		Running: m.Running,
		Op:      chip8.Decode(w),
		PC:      m.PC,
		I:       m.I,
		SP:      m.Stack.Ptr,
		DT:      m.DT,
		ST:      m.ST,
		V:       m.V,
		Keys:    keys,
	}
	copy(f.Screen.Pix, d.img.Pix)
	select {
	case <-r.frames:
	default:
	}
	r.frames <- f
}

// Frames returns a channel that yields the latest frame after each tick.
// Frames that are not received in time are dropped.
func (r *Runner) Frames() <-chan *Frame { return r.frames }

// Done returns a channel that is closed when the machine loop has exited.
func (r *Runner) Done() <-chan bool { return r.done }

// Exit stops the machine loop.
func (r *Runner) Exit() {
	r.exitOnce.Do(func() { close(r.exit) })
}

// KeyDown latches keypad key k for the next tick.
func (r *Runner) KeyDown(k byte) {
	select {
	case r.keys <- k & 0xf:
	case <-r.done:
	}
}

// KeyRune handles a key typed on a keyboard, either as a keypad key or as
// one of the pause, step and overlay controls. It reports whether the rune
// was recognised.
func (r *Runner) KeyRune(c rune) bool {
	if k, ok := Key(c); ok {
		r.KeyDown(k)
		return true
	}
	switch toLower(c) {
	case KeyPause:
		r.Debug("toggle", 0)
	case KeyStep:
		r.Debug("step", 0)
	case KeyOverlay:
		r.Debug("overlay", 0)
	default:
		return false
	}
	return true
}

// Debug sends a debugger command to the machine loop. Commands are
// "pause", "continue", "toggle", "step", "reset", "overlay", and "break",
// which sets a breakpoint at addr (or clears it if addr is zero).
// Each may be abbreviated to its first letter.
func (r *Runner) Debug(cmd string, addr uint16) {
	select {
	case r.debug <- debugCmd{cmd, addr}:
	case <-r.done:
	}
}

// Swap resets the machine and loads rom in place of the current program.
func (r *Runner) Swap(rom []byte) error {
	select {
	case r.swap <- rom:
	case <-r.done:
		return fmt.Errorf("runner has exited")
	}
	select {
	case err := <-r.swapDone:
		return err
	case <-r.done:
		return fmt.Errorf("runner has exited")
	}
}
