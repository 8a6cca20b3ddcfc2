// Package chip8 provides an implementation of a CHIP-8 virtual machine,
// called Machine, that can be used to execute CHIP-8 programs.
package chip8

import (
	"errors"
	"math/rand"
)

const (
	MemSize    = 0x1000 // bytes of addressable memory
	LoadAddr   = 0x200  // where programs are loaded and execution begins
	FontAddr   = 0x050  // start of the built-in hex digit glyphs
	StackDepth = 16
	NumRegs    = 16
	NumKeys    = 16

	Width  = 64
	Height = 32
)

// MaxProgramSize is the largest program that fits in memory above LoadAddr.
const MaxProgramSize = MemSize - LoadAddr

// Machine is an implementation of a CHIP-8 CPU and its attached state.
type Machine struct {
	Mem    [MemSize]byte
	V      [NumRegs]byte
	I      uint16
	PC     uint16
	Stack  Stack
	DT, ST byte
	Screen Screen
	Keys   [NumKeys]bool

	// Running enables instruction execution on each Tick.
	// Step requests a single instruction while not Running.
	Running bool
	Step    bool

	Quirks Quirks
	Dev    Device
	Rand   func() byte
}

// Quirks selects between incompatible behaviours of CHIP-8 dialects.
type Quirks struct {
	// ShiftVX makes both 8XY6 and 8XYE shift VX in place.
	// By default 8XY6 shifts VY into VX and 8XYE shifts VX.
	ShiftVX bool
}

// Device receives the side effects of execution that are observable
// outside the machine.
type Device interface {
	// Clear is called when the screen is cleared.
	Clear()
	// Pixel is called for every pixel toggled by a sprite draw.
	Pixel(x, y int, on bool)
	// Tone is called with true when the sound timer is started and
	// false when it runs out.
	Tone(on bool)
}

var ErrProgramTooLarge = errors.New("program too large")

// NewMachine returns a Machine in its reset state.
func NewMachine() *Machine {
	m := &Machine{}
	m.Reset()
	return m
}

// Reset returns the machine to its power-on state, clearing memory.
// Dev, Rand and Quirks are preserved.
func (m *Machine) Reset() {
	*m = Machine{
		PC:      LoadAddr,
		Running: true,
		Quirks:  m.Quirks,
		Dev:     m.Dev,
		Rand:    m.Rand,
	}
	copy(m.Mem[FontAddr:], font[:])
}

// Load copies the given program into memory at LoadAddr.
// If the program does not fit, memory is left unchanged.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MaxProgramSize {
		return ErrProgramTooLarge
	}
	copy(m.Mem[LoadAddr:], rom)
	return nil
}

// Press latches key k as down until the end of the next Tick.
func (m *Machine) Press(k byte) { m.Keys[k&0xf] = true }

// Pause stops instruction execution; timers keep running.
func (m *Machine) Pause() {
	m.Running = false
	m.Step = false
}

// Resume restarts instruction execution.
func (m *Machine) Resume() { m.Running = true }

// Toggle pauses a running machine or resumes a paused one.
func (m *Machine) Toggle() {
	if m.Running {
		m.Pause()
	} else {
		m.Resume()
	}
}

// RequestStep asks for exactly one instruction to be executed by the next
// Tick, after which the machine is paused.
func (m *Machine) RequestStep() { m.Step = true }

func (m *Machine) random() byte {
	if m.Rand != nil {
		return m.Rand()
	}
	return byte(rand.Intn(256))
}

func (m *Machine) clear() {
	m.Screen = Screen{}
	if m.Dev != nil {
		m.Dev.Clear()
	}
}

func (m *Machine) pixel(x, y int, on bool) {
	if m.Dev != nil {
		m.Dev.Pixel(x, y, on)
	}
}

func (m *Machine) tone(on bool) {
	if m.Dev != nil {
		m.Dev.Tone(on)
	}
}

// span returns memory[addr:addr+n], halting with OutOfRange if any part of
// it lies outside memory.
func (m *Machine) span(addr uint16, n int) []byte {
	if int(addr)+n > MemSize {
		panic(OutOfRange)
	}
	return m.Mem[addr : int(addr)+n]
}

// store is span for writes. It also halts with OutOfRange if the span
// overlaps the font, which only Reset may write.
func (m *Machine) store(addr uint16, n int) []byte {
	if int(addr) < FontAddr+len(font) && int(addr)+n > FontAddr {
		panic(OutOfRange)
	}
	return m.span(addr, n)
}

var font = [80]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}
