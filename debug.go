package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/emu"
)

// debugger is a terminal interface for inspecting and controlling a
// running machine.
type debugger struct {
	run *emu.Runner

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu      sync.Mutex
	brk     uint16 // zero for none
	watches []watch
}

type watch struct {
	addr  uint16
	short bool
}

func newDebugger() *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 4, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := d.input.GetText()
		d.input.SetText("")
		if line == "exit" {
			d.app.Stop()
			return
		}
		d.command(line)
	})
	return d
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) Stop() { d.app.Stop() }

// command interprets a line typed at the debugger prompt.
func (d *debugger) command(line string) {
	cmd, arg, hasArg := strings.Cut(strings.TrimSpace(line), " ")
	if cmd == "" {
		return
	}
	switch cmd {
	case "b", "break":
		if !hasArg {
			d.mu.Lock()
			d.brk = 0
			d.mu.Unlock()
			d.run.Debug(cmd, 0)
			log.Print("cleared break")
			return
		}
		addr, err := parseAddr(arg)
		if err != nil {
			log.Print(err)
			return
		}
		d.mu.Lock()
		d.brk = addr
		d.mu.Unlock()
		d.run.Debug(cmd, addr)
		log.Printf("set break %.4x", addr)
	case "w", "w2", "watch", "watch2":
		short := strings.HasSuffix(cmd, "2")
		addr, err := parseAddr(arg)
		if err == nil && short && addr == chip8.MemSize-1 {
			err = fmt.Errorf("invalid address %q", arg)
		}
		if err != nil {
			log.Print(err)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches, watch{addr: addr, short: short})
		d.mu.Unlock()
		log.Printf("watching %.4x", addr)
	default:
		d.run.Debug(cmd, 0)
	}
}

// parseAddr parses a hexadecimal memory address, with or without a 0x
// prefix.
func parseAddr(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil || v >= chip8.MemSize {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}

func (d *debugger) StateFunc(m *chip8.Machine, k emu.StateKind) {
	var (
		watch = d.watchContent(m)
		state string
	)
	if k != emu.QuietState {
		state = stateMsg(m, k)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case emu.StepState, emu.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case emu.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case emu.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case emu.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if k != emu.QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(m *chip8.Machine, k emu.StateKind) string {
	w, _ := m.Fetch()
	kind := "       "
	switch k {
	case emu.ClearState:
		kind = "[reset]"
	case emu.StepState:
		kind = "[step] "
	case emu.BreakState:
		kind = "[break]"
	case emu.PauseState:
		kind = "[pause]"
	case emu.HaltState:
		kind = "[HALT!]"
	}
	var v strings.Builder
	for i, r := range m.V {
		if i > 0 {
			v.WriteByte(' ')
		}
		fmt.Fprintf(&v, "%.2x", r)
	}
	return fmt.Sprintf("%.4x %.4x %-14v %s\nv:  %s\ni:  %.4x dt: %.2x st: %.2x\nrs: %v\n",
		m.PC, w, chip8.Decode(w), kind, v.String(), m.I, m.DT, m.ST, m.Stack)
}

func (d *debugger) watchContent(m *chip8.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if d.brk != 0 {
		fmt.Fprintf(&b, "[%.4x] brk!\n", d.brk)
	}
	for i, w := range d.watches {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%.4x] ", w.addr)
		if w.short {
			fmt.Fprintf(&b, "%.2x%.2x", m.Mem[w.addr], m.Mem[w.addr+1])
		} else {
			fmt.Fprintf(&b, "  %.2x", m.Mem[w.addr])
		}
	}
	return b.String()
}
