package emu

import (
	"log"

	"github.com/nf/c8/chip8"
)

const traceLen = 32

// trace remembers the most recently executed instructions so that they
// can be logged when the machine halts. Decoding is deferred to Emit.
type trace struct {
	pcs   [traceLen]uint16
	words [traceLen]uint16
	next  int // index of the slot to write
	n     int // number of valid slots
}

func (t *trace) Add(pc, word uint16) {
	t.pcs[t.next], t.words[t.next] = pc, word
	t.next = (t.next + 1) % traceLen
	t.n = min(t.n+1, traceLen)
}

// Emit logs the recorded instructions, oldest first.
func (t *trace) Emit() {
	for i := t.next - t.n; i < t.next; i++ {
		j := (i + traceLen) % traceLen
		log.Printf("%.4x: %.4x %v", t.pcs[j], t.words[j], chip8.Decode(t.words[j]))
	}
}

func (t *trace) Reset() { t.next, t.n = 0, 0 }
