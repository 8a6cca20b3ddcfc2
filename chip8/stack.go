package chip8

import (
	"fmt"
	"strings"
)

// Stack implements the CHIP-8 call stack of return addresses.
type Stack struct {
	Addrs [StackDepth]uint16
	Ptr   byte
}

// Push saves addr, halting with Overflow if the stack is full.
func (s *Stack) Push(addr uint16) {
	if s.Ptr == StackDepth {
		panic(Overflow)
	}
	s.Addrs[s.Ptr] = addr
	s.Ptr++
}

// Pop removes the most recently pushed address, halting with Underflow if
// the stack is empty.
func (s *Stack) Pop() uint16 {
	if s.Ptr == 0 {
		panic(Underflow)
	}
	s.Ptr--
	return s.Addrs[s.Ptr]
}

// Peek returns the top of the stack and reports whether there is one.
func (s *Stack) Peek() (uint16, bool) {
	if s.Ptr == 0 {
		return 0, false
	}
	return s.Addrs[s.Ptr-1], true
}

func (s Stack) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range s.Addrs[:s.Ptr] {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%.3x", v)
	}
	b.WriteByte(' ')
	b.WriteByte(')')
	return b.String()
}
