package chip8

import "fmt"

// HaltError is returned by Exec and Tick if execution is halted
// for some reason.
type HaltError struct {
	HaltCode
	Op   Op
	Addr uint16
}

// Offset returns the address of the halting instruction relative to the
// start of the loaded program.
func (e HaltError) Offset() int { return int(e.Addr) - LoadAddr }

func (e HaltError) Error() string {
	return fmt.Sprintf("%s: %.4x (family %X) at %.4x (offset %d)",
		e.HaltCode, e.Op.Word, e.Op.Family(), e.Addr, e.Offset())
}

// HaltCode signifies the type of condition that halted execution.
type HaltCode byte

const (
	BadInstr   HaltCode = 0x01
	OutOfRange HaltCode = 0x02
	Overflow   HaltCode = 0x03
	Underflow  HaltCode = 0x04
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		BadInstr:   "unknown instruction",
		OutOfRange: "address out of range",
		Overflow:   "stack overflow",
		Underflow:  "stack underflow",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
