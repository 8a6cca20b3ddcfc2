package chip8

import "fmt"

// Fetch returns the big-endian instruction word at m.PC and reports whether
// a complete word lies within memory.
func (m *Machine) Fetch() (uint16, bool) {
	if m.PC > MemSize-2 {
		return 0, false
	}
	return short(m.Mem[m.PC], m.Mem[m.PC+1]), true
}

// Exec executes the instruction at m.PC. It only returns a non-nil error,
// always a HaltError, if it encounters a halt condition, in which case
// Running is cleared and m.PC is left at the offending instruction.
// Halting instructions leave the rest of the machine state unchanged.
func (m *Machine) Exec() (err error) {
	var (
		opPC = m.PC
		op   Op
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(HaltCode); ok {
				m.PC = opPC
				m.Running = false
				err = HaltError{
					HaltCode: code,
					Op:       op,
					Addr:     opPC,
				}
			} else {
				panic(e)
			}
		}
	}()

	w, ok := m.Fetch()
	if !ok {
		panic(OutOfRange)
	}
	op = Decode(w)

	var (
		vx = &m.V[op.X]
		vy = m.V[op.Y]
	)
	switch op.Kind {
	case CLS:
		m.clear()
	case RET:
		m.PC = m.Stack.Pop()
	case JP:
		m.PC = op.NNN
		return nil
	case CALL:
		m.Stack.Push(m.PC)
		m.PC = op.NNN
		return nil
	case SEI:
		m.skipIf(*vx == op.NN)
	case SNEI:
		m.skipIf(*vx != op.NN)
	case SE:
		m.skipIf(*vx == vy)
	case SNE:
		m.skipIf(*vx != vy)
	case LDI:
		*vx = op.NN
	case ADDI:
		*vx += op.NN
	case LD:
		*vx = vy
	case OR:
		m.setFlag(vx, *vx|vy, 0)
	case AND:
		m.setFlag(vx, *vx&vy, 0)
	case XOR:
		m.setFlag(vx, *vx^vy, 0)
	case ADD:
		sum := uint16(*vx) + uint16(vy)
		m.setFlag(vx, byte(sum), flag(sum > 0xff))
	case SUB:
		m.setFlag(vx, *vx-vy, flag(*vx >= vy))
	case SUBN:
		m.setFlag(vx, vy-*vx, flag(vy >= *vx))
	case SHR:
		src := vy
		if m.Quirks.ShiftVX {
			src = *vx
		}
		m.setFlag(vx, src>>1, src&1)
	case SHL:
		src := *vx
		m.setFlag(vx, src<<1, src>>7)
	case LDA:
		m.I = op.NNN
	case JPV:
		m.PC = op.NNN + uint16(m.V[0])
		return nil
	case RND:
		*vx = m.random() & op.NN
	case DRW:
		m.draw(int(*vx), int(vy), op.N)
	case SKP:
		m.skipIf(m.Keys[*vx&0xf])
	case SKNP:
		m.skipIf(!m.Keys[*vx&0xf])
	case GDT:
		*vx = m.DT
	case KEY:
		k, ok := m.firstKey()
		if !ok {
			// Re-execute this instruction on the next tick.
			return nil
		}
		*vx = k
	case SDT:
		m.DT = *vx
	case SST:
		if m.ST == 0 && *vx != 0 {
			m.tone(true)
		} else if m.ST != 0 && *vx == 0 {
			m.tone(false)
		}
		m.ST = *vx
	case ADDA:
		m.I += uint16(*vx)
	case FNT:
		m.I = FontAddr + uint16(*vx)*5
	case BCD:
		b := m.store(m.I, 3)
		b[0] = *vx / 100
		b[1] = *vx / 10 % 10
		b[2] = *vx % 10
	case STM:
		copy(m.store(m.I, int(op.X)+1), m.V[:op.X+1])
	case LDM:
		copy(m.V[:op.X+1], m.span(m.I, int(op.X)+1))
	case SYS, Invalid:
		panic(BadInstr)
	default:
		panic(fmt.Errorf("internal error: %v not implemented", op.Kind))
	}

	m.PC += 2
	return nil
}

// setFlag stores v in the register r and then f in VF, so that VF holds
// the flag when r is VF.
func (m *Machine) setFlag(r *byte, v, f byte) {
	*r = v
	m.V[0xf] = f
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
}

func (m *Machine) firstKey() (byte, bool) {
	for k, down := range m.Keys {
		if down {
			return byte(k), true
		}
	}
	return 0, false
}

// draw XORs the n-byte sprite at I onto the screen at x, y, setting VF if
// any set pixel was turned off.
func (m *Machine) draw(x, y int, n byte) {
	sprite := m.span(m.I, int(n))
	var collision byte
	for row, b := range sprite {
		for i := 0; i < 8; i++ {
			if b&(0x80>>i) == 0 {
				continue
			}
			px, py := (x+i)%Width, (y+row)%Height
			on := m.Screen.flip(px, py)
			if !on {
				collision = 1
			}
			m.pixel(px, py, on)
		}
	}
	m.V[0xf] = collision
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}
