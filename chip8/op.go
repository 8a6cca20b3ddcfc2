package chip8

import "fmt"

// Kind identifies a CHIP-8 instruction.
type Kind byte

const (
	Invalid Kind = iota

	SYS  // 0NNN
	CLS  // 00E0
	RET  // 00EE
	JP   // 1NNN
	CALL // 2NNN
	SEI  // 3XNN
	SNEI // 4XNN
	SE   // 5XY0
	LDI  // 6XNN
	ADDI // 7XNN
	LD   // 8XY0
	OR   // 8XY1
	AND  // 8XY2
	XOR  // 8XY3
	ADD  // 8XY4
	SUB  // 8XY5
	SHR  // 8XY6
	SUBN // 8XY7
	SHL  // 8XYE
	SNE  // 9XY0
	LDA  // ANNN
	JPV  // BNNN
	RND  // CXNN
	DRW  // DXYN
	SKP  // EX9E
	SKNP // EXA1
	GDT  // FX07
	KEY  // FX0A
	SDT  // FX15
	SST  // FX18
	ADDA // FX1E
	FNT  // FX29
	BCD  // FX33
	STM  // FX55
	LDM  // FX65
)

var kindNames = [...]string{
	Invalid: "???",
	SYS:     "SYS",
	CLS:     "CLS",
	RET:     "RET",
	JP:      "JP",
	CALL:    "CALL",
	SEI:     "SE",
	SNEI:    "SNE",
	SE:      "SE",
	LDI:     "LD",
	ADDI:    "ADD",
	LD:      "LD",
	OR:      "OR",
	AND:     "AND",
	XOR:     "XOR",
	ADD:     "ADD",
	SUB:     "SUB",
	SHR:     "SHR",
	SUBN:    "SUBN",
	SHL:     "SHL",
	SNE:     "SNE",
	LDA:     "LD",
	JPV:     "JP",
	RND:     "RND",
	DRW:     "DRW",
	SKP:     "SKP",
	SKNP:    "SKNP",
	GDT:     "LD",
	KEY:     "LD",
	SDT:     "LD",
	SST:     "LD",
	ADDA:    "ADD",
	FNT:     "LD",
	BCD:     "LD",
	STM:     "LD",
	LDM:     "LD",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// Op is a decoded instruction word.
type Op struct {
	Word uint16
	Kind Kind
	X, Y byte   // register indices
	N    byte   // low nibble
	NN   byte   // low byte
	NNN  uint16 // low 12 bits
}

// Family returns the top nibble of the instruction word.
func (o Op) Family() byte { return byte(o.Word >> 12) }

// Decode splits an instruction word into its operand fields and
// identifies the instruction. Words that match no instruction decode
// with Kind Invalid.
func Decode(w uint16) Op {
	o := Op{
		Word: w,
		X:    byte(w>>8) & 0xf,
		Y:    byte(w>>4) & 0xf,
		N:    byte(w) & 0xf,
		NN:   byte(w),
		NNN:  w & 0xfff,
	}
	o.Kind = kind(w, o.N, o.NN)
	return o
}

func kind(w uint16, n, nn byte) Kind {
	switch w >> 12 {
	case 0x0:
		switch w {
		case 0x00e0:
			return CLS
		case 0x00ee:
			return RET
		}
		return SYS
	case 0x1:
		return JP
	case 0x2:
		return CALL
	case 0x3:
		return SEI
	case 0x4:
		return SNEI
	case 0x5:
		if n == 0 {
			return SE
		}
	case 0x6:
		return LDI
	case 0x7:
		return ADDI
	case 0x8:
		switch n {
		case 0x0:
			return LD
		case 0x1:
			return OR
		case 0x2:
			return AND
		case 0x3:
			return XOR
		case 0x4:
			return ADD
		case 0x5:
			return SUB
		case 0x6:
			return SHR
		case 0x7:
			return SUBN
		case 0xe:
			return SHL
		}
	case 0x9:
		if n == 0 {
			return SNE
		}
	case 0xa:
		return LDA
	case 0xb:
		return JPV
	case 0xc:
		return RND
	case 0xd:
		return DRW
	case 0xe:
		switch nn {
		case 0x9e:
			return SKP
		case 0xa1:
			return SKNP
		}
	case 0xf:
		switch nn {
		case 0x07:
			return GDT
		case 0x0a:
			return KEY
		case 0x15:
			return SDT
		case 0x18:
			return SST
		case 0x1e:
			return ADDA
		case 0x29:
			return FNT
		case 0x33:
			return BCD
		case 0x55:
			return STM
		case 0x65:
			return LDM
		}
	}
	return Invalid
}

// String returns the instruction in conventional assembler syntax.
func (o Op) String() string {
	k := o.Kind
	switch k {
	case CLS, RET:
		return k.String()
	case SYS, JP, CALL:
		return fmt.Sprintf("%s %.3X", k, o.NNN)
	case SEI, SNEI, LDI, ADDI, RND:
		return fmt.Sprintf("%s V%X, %.2X", k, o.X, o.NN)
	case SE, LD, OR, AND, XOR, ADD, SUB, SHR, SUBN, SHL, SNE:
		return fmt.Sprintf("%s V%X, V%X", k, o.X, o.Y)
	case LDA:
		return fmt.Sprintf("%s I, %.3X", k, o.NNN)
	case JPV:
		return fmt.Sprintf("%s V0, %.3X", k, o.NNN)
	case DRW:
		return fmt.Sprintf("%s V%X, V%X, %X", k, o.X, o.Y, o.N)
	case SKP, SKNP:
		return fmt.Sprintf("%s V%X", k, o.X)
	case GDT:
		return fmt.Sprintf("%s V%X, DT", k, o.X)
	case KEY:
		return fmt.Sprintf("%s V%X, K", k, o.X)
	case SDT:
		return fmt.Sprintf("%s DT, V%X", k, o.X)
	case SST:
		return fmt.Sprintf("%s ST, V%X", k, o.X)
	case ADDA:
		return fmt.Sprintf("%s I, V%X", k, o.X)
	case FNT:
		return fmt.Sprintf("%s F, V%X", k, o.X)
	case BCD:
		return fmt.Sprintf("%s B, V%X", k, o.X)
	case STM:
		return fmt.Sprintf("%s [I], V%X", k, o.X)
	case LDM:
		return fmt.Sprintf("%s V%X, [I]", k, o.X)
	}
	return fmt.Sprintf("%s %.4X", k, o.Word)
}
