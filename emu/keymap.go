package emu

import "unicode"

// Control keys.
const (
	KeyOverlay = 'i'
	KeyStep    = 'o'
	KeyPause   = 'p'
)

// keyset maps keyboard keys to keypad keys:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D      q w e r
//	7 8 9 E  <-  a s d f
//	A 0 B F      z x c v
var keyset = [16]rune{
	'x', '1', '2', '3',
	'q', 'w', 'e', 'a',
	's', 'd', 'z', 'c',
	'4', 'r', 'f', 'v',
}

// Key returns the keypad key for the keyboard rune c.
func Key(c rune) (byte, bool) {
	c = toLower(c)
	for k, r := range keyset {
		if r == c {
			return byte(k), true
		}
	}
	return 0, false
}

func toLower(c rune) rune { return unicode.ToLower(c) }
