package chip8

import "strings"

// Screen is the 64x32 monochrome framebuffer. Each row is a uint64 with
// pixel x=0 in the most significant bit.
type Screen [Height]uint64

// Pixel reports whether the pixel at x, y is set.
// Coordinates wrap around the screen edges.
func (s *Screen) Pixel(x, y int) bool {
	return s[mod(y, Height)]&bit(x) != 0
}

// flip toggles the pixel at x, y and returns its new value.
func (s *Screen) flip(x, y int) bool {
	row := &s[mod(y, Height)]
	*row ^= bit(x)
	return *row&bit(x) != 0
}

// Lit returns the number of set pixels.
func (s *Screen) Lit() (n int) {
	for _, row := range s {
		for ; row != 0; row &= row - 1 {
			n++
		}
	}
	return n
}

// String renders the screen as Height lines of '#' and '.'.
func (s Screen) String() string {
	var b strings.Builder
	b.Grow((Width + 1) * Height)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if s.Pixel(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func bit(x int) uint64 { return 1 << (Width - 1 - mod(x, Width)) }

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
