package emu

import (
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate = 44100
	toneFreq   = 440
	toneLevel  = 0x1000
)

// Sound is a Speaker that plays a square wave through the default audio
// device.
type Sound struct {
	ctx    *oto.Context
	player *oto.Player
	on     atomic.Bool
	phase  int // accessed only by the player's Read calls
}

var _ Speaker = (*Sound)(nil)

// NewSound opens the audio device and starts a silent player.
func NewSound() (*Sound, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	s := &Sound{ctx: ctx}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

func (s *Sound) Tone(on bool) { s.on.Store(on) }

// Read implements io.Reader for the player, producing signed 16-bit
// little-endian samples.
func (s *Sound) Read(p []byte) (int, error) {
	s.phase = square(p, s.on.Load(), s.phase)
	return len(p) &^ 1, nil
}

func (s *Sound) Close() error {
	return s.player.Close()
}

// square fills p with whole 16-bit samples of a square wave starting at the
// given phase (in samples), or with silence if on is false, and returns the
// phase following the last sample.
func square(p []byte, on bool, phase int) int {
	const period = sampleRate / toneFreq
	for i := 0; i+1 < len(p); i += 2 {
		var v int16
		if on {
			v = toneLevel
			if phase >= period/2 {
				v = -toneLevel
			}
		}
		p[i] = byte(v)
		p[i+1] = byte(uint16(v) >> 8)
		phase = (phase + 1) % period
	}
	return phase
}
