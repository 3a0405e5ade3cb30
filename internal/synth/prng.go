// Package synth produces deterministic substitute market data for dates and
// symbols where no authoritative source is available. All output is a pure
// function of (date, symbol, reference price): same inputs, same bytes, on
// every machine and every run.
package synth

import "math"

// Seed folds date and symbol into a deterministic integer seed using a
// rolling multiply-add over the characters, truncated to 32 bits.
func Seed(date, symbol string) int64 {
	var h int32
	for _, c := range date + symbol {
		h = h*31 + int32(c)
	}
	if h < 0 {
		h = -h
	}
	return int64(h)
}

// Stream is a seeded pseudo-random sequence in [0, 1). The transform is a
// pure function of the integer state, so two streams with the same seed are
// identical everywhere. Not suitable for anything but reproducible test data.
type Stream struct {
	state int64
}

// NewStream returns a stream positioned at the given seed.
func NewStream(seed int64) *Stream {
	return &Stream{state: seed}
}

// Next advances the stream and returns the next value in [0, 1).
func (s *Stream) Next() float64 {
	s.state++
	x := math.Sin(float64(s.state)) * 10000
	return x - math.Floor(x)
}
