// Package waveform is the seam to the external binary seismogram codec.
// The core never interprets waveform bytes itself; it hands the body to a
// Decoder and receives typed traces back.
package waveform

import (
	"time"

	"github.com/seisgo/fdsnws/internal/core/model"
)

// Trace is the minimal decoded-seismogram shape the core consumes.
type Trace struct {
	ID         model.Identity
	Start      time.Time
	SampleRate float64
	Samples    []float64
}

// Decoder turns an opaque binary payload into traces. Implementations live
// outside this module (typically a miniSEED codec).
type Decoder interface {
	Decode(data []byte) ([]Trace, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) ([]Trace, error)

func (f DecoderFunc) Decode(data []byte) ([]Trace, error) { return f(data) }
