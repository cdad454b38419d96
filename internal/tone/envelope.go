// Package tone plays the short "connected" chime.
//
// An [Envelope] describes the sound: a fixed-pitch sine wave whose gain
// ramps linearly up to a peak and back to silence. A [Player] owns a single
// [Output] handle that is opened on first use and reused until
// [Player.Close].
package tone

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// Envelope is a sine tone with a linear attack/release gain envelope.
//
// The full shape is rendered by [Envelope.WAV] and the browser widget. The
// host speaker output plays only Frequency for Duration.
type Envelope struct {
	// Frequency is the pitch in Hz.
	Frequency float64

	// Peak is the gain reached at the end of the attack, in [0, 1].
	Peak float64

	// Attack is the time taken to ramp from silence to Peak.
	Attack time.Duration

	// Duration is the total length; gain returns to zero at Duration.
	Duration time.Duration
}

// Chime is the reconnect tone: A4, half gain, 100ms attack, 500ms total.
var Chime = Envelope{
	Frequency: 440,
	Peak:      0.5,
	Attack:    100 * time.Millisecond,
	Duration:  500 * time.Millisecond,
}

// DefaultSampleRate is used by [Envelope.WAV] callers that have no
// preference.
const DefaultSampleRate = 22050

// Validate reports whether the envelope can be rendered.
func (e Envelope) Validate() error {
	switch {
	case e.Frequency <= 0:
		return errors.New("frequency must be positive")
	case e.Peak < 0 || e.Peak > 1:
		return errors.New("peak must be between 0 and 1")
	case e.Duration <= 0:
		return errors.New("duration must be positive")
	case e.Attack < 0 || e.Attack > e.Duration:
		return errors.New("attack must be between 0 and duration")
	}
	return nil
}

// Gain returns the envelope gain at offset t.
func (e Envelope) Gain(t time.Duration) float64 {
	switch {
	case t <= 0 || t >= e.Duration:
		return 0
	case t < e.Attack:
		return e.Peak * float64(t) / float64(e.Attack)
	default:
		release := e.Duration - e.Attack
		if release <= 0 {
			return 0
		}
		return e.Peak * float64(e.Duration-t) / float64(release)
	}
}

// Samples renders the envelope as float samples in [-1, 1].
func (e Envelope) Samples(rate int) []float64 {
	n := int(e.Duration.Seconds() * float64(rate))
	out := make([]float64, n)
	for i := range out {
		t := time.Duration(float64(i) / float64(rate) * float64(time.Second))
		out[i] = e.Gain(t) * math.Sin(2*math.Pi*e.Frequency*float64(i)/float64(rate))
	}
	return out
}

// WAV renders the envelope as a 16-bit mono PCM WAV file.
func (e Envelope) WAV(rate int) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if rate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	samples := e.Samples(rate)
	dataSize := uint32(len(samples) * 2)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))

	header := struct {
		RIFF          [4]byte
		ChunkSize     uint32
		WAVE          [4]byte
		Fmt           [4]byte
		FmtSize       uint32
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Data          [4]byte
		DataSize      uint32
	}{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1, // PCM
		Channels:      1,
		SampleRate:    uint32(rate),
		ByteRate:      uint32(rate * 2),
		BlockAlign:    2,
		BitsPerSample: 16,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = int16(math.Round(s * math.MaxInt16))
	}
	if err := binary.Write(&buf, binary.LittleEndian, pcm); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
