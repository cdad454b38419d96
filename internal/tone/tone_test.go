package tone

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChime_Gain(t *testing.T) {
	tests := []struct {
		at   time.Duration
		want float64
	}{
		{0, 0},
		{50 * time.Millisecond, 0.25},
		{100 * time.Millisecond, 0.5},
		{300 * time.Millisecond, 0.25},
		{500 * time.Millisecond, 0},
		{time.Second, 0},
		{-time.Millisecond, 0},
	}

	for _, tt := range tests {
		got := Chime.Gain(tt.at)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Gain(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestEnvelope_Validate(t *testing.T) {
	if err := Chime.Validate(); err != nil {
		t.Fatalf("Chime.Validate() error = %v", err)
	}

	bad := []Envelope{
		{Frequency: 0, Peak: 0.5, Attack: 0, Duration: time.Second},
		{Frequency: 440, Peak: 1.5, Attack: 0, Duration: time.Second},
		{Frequency: 440, Peak: 0.5, Attack: 0, Duration: 0},
		{Frequency: 440, Peak: 0.5, Attack: 2 * time.Second, Duration: time.Second},
	}
	for i, e := range bad {
		if err := e.Validate(); err == nil {
			t.Errorf("case %d: Validate() expected error for %+v", i, e)
		}
	}
}

func TestEnvelope_SamplesBounded(t *testing.T) {
	samples := Chime.Samples(8000)
	if len(samples) != 4000 {
		t.Fatalf("len(samples) = %d, want 4000", len(samples))
	}
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak > Chime.Peak+1e-9 {
		t.Errorf("peak amplitude %v exceeds envelope peak %v", peak, Chime.Peak)
	}
	if peak < Chime.Peak*0.9 {
		t.Errorf("peak amplitude %v never approaches envelope peak", peak)
	}
	if samples[0] != 0 {
		t.Errorf("first sample = %v, want silence", samples[0])
	}
}

func TestEnvelope_WAV(t *testing.T) {
	data, err := Chime.WAV(DefaultSampleRate)
	if err != nil {
		t.Fatalf("WAV() error = %v", err)
	}

	if !bytes.HasPrefix(data, []byte("RIFF")) || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header: %q", data[:12])
	}

	rate := binary.LittleEndian.Uint32(data[24:28])
	if rate != DefaultSampleRate {
		t.Errorf("sample rate = %d, want %d", rate, DefaultSampleRate)
	}
	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if int(dataSize) != len(data)-44 {
		t.Errorf("data chunk size = %d, payload = %d", dataSize, len(data)-44)
	}
	wantSamples := int(Chime.Duration.Seconds() * DefaultSampleRate)
	if int(dataSize) != wantSamples*2 {
		t.Errorf("data size = %d, want %d", dataSize, wantSamples*2)
	}
}

func TestEnvelope_WAVErrors(t *testing.T) {
	if _, err := Chime.WAV(0); err == nil {
		t.Error("WAV(0) expected error")
	}
	if _, err := (Envelope{}).WAV(DefaultSampleRate); err == nil {
		t.Error("WAV() of zero envelope expected error")
	}
}

type recordingOutput struct {
	mu     sync.Mutex
	played []Envelope
	err    error
	closed atomic.Int32
}

func (r *recordingOutput) Play(e Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, e)
	return r.err
}

func (r *recordingOutput) Close() error {
	r.closed.Add(1)
	return nil
}

func (r *recordingOutput) Plays() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.played)
}

func TestPlayer_OpensOutputOnce(t *testing.T) {
	out := &recordingOutput{}
	var opens atomic.Int32
	p := NewPlayer(func() (Output, error) {
		opens.Add(1)
		return out, nil
	}, Chime, testLogger())

	if opens.Load() != 0 {
		t.Fatal("output opened before first Play")
	}

	for i := 0; i < 5; i++ {
		p.Play()
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := opens.Load(); got != 1 {
		t.Errorf("opener called %d times, want 1", got)
	}
	if got := out.Plays(); got != 5 {
		t.Errorf("played %d times, want 5", got)
	}
	if out.closed.Load() != 1 {
		t.Error("output not closed on Close")
	}
}

func TestPlayer_ErrorsSwallowed(t *testing.T) {
	out := &recordingOutput{err: errors.New("no audio device")}
	p := NewPlayer(func() (Output, error) { return out, nil }, Chime, testLogger())

	p.Play()
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if out.Plays() != 1 {
		t.Error("Play was not attempted")
	}
}

func TestPlayer_OpenFailure(t *testing.T) {
	var opens atomic.Int32
	p := NewPlayer(func() (Output, error) {
		opens.Add(1)
		return nil, errors.New("device busy")
	}, Chime, testLogger())

	p.Play()
	p.Play()
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if opens.Load() != 1 {
		t.Errorf("opener retried: %d calls", opens.Load())
	}
}

func TestPlayer_CloseWithoutPlay(t *testing.T) {
	var opens atomic.Int32
	p := NewPlayer(func() (Output, error) {
		opens.Add(1)
		return &recordingOutput{}, nil
	}, Chime, testLogger())

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	p.Play() // no-op after close
	if opens.Load() != 0 {
		t.Error("output opened although Play never ran before Close")
	}
}

func TestPlayer_PanicRecovered(t *testing.T) {
	p := NewPlayer(func() (Output, error) { panic("driver exploded") }, Chime, testLogger())
	p.Play()
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestBellOpener(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlayer(BellOpener(&buf), Chime, testLogger())
	p.Play()
	_ = p.Close()

	if buf.String() != "\a" {
		t.Errorf("bell output = %q, want BEL", buf.String())
	}

	if _, err := BellOpener(nil)(); err == nil {
		t.Error("BellOpener(nil) expected error")
	}
}

func TestBeepOutput_FlatTone(t *testing.T) {
	var gotFreq float64
	var gotMs int
	var notified []string
	out := &beepOutput{
		title: "Internet Pulse",
		beep: func(freq float64, ms int) error {
			gotFreq, gotMs = freq, ms
			return nil
		},
		notify: func(title, message string) error {
			notified = append(notified, title, message)
			return nil
		},
	}

	if err := out.Play(Chime); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if gotFreq != 440 || gotMs != 500 {
		t.Errorf("beep(%v, %d), want beep(440, 500)", gotFreq, gotMs)
	}
	if len(notified) != 2 || notified[0] != "Internet Pulse" || notified[1] != "Connected" {
		t.Errorf("notify args = %v", notified)
	}
}

func TestBeepOutput_NoNotifyWithoutTitle(t *testing.T) {
	beepErr := errors.New("no speaker")
	out := &beepOutput{
		beep: func(float64, int) error { return beepErr },
		notify: func(string, string) error {
			t.Error("notify called without a title")
			return nil
		},
	}

	if err := out.Play(Chime); !errors.Is(err, beepErr) {
		t.Errorf("Play() error = %v, want %v", err, beepErr)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeBeep, false},
		{"beep", ModeBeep, false},
		{"bell", ModeBell, false},
		{"off", ModeOff, false},
		{"loud", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
