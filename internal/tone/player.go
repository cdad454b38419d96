package tone

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
)

// Output is an opened audio handle.
type Output interface {
	Play(e Envelope) error
	Close() error
}

// Opener creates the [Output] handle. A [Player] calls it at most once.
type Opener func() (Output, error)

// Player plays an [Envelope] through a lazily opened [Output].
//
// Play is asynchronous and never reports errors to the caller; failures are
// logged. Player is safe for concurrent use.
type Player struct {
	open     Opener
	envelope Envelope
	logger   *slog.Logger

	once    sync.Once
	out     Output
	openErr error

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPlayer creates a [Player]. The output is not opened until the first
// [Player.Play].
func NewPlayer(open Opener, envelope Envelope, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		open:     open,
		envelope: envelope,
		logger:   logger,
	}
}

// Play starts playback in the background. It is a no-op after Close.
func (p *Player) Play() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("tone playback panicked", "panic", fmt.Sprintf("%v", r))
			}
		}()

		out, err := p.output()
		if err != nil {
			p.logger.Warn("tone output unavailable", "error", err)
			return
		}
		if err := out.Play(p.envelope); err != nil {
			p.logger.Warn("tone playback failed", "error", err)
		}
	}()
}

func (p *Player) output() (Output, error) {
	p.once.Do(func() {
		p.out, p.openErr = p.open()
		if p.openErr == nil && p.out == nil {
			p.openErr = errors.New("opener returned no output")
		}
	})
	return p.out, p.openErr
}

// Close waits for in-progress playback and releases the output handle, if it
// was ever opened. Close is idempotent.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()

	if p.out != nil {
		return p.out.Close()
	}
	return nil
}

// Mode selects the audio output.
type Mode string

const (
	// ModeBeep plays the tone on the host speaker. The speaker gets a flat
	// tone at the envelope's Frequency for its Duration; beeep has no gain
	// control, so Peak and Attack are not heard.
	ModeBeep Mode = "beep"

	// ModeBell writes a terminal bell.
	ModeBell Mode = "bell"

	// ModeOff disables the tone.
	ModeOff Mode = "off"
)

// ParseMode parses a mode name. Empty means [ModeBeep].
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeBeep, nil
	case ModeBeep, ModeBell, ModeOff:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown sound mode %q (expected beep, bell, or off)", s)
	}
}

// BeepOpener returns an [Opener] for the host speaker. When notifyTitle is
// non-empty a desktop notification accompanies the tone.
//
// Only Frequency and Duration reach the speaker; see [ModeBeep].
func BeepOpener(notifyTitle string) Opener {
	return func() (Output, error) {
		return &beepOutput{title: notifyTitle, beep: beeep.Beep, notify: notifyDesktop}, nil
	}
}

// BellOpener returns an [Opener] that writes BEL to w.
func BellOpener(w io.Writer) Opener {
	return func() (Output, error) {
		if w == nil {
			return nil, errors.New("bell output requires a writer")
		}
		return &bellOutput{w: w}, nil
	}
}

type beepOutput struct {
	title  string
	beep   func(freq float64, durationMs int) error
	notify func(title, message string) error
}

// Play sounds a flat tone; the gain envelope is dropped.
func (b *beepOutput) Play(e Envelope) error {
	err := b.beep(e.Frequency, int(e.Duration/time.Millisecond))
	if b.title != "" {
		err = errors.Join(err, b.notify(b.title, "Connected"))
	}
	return err
}

func notifyDesktop(title, message string) error {
	return beeep.Notify(title, message, "")
}

func (b *beepOutput) Close() error { return nil }

type bellOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func (b *bellOutput) Play(Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, "\a")
	return err
}

func (b *bellOutput) Close() error { return nil }
