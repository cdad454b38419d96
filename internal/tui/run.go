package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jpalmerr/internetpulse"
)

// Run starts the full-screen indicator and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, ctrl Controller, title string, interval time.Duration) error {
	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	model := NewModel(ctrl, updates, title, interval)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// RunPlain writes one line per state change to w until ctx is cancelled or
// the subscription ends. The current state is written first.
func RunPlain(ctx context.Context, ctrl Controller, w io.Writer) error {
	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	last := ctrl.Snapshot()
	if err := writePlain(w, last); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-updates:
			if !ok {
				return nil
			}
			if s == last {
				continue
			}
			last = s
			if err := writePlain(w, s); err != nil {
				return err
			}
		}
	}
}

// FormatPlain renders a snapshot as a single log-style line.
func FormatPlain(s internetpulse.Snapshot) string {
	checking := "stopped"
	if s.CheckingEnabled {
		checking = "checking"
	}

	checked := "never"
	if !s.LastCheckedAt.IsZero() {
		checked = s.LastCheckedAt.Format(lastCheckedLayout)
	}

	return fmt.Sprintf("%s status=%s last_checked=%s", checking, s.Status, checked)
}

func writePlain(w io.Writer, s internetpulse.Snapshot) error {
	_, err := fmt.Fprintln(w, FormatPlain(s))
	return err
}
