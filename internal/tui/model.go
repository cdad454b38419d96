package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jpalmerr/internetpulse"
)

// Controller is the part of [internetpulse.Pulse] the terminal UI drives.
type Controller interface {
	Toggle(ctx context.Context) (internetpulse.Snapshot, error)
	Snapshot() internetpulse.Snapshot
	Subscribe() (<-chan internetpulse.Snapshot, func())
}

// Key bindings.
const (
	KeyToggle      = " "
	KeyToggleEnter = "enter"
	KeyToggleT     = "t"
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
)

const toggleTimeout = 5 * time.Second

// lastCheckedLayout matches the browser's toLocaleTimeString output closely
// enough for a terminal.
const lastCheckedLayout = "15:04:05"

// snapshotMsg carries a snapshot pushed by the controller.
type snapshotMsg struct {
	snapshot internetpulse.Snapshot
}

// toggledMsg is the reply to a toggle request.
type toggledMsg struct {
	snapshot internetpulse.Snapshot
	err      error
}

// updatesClosedMsg reports that the subscription ended.
type updatesClosedMsg struct{}

// Model is the Bubble Tea model for the indicator.
type Model struct {
	ctrl     Controller
	title    string
	interval time.Duration
	updates  <-chan internetpulse.Snapshot

	snapshot internetpulse.Snapshot
	spinner  spinner.Model
	toggling bool
	err      error
	width    int
	quitting bool
}

// NewModel creates a model reading snapshots from updates. The initial
// snapshot is taken from ctrl.
func NewModel(ctrl Controller, updates <-chan internetpulse.Snapshot, title string, interval time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"◐", "◓", "◑", "◒"},
		FPS:    time.Second / 10,
	}
	sp.Style = mutedStyle

	if title == "" {
		title = "Internet Pulse"
	}

	return Model{
		ctrl:     ctrl,
		title:    title,
		interval: interval,
		updates:  updates,
		snapshot: ctrl.Snapshot(),
		spinner:  sp,
	}
}

// Init starts the spinner and the subscription pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForSnapshot(m.updates),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		m.snapshot = msg.snapshot
		return m, waitForSnapshot(m.updates)

	case updatesClosedMsg:
		m.updates = nil
		return m, nil

	case toggledMsg:
		m.toggling = false
		m.err = msg.err
		if msg.err == nil {
			m.snapshot = msg.snapshot
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyToggle, KeyToggleEnter, KeyToggleT:
		if m.toggling {
			return m, nil
		}
		m.toggling = true
		return m, toggleCmd(m.ctrl)

	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the indicator card.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")

	label := "Start Checking"
	if m.snapshot.CheckingEnabled {
		label = "Stop Checking"
	}
	if m.toggling {
		sb.WriteString(buttonBusyStyle.Render(label))
	} else {
		sb.WriteString(buttonStyle.Render(label))
	}
	sb.WriteString("\n\n")

	if m.snapshot.CheckingEnabled {
		st := m.snapshot.Status
		sb.WriteString(statusStyle(m.snapshot.Online()).Render(statusIcon(m.snapshot.Online()) + " " + st.Label()))
		sb.WriteString("\n")
		sb.WriteString(st.Message())
		sb.WriteString("\n\n")
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("Checking every %d seconds...", int(m.interval/time.Second))))
		sb.WriteString("\n")
	}

	if !m.snapshot.LastCheckedAt.IsZero() {
		sb.WriteString(mutedStyle.Render("Last checked: " + m.snapshot.LastCheckedAt.Format(lastCheckedLayout)))
		sb.WriteString("\n")
	}

	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	}

	card := cardStyle.Render(strings.TrimRight(sb.String(), "\n"))
	help := mutedStyle.Render("space/enter: toggle • q: quit")

	return card + "\n" + help + "\n"
}

func statusIcon(online bool) string {
	if online {
		return "●"
	}
	return "○"
}

// waitForSnapshot blocks on the next pushed snapshot.
func waitForSnapshot(updates <-chan internetpulse.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg{snapshot: s}
	}
}

func toggleCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
		defer cancel()
		s, err := ctrl.Toggle(ctx)
		return toggledMsg{snapshot: s, err: err}
	}
}
