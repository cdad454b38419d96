// Package tray shows the connectivity indicator in the system tray.
//
// The icon is green while connected, red while disconnected and gray while
// checking is stopped. The menu carries a disabled status line, a
// Start/Stop Checking item, an item that opens the web widget and Quit.
package tray

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/systray"

	"github.com/jpalmerr/internetpulse"
)

// Controller is the part of [internetpulse.Pulse] the tray drives.
type Controller interface {
	Toggle(ctx context.Context) (internetpulse.Snapshot, error)
	Snapshot() internetpulse.Snapshot
	Subscribe() (<-chan internetpulse.Snapshot, func())
}

const toggleTimeout = 5 * time.Second

// View is everything the tray shows for one snapshot.
type View struct {
	Icon        IconState
	StatusTitle string
	ToggleTitle string
	Tooltip     string
}

// ViewOf maps a snapshot to what the tray displays.
func ViewOf(title string, s internetpulse.Snapshot) View {
	if !s.CheckingEnabled {
		return View{
			Icon:        IconIdle,
			StatusTitle: "Not checking",
			ToggleTitle: "Start Checking",
			Tooltip:     title + " (stopped)",
		}
	}

	v := View{
		Icon:        IconDisconnected,
		StatusTitle: s.Status.Label(),
		ToggleTitle: "Stop Checking",
		Tooltip:     fmt.Sprintf("%s: %s", title, s.Status.Message()),
	}
	if s.Online() {
		v.Icon = IconConnected
	}
	if !s.LastCheckedAt.IsZero() {
		v.StatusTitle = fmt.Sprintf("%s (last checked %s)", v.StatusTitle, s.LastCheckedAt.Format("15:04:05"))
	}
	return v
}

// App is a running tray indicator.
type App struct {
	ctrl      Controller
	title     string
	widgetURL string
	open      func(url string) error
	logger    *slog.Logger

	mStatus *systray.MenuItem
	mToggle *systray.MenuItem
	mWidget *systray.MenuItem
	mQuit   *systray.MenuItem
}

// New creates a tray [App]. widgetURL may be empty when the web widget is
// not served; open is called with it when the user picks "Open Widget".
func New(ctrl Controller, title, widgetURL string, open func(string) error, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if title == "" {
		title = "Internet Pulse"
	}
	return &App{
		ctrl:      ctrl,
		title:     title,
		widgetURL: widgetURL,
		open:      open,
		logger:    logger,
	}
}

// Run shows the tray icon and blocks until the user picks Quit or ctx is
// cancelled. It must be called from the main goroutine.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		systray.Quit()
	}()

	systray.Run(func() { a.onReady(ctx, cancel) }, func() {
		a.logger.Info("tray exited")
	})
}

func (a *App) onReady(ctx context.Context, quit context.CancelFunc) {
	systray.SetTitle(a.title)

	a.mStatus = systray.AddMenuItem("", "")
	a.mStatus.Disable()

	systray.AddSeparator()

	a.mToggle = systray.AddMenuItem("Start Checking", "Toggle connectivity checks")
	a.mWidget = systray.AddMenuItem("Open Widget", "Open the web widget in a browser")
	if a.widgetURL == "" || a.open == nil {
		a.mWidget.Disable()
	}

	systray.AddSeparator()

	a.mQuit = systray.AddMenuItem("Quit", "")

	a.apply(a.ctrl.Snapshot())

	updates, unsubscribe := a.ctrl.Subscribe()

	go func() {
		defer unsubscribe()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("tray menu loop panicked", "panic", fmt.Sprintf("%v", r))
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-updates:
				if !ok {
					return
				}
				a.apply(s)
			case <-a.mToggle.ClickedCh:
				a.toggle(ctx)
			case <-a.mWidget.ClickedCh:
				if err := a.open(a.widgetURL); err != nil {
					a.logger.Warn("failed to open widget", "url", a.widgetURL, "error", err)
				}
			case <-a.mQuit.ClickedCh:
				quit()
				return
			}
		}
	}()
}

func (a *App) toggle(ctx context.Context) {
	a.mToggle.Disable()
	defer a.mToggle.Enable()

	ctx, cancel := context.WithTimeout(ctx, toggleTimeout)
	defer cancel()

	s, err := a.ctrl.Toggle(ctx)
	if err != nil {
		a.logger.Warn("toggle failed", "error", err)
		return
	}
	a.apply(s)
}

func (a *App) apply(s internetpulse.Snapshot) {
	v := ViewOf(a.title, s)
	systray.SetIcon(Icon(v.Icon))
	systray.SetTooltip(v.Tooltip)
	a.mStatus.SetTitle(v.StatusTitle)
	a.mToggle.SetTitle(v.ToggleTitle)
}
