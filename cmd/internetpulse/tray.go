package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/internetpulse"
	"github.com/jpalmerr/internetpulse/internal/tray"
)

// trayCmd runs the system tray indicator.
var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Show the indicator in the system tray",
	Long: `Show the Internet Pulse indicator in the system tray.

The icon is green while connected, red while disconnected and gray while
checking is stopped. The menu starts and stops checking and opens the web
widget, which is served unless --no-web is given.

Example:
  internetpulse tray --start
  internetpulse tray --no-web --sound bell`,
	RunE: runTray,
}

func init() {
	rootCmd.AddCommand(trayCmd)
	addRunFlags(trayCmd)
	trayCmd.Flags().Bool("no-web", false, "do not serve the web widget")
}

func runTray(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	noWeb, _ := cmd.Flags().GetBool("no-web")
	p, err := newPulse(cfg, logger, internetpulse.WithHeadless(noWeb))
	if err != nil {
		return err
	}

	widgetURL := ""
	if !noWeb {
		widgetURL = fmt.Sprintf("http://localhost:%d/", cfg.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done, shutdown := startInBackground(ctx, p, logger)

	trayCtx, cancelTray := context.WithCancel(ctx)
	defer cancelTray()
	go func() {
		// stop the tray if Start returns early
		select {
		case <-done:
			cancelTray()
		case <-trayCtx.Done():
		}
	}()

	// systray needs the main goroutine
	tray.New(p, cfg.Title, widgetURL, openBrowser, logger).Run(trayCtx)

	if err := shutdown(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	return c.Start()
}
