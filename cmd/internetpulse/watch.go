package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpalmerr/internetpulse"
	"github.com/jpalmerr/internetpulse/internal/tui"
)

// watchCmd runs the terminal indicator.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the indicator in the terminal",
	Long: `Show the Internet Pulse indicator in the terminal.

Press space, enter or t to start and stop checking, and q to quit. When
stdout is not a terminal one line is printed per state change instead.

Logs are discarded unless --log-file is given, so they do not draw over
the indicator. The web widget is only served with --web.

Example:
  internetpulse watch --start
  internetpulse watch --web --log-file /tmp/internetpulse.log`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addRunFlags(watchCmd)
	watchCmd.Flags().Bool("web", false, "also serve the web widget")
	watchCmd.Flags().String("log-file", "", "write JSON logs to this file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logOut := io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	logger, err := newLogger(cmd, logOut)
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	web, _ := cmd.Flags().GetBool("web")
	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	extra := []internetpulse.Option{internetpulse.WithHeadless(!web)}
	if !interactive && !cmd.Flags().Changed("start") && os.Getenv(envPrefix+"_AUTO_START") == "" {
		// nobody can press a key, so a non-interactive watch checks by default
		extra = append(extra, internetpulse.WithAutoStart(true))
	}

	p, err := newPulse(cfg, logger, extra...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done, shutdown := startInBackground(ctx, p, logger)

	uiErr := make(chan error, 1)
	go func() {
		if interactive {
			uiErr <- tui.Run(ctx, p, cfg.Title, p.Interval())
			return
		}
		uiErr <- tui.RunPlain(ctx, p, cmd.OutOrStdout())
	}()

	select {
	case <-done:
		// Start returned early (e.g. the port is taken); the UI has nothing to show.
		stop()
		<-uiErr
		if err := shutdown(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case err := <-uiErr:
		if shutdownErr := shutdown(); shutdownErr != nil && err == nil {
			err = fmt.Errorf("server error: %w", shutdownErr)
		}
		return err
	}
}
