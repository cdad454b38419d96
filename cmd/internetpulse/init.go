package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpalmerr/internetpulse/config"
)

const defaultConfigFile = "internetpulse.yaml"

// initCmd writes a starter config file.
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file",
	Long: `Write an Internet Pulse configuration file.

In a terminal a short form asks for the title, port, probe URL and sound.
With --defaults, or when stdin is not a terminal, the built-in defaults are
written as-is.

Example:
  internetpulse init
  internetpulse init --defaults /etc/internetpulse.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("defaults", false, "write defaults without prompting")
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := defaultConfigFile
	if len(args) == 1 {
		path = args[0]
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()

	useDefaults, _ := cmd.Flags().GetBool("defaults")
	if !useDefaults && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := runInitForm(cfg); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return errors.New("init cancelled")
			}
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// runInitForm asks for the common settings and writes them into cfg.
func runInitForm(cfg *config.Config) error {
	port := strconv.Itoa(cfg.Port)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("Shown on the widget and in the tray").
				Value(&cfg.Title),
			huh.NewInput().
				Title("Port").
				Description("HTTP port for the web widget").
				Value(&port).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 || n > 65535 {
						return errors.New("enter a port between 1 and 65535")
					}
					return nil
				}),
			huh.NewInput().
				Title("Probe URL").
				Description("Reaching this URL means you are connected").
				Value(&cfg.Probe.URL).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("probe URL is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reconnect sound").
				Options(
					huh.NewOption("Speaker beep", "beep"),
					huh.NewOption("Terminal bell", "bell"),
					huh.NewOption("Silent", "off"),
				).
				Value(&cfg.Sound),
			huh.NewConfirm().
				Title("Desktop notification with the sound?").
				Value(&cfg.Notify),
			huh.NewConfirm().
				Title("Start checking on launch?").
				Value(&cfg.AutoStart),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.Probe.URL = strings.TrimSpace(cfg.Probe.URL)
	cfg.Port, _ = strconv.Atoi(strings.TrimSpace(port))
	return nil
}
