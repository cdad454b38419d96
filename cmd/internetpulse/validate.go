package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/internetpulse"
	"github.com/jpalmerr/internetpulse/config"
)

// validateCmd validates a config file without starting anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate an Internet Pulse configuration file without starting it.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  internetpulse validate -c internetpulse.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Title:          %s\n", cfg.Title)
	fmt.Fprintf(out, "  Port:           %d\n", cfg.Port)
	fmt.Fprintf(out, "  Probe:          %s %s (timeout %s)\n", cfg.Probe.Method, cfg.Probe.URL, cfg.Probe.Timeout.Duration())
	fmt.Fprintf(out, "  Check interval: %s\n", internetpulse.CheckInterval)
	fmt.Fprintf(out, "  Sound:          %s\n", cfg.Sound)
	fmt.Fprintf(out, "  Auto start:     %t\n", cfg.AutoStart)

	return nil
}
