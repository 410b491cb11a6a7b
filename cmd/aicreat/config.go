package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aicreat/aicreat/ai"
	"github.com/aicreat/aicreat/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved settings as YAML",
	Long: `Print the settings after applying defaults, the override file,
environment variables and flags. Secrets are masked unless --show-secrets is set.`,
	RunE: runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the settings and exit",
	RunE:  runConfigCheck,
}

var showSecrets bool

func init() {
	configShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print secrets in clear text")
	configCmd.AddCommand(configShowCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(settings.View(showSecrets)); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return enc.Close()
}

// runConfigCheck only runs once the settings have loaded, so reaching it
// means every field is valid.
func runConfigCheck(cmd *cobra.Command, args []string) error {
	settings, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if settings.Auth().UsesDefaultSecret() {
		slog.Warn("SECRET_KEY is using the insecure default")
	}
	for _, p := range ai.NewRegistry(settings.AI()).Providers() {
		if p.Enabled && !p.HasKey {
			slog.Warn("provider enabled without an API key", "provider", p.Name)
		}
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
	return err
}
