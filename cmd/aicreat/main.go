package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aicreat/aicreat/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "aicreat",
	Short:   "AI CREAT backend server",
	Long: `AI CREAT is the backend for uploading creative assets into projects
and handing them to AI image providers.

Settings are read from the environment, optionally seeded from an
override file (default: .env). Flags take precedence over both.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// partialSettingsAnnotation marks commands that run with invalid settings
// replaced by their defaults instead of failing.
const partialSettingsAnnotation = "aicreat.partial-settings"

// loadSettings builds the settings snapshot, configures logging from it and
// stores it in the command context.
func loadSettings(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")

	if _, ok := cmd.Annotations[partialSettingsAnnotation]; ok {
		settings, err := config.LoadPartial(envFile, cmd.Flags())
		if settings == nil {
			return err
		}
		setupLogging(settings)
		if err != nil {
			slog.Warn("invalid settings replaced by defaults", "error", err)
		}
		cmd.SetContext(config.WithContext(cmd.Context(), settings))
		return nil
	}

	settings, err := config.Load(envFile, cmd.Flags())
	if err != nil {
		return err
	}

	setupLogging(settings)
	warnInsecureDefaults(settings)
	cmd.SetContext(config.WithContext(cmd.Context(), settings))
	return nil
}

func warnInsecureDefaults(settings *config.Settings) {
	if settings.Auth().UsesDefaultSecret() && settings.Server().IsProduction() {
		slog.Warn("SECRET_KEY is using the insecure default", "env", settings.Server().Env)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env-file", config.DefaultOverrideFile, "override file with KEY=VALUE lines")
	rootCmd.PersistentFlags().Int("port", 0, "HTTP server port (env: PORT)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: LOG_LEVEL)")
	rootCmd.PersistentFlags().String("upload-dir", "", "upload directory (env: UPLOAD_DIR)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
