package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/aicreat/aicreat/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an override file interactively",
	Long: `Prompt for database, security and AI provider settings and write them
to the override file (see --env-file). Current values are offered as defaults;
invalid values are replaced by their defaults so a broken file can be fixed.`,
	Annotations: map[string]string{partialSettingsAnnotation: ""},
	RunE:        runInit,
}

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file without asking")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	settings, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		path = config.DefaultOverrideFile
	}

	if _, statErr := os.Stat(path); statErr == nil && !initForce {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", path),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	db := settings.Database()
	values := map[string]string{}

	questions := []struct {
		env      string
		label    string
		def      string
		mask     bool
		validate promptui.ValidateFunc
	}{
		{env: "POSTGRES_SERVER", label: "Database host", def: db.Host, validate: required},
		{env: "POSTGRES_PORT", label: "Database port", def: db.Port, validate: validPort},
		{env: "POSTGRES_USER", label: "Database user", def: db.User, validate: required},
		{env: "POSTGRES_PASSWORD", label: "Database password", def: db.Password, mask: true},
		{env: "POSTGRES_DB", label: "Database name", def: db.Name, validate: required},
		{env: "SECRET_KEY", label: "Token secret key", def: suggestSecret(settings.Auth()), mask: true, validate: required},
		{env: "UPLOAD_DIR", label: "Upload directory", def: settings.Upload().Dir, validate: required},
	}

	for _, q := range questions {
		prompt := promptui.Prompt{
			Label:     q.label,
			Default:   q.def,
			Validate:  q.validate,
			AllowEdit: !q.mask,
		}
		if q.mask {
			prompt.Mask = '*'
		}

		value, promptErr := prompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		values[q.env] = value
	}

	providers := config.AvailableAIProviders()
	sel := promptui.Select{
		Label: "Default AI provider",
		Items: providers,
	}
	_, provider, err := sel.Run()
	if err != nil {
		return handlePromptError(err)
	}
	values["AI_PROVIDER"] = provider

	keyPrompt := promptui.Prompt{
		Label: fmt.Sprintf("%s API key (empty to skip)", provider),
		Mask:  '*',
	}
	key, err := keyPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	if key != "" {
		values[apiKeyEnv(provider)] = key
	}

	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}

	fmt.Printf("Wrote %d settings to %s\n", len(values), path)
	return nil
}

func apiKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// suggestSecret keeps a custom secret and replaces the insecure default with a random one.
func suggestSecret(cfg config.AuthConfig) string {
	if !cfg.UsesDefaultSecret() {
		return cfg.SecretKey
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}

func required(input string) error {
	if input == "" {
		return errors.New("value is required")
	}
	return nil
}

func validPort(input string) error {
	port, err := strconv.Atoi(input)
	if err != nil || port < 1 || port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
