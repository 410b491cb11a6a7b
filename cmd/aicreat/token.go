package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aicreat/aicreat/auth"
	"github.com/aicreat/aicreat/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue an access token",
	Long: `Issue a bearer token for subject, signed with SECRET_KEY.

Examples:
  # Print the raw token
  aicreat token alice

  # Print the token with its expiry as JSON
  aicreat token --json alice`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

var tokenJSON bool

func init() {
	tokenCmd.Flags().BoolVar(&tokenJSON, "json", false, "print the token as JSON")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	settings, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokens(settings.Auth())
	if err != nil {
		return err
	}

	token, err := tokens.Issue(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if tokenJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(token)
	}

	_, err = fmt.Fprintln(out, token.AccessToken)
	return err
}
