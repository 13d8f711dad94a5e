package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/spf13/cobra"
)

func newKeysCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}

	var (
		authorID    string
		label       string
		description string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Issue an API key for a staff member",
		Long: `Issue an API key. The token is printed once; only its hash is stored.
Writes made with the key are attributed to --author-id and shown as --label.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if authorID == "" || label == "" {
				return fmt.Errorf("--author-id and --label are required")
			}
			a, err := opts.open(os.Stderr)
			if err != nil {
				return err
			}
			token, err := newToken()
			if err != nil {
				return err
			}
			author := activity.Author{ID: authorID, Label: label}
			if err := a.apiKeys.Create(cmd.Context(), token, author, description); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	add.Flags().StringVar(&authorID, "author-id", "", "staff member id recorded on writes")
	add.Flags().StringVar(&label, "label", "", "display name shown in the audit feed")
	add.Flags().StringVar(&description, "description", "", "note about where the key is used")

	cmd.AddCommand(add)
	return cmd
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return "cl_" + hex.EncodeToString(buf), nil
}
