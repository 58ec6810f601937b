package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/gideon/internal/api/request"
	"github.com/mcoot/gideon/internal/api/response"
)

func newLoginCmd() *cobra.Command {
	var apiToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange the API token for a saved session",
		Long: `Exchange the API token for a session token and save it to the token file.
The session acts as --contact, or as the operator when no contact is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiToken == "" {
				apiToken = cfg.Token
			}
			if apiToken == "" {
				return fmt.Errorf("--api-token is required")
			}

			req := request.LoginRequest{Token: apiToken, ContactID: cfg.Contact}
			var result response.Session

			if err := client.Post(cmd.Context(), "/api/v1/sessions", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiToken, "api-token", "", "API token (defaults to --token)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), "/api/v1/sessions", nil); err != nil {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Logged out")
			return nil
		},
	}
}
