package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "gideon",
		Short: "CLI tool for the gideon clan registry",
		Long: `gideon is a CLI tool for the gideon clan registry API.

It looks up players, links and unlinks accounts, prints clan rosters and
runs registry maintenance. Authenticate with the API token, either per call
(--token with --contact) or once with "gideon login".`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Token, cfg.Contact)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: GIDEON_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "API or session token (env: GIDEON_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: GIDEON_TOKEN_FILE)")
	rootCmd.PersistentFlags().Int64Var(&cfg.Contact, "contact", cfg.Contact, "Act as this user id with the API token (env: GIDEON_CONTACT)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newClansCmd())
	rootCmd.AddCommand(newRolesCmd())
	rootCmd.AddCommand(newSizeCmd())
	rootCmd.AddCommand(newRosterCmd())
	rootCmd.AddCommand(newWhoisCmd())
	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newUnlinkCmd())
	rootCmd.AddCommand(newSetRoleCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newBackupsCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newDedupeCmd())
	rootCmd.AddCommand(newExecCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
