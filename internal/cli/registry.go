package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/gideon/internal/api/response"
)

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Store a backup of the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Backup

			if err := client.Post(cmd.Context(), "/api/v1/registry/backup", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List stored backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.BackupList

			if err := client.Get(cmd.Context(), "/api/v1/registry/backups", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh player names from the lookup service",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Update

			if err := client.Post(cmd.Context(), "/api/v1/registry/update", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newDedupeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Remove players registered more than once",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Dedupe

			if err := client.Post(cmd.Context(), "/api/v1/registry/dedupe", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
