package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/gideon/internal/api/request"
	"github.com/mcoot/gideon/internal/api/response"
)

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <message...>",
		Short: "Run chat commands exactly as typed, e.g. exec 'gd: size all'",
		Long: `Send a chat message to the command executor. Every line starting with the
command prefix is run in order and answered separately.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CommandRequest{Text: strings.Join(args, " ")}
			var result response.CommandResults

			if err := client.Post(cmd.Context(), "/api/v1/commands", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
