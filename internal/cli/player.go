package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/gideon/internal/api/request"
	"github.com/mcoot/gideon/internal/api/response"
)

func playerPath(name string) string {
	return "/api/v1/players/" + url.PathEscape(name)
}

func newWhoisCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "whois <name>",
		Short: "Show a player's information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := playerPath(args[0])
			if reveal {
				path += "?reveal=true"
			}

			var result response.Player
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Include hidden accounts (root only)")

	return cmd
}

func newLinkCmd() *cobra.Command {
	var req request.LinkRequest

	cmd := &cobra.Command{
		Use:   "link <user_id> <name> <clan> <role>",
		Short: "Link an account to a clan role",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			contact, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || contact <= 0 {
				return fmt.Errorf("user id must be a positive integer, got %q", args[0])
			}
			req.ContactID = contact
			req.Handle = args[1]
			req.Clan = args[2]
			req.Role = args[3]

			var result response.Link
			if err := client.Post(cmd.Context(), "/api/v1/players/link", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.AltOf, "alt", "", "Link as an alt of this main account")
	cmd.Flags().BoolVar(&req.Hidden, "hidden", false, "Hide the account from rosters and whois")
	cmd.Flags().StringVar(&req.Slug, "slug", "", "Chat handle to show next to the user id")

	return cmd
}

func newUnlinkCmd() *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "unlink <name>",
		Short: "Remove a player from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := playerPath(args[0])
			if policy != "" {
				path += "?policy=" + url.QueryEscape(policy)
			}

			var result response.Unlink
			if err := client.Delete(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "What happens to alts left without a main: promote (default), cascade, reject")

	return cmd
}

func newSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setrole <name> <clan> <role>",
		Short: "Move a player to another role of their clan",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := playerPath(args[0]) + "/clans/" + url.PathEscape(args[1])

			var result response.RoleChange
			if err := client.Patch(cmd.Context(), path, request.SetRoleRequest{Role: args[2]}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
