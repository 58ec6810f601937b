package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/gideon/internal/api/request"
	"github.com/mcoot/gideon/internal/api/response"
)

func clanPath(name, suffix string) string {
	return "/api/v1/clans/" + url.PathEscape(name) + suffix
}

func newClansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clans",
		Short: "List clans",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.ClanList

			if err := client.Get(cmd.Context(), "/api/v1/clans", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles <clan>",
		Short: "Show the roles of a clan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Clan

			if err := client.Get(cmd.Context(), clanPath(args[0], "/roles"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size [clan|all]",
		Short: "Count the players of a clan, or of every clan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/size"
			if len(args) == 1 && !strings.EqualFold(args[0], "all") {
				path = clanPath(args[0], "/size")
			}

			var result response.Size
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster <clan|all>",
		Short: "Print the roster of a clan, or of every clan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/rosters"
			if !strings.EqualFold(args[0], "all") {
				path = clanPath(args[0], "/roster")
			}

			var result response.RosterList
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <clan> <user_id>=<chat_role>[,<chat_role>...]...",
		Short: "Set members' clan roles from the chat roles they hold",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := parseSyncMembers(args[1:])
			if err != nil {
				return err
			}

			var result response.Sync
			if err := client.Post(cmd.Context(), clanPath(args[0], "/sync"), request.SyncRequest{Members: members}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func parseSyncMembers(pairs []string) ([]request.SyncMember, error) {
	members := make([]request.SyncMember, 0, len(pairs))
	for _, pair := range pairs {
		who, roles, ok := strings.Cut(pair, "=")
		if !ok || roles == "" {
			return nil, fmt.Errorf("expected <user_id>=<chat_role>, got %q", pair)
		}
		contact, err := strconv.ParseInt(who, 10, 64)
		if err != nil || contact <= 0 {
			return nil, fmt.Errorf("user id must be a positive integer, got %q", who)
		}
		m := request.SyncMember{ContactID: contact}
		for _, raw := range strings.Split(roles, ",") {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("chat role must be a positive integer, got %q", raw)
			}
			m.ChatRoles = append(m.ChatRoles, id)
		}
		members = append(members, m)
	}
	return members, nil
}
