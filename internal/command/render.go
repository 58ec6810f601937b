package command

import (
	"fmt"
	"strings"

	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/registry"
	"github.com/mcoot/gideon/internal/roster"
	"github.com/mcoot/gideon/internal/storage"
)

func helpLines(prefix string) []string {
	entry := func(usage, text string) string {
		return fmt.Sprintf("- :small_blue_diamond: `%s%s` - %s", prefix, usage, text)
	}
	return []string{
		"### Gideon: Help",
		entry("help", "Prints this message."),
		entry("whois <name|mention> [--reveal]", "Find a player's information. `--reveal` shows hidden alts (root only)."),
		entry("link <id|mention> <name> <clan_name> <clan_role> [--alt <main_name>] [--hidden] [--slug <slug>]", "Link a player."),
		entry("unlink <name> [--cascade|--reject]", "Unlink a player. Orphaned alts are promoted unless told otherwise."),
		entry("setrole <name> <clan_name> <clan_role>", "Move a player to another role of their clan."),
		entry("sync <clan_name> <id|mention>=<chat_role>[,...] ...", "Set members' clan roles from the chat roles they hold."),
		entry("roles <clan_name>", "Show the roles of a clan."),
		entry("size <clan_name|all>", "Get the size of a clan or of all clans."),
		entry("roster <clan_name|all>", "Print the roster of a clan or of every clan."),
		entry("update", "Update player names from the lookup service."),
		entry("backup", "Create a backup of the database."),
		entry("dedupe", "Remove players registered twice."),
	}
}

func whoisLines(res *WhoisResult) []string {
	p := res.Player
	accounts := res.Parents
	if accounts == nil {
		accounts = []*model.Player{p}
	}
	contacts, slugs := res.Contacts.Values(), res.Slugs.Values()

	var lines []string
	for i := range accounts {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines,
			"## "+roster.Escape(res.DisplayName),
			fmt.Sprintf("- **Discord**: <@%d> (`%s`)", contacts[i], slugs[i]),
			fmt.Sprintf("- **UUID**: `%s`", p.UUID),
			fmt.Sprintf("- **Name is up-to-date as of**: <t:%d:R>", p.LastUpdated.Unix()),
			fmt.Sprintf("- **Visit**: [NameMC](https://namemc.com/profile/%s), [Laby](https://laby.net/@%s)", p.UUID, p.UUID),
		)
		if res.Parents == nil {
			lines = append(lines, fmt.Sprintf("- **Alts**: `%s`", altsList(res)))
		} else {
			names := make([]string, len(res.Parents))
			for j, parent := range res.Parents {
				names[j] = parent.Name
			}
			lines = append(lines, fmt.Sprintf("- **Main accounts**: `%s`", strings.Join(names, ", ")))
		}
		heading := "## Clans"
		if res.Shared {
			heading += "\n> :warning: **This is a shared alt.** Displaying clans of all players who use it."
		}
		lines = append(lines, heading)
		for _, m := range res.Memberships {
			mark := ""
			if m.Primary {
				mark = "__"
			}
			lines = append(lines, fmt.Sprintf("- %s **%s%s%s** (`%s`)", m.Role.Icon, mark, m.Clan.Name, mark, m.Role.Name))
		}
	}
	return lines
}

func altsList(res *WhoisResult) string {
	names := append([]string(nil), res.Alts...)
	switch {
	case res.HiddenAlts != nil:
		names = append(names, res.HiddenAlts...)
	case res.HiddenCount > 0:
		names = append(names, fmt.Sprintf("+ %d Hidden", res.HiddenCount))
	}
	if len(names) == 0 {
		return "---"
	}
	return strings.Join(names, ", ")
}

func unlinkLines(res *registry.UnlinkResult) []string {
	lines := []string{"Player was unlinked!"}
	if n := len(res.Promoted); n > 0 {
		lines = append(lines, fmt.Sprintf("> %d orphaned alts are now main accounts.", n))
	}
	if n := len(res.Deleted); n > 0 {
		lines = append(lines, fmt.Sprintf("> %d orphaned alts were removed.", n))
	}
	return lines
}

func setRoleLine(res *SetRoleResult) string {
	if res.From == res.To {
		return fmt.Sprintf("`%s` already is %s in %s.", res.Player.Name, res.To, res.Clan)
	}
	return fmt.Sprintf("Moved `%s` in %s from %s to %s.", res.Player.Name, res.Clan, res.From, res.To)
}

func syncLines(res *SyncResult) []string {
	lines := []string{fmt.Sprintf("Synced %s! %d roles changed, %d unchanged.", res.Clan, res.Changed, res.Unchanged)}
	if len(res.Failed) > 0 {
		mentions := make([]string, len(res.Failed))
		for i, id := range res.Failed {
			mentions[i] = fmt.Sprintf("<@%d>", id)
		}
		lines = append(lines, "Failed: "+strings.Join(mentions, ", "))
	}
	return lines
}

func rolesLines(clan *model.Clan) []string {
	lines := []string{fmt.Sprintf("# Roles of %s:", clan.Name)}
	for _, role := range clan.Roles {
		lines = append(lines, role.Icon+" "+role.Name)
	}
	return lines
}

func sizeLine(res SizeResult) string {
	if res.Clan == "" {
		return fmt.Sprintf("Global number of registered players: %d", res.Count)
	}
	return fmt.Sprintf("%s's number of registered players: %d", res.Clan, res.Count)
}

func updateLines(res *UpdateResult) []string {
	if res.Stopped != nil {
		return []string{
			fmt.Sprintf("### Exit on %s!", StopReason(res.Stopped)),
			fmt.Sprintf("> Updated %d/%d players.", res.Updated, res.Total),
			fmt.Sprintf("> Least up-to-date account is <t:%d:R>.", res.Oldest.Unix()),
			fmt.Sprintf("> Most up-to-date account is <t:%d:R>.", res.Newest.Unix()),
		}
	}
	return []string{fmt.Sprintf("Updated all %d players. Least up-to-date account is <t:%d:R>.", res.Total, res.Oldest.Unix())}
}

func backupLine(b storage.Backup) string {
	return fmt.Sprintf("Saved backup as: `%s` (%.2f KB)", b.Name, float64(b.Size)/1024)
}

// ErrorLine renders an error for the chat surface
func ErrorLine(err error) string {
	return "**Error**: " + roster.Escape(err.Error())
}
