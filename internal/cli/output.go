package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcoot/gideon/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter writing to stdout and stderr
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout, errW: os.Stderr}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errW, string(data))
	} else {
		fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Session:
		o.printSession(v)
	case response.ClanList:
		o.printClanList(v)
	case response.Clan:
		o.printClan(v)
	case response.Size:
		o.printSize(v)
	case response.RosterList:
		o.printRosterList(v)
	case response.Player:
		o.printPlayer(v)
	case response.Link:
		o.printLink(v)
	case response.Unlink:
		o.printUnlink(v)
	case response.RoleChange:
		fmt.Fprintf(o.w, "%s in %s: %s -> %s\n", v.Name, v.Clan, v.From, v.To)
	case response.Sync:
		o.printSync(v)
	case response.Backup:
		o.printBackup(v)
	case response.BackupList:
		o.printBackupList(v)
	case response.Update:
		o.printUpdate(v)
	case response.Dedupe:
		fmt.Fprintf(o.w, "Removed %d duplicate players\n", v.Removed)
	case response.CommandResults:
		o.printCommandResults(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Clans   int    `json:"clans"`
	Players int    `json:"players"`
}

func (o *Output) printSession(s response.Session) {
	if s.ContactID != 0 {
		fmt.Fprintf(o.w, "Contact: %d\n", s.ContactID)
	}
	fmt.Fprintf(o.w, "Level: %s\n", s.Level)
	fmt.Fprintf(o.w, "Expires: %s\n", s.ExpiresAt.Format(time.RFC3339))
	fmt.Fprintf(o.w, "Token: %s\n", s.SessionToken)
}

func (o *Output) printClanList(l response.ClanList) {
	for _, c := range l.Clans {
		home := ""
		if c.Home {
			home = " [home]"
		}
		fmt.Fprintf(o.w, "%d. %s (%d roles)%s\n", c.ID, c.Name, len(c.Roles), home)
	}
}

func (o *Output) printClan(c response.Clan) {
	fmt.Fprintf(o.w, "Roles of %s:\n", c.Name)
	for _, r := range c.Roles {
		fmt.Fprintf(o.w, "  %s %s (%d)\n", r.Icon, r.Name, r.ID)
	}
}

func (o *Output) printSize(s response.Size) {
	if s.Clan == "" {
		fmt.Fprintf(o.w, "Registered players: %d\n", s.Count)
		return
	}
	fmt.Fprintf(o.w, "%s has %d players\n", s.Clan, s.Count)
}

func (o *Output) printRosterList(l response.RosterList) {
	for i, r := range l.Rosters {
		if i > 0 {
			fmt.Fprintln(o.w)
		}
		for j, chunk := range r.Chunks {
			if j > 0 {
				fmt.Fprintln(o.w, "---")
			}
			fmt.Fprintln(o.w, chunk)
		}
	}
}

func (o *Output) printSync(s response.Sync) {
	fmt.Fprintf(o.w, "Synced %s: %d changed, %d unchanged, %d not registered\n", s.Clan, s.Changed, s.Unchanged, s.Unknown)
	for _, c := range s.Failed {
		fmt.Fprintf(o.w, "  no clan role: %d\n", c)
	}
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.UUID)
	if p.Hidden {
		fmt.Fprintln(o.w, "Hidden: yes")
	}
	if p.Alt {
		fmt.Fprintf(o.w, "Alt of: %s\n", strings.Join(p.Parents, ", "))
	}
	for i, c := range p.Contacts {
		fmt.Fprintf(o.w, "Contact: %d (%s)\n", c, p.Slugs[i])
	}
	fmt.Fprintf(o.w, "Name checked: %s\n", time.Unix(p.LastUpdated, 0).UTC().Format(time.RFC3339))
	for _, m := range p.Memberships {
		primary := ""
		if m.Primary {
			primary = " [primary]"
		}
		fmt.Fprintf(o.w, "  - %s: %s %s%s\n", m.Clan, m.Icon, m.Role, primary)
	}
	if len(p.Alts) > 0 {
		fmt.Fprintf(o.w, "Alts: %s\n", strings.Join(p.Alts, ", "))
	}
	if len(p.HiddenAlts) > 0 {
		fmt.Fprintf(o.w, "Hidden alts: %s\n", strings.Join(p.HiddenAlts, ", "))
	} else if p.HiddenCount > 0 {
		fmt.Fprintf(o.w, "Hidden alts: %d\n", p.HiddenCount)
	}
}

func (o *Output) printLink(l response.Link) {
	verb := "Linked"
	if l.Created {
		verb = "Added"
	}
	fmt.Fprintf(o.w, "%s %s (%s)\n", verb, l.Name, l.UUID)
}

func (o *Output) printUnlink(u response.Unlink) {
	fmt.Fprintf(o.w, "Removed %s (%s)\n", u.Name, u.UUID)
	for _, id := range u.Promoted {
		fmt.Fprintf(o.w, "  promoted %s\n", id)
	}
	for _, id := range u.Detached {
		fmt.Fprintf(o.w, "  detached %s\n", id)
	}
	for _, id := range u.Deleted {
		fmt.Fprintf(o.w, "  deleted %s\n", id)
	}
}

func (o *Output) printBackup(b response.Backup) {
	fmt.Fprintf(o.w, "%s (%.1f KB)\n", b.Name, float64(b.Size)/1024)
}

func (o *Output) printBackupList(l response.BackupList) {
	if len(l.Backups) == 0 {
		fmt.Fprintln(o.w, "No backups")
		return
	}
	for _, b := range l.Backups {
		o.printBackup(b)
	}
}

func (o *Output) printUpdate(u response.Update) {
	if u.StoppedBy != "" {
		fmt.Fprintf(o.w, "Stopped on %s\n", u.StoppedBy)
	}
	fmt.Fprintf(o.w, "Updated %d/%d players\n", u.Updated, u.Total)
	if u.Total > 0 {
		fmt.Fprintf(o.w, "Oldest name: %s\n", time.Unix(u.OldestUnix, 0).UTC().Format(time.RFC3339))
		fmt.Fprintf(o.w, "Newest name: %s\n", time.Unix(u.NewestUnix, 0).UTC().Format(time.RFC3339))
	}
}

func (o *Output) printCommandResults(r response.CommandResults) {
	if len(r.Results) == 0 {
		fmt.Fprintln(o.w, "No commands found")
		return
	}
	for i, res := range r.Results {
		if i > 0 {
			fmt.Fprintln(o.w)
		}
		fmt.Fprintf(o.w, "> %s\n", res.Line)
		if res.Error != "" {
			fmt.Fprintln(o.w, res.Error)
			continue
		}
		if res.Reply == nil {
			continue
		}
		for _, line := range res.Reply.Lines {
			fmt.Fprintln(o.w, line)
		}
		for _, chunk := range res.Reply.Chunks {
			fmt.Fprintln(o.w, chunk)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s (%d clans, %d players)\n", h.Status, h.Clans, h.Players)
}
