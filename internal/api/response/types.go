package response

import (
	"time"

	"github.com/mcoot/gideon/internal/command"
	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/registry"
	"github.com/mcoot/gideon/internal/roster"
	"github.com/mcoot/gideon/internal/services/auth"
	"github.com/mcoot/gideon/internal/storage"
)

// Session is the response for opening a session
type Session struct {
	SessionToken string    `json:"session_token"`
	ContactID    int64     `json:"contact_id,omitempty"`
	Level        string    `json:"level"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionFromAuth converts an auth.Session
func SessionFromAuth(s *auth.Session, level auth.Level) Session {
	return Session{
		SessionToken: s.Token,
		ContactID:    int64(s.Caller.Contact),
		Level:        level.String(),
		ExpiresAt:    s.ExpiresAt,
	}
}

// Role represents a clan role
type Role struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	ChatRole int64  `json:"chat_role,omitempty"`
}

// Clan represents a clan in API responses
type Clan struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Guild int64  `json:"guild,omitempty"`
	Home  bool   `json:"home,omitempty"`
	Roles []Role `json:"roles"`
}

// ClanFromModel converts a model.Clan
func ClanFromModel(c *model.Clan, home model.GuildID) Clan {
	roles := make([]Role, len(c.Roles))
	for i, r := range c.Roles {
		roles[i] = Role{
			ID:       int(r.ID),
			Name:     r.Name,
			Icon:     r.Icon,
			ChatRole: int64(r.ChatRole),
		}
	}
	return Clan{
		ID:    int(c.ID),
		Name:  c.Name,
		Guild: int64(c.Guild),
		Home:  c.Guild != 0 && c.Guild == home,
		Roles: roles,
	}
}

// ClanList is the response for listing clans
type ClanList struct {
	Clans []Clan `json:"clans"`
}

// Size is a player count; Clan is empty for the global count
type Size struct {
	Clan  string `json:"clan,omitempty"`
	Count int    `json:"count"`
}

// SizeFromResult converts a command.SizeResult
func SizeFromResult(s command.SizeResult) Size {
	return Size{Clan: s.Clan, Count: s.Count}
}

// Roster is one clan's roster split into messages
type Roster struct {
	Clan   string   `json:"clan"`
	Chunks []string `json:"chunks"`
}

// RosterList holds rosters in clan order
type RosterList struct {
	Rosters []Roster `json:"rosters"`
}

// RosterListFromRosters converts composed rosters
func RosterListFromRosters(rs []roster.Roster) RosterList {
	out := RosterList{Rosters: make([]Roster, len(rs))}
	for i, r := range rs {
		out.Rosters[i] = Roster{Clan: r.Clan.Name, Chunks: r.Chunks}
	}
	return out
}

// Membership is a resolved clan membership
type Membership struct {
	Clan    string `json:"clan"`
	Role    string `json:"role"`
	Icon    string `json:"icon"`
	Primary bool   `json:"primary"`
}

// Player represents a player card in API responses
type Player struct {
	UUID        string       `json:"uuid"`
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Hidden      bool         `json:"hidden,omitempty"`
	LastUpdated int64        `json:"last_updated"`
	Alt         bool         `json:"alt"`
	Shared      bool         `json:"shared,omitempty"`
	Parents     []string     `json:"parents,omitempty"`
	Contacts    []int64      `json:"contacts"`
	Slugs       []string     `json:"slugs"`
	Memberships []Membership `json:"memberships"`
	Alts        []string     `json:"alts,omitempty"`
	HiddenAlts  []string     `json:"hidden_alts,omitempty"`
	HiddenCount int          `json:"hidden_count,omitempty"`
}

// PlayerFromWhois converts a command.WhoisResult
func PlayerFromWhois(res *command.WhoisResult) Player {
	p := res.Player
	out := Player{
		UUID:        p.UUID,
		Name:        p.Name,
		DisplayName: res.DisplayName,
		Hidden:      p.Hidden,
		LastUpdated: p.LastUpdated.Unix(),
		Alt:         p.IsAlt(),
		Shared:      res.Shared,
		Slugs:       res.Slugs.Values(),
		Alts:        res.Alts,
		HiddenAlts:  res.HiddenAlts,
		HiddenCount: res.HiddenCount,
	}
	for _, parent := range res.Parents {
		out.Parents = append(out.Parents, parent.Name)
	}
	for _, c := range res.Contacts.Values() {
		out.Contacts = append(out.Contacts, int64(c))
	}
	out.Memberships = make([]Membership, len(res.Memberships))
	for i, m := range res.Memberships {
		out.Memberships[i] = Membership{
			Clan:    m.Clan.Name,
			Role:    m.Role.Name,
			Icon:    m.Role.Icon,
			Primary: m.Primary,
		}
	}
	return out
}

// Link is the response for linking an account
type Link struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

// LinkFromResult converts a command.LinkResult
func LinkFromResult(res *command.LinkResult) Link {
	return Link{
		UUID:    res.Player.UUID,
		Name:    res.Player.Name,
		Created: res.Outcome == registry.LinkCreated,
	}
}

// Unlink reports what an unlink removed or changed
type Unlink struct {
	UUID     string   `json:"uuid"`
	Name     string   `json:"name"`
	Detached []string `json:"detached,omitempty"`
	Promoted []string `json:"promoted,omitempty"`
	Deleted  []string `json:"deleted,omitempty"`
}

// UnlinkFromResult converts a registry.UnlinkResult
func UnlinkFromResult(res *registry.UnlinkResult) Unlink {
	return Unlink{
		UUID:     res.Removed.UUID,
		Name:     res.Removed.Name,
		Detached: res.Detached,
		Promoted: res.Promoted,
		Deleted:  res.Deleted,
	}
}

// Backup describes a stored backup
type Backup struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupFromStorage converts a storage.Backup
func BackupFromStorage(b storage.Backup) Backup {
	return Backup{Name: b.Name, Size: b.Size, CreatedAt: b.CreatedAt}
}

// BackupList is the response for listing backups
type BackupList struct {
	Backups []Backup `json:"backups"`
}

// Update reports a name refresh run
type Update struct {
	Updated    int    `json:"updated"`
	Total      int    `json:"total"`
	StoppedBy  string `json:"stopped_by,omitempty"`
	OldestUnix int64  `json:"oldest"`
	NewestUnix int64  `json:"newest"`
}

// UpdateFromResult converts a command.UpdateResult
func UpdateFromResult(res *command.UpdateResult) Update {
	return Update{
		Updated:    res.Updated,
		Total:      res.Total,
		StoppedBy:  command.StopReason(res.Stopped),
		OldestUnix: res.Oldest.Unix(),
		NewestUnix: res.Newest.Unix(),
	}
}

// Dedupe reports how many duplicate players were removed
type Dedupe struct {
	Removed int `json:"removed"`
}

// CommandResult is the outcome of one command line
type CommandResult struct {
	Line    string         `json:"line"`
	Command string         `json:"command,omitempty"`
	Reply   *command.Reply `json:"reply,omitempty"`
	Error   string         `json:"error,omitempty"`
	Status  int            `json:"status"`
}

// CommandResults is the response for executing a message
type CommandResults struct {
	Results []CommandResult `json:"results"`
}

// Health is the liveness report
type Health struct {
	Status  string `json:"status"`
	Clans   int    `json:"clans"`
	Players int    `json:"players"`
}

// RoleChange reports a role reassignment
type RoleChange struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Clan string `json:"clan"`
	From string `json:"from"`
	To   string `json:"to"`
}

// RoleChangeFromResult converts a command.SetRoleResult
func RoleChangeFromResult(res *command.SetRoleResult) RoleChange {
	return RoleChange{
		UUID: res.Player.UUID,
		Name: res.Player.Name,
		Clan: res.Clan,
		From: res.From,
		To:   res.To,
	}
}

// Sync reports what a clan role sync changed
type Sync struct {
	Clan      string  `json:"clan"`
	Changed   int     `json:"changed"`
	Unchanged int     `json:"unchanged"`
	Unknown   int     `json:"unknown"`
	Failed    []int64 `json:"failed,omitempty"`
}

// SyncFromResult converts a command.SyncResult
func SyncFromResult(res *command.SyncResult) Sync {
	out := Sync{
		Clan:      res.Clan,
		Changed:   res.Changed,
		Unchanged: res.Unchanged,
		Unknown:   res.Unknown,
	}
	for _, c := range res.Failed {
		out.Failed = append(out.Failed, int64(c))
	}
	return out
}
