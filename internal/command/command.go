// Package command is the text command surface: an enumerated command kind,
// typed arguments validated once by the parser, and an executor that runs
// them against the registry.
package command

import (
	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/registry"
	"github.com/mcoot/gideon/internal/services/auth"
)

// Kind enumerates the commands
type Kind int

const (
	KindHelp Kind = iota
	KindWhois
	KindLink
	KindUnlink
	KindRoles
	KindSize
	KindRoster
	KindUpdate
	KindBackup
	KindDedupe
	KindSetRole
	KindSync
)

var kindNames = map[Kind]string{
	KindHelp:    "help",
	KindWhois:   "whois",
	KindLink:    "link",
	KindUnlink:  "unlink",
	KindRoles:   "roles",
	KindSize:    "size",
	KindRoster:  "roster",
	KindUpdate:  "update",
	KindBackup:  "backup",
	KindDedupe:  "dedupe",
	KindSetRole: "setrole",
	KindSync:    "sync",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a command word to its Kind, ignoring case
func ParseKind(word string) (Kind, bool) {
	for k, name := range kindNames {
		if equalFold(name, word) {
			return k, true
		}
	}
	return 0, false
}

// Level is the permission a caller needs to run the command
func (k Kind) Level() auth.Level {
	switch k {
	case KindLink, KindRoster, KindSetRole, KindSync:
		return auth.LevelManager
	case KindUnlink, KindUpdate, KindBackup, KindDedupe:
		return auth.LevelRoot
	}
	return auth.LevelAnyone
}

// Command is one parsed command with its typed arguments
type Command interface {
	Kind() Kind
}

// Help lists the commands
type Help struct{}

// Whois shows a player. Target is a name unless Contact is set.
type Whois struct {
	Target  string
	Contact model.ContactID
	Reveal  bool // include hidden accounts; root only
}

// Link registers an account into a clan role
type Link struct {
	Contact model.ContactID
	Handle  string
	Clan    string
	Role    string
	AltOf   string // name of the main account
	Hidden  bool
	Slug    string
}

// Unlink removes a player by name
type Unlink struct {
	Name   string
	Policy registry.OrphanPolicy
}

// Roles lists a clan's roles
type Roles struct {
	Clan string
}

// Size counts registered players of one clan, or of all when All is set
type Size struct {
	Clan string
	All  bool
}

// Roster renders one clan's roster, or every clan's when All is set
type Roster struct {
	Clan string
	All  bool
}

// SetRole moves a player to another role of a clan they belong to
type SetRole struct {
	Name string
	Clan string
	Role string
}

// SyncMember is one chat member and the chat roles they hold
type SyncMember struct {
	Contact   model.ContactID
	ChatRoles []model.ChatRoleID
}

// Sync reassigns registered members of a clan to the clan role bound to
// the chat roles they hold
type Sync struct {
	Clan    string
	Members []SyncMember
}

// Update refreshes player names from the lookup service, oldest first
type Update struct{}

// Backup stores a copy of the registry
type Backup struct{}

// Dedupe removes players with repeated uuids
type Dedupe struct{}

func (Help) Kind() Kind    { return KindHelp }
func (Whois) Kind() Kind   { return KindWhois }
func (Link) Kind() Kind    { return KindLink }
func (Unlink) Kind() Kind  { return KindUnlink }
func (Roles) Kind() Kind   { return KindRoles }
func (Size) Kind() Kind    { return KindSize }
func (Roster) Kind() Kind  { return KindRoster }
func (Update) Kind() Kind  { return KindUpdate }
func (Backup) Kind() Kind  { return KindBackup }
func (Dedupe) Kind() Kind  { return KindDedupe }
func (SetRole) Kind() Kind { return KindSetRole }
func (Sync) Kind() Kind    { return KindSync }
