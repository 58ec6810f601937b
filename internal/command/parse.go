package command

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/registry"
)

// DefaultPrefix starts every command line
const DefaultPrefix = "gd:"

// ErrNotCommand is returned for a line that does not start with the prefix
var ErrNotCommand = errors.New("not a command")

// Parser turns text lines into commands
type Parser struct {
	prefix string
}

// NewParser creates a parser for the given prefix; empty selects DefaultPrefix
func NewParser(prefix string) *Parser {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Parser{prefix: prefix}
}

// Prefix returns the command prefix
func (p *Parser) Prefix() string {
	return p.prefix
}

// Line is the outcome of parsing one command line of a message
type Line struct {
	Text    string
	Command Command
	Err     error
}

// ParseMessage parses every command line of a message, skipping other lines
func (p *Parser) ParseMessage(text string) []Line {
	var out []Line
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		cmd, err := p.Parse(raw)
		if errors.Is(err, ErrNotCommand) {
			continue
		}
		out = append(out, Line{Text: raw, Command: cmd, Err: err})
	}
	return out
}

// Parse parses a single line. Malformed arguments are a ValidationError.
func (p *Parser) Parse(line string) (Command, error) {
	if len(line) < len(p.prefix) || !equalFold(line[:len(p.prefix)], p.prefix) {
		return nil, ErrNotCommand
	}
	fields := strings.Fields(line[len(p.prefix):])
	if len(fields) == 0 {
		return nil, ErrNotCommand
	}
	kind, ok := ParseKind(fields[0])
	if !ok {
		return nil, model.NewValidationError("command", "unknown command %q", fields[0])
	}
	a := args(fields[1:])

	switch kind {
	case KindHelp:
		return Help{}, nil
	case KindWhois:
		return parseWhois(a)
	case KindLink:
		return parseLink(a)
	case KindUnlink:
		return parseUnlink(a)
	case KindRoles:
		if len(a) < 1 {
			return nil, usage(kind, "<clan_name>")
		}
		return Roles{Clan: a[0]}, nil
	case KindSize:
		if len(a) < 1 {
			return nil, usage(kind, "<clan_name|all>")
		}
		return Size{Clan: a[0], All: equalFold(a[0], "all")}, nil
	case KindRoster:
		if len(a) < 1 {
			return nil, usage(kind, "<clan_name|all>")
		}
		return Roster{Clan: a[0], All: equalFold(a[0], "all")}, nil
	case KindUpdate:
		return Update{}, nil
	case KindBackup:
		return Backup{}, nil
	case KindDedupe:
		return Dedupe{}, nil
	case KindSetRole:
		if len(a) < 3 {
			return nil, usage(kind, "<name> <clan_name> <clan_role>")
		}
		return SetRole{Name: a[0], Clan: a[1], Role: strings.ReplaceAll(a[2], "_", " ")}, nil
	case KindSync:
		return parseSync(a)
	}
	return nil, model.NewValidationError("command", "unknown command %q", fields[0])
}

func parseWhois(a args) (Command, error) {
	if len(a) < 1 {
		return nil, usage(KindWhois, "<name|mention> [--reveal]")
	}
	w := Whois{Target: a[0], Reveal: a.has("--reveal")}
	if id, ok := mention(a[0]); ok {
		w.Contact = id
	}
	return w, nil
}

func parseLink(a args) (Command, error) {
	positional := a.positional()
	if len(positional) < 4 {
		return nil, usage(KindLink, "<id|mention> <name> <clan_name> <clan_role> [--alt <main_name>] [--hidden] [--slug <slug>]")
	}
	contact, ok := mention(positional[0])
	if !ok {
		n, err := strconv.ParseInt(positional[0], 10, 64)
		if err != nil || n <= 0 {
			return nil, model.NewValidationError("contact", "%q is not a user id or mention", positional[0])
		}
		contact = model.ContactID(n)
	}
	l := Link{
		Contact: contact,
		Handle:  positional[1],
		Clan:    positional[2],
		Role:    strings.ReplaceAll(positional[3], "_", " "),
		Hidden:  a.has("--hidden"),
	}
	if a.has("--alt") {
		main, ok := a.value("--alt")
		if !ok {
			return nil, model.NewValidationError("alt", "--alt needs the main account's name")
		}
		l.AltOf = main
	}
	if slug, ok := a.value("--slug"); ok {
		l.Slug = slug
	}
	return l, nil
}

func parseUnlink(a args) (Command, error) {
	positional := a.positional()
	if len(positional) < 1 {
		return nil, usage(KindUnlink, "<name> [--cascade|--reject]")
	}
	u := Unlink{Name: positional[0], Policy: registry.PromoteOrphans}
	switch {
	case a.has("--cascade") && a.has("--reject"):
		return nil, model.NewValidationError("policy", "--cascade and --reject are exclusive")
	case a.has("--cascade"):
		u.Policy = registry.CascadeOrphans
	case a.has("--reject"):
		u.Policy = registry.RejectReferenced
	}
	return u, nil
}

func parseSync(a args) (Command, error) {
	if len(a) < 2 {
		return nil, usage(KindSync, "<clan_name> <id|mention>=<chat_role>[,<chat_role>...] ...")
	}
	s := Sync{Clan: a[0]}
	for _, pair := range a[1:] {
		member, err := parseSyncMember(pair)
		if err != nil {
			return nil, err
		}
		s.Members = append(s.Members, member)
	}
	return s, nil
}

// parseSyncMember parses <id|mention>=<chat_role>[,<chat_role>...]
func parseSyncMember(pair string) (SyncMember, error) {
	who, roles, ok := strings.Cut(pair, "=")
	if !ok || roles == "" {
		return SyncMember{}, model.NewValidationError("sync", "%q is not <id>=<chat_role>", pair)
	}
	contact, ok := mention(who)
	if !ok {
		n, err := strconv.ParseInt(who, 10, 64)
		if err != nil || n <= 0 {
			return SyncMember{}, model.NewValidationError("contact", "%q is not a user id or mention", who)
		}
		contact = model.ContactID(n)
	}
	m := SyncMember{Contact: contact}
	for _, raw := range strings.Split(roles, ",") {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return SyncMember{}, model.NewValidationError("chat_role", "%q is not a role id", raw)
		}
		m.ChatRoles = append(m.ChatRoles, model.ChatRoleID(n))
	}
	return m, nil
}

type args []string

// flags that consume the following word
var valueFlags = map[string]bool{"--alt": true, "--slug": true}

func (a args) has(flag string) bool {
	for _, s := range a {
		if equalFold(s, flag) {
			return true
		}
	}
	return false
}

func (a args) value(flag string) (string, bool) {
	for i, s := range a {
		if equalFold(s, flag) && i+1 < len(a) && !strings.HasPrefix(a[i+1], "--") {
			return a[i+1], true
		}
	}
	return "", false
}

func (a args) positional() []string {
	var out []string
	for i := 0; i < len(a); i++ {
		if strings.HasPrefix(a[i], "--") {
			if valueFlags[strings.ToLower(a[i])] {
				i++
			}
			continue
		}
		out = append(out, a[i])
	}
	return out
}

// mention parses a chat mention of the form <@123> or <@!123>
func mention(s string) (model.ContactID, bool) {
	if !strings.HasPrefix(s, "<@") || !strings.HasSuffix(s, ">") {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(s[2:len(s)-1], "!"), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return model.ContactID(n), true
}

func usage(kind Kind, synopsis string) error {
	return model.NewValidationError(kind.String(), "usage: %s %s", kind, synopsis)
}

func equalFold(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}
