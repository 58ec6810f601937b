package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/gideon/internal/identity"
	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/registry"
	"github.com/mcoot/gideon/internal/roster"
	"github.com/mcoot/gideon/internal/services/auth"
	"github.com/mcoot/gideon/internal/services/lookup"
	"github.com/mcoot/gideon/internal/storage"
)

// Lookup resolves account handles; *lookup.Client satisfies it
type Lookup interface {
	ByName(ctx context.Context, name string) (lookup.Profile, error)
	ByUUID(ctx context.Context, uuid string) (lookup.Profile, error)
}

// Permissions checks a caller's level; *auth.Service satisfies it
type Permissions interface {
	Require(caller auth.Caller, level auth.Level) error
}

// Reply is the text answer to a command. Chunks carries roster messages.
type Reply struct {
	Lines  []string `json:"lines,omitempty"`
	Chunks []string `json:"chunks,omitempty"`
}

// Executor runs commands. Operations run one at a time per registry
// mutation; the registry serialises writers.
type Executor struct {
	registry *registry.Registry
	composer *roster.Composer
	lookup   Lookup
	perms    Permissions
	parser   *Parser
	logger   *slog.Logger
}

// NewExecutor creates an Executor
func NewExecutor(reg *registry.Registry, composer *roster.Composer, lookup Lookup, perms Permissions, parser *Parser, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if parser == nil {
		parser = NewParser("")
	}
	return &Executor{
		registry: reg,
		composer: composer,
		lookup:   lookup,
		perms:    perms,
		parser:   parser,
		logger:   logger,
	}
}

// Result is the outcome of one command line
type Result struct {
	Line  string
	Kind  Kind
	Reply *Reply
	Err   error
}

// ExecuteMessage parses and runs every command line of a message in order
func (e *Executor) ExecuteMessage(ctx context.Context, caller auth.Caller, text string) []Result {
	lines := e.parser.ParseMessage(text)
	results := make([]Result, 0, len(lines))
	for _, line := range lines {
		res := Result{Line: line.Text, Err: line.Err}
		if line.Err == nil {
			res.Kind = line.Command.Kind()
			res.Reply, res.Err = e.Execute(ctx, caller, line.Command)
		}
		results = append(results, res)
	}
	return results
}

// Execute checks the caller's permission and runs the command
func (e *Executor) Execute(ctx context.Context, caller auth.Caller, cmd Command) (*Reply, error) {
	if err := e.perms.Require(caller, cmd.Kind().Level()); err != nil {
		return nil, err
	}
	e.logger.Info("executing command",
		slog.String("command", cmd.Kind().String()),
		slog.Int64("contact", int64(caller.Contact)),
	)

	switch c := cmd.(type) {
	case Help:
		return &Reply{Lines: helpLines(e.parser.Prefix())}, nil
	case Whois:
		res, err := e.Whois(ctx, caller, c)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: whoisLines(res)}, nil
	case Link:
		res, err := e.Link(ctx, caller, c)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: []string{fmt.Sprintf("Successfully added: `%s`", res.Player.Name)}}, nil
	case Unlink:
		res, err := e.Unlink(ctx, caller, c)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: unlinkLines(res)}, nil
	case Roles:
		clan, err := e.Roles(ctx, caller, c)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: rolesLines(clan)}, nil
	case Size:
		res, err := e.Size(ctx, caller, c)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: []string{sizeLine(res)}}, nil
	case Roster:
		rosters, err := e.Roster(ctx, caller, c)
		if err != nil {
			return nil, err
		}
		reply := &Reply{}
		for _, r := range rosters {
			reply.Chunks = append(reply.Chunks, r.Chunks...)
		}
		return reply, nil
	case Update:
		res, err := e.Update(ctx, caller)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: updateLines(res)}, nil
	case Backup:
		b, err := e.Backup(ctx, caller)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: []string{backupLine(b)}}, nil
	case Dedupe:
		n, err := e.Dedupe(ctx, caller)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: []string{fmt.Sprintf("Removed %d duplicate players.", n)}}, nil
	case SetRole:
		res, err := e.SetRole(ctx, caller, c)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: []string{setRoleLine(res)}}, nil
	case Sync:
		res, err := e.Sync(ctx, caller, c)
		if err != nil {
			return nil, err
		}
		return &Reply{Lines: syncLines(res)}, nil
	}
	return nil, model.NewValidationError("command", "unsupported command %T", cmd)
}

// WhoisResult is everything shown about a player
type WhoisResult struct {
	Player      *model.Player
	DisplayName string          // alts are marked
	Parents     []*model.Player // nil for a primary
	Alts        []string        // visible alternates
	HiddenAlts  []string        // hidden alternates, only when revealed
	HiddenCount int
	Contacts    identity.Derived[model.ContactID]
	Slugs       identity.Derived[string]
	Memberships []identity.ResolvedMembership
	Shared      bool
}

// Whois finds a player by mention or name. Hidden players are only found
// when revealing, which needs root.
func (e *Executor) Whois(ctx context.Context, caller auth.Caller, args Whois) (*WhoisResult, error) {
	if err := e.perms.Require(caller, KindWhois.Level()); err != nil {
		return nil, err
	}
	if args.Reveal {
		if err := e.perms.Require(caller, auth.LevelRoot); err != nil {
			return nil, err
		}
	}

	snap := e.registry.Snapshot()
	var (
		p  *model.Player
		ok bool
	)
	if args.Contact != 0 {
		p, ok = snap.FindPlayerByContact(args.Contact)
	} else {
		p, ok = snap.FindPlayerByName(args.Target)
	}
	if !ok || (p.Hidden && !args.Reveal) {
		return nil, fmt.Errorf("%w: couldn't find player named `%s`, or their account is hidden", model.ErrPlayerNotFound, args.Target)
	}

	res := &WhoisResult{Player: p, DisplayName: identity.EffectiveName(p), Shared: identity.IsShared(p)}
	var err error
	if res.Parents, err = identity.ResolveParents(p, snap); err != nil {
		return nil, err
	}
	if res.Contacts, err = identity.EffectiveContact(p, snap); err != nil {
		return nil, err
	}
	if res.Slugs, err = identity.EffectiveSlug(p, snap); err != nil {
		return nil, err
	}
	if res.Memberships, err = identity.ResolveMemberships(p, snap, snap); err != nil {
		return nil, err
	}

	visible, hidden := snap.AlternatesOf(p.UUID)
	for _, alt := range visible {
		res.Alts = append(res.Alts, alt.Name)
	}
	res.HiddenCount = len(hidden)
	if args.Reveal {
		for _, alt := range hidden {
			res.HiddenAlts = append(res.HiddenAlts, alt.Name)
		}
	}
	return res, nil
}

// LinkResult is a completed link
type LinkResult struct {
	Player  *model.Player
	Outcome registry.LinkOutcome
}

// Link resolves the handle with the lookup service and links the account.
// A lookup that does not succeed leaves the registry untouched.
func (e *Executor) Link(ctx context.Context, caller auth.Caller, args Link) (*LinkResult, error) {
	if err := e.perms.Require(caller, KindLink.Level()); err != nil {
		return nil, err
	}
	if args.Contact <= 0 {
		return nil, model.NewValidationError("contact", "a user id is required")
	}
	clan, ok := e.registry.FindClanByName(args.Clan)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrClanNotFound, args.Clan)
	}
	role, err := roleByName(clan, args.Role)
	if err != nil {
		return nil, err
	}

	var altOf string
	if args.AltOf != "" {
		main, ok := e.registry.FindPlayerByName(args.AltOf)
		if !ok {
			return nil, fmt.Errorf("%w: main account %s", model.ErrPlayerNotFound, args.AltOf)
		}
		altOf = main.UUID
	}

	profile, err := e.lookup.ByName(ctx, args.Handle)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", args.Handle, err)
	}

	p, outcome, err := e.registry.Link(ctx, registry.LinkRequest{
		UUID:    profile.UUID,
		Name:    profile.Name,
		Contact: args.Contact,
		Slug:    args.Slug,
		Clan:    clan.ID,
		Role:    role.ID,
		AltOf:   altOf,
		Hidden:  args.Hidden,
	})
	if err != nil {
		return nil, err
	}
	return &LinkResult{Player: p, Outcome: outcome}, nil
}

func roleByName(clan *model.Clan, name string) (*model.Role, error) {
	for i := range clan.Roles {
		if equalFold(clan.Roles[i].Name, name) {
			return &clan.Roles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no role %q", model.ErrRoleNotFound, clan.Name, name)
}

// SetRoleResult is a completed role change
type SetRoleResult struct {
	Player *model.Player
	Clan   string
	From   string
	To     string
}

// SetRole moves a player to another role of a clan they hold their own
// membership in. Memberships inherited from a main account cannot be changed
// through the alt.
func (e *Executor) SetRole(ctx context.Context, caller auth.Caller, args SetRole) (*SetRoleResult, error) {
	if err := e.perms.Require(caller, KindSetRole.Level()); err != nil {
		return nil, err
	}
	p, ok := e.registry.FindPlayerByName(args.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, args.Name)
	}
	clan, ok := e.registry.FindClanByName(args.Clan)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrClanNotFound, args.Clan)
	}
	role, err := roleByName(clan, args.Role)
	if err != nil {
		return nil, err
	}
	m := p.MembershipIn(clan.ID)
	if m == nil {
		return nil, model.NewValidationError("clan", "%s is not a member of %s", p.Name, clan.Name)
	}

	res := &SetRoleResult{Clan: clan.Name, From: clan.RoleName(m.Role), To: role.Name}
	if err := e.registry.ReassignRole(ctx, p.UUID, clan.ID, role.ID); err != nil {
		return nil, err
	}
	res.Player, _ = e.registry.FindPlayerByUUID(p.UUID)
	return res, nil
}

// SyncResult counts what a sync changed. Failed lists registered members
// holding none of the clan's chat roles.
type SyncResult struct {
	Clan      string
	Changed   int
	Unchanged int
	Unknown   int
	Failed    []model.ContactID
}

// Sync moves every registered member to the first clan role, in clan order,
// bound to one of their chat roles. Members not in the registry are counted
// as unknown and left alone.
func (e *Executor) Sync(ctx context.Context, caller auth.Caller, args Sync) (*SyncResult, error) {
	if err := e.perms.Require(caller, KindSync.Level()); err != nil {
		return nil, err
	}
	clan, ok := e.registry.FindClanByName(args.Clan)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrClanNotFound, args.Clan)
	}

	res := &SyncResult{Clan: clan.Name}
	for _, member := range args.Members {
		p, ok := e.registry.FindPlayerByContact(member.Contact)
		if !ok {
			res.Unknown++
			continue
		}
		role := roleForChatRoles(clan, member.ChatRoles)
		if role == nil {
			res.Failed = append(res.Failed, member.Contact)
			continue
		}
		m := p.MembershipIn(clan.ID)
		if m == nil || m.Role == role.ID {
			res.Unchanged++
			continue
		}
		if err := e.registry.ReassignRole(ctx, p.UUID, clan.ID, role.ID); err != nil {
			return nil, err
		}
		res.Changed++
	}
	e.logger.Info("clan synced",
		slog.String("clan", clan.Name),
		slog.Int("changed", res.Changed),
		slog.Int("failed", len(res.Failed)),
	)
	return res, nil
}

func roleForChatRoles(clan *model.Clan, held []model.ChatRoleID) *model.Role {
	for i := range clan.Roles {
		if clan.Roles[i].ChatRole == 0 {
			continue
		}
		for _, id := range held {
			if clan.Roles[i].ChatRole == id {
				return &clan.Roles[i]
			}
		}
	}
	return nil
}

// Unlink removes a player found by name
func (e *Executor) Unlink(ctx context.Context, caller auth.Caller, args Unlink) (*registry.UnlinkResult, error) {
	if err := e.perms.Require(caller, KindUnlink.Level()); err != nil {
		return nil, err
	}
	p, ok := e.registry.FindPlayerByName(args.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, args.Name)
	}
	return e.registry.Unlink(ctx, p.UUID, args.Policy)
}

// Roles returns the clan with its roles
func (e *Executor) Roles(ctx context.Context, caller auth.Caller, args Roles) (*model.Clan, error) {
	if err := e.perms.Require(caller, KindRoles.Level()); err != nil {
		return nil, err
	}
	clan, ok := e.registry.FindClanByName(args.Clan)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrClanNotFound, args.Clan)
	}
	return clan, nil
}

// SizeResult is a player count; Clan is empty for the global count
type SizeResult struct {
	Clan  string `json:"clan,omitempty"`
	Count int    `json:"count"`
}

// Size counts registered players
func (e *Executor) Size(ctx context.Context, caller auth.Caller, args Size) (SizeResult, error) {
	if err := e.perms.Require(caller, KindSize.Level()); err != nil {
		return SizeResult{}, err
	}
	if args.All {
		return SizeResult{Count: e.registry.Count()}, nil
	}
	clan, ok := e.registry.FindClanByName(args.Clan)
	if !ok {
		return SizeResult{}, fmt.Errorf("%w: %s", model.ErrClanNotFound, args.Clan)
	}
	return SizeResult{Clan: clan.Name, Count: e.registry.CountInClan(clan.ID)}, nil
}

// Roster composes one clan's roster, or all of them
func (e *Executor) Roster(ctx context.Context, caller auth.Caller, args Roster) ([]roster.Roster, error) {
	if err := e.perms.Require(caller, KindRoster.Level()); err != nil {
		return nil, err
	}
	snap := e.registry.Snapshot()
	if args.All {
		return e.composer.ComposeAll(snap)
	}
	clan, ok := snap.FindClanByName(args.Clan)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrClanNotFound, args.Clan)
	}
	chunks, err := e.composer.Compose(snap, clan.ID)
	if err != nil {
		return nil, err
	}
	return []roster.Roster{{Clan: clan.Clone(), Chunks: chunks}}, nil
}

// UpdateResult reports a name refresh. Stopped is the lookup failure that
// ended the run early, or nil when every player was refreshed.
type UpdateResult struct {
	Updated int
	Total   int
	Stopped error
	Oldest  model.Timestamp
	Newest  model.Timestamp
}

// Update refreshes names from the lookup service, least recently confirmed
// first, and stops at the first lookup that does not succeed
func (e *Executor) Update(ctx context.Context, caller auth.Caller) (*UpdateResult, error) {
	if err := e.perms.Require(caller, KindUpdate.Level()); err != nil {
		return nil, err
	}
	if err := e.registry.SortByRecency(ctx); err != nil {
		return nil, err
	}

	players := e.registry.Players()
	res := &UpdateResult{Total: len(players)}
	for _, p := range players {
		if err := ctx.Err(); err != nil {
			res.Stopped = err
			break
		}
		profile, err := e.lookup.ByUUID(ctx, p.UUID)
		if err != nil {
			res.Stopped = err
			e.logger.Warn("name update stopped",
				slog.String("uuid", p.UUID),
				slog.Int("updated", res.Updated),
				slog.String("error", err.Error()),
			)
			break
		}
		if err := e.registry.RenamePlayer(ctx, p.UUID, profile.Name); err != nil {
			return nil, err
		}
		res.Updated++
	}

	if err := e.registry.SortByRecency(ctx); err != nil {
		return nil, err
	}
	if sorted := e.registry.Players(); len(sorted) > 0 {
		res.Oldest = sorted[0].LastUpdated
		res.Newest = sorted[len(sorted)-1].LastUpdated
	}
	return res, nil
}

// Backup stores a copy of the registry
func (e *Executor) Backup(ctx context.Context, caller auth.Caller) (storage.Backup, error) {
	if err := e.perms.Require(caller, KindBackup.Level()); err != nil {
		return storage.Backup{}, err
	}
	return e.registry.Backup(ctx)
}

// Backups lists stored backups, oldest first
func (e *Executor) Backups(ctx context.Context, caller auth.Caller) ([]storage.Backup, error) {
	if err := e.perms.Require(caller, KindBackup.Level()); err != nil {
		return nil, err
	}
	return e.registry.Backups(ctx)
}

// Dedupe removes players with repeated uuids and returns how many went
func (e *Executor) Dedupe(ctx context.Context, caller auth.Caller) (int, error) {
	if err := e.perms.Require(caller, KindDedupe.Level()); err != nil {
		return 0, err
	}
	return e.registry.DeduplicateByUUID(ctx)
}

// StopReason names the failure that ended an update run
func StopReason(err error) string {
	var status *lookup.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, lookup.ErrRateLimited):
		return "429"
	case errors.Is(err, lookup.ErrNotFound):
		return "404"
	case errors.As(err, &status):
		return fmt.Sprint(status.Code)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "CANCELLED"
	}
	return "CONNECTION_ERROR"
}
