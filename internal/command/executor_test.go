package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gideon/internal/dependencies/mocks"
	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/registry"
	"github.com/mcoot/gideon/internal/roster"
	"github.com/mcoot/gideon/internal/services/auth"
	"github.com/mcoot/gideon/internal/services/lookup"
	"github.com/mcoot/gideon/internal/storage/memory"
	"github.com/mcoot/gideon/internal/testutil"
)

const daveUUID = "6f708192a3b445c6c708f90a1b2c3d4e"

// fakeLookup answers from maps; anything else gets missErr
type fakeLookup struct {
	byName  map[string]lookup.Profile
	byUUID  map[string]lookup.Profile
	missErr error
	calls   int
}

func (f *fakeLookup) ByName(ctx context.Context, name string) (lookup.Profile, error) {
	f.calls++
	if p, ok := f.byName[name]; ok {
		return p, nil
	}
	return lookup.Profile{}, f.missErr
}

func (f *fakeLookup) ByUUID(ctx context.Context, uuid string) (lookup.Profile, error) {
	f.calls++
	if p, ok := f.byUUID[uuid]; ok {
		return p, nil
	}
	return lookup.Profile{}, f.missErr
}

type ExecutorSuite struct {
	suite.Suite
	storage  *memory.Storage
	registry *registry.Registry
	lookup   *fakeLookup
	executor *Executor
	ctx      context.Context

	root    auth.Caller
	manager auth.Caller
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorSuite))
}

func (s *ExecutorSuite) SetupTest() {
	s.ctx = context.Background()
	clock := mocks.NewSteppingClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), time.Second)
	logger := testutil.NopLogger()

	s.storage = memory.New()
	s.Require().NoError(s.storage.SaveDocument(s.ctx, testutil.FixtureDocument()))
	reg, err := registry.Open(s.ctx, s.storage, registry.Options{Clock: clock, Logger: logger})
	s.Require().NoError(err)
	s.registry = reg

	s.lookup = &fakeLookup{missErr: lookup.ErrNotFound}
	composer := roster.New(roster.Options{}, clock, logger, nil)
	perms := auth.New(reg, clock, auth.DefaultConfig())
	s.executor = NewExecutor(reg, composer, s.lookup, perms, NewParser(""), logger)

	s.root = auth.Caller{Contact: testutil.RootContact}
	s.manager = auth.Caller{Contact: testutil.ManagerContact}
}

// Whois tests

func (s *ExecutorSuite) TestWhoisPrimary() {
	reply, err := s.executor.Execute(s.ctx, auth.Anonymous, Whois{Target: "bob"})
	s.Require().NoError(err)

	s.Equal([]string{
		"## Bob",
		"- **Discord**: <@502> (`@bob`)",
		"- **UUID**: `" + testutil.BobUUID + "`",
		"- **Name is up-to-date as of**: <t:1700000100:R>",
		"- **Visit**: [NameMC](https://namemc.com/profile/" + testutil.BobUUID + "), [Laby](https://laby.net/@" + testutil.BobUUID + ")",
		"- **Alts**: `Bob_Alt, + 1 Hidden`",
		"## Clans",
		"- • **__Alpha__** (`Member`)",
		"- · **Bravo** (`Grunt`)",
	}, reply.Lines)
}

func (s *ExecutorSuite) TestWhoisAltShowsParentsView() {
	res, err := s.executor.Whois(s.ctx, auth.Anonymous, Whois{Target: "Bob_Alt"})
	s.Require().NoError(err)

	s.Require().Len(res.Parents, 1)
	s.Equal("Bob", res.Parents[0].Name)
	s.Equal([]model.ContactID{testutil.BobContact}, res.Contacts.Values())
	s.Len(res.Memberships, 2)

	lines := whoisLines(res)
	s.Contains(lines, "- **Main accounts**: `Bob`")
	s.Contains(lines, "- **Discord**: <@502> (`@bob`)")
}

func (s *ExecutorSuite) TestWhoisMarksAlts() {
	res, err := s.executor.Whois(s.ctx, auth.Anonymous, Whois{Target: "Bob_Alt"})
	s.Require().NoError(err)
	s.Equal("Bob_Alt (Alt)", res.DisplayName)
	s.Equal(`## Bob\_Alt (Alt)`, whoisLines(res)[0])

	res, err = s.executor.Whois(s.ctx, auth.Anonymous, Whois{Target: "bob"})
	s.Require().NoError(err)
	s.Equal("Bob", res.DisplayName)
}

func (s *ExecutorSuite) TestWhoisByMention() {
	res, err := s.executor.Whois(s.ctx, auth.Anonymous, Whois{Target: "<@501>", Contact: testutil.AliceContact})
	s.Require().NoError(err)
	s.Equal("Alice", res.Player.Name)
}

func (s *ExecutorSuite) TestWhoisHiddenNeedsReveal() {
	_, err := s.executor.Whois(s.ctx, auth.Anonymous, Whois{Target: "ghost"})
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.executor.Whois(s.ctx, s.manager, Whois{Target: "ghost", Reveal: true})
	s.ErrorIs(err, auth.ErrForbidden)

	res, err := s.executor.Whois(s.ctx, s.root, Whois{Target: "ghost", Reveal: true})
	s.Require().NoError(err)
	s.Equal(testutil.GhostUUID, res.Player.UUID)
}

func (s *ExecutorSuite) TestWhoisRevealListsHiddenAlts() {
	res, err := s.executor.Whois(s.ctx, s.root, Whois{Target: "bob", Reveal: true})
	s.Require().NoError(err)
	s.Equal("Bob_Alt, Ghost", altsList(res))
}

// Link tests

func (s *ExecutorSuite) TestLinkNeedsManager() {
	_, err := s.executor.Execute(s.ctx, auth.Anonymous, Link{Contact: 504, Handle: "dave", Clan: "charlie", Role: "boss"})
	s.ErrorIs(err, auth.ErrForbidden)
	s.Equal(0, s.lookup.calls)
}

func (s *ExecutorSuite) TestLinkCreatesPlayer() {
	s.lookup.byName = map[string]lookup.Profile{"dave": {UUID: daveUUID, Name: "Dave"}}

	reply, err := s.executor.Execute(s.ctx, s.manager, Link{Contact: 504, Handle: "dave", Clan: "CHARLIE", Role: "boss", Slug: "@dave"})
	s.Require().NoError(err)
	s.Equal([]string{"Successfully added: `Dave`"}, reply.Lines)

	p, ok := s.registry.FindPlayerByUUID(daveUUID)
	s.Require().True(ok)
	s.Equal(model.Primary{ContactID: 504, Slug: "@dave"}, p.Identity)
	s.Equal([]model.Membership{{Clan: 3, Role: 1, Primary: true}}, p.Memberships)
}

func (s *ExecutorSuite) TestLinkExistingAccountAddsMembership() {
	s.lookup.byName = map[string]lookup.Profile{"alice": {UUID: testutil.AliceUUID, Name: "Alice"}}

	res, err := s.executor.Link(s.ctx, s.manager, Link{Contact: testutil.AliceContact, Handle: "alice", Clan: "bravo", Role: "grunt"})
	s.Require().NoError(err)
	s.Equal(registry.LinkExtended, res.Outcome)
	s.Equal(5, s.registry.Count())
	s.Len(res.Player.Memberships, 2)
}

func (s *ExecutorSuite) TestLinkAlt() {
	s.lookup.byName = map[string]lookup.Profile{"alice2": {UUID: daveUUID, Name: "Alice2"}}

	res, err := s.executor.Link(s.ctx, s.manager, Link{Contact: testutil.AliceContact, Handle: "alice2", Clan: "alpha", Role: "member", AltOf: "alice"})
	s.Require().NoError(err)
	s.Equal([]string{testutil.AliceUUID}, res.Player.Parents())
	s.Equal(model.NoContact, res.Player.StoredContact())
}

func (s *ExecutorSuite) TestLinkLookupFailureLeavesRegistryUntouched() {
	s.lookup.missErr = lookup.ErrRateLimited

	_, err := s.executor.Link(s.ctx, s.manager, Link{Contact: 504, Handle: "dave", Clan: "charlie", Role: "boss"})
	s.ErrorIs(err, lookup.ErrRateLimited)
	s.Equal(1, s.lookup.calls)
	s.Equal(5, s.registry.Count())
	s.Equal(1, s.storage.SaveCount())
}

func (s *ExecutorSuite) TestLinkUnknownClanOrRole() {
	_, err := s.executor.Link(s.ctx, s.manager, Link{Contact: 504, Handle: "dave", Clan: "delta", Role: "boss"})
	s.ErrorIs(err, model.ErrClanNotFound)

	_, err = s.executor.Link(s.ctx, s.manager, Link{Contact: 504, Handle: "dave", Clan: "charlie", Role: "king"})
	s.ErrorIs(err, model.ErrRoleNotFound)

	_, err = s.executor.Link(s.ctx, s.manager, Link{Contact: 504, Handle: "dave", Clan: "charlie", Role: "boss", AltOf: "nobody"})
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Equal(0, s.lookup.calls)
}

// Unlink tests

func (s *ExecutorSuite) TestUnlinkNeedsRoot() {
	_, err := s.executor.Execute(s.ctx, s.manager, Unlink{Name: "bob"})
	s.ErrorIs(err, auth.ErrForbidden)
}

func (s *ExecutorSuite) TestUnlinkPromotesAlts() {
	reply, err := s.executor.Execute(s.ctx, s.root, Unlink{Name: "bob", Policy: registry.PromoteOrphans})
	s.Require().NoError(err)
	s.Equal([]string{"Player was unlinked!", "> 2 orphaned alts are now main accounts."}, reply.Lines)
	s.Equal(4, s.registry.Count())
}

// Read-only commands

func (s *ExecutorSuite) TestRolesAndSize() {
	reply, err := s.executor.Execute(s.ctx, auth.Anonymous, Roles{Clan: "alpha"})
	s.Require().NoError(err)
	s.Equal([]string{"# Roles of Alpha:", "★ Leader", "• Member"}, reply.Lines)

	reply, err = s.executor.Execute(s.ctx, auth.Anonymous, Size{Clan: "all", All: true})
	s.Require().NoError(err)
	s.Equal([]string{"Global number of registered players: 5"}, reply.Lines)

	reply, err = s.executor.Execute(s.ctx, auth.Anonymous, Size{Clan: "bravo"})
	s.Require().NoError(err)
	s.Equal([]string{"Bravo's number of registered players: 2"}, reply.Lines)

	_, err = s.executor.Execute(s.ctx, auth.Anonymous, Size{Clan: "delta"})
	s.ErrorIs(err, model.ErrClanNotFound)
}

func (s *ExecutorSuite) TestRoster() {
	_, err := s.executor.Execute(s.ctx, auth.Anonymous, Roster{Clan: "alpha"})
	s.ErrorIs(err, auth.ErrForbidden)

	reply, err := s.executor.Execute(s.ctx, s.manager, Roster{Clan: "alpha"})
	s.Require().NoError(err)
	s.Require().Len(reply.Chunks, 1)
	s.Contains(reply.Chunks[0], "> ## - Roster of Alpha")

	reply, err = s.executor.Execute(s.ctx, s.manager, Roster{Clan: "all", All: true})
	s.Require().NoError(err)
	s.Len(reply.Chunks, 3)
}

// Role tests

func (s *ExecutorSuite) TestSetRoleRegroupsRoster() {
	_, err := s.executor.Execute(s.ctx, auth.Anonymous, SetRole{Name: "alice", Clan: "alpha", Role: "member"})
	s.ErrorIs(err, auth.ErrForbidden)

	reply, err := s.executor.Execute(s.ctx, s.manager, SetRole{Name: "alice", Clan: "alpha", Role: "member"})
	s.Require().NoError(err)
	s.Equal([]string{"Moved `Alice` in Alpha from Leader to Member."}, reply.Lines)

	doc, err := s.storage.LoadDocument(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.Membership{{Clan: 1, Role: 2, Primary: true}}, doc.Players[0].Memberships)

	reply, err = s.executor.Execute(s.ctx, s.manager, Roster{Clan: "alpha"})
	s.Require().NoError(err)
	s.Require().Len(reply.Chunks, 1)
	s.NotContains(reply.Chunks[0], "Leader:")
	s.True(strings.HasSuffix(reply.Chunks[0], "\n## - • Member:\nAlice\nBob (ALTS: Bob\\_Alt)"), reply.Chunks[0])
}

func (s *ExecutorSuite) TestSetRoleAfterRelinkChangesRosterRole() {
	s.lookup.byName = map[string]lookup.Profile{"alice": {UUID: testutil.AliceUUID, Name: "Alice"}}
	_, err := s.executor.Link(s.ctx, s.manager, Link{Contact: testutil.AliceContact, Handle: "alice", Clan: "alpha", Role: "member"})
	s.Require().NoError(err)

	_, err = s.executor.SetRole(s.ctx, s.manager, SetRole{Name: "alice", Clan: "alpha", Role: "member"})
	s.Require().NoError(err)

	rosters, err := s.executor.Roster(s.ctx, s.manager, Roster{Clan: "alpha"})
	s.Require().NoError(err)
	s.NotContains(rosters[0].Chunks[0], "Leader:")
}

func (s *ExecutorSuite) TestSetRoleRejectsInvalidTargets() {
	_, err := s.executor.SetRole(s.ctx, s.manager, SetRole{Name: "nobody", Clan: "alpha", Role: "member"})
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.executor.SetRole(s.ctx, s.manager, SetRole{Name: "alice", Clan: "delta", Role: "member"})
	s.ErrorIs(err, model.ErrClanNotFound)

	_, err = s.executor.SetRole(s.ctx, s.manager, SetRole{Name: "alice", Clan: "alpha", Role: "king"})
	s.ErrorIs(err, model.ErrRoleNotFound)

	_, err = s.executor.SetRole(s.ctx, s.manager, SetRole{Name: "carol", Clan: "alpha", Role: "member"})
	s.ErrorIs(err, model.ErrValidation)
	s.Equal(1, s.storage.SaveCount())
}

func (s *ExecutorSuite) TestSyncFollowsChatRoles() {
	reply, err := s.executor.Execute(s.ctx, s.manager, Sync{Clan: "alpha", Members: []SyncMember{
		{Contact: testutil.BobContact, ChatRoles: []model.ChatRoleID{7, 1001}},
		{Contact: testutil.AliceContact, ChatRoles: []model.ChatRoleID{1001}},
		{Contact: testutil.CarolContact, ChatRoles: []model.ChatRoleID{7}},
		{Contact: 4242, ChatRoles: []model.ChatRoleID{1002}},
	}})
	s.Require().NoError(err)
	s.Equal([]string{"Synced Alpha! 1 roles changed, 1 unchanged.", "Failed: <@503>"}, reply.Lines)

	bob, ok := s.registry.FindPlayerByUUID(testutil.BobUUID)
	s.Require().True(ok)
	s.Equal(model.RoleID(1), bob.MembershipIn(1).Role)
	s.Equal(model.RoleID(2), bob.MembershipIn(2).Role)
}

func (s *ExecutorSuite) TestSyncNeedsManager() {
	_, err := s.executor.Sync(s.ctx, auth.Anonymous, Sync{Clan: "alpha"})
	s.ErrorIs(err, auth.ErrForbidden)

	_, err = s.executor.Sync(s.ctx, s.manager, Sync{Clan: "delta"})
	s.ErrorIs(err, model.ErrClanNotFound)
}

// Update tests

func (s *ExecutorSuite) TestUpdateRefreshesAllNames() {
	s.lookup.byUUID = map[string]lookup.Profile{
		testutil.AliceUUID:  {UUID: testutil.AliceUUID, Name: "Alicia"},
		testutil.BobUUID:    {UUID: testutil.BobUUID, Name: "Bob"},
		testutil.BobAltUUID: {UUID: testutil.BobAltUUID, Name: "Bob_Alt"},
		testutil.GhostUUID:  {UUID: testutil.GhostUUID, Name: "Ghost"},
		testutil.CarolUUID:  {UUID: testutil.CarolUUID, Name: "Carol"},
	}

	res, err := s.executor.Update(s.ctx, s.root)
	s.Require().NoError(err)
	s.NoError(res.Stopped)
	s.Equal(5, res.Updated)

	alice, _ := s.registry.FindPlayerByUUID(testutil.AliceUUID)
	s.Equal("Alicia", alice.Name)
	// refreshed oldest first, so the order is unchanged
	players := s.registry.Players()
	s.Equal("Alicia", players[0].Name)
	s.Equal("Ghost", players[4].Name)
}

func (s *ExecutorSuite) TestUpdateStopsAtFirstFailure() {
	s.lookup.missErr = lookup.ErrRateLimited
	s.lookup.byUUID = map[string]lookup.Profile{
		testutil.AliceUUID: {UUID: testutil.AliceUUID, Name: "Alice"},
		testutil.CarolUUID: {UUID: testutil.CarolUUID, Name: "Carol"},
	}

	reply, err := s.executor.Execute(s.ctx, s.root, Update{})
	s.Require().NoError(err)
	s.Equal([]string{
		"### Exit on 429!",
		"> Updated 2/5 players.",
		"> Least up-to-date account is <t:1700000100:R>.",
		"> Most up-to-date account is <t:1704110401:R>.",
	}, reply.Lines)
	s.Equal(3, s.lookup.calls)
}

func (s *ExecutorSuite) TestUpdateNeedsRoot() {
	_, err := s.executor.Update(s.ctx, s.manager)
	s.ErrorIs(err, auth.ErrForbidden)
}

// Maintenance commands

func (s *ExecutorSuite) TestBackupAndDedupe() {
	reply, err := s.executor.Execute(s.ctx, s.root, Backup{})
	s.Require().NoError(err)
	s.Require().Len(reply.Lines, 1)
	s.Contains(reply.Lines[0], "Saved backup as: `0-backup_01-January-2024.json`")

	reply, err = s.executor.Execute(s.ctx, s.root, Dedupe{})
	s.Require().NoError(err)
	s.Equal([]string{"Removed 0 duplicate players."}, reply.Lines)
}

func (s *ExecutorSuite) TestExecuteMessage() {
	results := s.executor.ExecuteMessage(s.ctx, auth.Anonymous, "hey\ngd:size all\ngd:bogus\ngd:backup\nGD:help")

	s.Require().Len(results, 4)
	s.Equal([]string{"Global number of registered players: 5"}, results[0].Reply.Lines)
	s.ErrorIs(results[1].Err, model.ErrValidation)
	s.ErrorIs(results[2].Err, auth.ErrForbidden)
	s.Equal(KindBackup, results[2].Kind)
	s.Equal("### Gideon: Help", results[3].Reply.Lines[0])
}

func (s *ExecutorSuite) TestStopReason() {
	s.Equal("404", StopReason(lookup.ErrNotFound))
	s.Equal("502", StopReason(&lookup.StatusError{Code: 502}))
	s.Equal("CANCELLED", StopReason(context.Canceled))
	s.Equal("", StopReason(nil))
}
