package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/registry"
	"github.com/mcoot/gideon/internal/testutil"
)

func fixture(t *testing.T) *registry.Snapshot {
	t.Helper()
	return registry.NewSnapshot(testutil.FixtureDocument())
}

func player(t *testing.T, snap *registry.Snapshot, uuid string) *model.Player {
	t.Helper()
	p, ok := snap.FindPlayerByUUID(uuid)
	require.True(t, ok)
	return p
}

func sharedAlt(parents ...string) *model.Player {
	return &model.Player{
		UUID:     "6f708192a3b445c6c708f90a1b2c3d4e",
		Name:     "Shared",
		Identity: model.Alt{Parents: parents, ContactID: model.NoContact},
		// ignored in favour of the parents' memberships
		Memberships: []model.Membership{{Clan: 3, Role: 1, Primary: true}},
	}
}

func TestEffectiveName(t *testing.T) {
	snap := fixture(t)
	assert.Equal(t, "Bob", EffectiveName(player(t, snap, testutil.BobUUID)))
	assert.Equal(t, "Bob_Alt (Alt)", EffectiveName(player(t, snap, testutil.BobAltUUID)))
}

func TestEffectiveContactOfPrimaryIsScalar(t *testing.T) {
	snap := fixture(t)
	contact, err := EffectiveContact(player(t, snap, testutil.AliceUUID), snap)
	require.NoError(t, err)

	assert.False(t, contact.Alt)
	assert.Equal(t, testutil.AliceContact, contact.Own)
	assert.Equal(t, []model.ContactID{testutil.AliceContact}, contact.Values())
}

func TestEffectiveAttributesOfAltFollowParentOrder(t *testing.T) {
	snap := fixture(t)
	alt := sharedAlt(testutil.CarolUUID, testutil.AliceUUID)

	contact, err := EffectiveContact(alt, snap)
	require.NoError(t, err)
	assert.True(t, contact.Alt)
	assert.Equal(t, []model.ContactID{testutil.CarolContact, testutil.AliceContact}, contact.Values())

	slug, err := EffectiveSlug(alt, snap)
	require.NoError(t, err)
	assert.Equal(t, []string{"@carol", "@alice"}, slug.Values())
}

func TestEffectiveMembershipsConcatenatesParents(t *testing.T) {
	snap := fixture(t)
	alice := player(t, snap, testutil.AliceUUID)
	bob := player(t, snap, testutil.BobUUID)

	got, err := EffectiveMemberships(sharedAlt(testutil.AliceUUID, testutil.BobUUID), snap)
	require.NoError(t, err)

	want := append(append([]model.Membership(nil), alice.Memberships...), bob.Memberships...)
	assert.Equal(t, want, got)
}

func TestEffectiveMembershipsOfPrimaryAreOwn(t *testing.T) {
	snap := fixture(t)
	bob := player(t, snap, testutil.BobUUID)

	got, err := EffectiveMemberships(bob, snap)
	require.NoError(t, err)
	assert.Equal(t, bob.Memberships, got)
}

func TestResolveParents(t *testing.T) {
	snap := fixture(t)

	parents, err := ResolveParents(player(t, snap, testutil.AliceUUID), snap)
	require.NoError(t, err)
	assert.Nil(t, parents)

	parents, err = ResolveParents(player(t, snap, testutil.GhostUUID), snap)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, "Bob", parents[0].Name)
}

func TestDanglingParentIsBrokenReference(t *testing.T) {
	snap := fixture(t)
	alt := sharedAlt(testutil.AliceUUID, "ffffffffffffffffffffffffffffffff")

	_, err := ResolveParents(alt, snap)
	var broken *model.BrokenReferenceError
	require.ErrorAs(t, err, &broken)
	assert.Equal(t, model.RefPlayer, broken.Kind)
	assert.Equal(t, "ffffffffffffffffffffffffffffffff", broken.ID)
	assert.Equal(t, alt.UUID, broken.From)

	_, err = EffectiveMemberships(alt, snap)
	assert.ErrorIs(t, err, model.ErrBrokenReference)
	_, err = EffectiveContact(alt, snap)
	assert.ErrorIs(t, err, model.ErrBrokenReference)
}

func TestResolverFunc(t *testing.T) {
	bob := &model.Player{UUID: testutil.BobUUID, Name: "Bob", Identity: model.Primary{ContactID: 1, Slug: "@b"}}
	r := ResolverFunc(func(uuid string) (*model.Player, bool) {
		if uuid == bob.UUID {
			return bob, true
		}
		return nil, false
	})

	slug, err := EffectiveSlug(sharedAlt(testutil.BobUUID), r)
	require.NoError(t, err)
	assert.Equal(t, []string{"@b"}, slug.Values())
}

func TestResolveMemberships(t *testing.T) {
	snap := fixture(t)

	got, err := ResolveMemberships(player(t, snap, testutil.BobAltUUID), snap, snap)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Clan.Name)
	assert.Equal(t, "Member", got[0].Role.Name)
	assert.True(t, got[0].Primary)
	assert.Equal(t, "Bravo", got[1].Clan.Name)
	assert.Equal(t, "Grunt", got[1].Role.Name)
	assert.False(t, got[1].Primary)
}

func TestResolveMembershipBrokenRole(t *testing.T) {
	snap := fixture(t)

	_, err := ResolveMembership(model.Membership{Clan: 3, Role: 7}, snap, testutil.AliceUUID)
	var broken *model.BrokenReferenceError
	require.ErrorAs(t, err, &broken)
	assert.Equal(t, model.RefRole, broken.Kind)
	assert.Equal(t, "Charlie/7", broken.ID)

	_, err = ResolveMembership(model.Membership{Clan: 9, Role: 1}, snap, testutil.AliceUUID)
	require.ErrorAs(t, err, &broken)
	assert.Equal(t, model.RefClan, broken.Kind)
}

func TestIsShared(t *testing.T) {
	snap := fixture(t)
	assert.False(t, IsShared(player(t, snap, testutil.AliceUUID)))
	assert.False(t, IsShared(player(t, snap, testutil.BobAltUUID)))
	assert.True(t, IsShared(sharedAlt(testutil.AliceUUID, testutil.BobUUID)))
}
