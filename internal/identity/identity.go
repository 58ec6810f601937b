// Package identity derives the effective attributes of a player. Primaries
// speak for themselves; alts take everything but their name from their
// parents.
package identity

import (
	"strconv"

	"github.com/mcoot/gideon/internal/model"
)

// PlayerResolver finds players by uuid. Registry and Snapshot both satisfy it.
type PlayerResolver interface {
	FindPlayerByUUID(uuid string) (*model.Player, bool)
}

// ClanResolver finds clans by id
type ClanResolver interface {
	FindClanByID(id model.ClanID) (*model.Clan, bool)
}

// ResolverFunc adapts a plain function to PlayerResolver
type ResolverFunc func(uuid string) (*model.Player, bool)

func (f ResolverFunc) FindPlayerByUUID(uuid string) (*model.Player, bool) {
	return f(uuid)
}

// Derived is an attribute that is a single value for a primary and one value
// per parent, in parent order, for an alt
type Derived[T any] struct {
	Alt       bool
	Own       T
	PerParent []T
}

// Values flattens the attribute: the own value for a primary, the parents'
// values for an alt
func (d Derived[T]) Values() []T {
	if d.Alt {
		return d.PerParent
	}
	return []T{d.Own}
}

// EffectiveName returns the display name, marking alts
func EffectiveName(p *model.Player) string {
	if p.IsAlt() {
		return p.Name + " (Alt)"
	}
	return p.Name
}

// IsShared reports whether the player is an alt used by more than one primary
func IsShared(p *model.Player) bool {
	return len(p.Parents()) > 1
}

// ResolveParents returns the parent players of an alt, or nil for a primary.
// A parent uuid that does not resolve is a BrokenReferenceError.
func ResolveParents(p *model.Player, r PlayerResolver) ([]*model.Player, error) {
	uuids := p.Parents()
	if len(uuids) == 0 {
		return nil, nil
	}
	parents := make([]*model.Player, 0, len(uuids))
	for _, uuid := range uuids {
		parent, ok := r.FindPlayerByUUID(uuid)
		if !ok {
			return nil, &model.BrokenReferenceError{Kind: model.RefPlayer, ID: uuid, From: p.UUID}
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// EffectiveContact returns the contact id, or each parent's own contact id for an alt
func EffectiveContact(p *model.Player, r PlayerResolver) (Derived[model.ContactID], error) {
	return derive(p, r, (*model.Player).StoredContact)
}

// EffectiveSlug returns the slug, or each parent's own slug for an alt
func EffectiveSlug(p *model.Player, r PlayerResolver) (Derived[string], error) {
	return derive(p, r, (*model.Player).StoredSlug)
}

// EffectiveMemberships returns the player's own memberships, or for an alt
// the concatenation of its parents' own memberships. Parents are taken as
// primaries and are not resolved further.
func EffectiveMemberships(p *model.Player, r PlayerResolver) ([]model.Membership, error) {
	if !p.IsAlt() {
		return p.Memberships, nil
	}
	parents, err := ResolveParents(p, r)
	if err != nil {
		return nil, err
	}
	var merged []model.Membership
	for _, parent := range parents {
		merged = append(merged, parent.Memberships...)
	}
	return merged, nil
}

func derive[T any](p *model.Player, r PlayerResolver, own func(*model.Player) T) (Derived[T], error) {
	if !p.IsAlt() {
		return Derived[T]{Own: own(p)}, nil
	}
	parents, err := ResolveParents(p, r)
	if err != nil {
		return Derived[T]{}, err
	}
	d := Derived[T]{Alt: true, PerParent: make([]T, len(parents))}
	for i, parent := range parents {
		d.PerParent[i] = own(parent)
	}
	return d, nil
}

// ResolvedMembership is a membership with its clan and role looked up
type ResolvedMembership struct {
	Clan    *model.Clan
	Role    *model.Role
	Primary bool
}

// ResolveMembership looks up the clan and role a membership points at.
// from names the referring player in the error.
func ResolveMembership(m model.Membership, clans ClanResolver, from string) (ResolvedMembership, error) {
	clan, ok := clans.FindClanByID(m.Clan)
	if !ok {
		return ResolvedMembership{}, &model.BrokenReferenceError{
			Kind: model.RefClan,
			ID:   strconv.Itoa(int(m.Clan)),
			From: from,
		}
	}
	role := clan.Role(m.Role)
	if role == nil {
		return ResolvedMembership{}, &model.BrokenReferenceError{
			Kind: model.RefRole,
			ID:   clan.Name + "/" + strconv.Itoa(int(m.Role)),
			From: from,
		}
	}
	return ResolvedMembership{Clan: clan, Role: role, Primary: m.Primary}, nil
}

// ResolveMemberships resolves every effective membership of the player
func ResolveMemberships(p *model.Player, players PlayerResolver, clans ClanResolver) ([]ResolvedMembership, error) {
	memberships, err := EffectiveMemberships(p, players)
	if err != nil {
		return nil, err
	}
	out := make([]ResolvedMembership, 0, len(memberships))
	for _, m := range memberships {
		rm, err := ResolveMembership(m, clans, p.UUID)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, nil
}
