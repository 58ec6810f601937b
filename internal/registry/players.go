package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/mcoot/gideon/internal/dependencies/clock"
	"github.com/mcoot/gideon/internal/model"
)

// NewPlayer holds the fields of a player about to be registered
type NewPlayer struct {
	UUID       string
	Name       string
	Hidden     bool
	Parents    []string // non-empty registers an alt
	Contact    model.ContactID
	Slug       string
	Membership model.Membership
}

// AddPlayer registers a new player and persists the registry
func (r *Registry) AddPlayer(ctx context.Context, np NewPlayer) (*model.Player, error) {
	var added *model.Player
	err := r.mutate(ctx, "add_player", func(doc *model.Document) (bool, error) {
		p, err := addPlayer(doc, np, r.stamp())
		if err != nil {
			return false, err
		}
		added = p.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("player added",
		slog.String("uuid", added.UUID),
		slog.String("name", added.Name),
		slog.Bool("alt", added.IsAlt()),
	)
	return added, nil
}

// LinkMembership gives an existing player a further, non-primary membership
// and replaces its contact id
func (r *Registry) LinkMembership(ctx context.Context, uuid string, contact model.ContactID, clan model.ClanID, role model.RoleID) error {
	err := r.mutate(ctx, "link_membership", func(doc *model.Document) (bool, error) {
		return true, linkMembership(doc, uuid, contact, clan, role)
	})
	if err != nil {
		return err
	}
	r.logger.Info("membership linked",
		slog.String("uuid", uuid),
		slog.Int("clan", int(clan)),
		slog.Int("role", int(role)),
	)
	return nil
}

// ReassignRole changes the role of the player's own membership in clan.
// A missing player or membership is silently ignored.
func (r *Registry) ReassignRole(ctx context.Context, uuid string, clan model.ClanID, role model.RoleID) error {
	return r.mutate(ctx, "reassign_role", func(doc *model.Document) (bool, error) {
		p := catalog{doc: doc}.playerByUUID(uuid)
		if p == nil {
			return false, nil
		}
		m := p.MembershipIn(clan)
		if m == nil {
			return false, nil
		}
		if err := validateMembership(doc, clan, role); err != nil {
			return false, err
		}
		m.Role = role
		return true, nil
	})
}

// RenamePlayer records a confirmed name for the player and stamps it as up to date
func (r *Registry) RenamePlayer(ctx context.Context, uuid, name string) error {
	if name == "" {
		return model.NewValidationError("name", "must not be empty")
	}
	return r.mutate(ctx, "rename_player", func(doc *model.Document) (bool, error) {
		p := catalog{doc: doc}.playerByUUID(uuid)
		if p == nil {
			return false, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, uuid)
		}
		p.Name = name
		p.LastUpdated = r.stamp()
		return true, nil
	})
}

// DeduplicateByUUID drops every player whose uuid was already seen earlier in
// registry order. It returns the number removed and persists only when
// something was removed.
func (r *Registry) DeduplicateByUUID(ctx context.Context) (int, error) {
	removed := 0
	err := r.mutate(ctx, "dedupe", func(doc *model.Document) (bool, error) {
		seen := make(map[string]bool, len(doc.Players))
		kept := doc.Players[:0]
		for _, p := range doc.Players {
			if seen[p.UUID] {
				removed++
				continue
			}
			seen[p.UUID] = true
			kept = append(kept, p)
		}
		clear(doc.Players[len(kept):])
		doc.Players = kept
		return removed > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		r.logger.Info("duplicate players removed", slog.Int("removed", removed))
	}
	return removed, nil
}

// SortByRecency orders players by ascending LastUpdated, keeping the
// relative order of equal timestamps, and persists
func (r *Registry) SortByRecency(ctx context.Context) error {
	return r.mutate(ctx, "sort", func(doc *model.Document) (bool, error) {
		sort.SliceStable(doc.Players, func(i, j int) bool {
			return doc.Players[i].LastUpdated < doc.Players[j].LastUpdated
		})
		return true, nil
	})
}

func (r *Registry) stamp() model.Timestamp {
	return clock.Stamp(r.clock)
}

func addPlayer(doc *model.Document, np NewPlayer, now model.Timestamp) (*model.Player, error) {
	cat := catalog{doc: doc}
	if np.UUID == "" {
		return nil, model.NewValidationError("uuid", "must not be empty")
	}
	if np.Name == "" {
		return nil, model.NewValidationError("name", "must not be empty")
	}
	if cat.playerByUUID(np.UUID) != nil {
		return nil, model.NewValidationError("uuid", "player %s already exists", np.UUID)
	}
	for i, parent := range np.Parents {
		if parent == np.UUID {
			return nil, model.NewValidationError("parents", "player cannot be its own parent")
		}
		if slices.Contains(np.Parents[:i], parent) {
			return nil, model.NewValidationError("parents", "parent %s listed twice", parent)
		}
		pp := cat.playerByUUID(parent)
		if pp == nil {
			return nil, model.NewValidationError("parents", "parent %s does not exist", parent)
		}
		// Only primaries may be parents, so no chain or cycle can form
		if pp.IsAlt() {
			return nil, model.NewValidationError("parents", "parent %s is itself an alt", parent)
		}
	}
	if err := validateMembership(doc, np.Membership.Clan, np.Membership.Role); err != nil {
		return nil, err
	}

	p := &model.Player{
		UUID:        np.UUID,
		Name:        np.Name,
		Hidden:      np.Hidden,
		LastUpdated: now,
		Memberships: []model.Membership{np.Membership},
	}
	if len(np.Parents) > 0 {
		p.Identity = model.Alt{
			Parents:   slices.Clone(np.Parents),
			ContactID: np.Contact,
			Slug:      np.Slug,
		}
	} else {
		p.Identity = model.Primary{ContactID: np.Contact, Slug: np.Slug}
	}
	doc.Players = append(doc.Players, p)
	return p, nil
}

func linkMembership(doc *model.Document, uuid string, contact model.ContactID, clan model.ClanID, role model.RoleID) error {
	p := catalog{doc: doc}.playerByUUID(uuid)
	if p == nil {
		return fmt.Errorf("%w: %s", model.ErrPlayerNotFound, uuid)
	}
	if err := validateMembership(doc, clan, role); err != nil {
		return err
	}
	p.SetContact(contact)
	p.Memberships = append(p.Memberships, model.Membership{Clan: clan, Role: role})
	return nil
}
