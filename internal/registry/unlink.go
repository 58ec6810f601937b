package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/gideon/internal/model"
)

// OrphanPolicy decides what happens to alts whose parent is being removed
type OrphanPolicy int

const (
	// PromoteOrphans drops the removed uuid from every alt's parents. Alts
	// left without parents become primaries with their own stored record.
	PromoteOrphans OrphanPolicy = iota
	// CascadeOrphans drops the uuid from every alt's parents and removes
	// alts left without parents.
	CascadeOrphans
	// RejectReferenced refuses to remove a player that any alt still references
	RejectReferenced
)

func (p OrphanPolicy) String() string {
	switch p {
	case PromoteOrphans:
		return "promote"
	case CascadeOrphans:
		return "cascade"
	case RejectReferenced:
		return "reject"
	}
	return fmt.Sprintf("OrphanPolicy(%d)", int(p))
}

// ParseOrphanPolicy maps a policy name to its value; empty selects PromoteOrphans
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch s {
	case "", "promote":
		return PromoteOrphans, nil
	case "cascade":
		return CascadeOrphans, nil
	case "reject":
		return RejectReferenced, nil
	}
	return 0, model.NewValidationError("policy", "unknown orphan policy %q", s)
}

// UnlinkResult reports what an unlink changed
type UnlinkResult struct {
	Removed  *model.Player
	Detached []string // alts that lost the parent but kept at least one other
	Promoted []string // alts turned into primaries
	Deleted  []string // alts removed with their last parent
}

// DeleteByUUID removes the player using PromoteOrphans
func (r *Registry) DeleteByUUID(ctx context.Context, uuid string) (*UnlinkResult, error) {
	return r.Unlink(ctx, uuid, PromoteOrphans)
}

// Unlink removes every player with the uuid, settles its alts according to
// policy and persists once
func (r *Registry) Unlink(ctx context.Context, uuid string, policy OrphanPolicy) (*UnlinkResult, error) {
	res := &UnlinkResult{}
	err := r.mutate(ctx, "unlink", func(doc *model.Document) (bool, error) {
		cat := catalog{doc: doc}
		target := cat.playerByUUID(uuid)
		if target == nil {
			return false, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, uuid)
		}
		visible, hidden := cat.alternatesOf(uuid)
		if policy == RejectReferenced && len(visible)+len(hidden) > 0 {
			return false, model.NewValidationError("uuid",
				"%s is the parent of %d alts", target.Name, len(visible)+len(hidden))
		}
		res.Removed = target.Clone()

		doomed := map[string]bool{uuid: true}
		for _, alt := range slices.Concat(visible, hidden) {
			id := alt.Identity.(model.Alt)
			id.Parents = slices.DeleteFunc(slices.Clone(id.Parents), func(p string) bool { return p == uuid })
			switch {
			case len(id.Parents) > 0:
				alt.Identity = id
				res.Detached = append(res.Detached, alt.UUID)
			case policy == CascadeOrphans:
				doomed[alt.UUID] = true
				res.Deleted = append(res.Deleted, alt.UUID)
			default:
				alt.Identity = model.Primary{ContactID: id.ContactID, Slug: id.Slug}
				res.Promoted = append(res.Promoted, alt.UUID)
			}
		}

		doc.Players = slices.DeleteFunc(doc.Players, func(p *model.Player) bool {
			return doomed[p.UUID]
		})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("player unlinked",
		slog.String("uuid", uuid),
		slog.String("policy", policy.String()),
		slog.Int("detached", len(res.Detached)),
		slog.Int("promoted", len(res.Promoted)),
		slog.Int("deleted", len(res.Deleted)),
	)
	return res, nil
}
