package registry

import (
	"context"
	"log/slog"

	"github.com/mcoot/gideon/internal/model"
)

// LinkRequest is a resolved link of an account into a clan role
type LinkRequest struct {
	UUID    string // canonical uuid from the lookup service
	Name    string // canonical name from the lookup service
	Contact model.ContactID
	Slug    string
	Clan    model.ClanID
	Role    model.RoleID
	AltOf   string // uuid of the main account, empty for a primary
	Hidden  bool
}

// LinkOutcome tells whether a link created a player or extended one
type LinkOutcome int

const (
	LinkCreated LinkOutcome = iota
	LinkExtended
)

// Link registers the account, or gives an already registered account a
// further membership. Alts never carry their own contact or slug.
func (r *Registry) Link(ctx context.Context, req LinkRequest) (*model.Player, LinkOutcome, error) {
	contact, slug := req.Contact, req.Slug
	var parents []string
	if req.AltOf != "" {
		contact, slug = model.NoContact, ""
		parents = []string{req.AltOf}
	}

	var (
		linked  *model.Player
		outcome LinkOutcome
	)
	err := r.mutate(ctx, "link", func(doc *model.Document) (bool, error) {
		if existing := (catalog{doc: doc}).playerByUUID(req.UUID); existing != nil {
			if err := linkMembership(doc, req.UUID, contact, req.Clan, req.Role); err != nil {
				return false, err
			}
			linked, outcome = existing.Clone(), LinkExtended
			return true, nil
		}
		p, err := addPlayer(doc, NewPlayer{
			UUID:       req.UUID,
			Name:       req.Name,
			Hidden:     req.Hidden,
			Parents:    parents,
			Contact:    contact,
			Slug:       slug,
			Membership: model.Membership{Clan: req.Clan, Role: req.Role, Primary: true},
		}, r.stamp())
		if err != nil {
			return false, err
		}
		linked, outcome = p.Clone(), LinkCreated
		return true, nil
	})
	if err != nil {
		return nil, 0, err
	}
	r.logger.Info("player linked",
		slog.String("uuid", linked.UUID),
		slog.String("name", linked.Name),
		slog.Bool("created", outcome == LinkCreated),
		slog.Int("clan", int(req.Clan)),
	)
	return linked, outcome, nil
}
