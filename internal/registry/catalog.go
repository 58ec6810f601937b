package registry

import (
	"golang.org/x/text/cases"

	"github.com/mcoot/gideon/internal/model"
)

// catalog answers lookups over a document. It holds no lock; the owner
// decides how access is serialised.
type catalog struct {
	doc *model.Document
}

func (c catalog) clanByID(id model.ClanID) (*model.Clan, int) {
	for i := range c.doc.Clans {
		if c.doc.Clans[i].ID == id {
			return &c.doc.Clans[i], i
		}
	}
	return nil, -1
}

func (c catalog) clanByGuild(guild model.GuildID) *model.Clan {
	if guild == 0 {
		return nil
	}
	for i := range c.doc.Clans {
		if c.doc.Clans[i].Guild == guild {
			return &c.doc.Clans[i]
		}
	}
	return nil
}

func (c catalog) clanByName(name string) *model.Clan {
	for i := range c.doc.Clans {
		if sameName(c.doc.Clans[i].Name, name) {
			return &c.doc.Clans[i]
		}
	}
	return nil
}

func (c catalog) playerByUUID(uuid string) *model.Player {
	for _, p := range c.doc.Players {
		if p.UUID == uuid {
			return p
		}
	}
	return nil
}

// playerByContact returns the first player in registry order holding the contact.
// Unset (0) and the alt placeholder (-1) never match.
func (c catalog) playerByContact(contact model.ContactID) *model.Player {
	if contact <= 0 {
		return nil
	}
	for _, p := range c.doc.Players {
		if p.StoredContact() == contact {
			return p
		}
	}
	return nil
}

func (c catalog) playerByName(name string) *model.Player {
	for _, p := range c.doc.Players {
		if sameName(p.Name, name) {
			return p
		}
	}
	return nil
}

// alternatesOf partitions every player listing uuid as a parent by Hidden,
// preserving registry order
func (c catalog) alternatesOf(uuid string) (visible, hidden []*model.Player) {
	for _, p := range c.doc.Players {
		if !p.HasParent(uuid) {
			continue
		}
		if p.Hidden {
			hidden = append(hidden, p)
		} else {
			visible = append(visible, p)
		}
	}
	return visible, hidden
}

func (c catalog) countInClan(id model.ClanID) int {
	n := 0
	for _, p := range c.doc.Players {
		if p.MembershipIn(id) != nil {
			n++
		}
	}
	return n
}

// sameName compares names case-insensitively using Unicode case folding
func sameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

func clonePlayers(ps []*model.Player) []*model.Player {
	if ps == nil {
		return nil
	}
	out := make([]*model.Player, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func cloneClan(c *model.Clan) *model.Clan {
	if c == nil {
		return nil
	}
	clone := c.Clone()
	return &clone
}

func clonePlayer(p *model.Player) *model.Player {
	if p == nil {
		return nil
	}
	return p.Clone()
}
