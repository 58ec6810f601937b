package registry

import "github.com/mcoot/gideon/internal/model"

// Validate checks the structural invariants a loaded document must hold.
// Duplicate player uuids are not rejected here; see DeduplicateByUUID.
// Parent and membership references are not checked either: identity
// resolution and roster composition report them as BrokenReferenceError
// when they are followed.
func Validate(doc *model.Document) error {
	clanIDs := make(map[model.ClanID]bool, len(doc.Clans))
	guilds := make(map[model.GuildID]model.ClanID, len(doc.Clans))
	for _, c := range doc.Clans {
		if clanIDs[c.ID] {
			return model.NewValidationError("clans", "duplicate clan id %d", c.ID)
		}
		clanIDs[c.ID] = true

		if c.Guild != 0 {
			if other, ok := guilds[c.Guild]; ok {
				return model.NewValidationError("clans",
					"guild %d is bound to clans %d and %d", c.Guild, other, c.ID)
			}
			guilds[c.Guild] = c.ID
		}

		roleIDs := make(map[model.RoleID]bool, len(c.Roles))
		for _, role := range c.Roles {
			if roleIDs[role.ID] {
				return model.NewValidationError("clans",
					"clan %d has duplicate role id %d", c.ID, role.ID)
			}
			roleIDs[role.ID] = true
		}
	}

	if len(doc.Relations) > len(doc.Clans) {
		return model.NewValidationError("clan_relations",
			"%d rows for %d clans", len(doc.Relations), len(doc.Clans))
	}
	for i, row := range doc.Relations {
		if len(row) > len(doc.Clans) {
			return model.NewValidationError("clan_relations",
				"row %d has %d entries for %d clans", i, len(row), len(doc.Clans))
		}
		for j, rel := range row {
			if rel < model.RelationUnset || rel > model.RelationEnemy {
				return model.NewValidationError("clan_relations",
					"unknown relation %d at [%d][%d]", rel, i, j)
			}
		}
	}

	for i, p := range doc.Players {
		if p == nil {
			return model.NewValidationError("players", "entry %d is null", i)
		}
		if p.UUID == "" {
			return model.NewValidationError("players", "entry %d has no uuid", i)
		}
	}
	return nil
}

// duplicateUUIDs lists uuids that occur more than once, in first-seen order
func duplicateUUIDs(players []*model.Player) []string {
	seen := make(map[string]int, len(players))
	var dups []string
	for _, p := range players {
		seen[p.UUID]++
		if seen[p.UUID] == 2 {
			dups = append(dups, p.UUID)
		}
	}
	return dups
}

func validateMembership(doc *model.Document, clan model.ClanID, role model.RoleID) error {
	c, _ := catalog{doc: doc}.clanByID(clan)
	if c == nil {
		return model.NewValidationError("clan", "clan %d does not exist", clan)
	}
	if c.Role(role) == nil {
		return model.NewValidationError("role", "clan %q has no role %d", c.Name, role)
	}
	return nil
}
