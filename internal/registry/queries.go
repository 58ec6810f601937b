package registry

import "github.com/mcoot/gideon/internal/model"

// Lookups return copies; the boolean is false when nothing matches

// FindClanByID returns the clan with the given id
func (r *Registry) FindClanByID(id model.ClanID) (*model.Clan, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, _ := r.catalog().clanByID(id)
	return cloneClan(c), c != nil
}

// FindClanByGuild returns the clan bound to the chat-platform guild
func (r *Registry) FindClanByGuild(guild model.GuildID) (*model.Clan, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := r.catalog().clanByGuild(guild)
	return cloneClan(c), c != nil
}

// FindClanByName matches the clan name case-insensitively
func (r *Registry) FindClanByName(name string) (*model.Clan, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := r.catalog().clanByName(name)
	return cloneClan(c), c != nil
}

// FindPlayerByUUID returns the player with the given uuid
func (r *Registry) FindPlayerByUUID(uuid string) (*model.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.catalog().playerByUUID(uuid)
	return clonePlayer(p), p != nil
}

// FindPlayerByContact returns the first player in registry order with the contact id
func (r *Registry) FindPlayerByContact(contact model.ContactID) (*model.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.catalog().playerByContact(contact)
	return clonePlayer(p), p != nil
}

// FindPlayerByName matches the player name case-insensitively
func (r *Registry) FindPlayerByName(name string) (*model.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.catalog().playerByName(name)
	return clonePlayer(p), p != nil
}

// AlternatesOf returns every player whose parents contain uuid, split into
// visible and hidden lists
func (r *Registry) AlternatesOf(uuid string) (visible, hidden []*model.Player) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, h := r.catalog().alternatesOf(uuid)
	return clonePlayers(v), clonePlayers(h)
}

// Clans returns all clans in registry order
func (r *Registry) Clans() []model.Clan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Clan, len(r.doc.Clans))
	for i, c := range r.doc.Clans {
		out[i] = c.Clone()
	}
	return out
}

// Players returns all players in registry order
func (r *Registry) Players() []*model.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clonePlayers(r.doc.Players)
}

// Count returns the number of registered players
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.doc.Players)
}

// CountInClan returns the number of players whose own record names the clan
func (r *Registry) CountInClan(id model.ClanID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog().countInClan(id)
}

// Home returns the guild whose clan rosters omit the invitation footer
func (r *Registry) Home() model.GuildID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.Home
}

// PermLevel returns a copy of the permission table
func (r *Registry) PermLevel() model.PermLevel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.PermLevel{
		Root:    append([]model.ContactID(nil), r.doc.PermLevel.Root...),
		Manager: append([]model.ContactID(nil), r.doc.PermLevel.Manager...),
	}
}

func (r *Registry) catalog() catalog {
	return catalog{doc: r.doc}
}
