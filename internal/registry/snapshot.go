package registry

import "github.com/mcoot/gideon/internal/model"

// Snapshot is a frozen copy of the registry. It is safe to read from any
// goroutine and never changes after creation.
type Snapshot struct {
	cat catalog
}

func newSnapshot(doc *model.Document) *Snapshot {
	return &Snapshot{cat: catalog{doc: doc}}
}

// NewSnapshot wraps a document directly, mainly for tests and tools.
// The caller must not modify doc afterwards.
func NewSnapshot(doc *model.Document) *Snapshot {
	return newSnapshot(doc)
}

// Clans returns the clans in registry order. The slice must not be modified.
func (s *Snapshot) Clans() []model.Clan { return s.cat.doc.Clans }

// Players returns the players in registry order. The slice must not be modified.
func (s *Snapshot) Players() []*model.Player { return s.cat.doc.Players }

// Relations returns the clan relation matrix
func (s *Snapshot) Relations() model.RelationMatrix { return s.cat.doc.Relations }

// Home returns the home guild
func (s *Snapshot) Home() model.GuildID { return s.cat.doc.Home }

// PermLevel returns the permission table
func (s *Snapshot) PermLevel() model.PermLevel { return s.cat.doc.PermLevel }

// FindClanByID returns the clan and its position in the registry
func (s *Snapshot) FindClanByID(id model.ClanID) (*model.Clan, bool) {
	c, _ := s.cat.clanByID(id)
	return c, c != nil
}

// ClanPosition returns the clan's index into the relation matrix, or -1
func (s *Snapshot) ClanPosition(id model.ClanID) int {
	_, pos := s.cat.clanByID(id)
	return pos
}

// FindClanByName matches the clan name case-insensitively
func (s *Snapshot) FindClanByName(name string) (*model.Clan, bool) {
	c := s.cat.clanByName(name)
	return c, c != nil
}

// FindPlayerByUUID returns the player with the given uuid
func (s *Snapshot) FindPlayerByUUID(uuid string) (*model.Player, bool) {
	p := s.cat.playerByUUID(uuid)
	return p, p != nil
}

// FindPlayerByName matches the player name case-insensitively
func (s *Snapshot) FindPlayerByName(name string) (*model.Player, bool) {
	p := s.cat.playerByName(name)
	return p, p != nil
}

// FindPlayerByContact returns the first player with the contact id
func (s *Snapshot) FindPlayerByContact(contact model.ContactID) (*model.Player, bool) {
	p := s.cat.playerByContact(contact)
	return p, p != nil
}

// AlternatesOf splits the alternates of uuid into visible and hidden
func (s *Snapshot) AlternatesOf(uuid string) (visible, hidden []*model.Player) {
	return s.cat.alternatesOf(uuid)
}
