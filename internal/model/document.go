package model

// PermLevel lists the contact ids holding elevated permissions
type PermLevel struct {
	Root    []ContactID
	Manager []ContactID
}

// Document is the whole persisted registry
type Document struct {
	Token     string
	Home      GuildID
	PermLevel PermLevel
	Clans     []Clan
	Relations RelationMatrix
	Players   []*Player
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	out := &Document{
		Token: d.Token,
		Home:  d.Home,
		PermLevel: PermLevel{
			Root:    append([]ContactID(nil), d.PermLevel.Root...),
			Manager: append([]ContactID(nil), d.PermLevel.Manager...),
		},
		Relations: d.Relations.Clone(),
	}
	if d.Clans != nil {
		out.Clans = make([]Clan, len(d.Clans))
		for i, c := range d.Clans {
			out.Clans[i] = c.Clone()
		}
	}
	if d.Players != nil {
		out.Players = make([]*Player, len(d.Players))
		for i, p := range d.Players {
			out.Players[i] = p.Clone()
		}
	}
	return out
}
