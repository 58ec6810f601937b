package model

// The JSON shapes below are the on-disk form of the registry document.
// Keys match the database files written by earlier versions of the bot.

// DocumentJSON is the persisted registry document
type DocumentJSON struct {
	Token         string        `json:"token"`
	Home          *GuildID      `json:"home"`
	PermLevel     PermLevelJSON `json:"perm_level"`
	Clans         []ClanJSON    `json:"clans"`
	ClanRelations [][]Relation  `json:"clan_relations"`
	Players       []PlayerJSON  `json:"players"`
}

// PermLevelJSON is the persisted permission table
type PermLevelJSON struct {
	Root    []ContactID `json:"root"`
	Manager []ContactID `json:"manager"`
}

// ClanJSON is the persisted form of a Clan
type ClanJSON struct {
	ID    ClanID     `json:"id"`
	Name  string     `json:"name"`
	Guild *GuildID   `json:"guild"`
	Roles []RoleJSON `json:"roles"`
}

// RoleJSON is the persisted form of a Role
type RoleJSON struct {
	ID      RoleID      `json:"id"`
	Name    string      `json:"name"`
	Icon    string      `json:"icon"`
	Discord *ChatRoleID `json:"discord"`
}

// PlayerJSON is the persisted form of a Player
type PlayerJSON struct {
	Parents     []string         `json:"parents"`
	UUID        string           `json:"uuid"`
	Name        string           `json:"name"`
	Hidden      bool             `json:"hidden"`
	LastUpdated Timestamp        `json:"last_updated"`
	Discord     *ContactID       `json:"discord"`
	Slug        string           `json:"slug"`
	Clans       []MembershipJSON `json:"clans"`
}

// MembershipJSON is the persisted form of a Membership
type MembershipJSON struct {
	Clan    ClanID `json:"clan"`
	Primary bool   `json:"primary"`
	Role    RoleID `json:"role"`
}

// Export converts a document to its persisted form.
// Empty collections are written as empty lists, zero ids as null.
func Export(d *Document) DocumentJSON {
	out := DocumentJSON{
		Token: d.Token,
		Home:  nullable(d.Home),
		PermLevel: PermLevelJSON{
			Root:    orEmpty(d.PermLevel.Root),
			Manager: orEmpty(d.PermLevel.Manager),
		},
		Clans:         make([]ClanJSON, 0, len(d.Clans)),
		ClanRelations: make([][]Relation, 0, len(d.Relations)),
		Players:       make([]PlayerJSON, 0, len(d.Players)),
	}
	for _, c := range d.Clans {
		out.Clans = append(out.Clans, ExportClan(c))
	}
	for _, row := range d.Relations {
		out.ClanRelations = append(out.ClanRelations, orEmpty(row))
	}
	for _, p := range d.Players {
		out.Players = append(out.Players, ExportPlayer(p))
	}
	return out
}

// Import converts a persisted document back into the model.
// Empty collections become nil, null ids become zero.
func Import(in DocumentJSON) *Document {
	d := &Document{
		Token: in.Token,
		Home:  deref(in.Home),
		PermLevel: PermLevel{
			Root:    orNil(in.PermLevel.Root),
			Manager: orNil(in.PermLevel.Manager),
		},
	}
	if len(in.Clans) > 0 {
		d.Clans = make([]Clan, 0, len(in.Clans))
		for _, c := range in.Clans {
			d.Clans = append(d.Clans, ImportClan(c))
		}
	}
	if len(in.ClanRelations) > 0 {
		d.Relations = make(RelationMatrix, 0, len(in.ClanRelations))
		for _, row := range in.ClanRelations {
			d.Relations = append(d.Relations, orNil(row))
		}
	}
	if len(in.Players) > 0 {
		d.Players = make([]*Player, 0, len(in.Players))
		for _, p := range in.Players {
			d.Players = append(d.Players, ImportPlayer(p))
		}
	}
	return d
}

// ExportClan converts a clan to its persisted form
func ExportClan(c Clan) ClanJSON {
	out := ClanJSON{
		ID:    c.ID,
		Name:  c.Name,
		Guild: nullable(c.Guild),
		Roles: make([]RoleJSON, 0, len(c.Roles)),
	}
	for _, r := range c.Roles {
		out.Roles = append(out.Roles, RoleJSON{
			ID:      r.ID,
			Name:    r.Name,
			Icon:    r.Icon,
			Discord: nullable(r.ChatRole),
		})
	}
	return out
}

// ImportClan converts a persisted clan back into the model
func ImportClan(in ClanJSON) Clan {
	c := Clan{
		ID:    in.ID,
		Name:  in.Name,
		Guild: deref(in.Guild),
	}
	if len(in.Roles) > 0 {
		c.Roles = make([]Role, 0, len(in.Roles))
		for _, r := range in.Roles {
			c.Roles = append(c.Roles, Role{
				ID:       r.ID,
				Name:     r.Name,
				Icon:     r.Icon,
				ChatRole: deref(r.Discord),
			})
		}
	}
	return c
}

// ExportPlayer converts a player to its persisted form
func ExportPlayer(p *Player) PlayerJSON {
	out := PlayerJSON{
		Parents:     orNil(p.Parents()),
		UUID:        p.UUID,
		Name:        p.Name,
		Hidden:      p.Hidden,
		LastUpdated: p.LastUpdated,
		Discord:     nullable(p.StoredContact()),
		Slug:        p.StoredSlug(),
		Clans:       make([]MembershipJSON, 0, len(p.Memberships)),
	}
	for _, m := range p.Memberships {
		out.Clans = append(out.Clans, MembershipJSON{
			Clan:    m.Clan,
			Primary: m.Primary,
			Role:    m.Role,
		})
	}
	return out
}

// ImportPlayer converts a persisted player back into the model.
// A missing or empty parent list makes the player a Primary.
func ImportPlayer(in PlayerJSON) *Player {
	p := &Player{
		UUID:        in.UUID,
		Name:        in.Name,
		Hidden:      in.Hidden,
		LastUpdated: in.LastUpdated,
	}
	if len(in.Parents) > 0 {
		p.Identity = Alt{
			Parents:   append([]string(nil), in.Parents...),
			ContactID: deref(in.Discord),
			Slug:      in.Slug,
		}
	} else {
		p.Identity = Primary{
			ContactID: deref(in.Discord),
			Slug:      in.Slug,
		}
	}
	if len(in.Clans) > 0 {
		p.Memberships = make([]Membership, 0, len(in.Clans))
		for _, m := range in.Clans {
			p.Memberships = append(p.Memberships, Membership{
				Clan:    m.Clan,
				Role:    m.Role,
				Primary: m.Primary,
			})
		}
	}
	return p
}

type numericID interface {
	~int64
}

func nullable[T numericID](v T) *T {
	if v == 0 {
		return nil
	}
	return &v
}

func deref[T numericID](v *T) T {
	if v == nil {
		return 0
	}
	return *v
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return append([]T{}, s...)
}

func orNil[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return append([]T(nil), s...)
}
