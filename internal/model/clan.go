package model

// GuildID identifies a chat-platform guild (server)
type GuildID int64

// ChatRoleID identifies a role on the chat platform
type ChatRoleID int64

// RoleID identifies a role within a single clan
type RoleID int

// ClanID uniquely identifies a clan across the registry
type ClanID int

// Role is a rank inside a clan
type Role struct {
	ID       RoleID
	Name     string
	Icon     string
	ChatRole ChatRoleID // zero when the role is not bound to a chat-platform role
}

// Clan is a community group with an ordered set of roles
type Clan struct {
	ID    ClanID
	Name  string
	Guild GuildID
	Roles []Role
}

// Role returns the role with the given id, or nil if the clan has none
func (c *Clan) Role(id RoleID) *Role {
	for i := range c.Roles {
		if c.Roles[i].ID == id {
			return &c.Roles[i]
		}
	}
	return nil
}

// RoleName returns the role's display name, or "<?>" when the id is unknown
func (c *Clan) RoleName(id RoleID) string {
	if r := c.Role(id); r != nil {
		return r.Name
	}
	return "<?>"
}

// Clone returns a deep copy of the clan
func (c Clan) Clone() Clan {
	c.Roles = append([]Role(nil), c.Roles...)
	return c
}

// Relation classifies how one clan regards another
type Relation int

const (
	RelationUnset   Relation = 0
	RelationNeutral Relation = 1
	RelationAlly    Relation = 2
	RelationEnemy   Relation = 3
)

// String returns the lower-case relation name
func (r Relation) String() string {
	switch r {
	case RelationNeutral:
		return "neutral"
	case RelationAlly:
		return "ally"
	case RelationEnemy:
		return "enemy"
	default:
		return "unset"
	}
}

// RelationMatrix is indexed by clan position in the registry, not by clan id
type RelationMatrix [][]Relation

// At returns the relation of the clan at row towards the clan at col.
// Missing cells read as RelationUnset.
func (m RelationMatrix) At(row, col int) Relation {
	if row < 0 || row >= len(m) {
		return RelationUnset
	}
	if col < 0 || col >= len(m[row]) {
		return RelationUnset
	}
	return m[row][col]
}

// Row returns the relations of the clan at the given position
func (m RelationMatrix) Row(row int) []Relation {
	if row < 0 || row >= len(m) {
		return nil
	}
	return m[row]
}

// Clone returns a deep copy of the matrix
func (m RelationMatrix) Clone() RelationMatrix {
	if m == nil {
		return nil
	}
	out := make(RelationMatrix, len(m))
	for i, row := range m {
		if row != nil {
			out[i] = append([]Relation{}, row...)
		}
	}
	return out
}
