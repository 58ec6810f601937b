package model

import (
	"math"
	"time"
)

// ContactID identifies a user on the chat platform. Zero means unset;
// alts linked without an account of their own carry -1.
type ContactID int64

// NoContact is stored on alts that were linked on behalf of a main account
const NoContact ContactID = -1

// Timestamp is a unix time in (fractional) seconds, kept in the form it is stored
type Timestamp float64

// TimestampOf converts a time.Time to a Timestamp
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(float64(t.UnixNano()) / float64(time.Second))
}

// Time converts the timestamp back to a time.Time
func (t Timestamp) Time() time.Time {
	sec, frac := math.Modf(float64(t))
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// Unix returns the timestamp rounded to whole seconds
func (t Timestamp) Unix() int64 {
	return int64(math.Round(float64(t)))
}

// Membership associates a player's own record with a clan role
type Membership struct {
	Clan    ClanID
	Role    RoleID
	Primary bool
}

// Identity is the closed set of player kinds: Primary or Alt
type Identity interface {
	identity()
}

// Primary is an account that is the authoritative source of its own attributes
type Primary struct {
	ContactID ContactID
	Slug      string
}

// Alt is an alternate account of one or more primaries.
// ContactID and Slug are stored values only; resolution derives them from Parents.
type Alt struct {
	Parents   []string
	ContactID ContactID
	Slug      string
}

func (Primary) identity() {}
func (Alt) identity()     {}

// Player is one identity in the registry
type Player struct {
	UUID        string
	Name        string
	Hidden      bool
	LastUpdated Timestamp
	Identity    Identity
	Memberships []Membership // own record; ignored for alts in favour of the parents' view
}

// IsAlt reports whether the player is an alternate account
func (p *Player) IsAlt() bool {
	_, ok := p.Identity.(Alt)
	return ok
}

// Parents returns the parent uuids of an alt, or nil for a primary
func (p *Player) Parents() []string {
	if alt, ok := p.Identity.(Alt); ok {
		return alt.Parents
	}
	return nil
}

// HasParent reports whether uuid is among the player's parents
func (p *Player) HasParent(uuid string) bool {
	for _, parent := range p.Parents() {
		if parent == uuid {
			return true
		}
	}
	return false
}

// StoredContact returns the contact id held on the player's own record
func (p *Player) StoredContact() ContactID {
	switch id := p.Identity.(type) {
	case Primary:
		return id.ContactID
	case Alt:
		return id.ContactID
	}
	return 0
}

// StoredSlug returns the slug held on the player's own record
func (p *Player) StoredSlug() string {
	switch id := p.Identity.(type) {
	case Primary:
		return id.Slug
	case Alt:
		return id.Slug
	}
	return ""
}

// SetContact replaces the contact id on the player's own record
func (p *Player) SetContact(contact ContactID) {
	switch id := p.Identity.(type) {
	case Primary:
		id.ContactID = contact
		p.Identity = id
	case Alt:
		id.ContactID = contact
		p.Identity = id
	default:
		p.Identity = Primary{ContactID: contact}
	}
}

// MembershipIn returns the first own membership for the clan, or nil
func (p *Player) MembershipIn(clan ClanID) *Membership {
	for i := range p.Memberships {
		if p.Memberships[i].Clan == clan {
			return &p.Memberships[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	out := *p
	out.Memberships = append([]Membership(nil), p.Memberships...)
	if alt, ok := p.Identity.(Alt); ok {
		alt.Parents = append([]string(nil), alt.Parents...)
		out.Identity = alt
	}
	return &out
}
