package testutil

import "github.com/mcoot/gideon/internal/model"

// Fixture uuids, in the undashed form the lookup service returns
const (
	AliceUUID  = "1a2b3c4d5e6f40718293a4b5c6d7e8f9"
	BobUUID    = "2b3c4d5e6f7041829304b5c6d7e8f90a"
	BobAltUUID = "3c4d5e6f708142939405c6d7e8f90a1b"
	GhostUUID  = "4d5e6f70819243a4a506d7e8f90a1b2c"
	CarolUUID  = "5e6f708192a344b5b607e8f90a1b2c3d"
)

// Fixture contact ids
const (
	RootContact    model.ContactID = 9001
	ManagerContact model.ContactID = 9002
	AliceContact   model.ContactID = 501
	BobContact     model.ContactID = 502
	CarolContact   model.ContactID = 503
)

// Fixture guilds; HomeGuild belongs to Charlie
const (
	AlphaGuild model.GuildID = 100
	BravoGuild model.GuildID = 200
	HomeGuild  model.GuildID = 300
)

// FixtureDocument returns a small registry:
//
//	Alpha (1): Leader ★ / Member •   enemy of Bravo, ally of Charlie
//	Bravo (2): Chief ♛ / Grunt ·
//	Charlie (3): Boss ♦              lives in the home guild
//
// Alice leads Alpha, Bob is an Alpha member who is also in Bravo, Bob_Alt
// and a hidden Ghost are alts of Bob, Carol leads Bravo.
func FixtureDocument() *model.Document {
	return &model.Document{
		Token: "token",
		Home:  HomeGuild,
		PermLevel: model.PermLevel{
			Root:    []model.ContactID{RootContact},
			Manager: []model.ContactID{ManagerContact},
		},
		Clans: []model.Clan{
			{ID: 1, Name: "Alpha", Guild: AlphaGuild, Roles: []model.Role{
				{ID: 1, Name: "Leader", Icon: "★", ChatRole: 1001},
				{ID: 2, Name: "Member", Icon: "•", ChatRole: 1002},
			}},
			{ID: 2, Name: "Bravo", Guild: BravoGuild, Roles: []model.Role{
				{ID: 1, Name: "Chief", Icon: "♛"},
				{ID: 2, Name: "Grunt", Icon: "·"},
			}},
			{ID: 3, Name: "Charlie", Guild: HomeGuild, Roles: []model.Role{
				{ID: 1, Name: "Boss", Icon: "♦"},
			}},
		},
		Relations: model.RelationMatrix{
			{model.RelationUnset, model.RelationEnemy, model.RelationAlly},
			{model.RelationEnemy, model.RelationUnset, model.RelationNeutral},
			{model.RelationAlly},
		},
		Players: []*model.Player{
			{
				UUID: AliceUUID, Name: "Alice", LastUpdated: 1700000000,
				Identity:    model.Primary{ContactID: AliceContact, Slug: "@alice"},
				Memberships: []model.Membership{{Clan: 1, Role: 1, Primary: true}},
			},
			{
				UUID: BobUUID, Name: "Bob", LastUpdated: 1700000100,
				Identity: model.Primary{ContactID: BobContact, Slug: "@bob"},
				Memberships: []model.Membership{
					{Clan: 1, Role: 2, Primary: true},
					{Clan: 2, Role: 2},
				},
			},
			{
				UUID: BobAltUUID, Name: "Bob_Alt", LastUpdated: 1700000200,
				Identity:    model.Alt{Parents: []string{BobUUID}, ContactID: model.NoContact},
				Memberships: []model.Membership{{Clan: 1, Role: 2, Primary: true}},
			},
			{
				UUID: GhostUUID, Name: "Ghost", Hidden: true, LastUpdated: 1700000300,
				Identity:    model.Alt{Parents: []string{BobUUID}, ContactID: model.NoContact},
				Memberships: []model.Membership{{Clan: 1, Role: 2, Primary: true}},
			},
			{
				UUID: CarolUUID, Name: "Carol", LastUpdated: 1700000050,
				Identity:    model.Primary{ContactID: CarolContact, Slug: "@carol"},
				Memberships: []model.Membership{{Clan: 2, Role: 1, Primary: true}},
			},
		},
	}
}
