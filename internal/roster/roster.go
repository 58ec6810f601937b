// Package roster renders a clan's members as a sequence of size-bounded
// text chunks, one per chat message.
package roster

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/mcoot/gideon/internal/dependencies/clock"
	"github.com/mcoot/gideon/internal/model"
)

const (
	DefaultSoftLimit = 1900
	DefaultHardLimit = 2000
)

// Options configures roster rendering. Zero values select defaults.
type Options struct {
	// SoftLimit is the length after which the next role or member starts a new chunk
	SoftLimit int
	// HardLimit is never exceeded by any chunk
	HardLimit int
	// Footer is appended to the last chunk unless the clan lives in the home guild
	Footer string
	// Disclaimer closes the header
	Disclaimer string
	// Supporters are contacts rendered with the supporter glyph
	Supporters []model.ContactID
}

// Source is the registry view a roster is composed from. registry.Snapshot satisfies it.
type Source interface {
	Clans() []model.Clan
	Relations() model.RelationMatrix
	Players() []*model.Player
	Home() model.GuildID
	FindClanByID(id model.ClanID) (*model.Clan, bool)
	ClanPosition(id model.ClanID) int
	AlternatesOf(uuid string) (visible, hidden []*model.Player)
}

// Observer is told how many chunks each composition produced
type Observer interface {
	ObserveRoster(chunks int)
}

// Roster is the rendered roster of one clan
type Roster struct {
	Clan   model.Clan
	Chunks []string
}

// Composer renders rosters
type Composer struct {
	opts       Options
	supporters map[model.ContactID]bool
	clock      clock.Clock
	logger     *slog.Logger
	observer   Observer
}

// New creates a Composer. observer may be nil.
func New(opts Options, clk clock.Clock, logger *slog.Logger, observer Observer) *Composer {
	if opts.SoftLimit <= 0 {
		opts.SoftLimit = DefaultSoftLimit
	}
	if opts.HardLimit <= 0 {
		opts.HardLimit = DefaultHardLimit
	}
	if opts.SoftLimit > opts.HardLimit {
		opts.SoftLimit = opts.HardLimit
	}
	if opts.Disclaimer == "" {
		opts.Disclaimer = "*Rosters aren't 100% accurate. Message a manager to add, remove or edit somebody.*"
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	supporters := make(map[model.ContactID]bool, len(opts.Supporters))
	for _, c := range opts.Supporters {
		supporters[c] = true
	}
	return &Composer{
		opts:       opts,
		supporters: supporters,
		clock:      clk,
		logger:     logger,
		observer:   observer,
	}
}

// Compose renders the roster of the clan with the given id
func (c *Composer) Compose(src Source, clanID model.ClanID) ([]string, error) {
	clan, ok := src.FindClanByID(clanID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", model.ErrClanNotFound, clanID)
	}

	members, err := c.members(src, clan)
	if err != nil {
		return nil, err
	}

	b := newBuilder(c.opts.SoftLimit, c.opts.HardLimit)
	b.start(c.header(src, clan, members))

	roles := slices.Clone(clan.Roles)
	slices.SortStableFunc(roles, func(a, b model.Role) int { return int(a.ID) - int(b.ID) })
	for _, role := range roles {
		group := membersWithRole(members, role.ID)
		if len(group) == 0 {
			continue
		}
		b.section(fmt.Sprintf("\n## - %s %s:\n", role.Icon, role.Name))
		for _, m := range group {
			b.item(c.line(src, m.player))
		}
	}

	if c.opts.Footer != "" && clan.Guild != src.Home() {
		b.footer(c.opts.Footer)
	}

	chunks := b.chunks()
	if c.observer != nil {
		c.observer.ObserveRoster(len(chunks))
	}
	c.logger.Debug("roster composed",
		slog.String("clan", clan.Name),
		slog.Int("members", len(members)),
		slog.Int("chunks", len(chunks)),
	)
	return chunks, nil
}

// ComposeAll renders every clan's roster in registry order
func (c *Composer) ComposeAll(src Source) ([]Roster, error) {
	clans := src.Clans()
	out := make([]Roster, 0, len(clans))
	for _, clan := range clans {
		chunks, err := c.Compose(src, clan.ID)
		if err != nil {
			return nil, fmt.Errorf("compose roster of %s: %w", clan.Name, err)
		}
		out = append(out, Roster{Clan: clan.Clone(), Chunks: chunks})
	}
	return out, nil
}

type member struct {
	player *model.Player
	role   model.RoleID
}

// members selects the primaries whose own record names the clan, in registry
// order, grouped under their first membership of that clan
func (c *Composer) members(src Source, clan *model.Clan) ([]member, error) {
	var out []member
	for _, p := range src.Players() {
		if p.IsAlt() {
			continue
		}
		m := p.MembershipIn(clan.ID)
		if m == nil {
			continue
		}
		if clan.Role(m.Role) == nil {
			return nil, &model.BrokenReferenceError{
				Kind: model.RefRole,
				ID:   fmt.Sprintf("%s/%d", clan.Name, m.Role),
				From: p.UUID,
			}
		}
		out = append(out, member{player: p, role: m.Role})
	}
	return out, nil
}

func membersWithRole(members []member, role model.RoleID) []member {
	var out []member
	for _, m := range members {
		if m.role == role {
			out = append(out, m)
		}
	}
	return out
}
