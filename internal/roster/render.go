package roster

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/gideon/internal/model"
)

const (
	placeholder    = "---"
	supporterGlyph = "✨"
	ellipsis       = "…"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"|", `\|`,
)

// Escape neutralises the chat formatter's markdown characters
func Escape(s string) string {
	return markdownEscaper.Replace(s)
}

type relations struct {
	enemies, allies, neutrals []string
}

// relationsOf reads the clan's row of the matrix. Missing cells are unset.
func relationsOf(src Source, clan *model.Clan) relations {
	var out relations
	pos := src.ClanPosition(clan.ID)
	matrix := src.Relations()
	for i, other := range src.Clans() {
		if i == pos {
			continue
		}
		switch matrix.At(pos, i) {
		case model.RelationEnemy:
			out.enemies = append(out.enemies, other.Name)
		case model.RelationAlly:
			out.allies = append(out.allies, other.Name)
		case model.RelationNeutral:
			out.neutrals = append(out.neutrals, other.Name)
		}
	}
	return out
}

func (c *Composer) header(src Source, clan *model.Clan, members []member) string {
	now := c.clock.Now().Unix()
	updated := now
	for i, m := range members {
		if t := m.player.LastUpdated.Unix(); i == 0 || t < updated {
			updated = t
		}
	}

	rel := relationsOf(src, clan)
	lists := [3][]string{rel.enemies, rel.allies, rel.neutrals}
	var cut [3]bool
	h := c.renderHeader(clan.Name, now, updated, lists, cut)
	// Too many related clans: drop names from the longest list until the
	// header fits, so every line keeps its closing backtick
	for utf8.RuneCountInString(h) > c.opts.HardLimit {
		i := longestList(lists)
		if len(lists[i]) == 0 {
			break
		}
		lists[i] = lists[i][:len(lists[i])-1]
		cut[i] = true
		h = c.renderHeader(clan.Name, now, updated, lists, cut)
	}
	return h
}

func (c *Composer) renderHeader(name string, now, updated int64, lists [3][]string, cut [3]bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "> ## - Roster of %s\n", name)
	fmt.Fprintf(&sb, "> **Last updated** <t:%d:R>\n", now)
	fmt.Fprintf(&sb, "> **Usernames are up-to-date as of** <t:%d:R>\n", updated)
	fmt.Fprintf(&sb, "> :small_orange_diamond: **Enemy clans**: `%s`\n", joinOr(lists[0], cut[0]))
	fmt.Fprintf(&sb, "> :small_blue_diamond: **Allied clans**: `%s`\n", joinOr(lists[1], cut[1]))
	fmt.Fprintf(&sb, "> :white_small_square: **Neutral clans**: `%s`\n", joinOr(lists[2], cut[2]))
	fmt.Fprintf(&sb, "> %s\n", c.opts.Disclaimer)
	return sb.String()
}

func longestList(lists [3][]string) int {
	longest, size := 0, -1
	for i, names := range lists {
		n := 0
		for _, name := range names {
			n += utf8.RuneCountInString(name) + 2
		}
		if n > size {
			longest, size = i, n
		}
	}
	return longest
}

// line renders one member with the supporter glyph and visible alts
func (c *Composer) line(src Source, p *model.Player) string {
	name := Escape(p.Name)
	if c.supporters[p.StoredContact()] {
		name = "`" + supporterGlyph + " " + p.Name + "`"
	}
	visible, _ := src.AlternatesOf(p.UUID)
	if len(visible) > 0 {
		alts := make([]string, len(visible))
		for i, alt := range visible {
			alts[i] = Escape(alt.Name)
		}
		name += " (ALTS: " + strings.Join(alts, "|") + ")"
	}
	return name
}

// joinOr lists names, ending in an ellipsis when the list was shortened
func joinOr(names []string, cut bool) string {
	if cut {
		return strings.Join(append(slices.Clone(names), ellipsis), ", ")
	}
	if len(names) == 0 {
		return placeholder
	}
	return strings.Join(names, ", ")
}
