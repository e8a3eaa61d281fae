package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olekukonko/tablewriter"

	"github.com/alanjwade/tournament-manager-sub000/internal/bracket"
	"github.com/alanjwade/tournament-manager-sub000/internal/checkpoint"
	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/human"
)

var terminalPalette = []struct {
	c    colorful.Color
	attr color.Attribute
}{
	{colorful.Color{R: 0.8, G: 0, B: 0}, color.FgRed},
	{colorful.Color{R: 0, G: 0.8, B: 0}, color.FgGreen},
	{colorful.Color{R: 0.8, G: 0.8, B: 0}, color.FgYellow},
	{colorful.Color{R: 0, G: 0, B: 0.8}, color.FgBlue},
	{colorful.Color{R: 0.8, G: 0, B: 0.8}, color.FgMagenta},
	{colorful.Color{R: 0, G: 0.8, B: 0.8}, color.FgCyan},
	{colorful.Color{R: 0.9, G: 0.9, B: 0.9}, color.FgWhite},
	{colorful.Color{R: 0.3, G: 0.3, B: 0.3}, color.FgHiBlack},
}

// divisionColor maps the configured division color to the closest terminal color.
func divisionColor(cfg roster.Config, division string) *color.Color {
	hex, ok := cfg.DivisionColor(division)
	if !ok {
		return color.New(color.Bold)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.New(color.Bold)
	}
	best, bestDist := terminalPalette[0].attr, c.DistanceLab(terminalPalette[0].c)
	for _, p := range terminalPalette[1:] {
		if d := c.DistanceLab(p.c); d < bestDist {
			best, bestDist = p.attr, d
		}
	}
	return color.New(best, color.Bold)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	return t
}

func formatRank(e roster.Entry) string {
	if rank, ok := e.RankValue(); ok {
		return strconv.Itoa(rank)
	}
	return "-"
}

func formatSubGroups(subs []roster.SubGroup) string {
	parts := make([]string, len(subs))
	for i, s := range subs {
		parts[i] = strings.ToUpper(string(s))
	}
	return strings.Join(parts, ", ")
}

func printRings(w io.Writer, state *roster.State, rings []ring.Ring) {
	if len(rings) == 0 {
		fmt.Fprintln(w, "No rings.")
		return
	}
	t := newTable(w, "Ring", "Type", "Physical", "Members", "Sub-groups")
	for i := range rings {
		r := &rings[i]
		c := divisionColor(state.Config, r.Key.Division)
		t.Append([]string{
			c.Sprint(r.Name),
			r.Key.Type.PrettyString(),
			r.PhysicalRing,
			strconv.Itoa(len(r.MemberIDs)),
			formatSubGroups(ring.SubGroups(r, state.Competitors)),
		})
	}
	t.Render()
}

func printMembers(w io.Writer, t roster.CompetitionType, members []roster.Competitor) {
	tbl := newTable(w, "Rank", "Name", "School", "Age", "Height", "Sub-group")
	for _, c := range members {
		e := c.Entry(t)
		tbl.Append([]string{
			formatRank(e),
			c.FullName(),
			c.School,
			strconv.Itoa(c.Age),
			roster.Height{Feet: c.TotalInches() / 12, Inches: c.TotalInches() % 12}.String(),
			strings.ToUpper(string(e.SubGroup)),
		})
	}
	tbl.Render()
}

func formatEntrant(e *bracket.Entrant) string {
	if e == nil {
		return ""
	}
	s := fmt.Sprintf("(%d) %s", e.Seed, e.Name)
	if e.School != "" {
		s += " [" + e.School + "]"
	}
	return s
}

func printBracket(w io.Writer, title string, b *bracket.Bracket) {
	color.New(color.Bold).Fprintf(w, "%s\n", title)
	if len(b.Entrants) == 0 {
		fmt.Fprintln(w, "No entrants.")
		return
	}
	fmt.Fprintf(w, "%d entrants, play starts in round %d, %d byes\n", len(b.Entrants), b.StartRound, b.Byes)
	if len(b.Entrants) == 1 {
		fmt.Fprintf(w, "Sole entrant: %s\n", formatEntrant(&b.Entrants[0]))
		return
	}
	t := newTable(w, "Match", "Round", "Kind", "Top", "Bottom")
	for _, m := range b.Numbered() {
		t.Append([]string{
			strconv.Itoa(m.Number),
			strconv.Itoa(m.Round),
			m.Kind.String(),
			formatEntrant(m.Top),
			formatEntrant(m.Bottom),
		})
	}
	t.Render()
}

func printCheckpoints(w io.Writer, infos []checkpoint.Info, now time.Time) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No checkpoints.")
		return
	}
	t := newTable(w, "ID", "Name", "Created", "Competitors")
	for _, info := range infos {
		t.Append([]string{
			info.ID,
			info.Name,
			human.Relative(now, info.CreatedAt),
			strconv.Itoa(info.NumCompetitors),
		})
	}
	t.Render()
}

func printDiff(w io.Writer, d *checkpoint.Diff) {
	if d.Empty() {
		fmt.Fprintln(w, "No changes since the checkpoint.")
		return
	}
	var (
		added    = color.New(color.FgGreen)
		removed  = color.New(color.FgRed)
		modified = color.New(color.FgYellow)
		affected = color.New(color.FgCyan, color.Bold)
	)
	for _, c := range d.Added {
		added.Fprintf(w, "+ %s (%s)\n", c.FullName(), c.ID)
	}
	for _, c := range d.Removed {
		removed.Fprintf(w, "- %s (%s)\n", c.FullName(), c.ID)
	}
	for _, m := range d.Modified {
		modified.Fprintf(w, "~ %s %s: %q -> %q\n", m.CompetitorID, m.Field, m.Old, m.New)
	}
	if d.Affected.Len() != 0 {
		affected.Fprintln(w, "Affected rings:")
		for _, id := range d.Affected.Strings() {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}
}
