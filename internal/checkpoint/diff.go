package checkpoint

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
)

type FieldChange struct {
	CompetitorID string `json:"competitor"`
	Field        string `json:"field"`
	Old          string `json:"old"`
	New          string `json:"new"`
}

type Diff struct {
	Added    []roster.Competitor `json:"added"`
	Removed  []roster.Competitor `json:"removed"`
	Modified []FieldChange       `json:"modified"`
	Affected Set                 `json:"affected"`
}

func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0 && d.Affected.Len() == 0
}

type trackedField struct {
	name string
	typ  roster.CompetitionType
	// Rank changes never move a competitor to another ring.
	rankOnly bool
	get      func(e roster.Entry) string
}

func category(e roster.Entry) string { return e.CategoryID }
func pool(e roster.Entry) string     { return e.Pool }
func subGroup(e roster.Entry) string { return string(e.SubGroup) }
func competing(e roster.Entry) string {
	return strconv.FormatBool(e.Competing)
}

func rank(e roster.Entry) string {
	if v, ok := e.RankValue(); ok {
		return strconv.Itoa(v)
	}
	return ""
}

var trackedFields = []trackedField{
	{name: "forms.category", typ: roster.TypeForms, get: category},
	{name: "forms.pool", typ: roster.TypeForms, get: pool},
	{name: "forms.competing", typ: roster.TypeForms, get: competing},
	{name: "forms.rank", typ: roster.TypeForms, rankOnly: true, get: rank},
	{name: "sparring.category", typ: roster.TypeSparring, get: category},
	{name: "sparring.pool", typ: roster.TypeSparring, get: pool},
	{name: "sparring.subgroup", typ: roster.TypeSparring, get: subGroup},
	{name: "sparring.competing", typ: roster.TypeSparring, get: competing},
	{name: "sparring.rank", typ: roster.TypeSparring, rankOnly: true, get: rank},
}

func TrackedFields() []string {
	res := make([]string, len(trackedFields))
	for i, f := range trackedFields {
		res[i] = f.name
	}
	return res
}

// Compute compares the live state with a checkpoint. A rank change touches only the
// ring the competitor is in now; an assignment change touches both the ring the
// competitor was in at checkpoint time and the ring they are in now.
func Compute(live roster.State, cp *Checkpoint) *Diff {
	if cp == nil {
		return nil
	}
	old := cp.state
	d := &Diff{Affected: make(Set)}
	addRings := func(c roster.Competitor, t roster.CompetitionType, cats []roster.Category) {
		if id, ok := ring.Resolve(c, t, cats); ok {
			d.Affected.Add(id)
		}
	}

	before := make(map[string]*roster.Competitor, len(old.Competitors))
	for i := range old.Competitors {
		before[old.Competitors[i].ID] = &old.Competitors[i]
	}
	present := make(map[string]struct{}, len(live.Competitors))

	for _, cur := range live.Competitors {
		present[cur.ID] = struct{}{}
		prev, ok := before[cur.ID]
		if !ok {
			d.Added = append(d.Added, cur.Clone())
			for _, t := range roster.AllTypes {
				addRings(cur, t, live.Categories)
			}
			continue
		}
		for _, t := range roster.AllTypes {
			moved, reordered := false, false
			for _, f := range trackedFields {
				if f.typ != t {
					continue
				}
				o, n := f.get(prev.Entry(t)), f.get(cur.Entry(t))
				if o == n {
					continue
				}
				d.Modified = append(d.Modified, FieldChange{
					CompetitorID: cur.ID,
					Field:        f.name,
					Old:          o,
					New:          n,
				})
				if f.rankOnly {
					reordered = true
				} else {
					moved = true
				}
			}
			switch {
			case moved:
				addRings(*prev, t, old.Categories)
				addRings(cur, t, live.Categories)
			case reordered:
				addRings(cur, t, live.Categories)
			}
		}
	}

	for _, prev := range old.Competitors {
		if _, ok := present[prev.ID]; ok {
			continue
		}
		d.Removed = append(d.Removed, prev.Clone())
		for _, t := range roster.AllTypes {
			addRings(prev, t, old.Categories)
		}
	}

	byID := func(a, b roster.Competitor) int { return cmp.Compare(a.ID, b.ID) }
	slices.SortFunc(d.Added, byID)
	slices.SortFunc(d.Removed, byID)
	// Modifications are appended in tracked field order per competitor.
	slices.SortStableFunc(d.Modified, func(a, b FieldChange) int {
		return cmp.Compare(a.CompetitorID, b.CompetitorID)
	})
	return d
}
