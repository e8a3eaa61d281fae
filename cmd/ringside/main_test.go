package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanjwade/tournament-manager-sub000/internal/bracket"
	"github.com/alanjwade/tournament-manager-sub000/internal/checkpoint"
	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
)

func TestDivisionColor(t *testing.T) {
	cfg := roster.Config{Divisions: []roster.DivisionConfig{
		{Name: "Beginner", Color: "#f01010"},
		{Name: "Advanced", Color: "#1020e0"},
		{Name: "Black Belt"},
	}}
	assert.True(t, divisionColor(cfg, "Beginner").Equals(color.New(color.FgRed, color.Bold)))
	assert.True(t, divisionColor(cfg, "Advanced").Equals(color.New(color.FgBlue, color.Bold)))
	assert.True(t, divisionColor(cfg, "Black Belt").Equals(color.New(color.Bold)))
	assert.True(t, divisionColor(cfg, "Unknown").Equals(color.New(color.Bold)))
}

func TestSparringJobs(t *testing.T) {
	key := ring.Key{Division: "Beginner", CategoryID: "kids", Pool: 1, Type: roster.TypeSparring}
	rings := []ring.Ring{
		{Key: ring.Key{Division: "Beginner", CategoryID: "kids", Pool: 1, Type: roster.TypeForms}, Name: "Kids", MemberIDs: []string{"a"}},
		{Key: key, Name: "Kids", MemberIDs: []string{"a", "b"}},
	}
	entry := func(sub roster.SubGroup) roster.Entry {
		return roster.Entry{Division: roster.Explicit("Beginner"), CategoryID: "kids", Competing: true, SubGroup: sub}
	}
	comps := []roster.Competitor{
		{ID: "a", Sparring: entry(roster.SubGroupA)},
		{ID: "b", Sparring: entry(roster.SubGroupB)},
	}
	jobs := sparringJobs(rings, comps)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Kids_sparring_a", jobs[0].ident.String())
	assert.Equal(t, "Kids_sparring_b", jobs[1].ident.String())

	comps[0].Sparring.SubGroup = roster.SubGroupNone
	comps[1].Sparring.SubGroup = roster.SubGroupNone
	jobs = sparringJobs(rings, comps)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Kids_sparring", jobs[0].ident.String())
	assert.Equal(t, key, jobs[0].key)
}

func TestInSubGroup(t *testing.T) {
	members := []roster.Competitor{
		{ID: "a", Sparring: roster.Entry{SubGroup: roster.SubGroupA}},
		{ID: "b", Sparring: roster.Entry{SubGroup: roster.SubGroupB}},
		{ID: "c", Sparring: roster.Entry{SubGroup: roster.SubGroupA}},
	}
	ids := func(cs []roster.Competitor) []string {
		var res []string
		for _, c := range cs {
			res = append(res, c.ID)
		}
		return res
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(inSubGroup(members, roster.SubGroupNone)))
	assert.Equal(t, []string{"a", "c"}, ids(inSubGroup(members, roster.SubGroupA)))
	assert.Equal(t, []string{"b"}, ids(inSubGroup(members, roster.SubGroupB)))
}

func TestPrintBracket(t *testing.T) {
	color.NoColor = true
	entrants := []bracket.Entrant{{ID: "a", Name: "Ann Ames"}, {ID: "b", Name: "Bob Burr"}, {ID: "c", Name: "Cat Cole"}}
	b, err := bracket.Seed(entrants)
	require.NoError(t, err)
	var buf bytes.Buffer
	printBracket(&buf, "Kids_sparring", b)
	out := buf.String()
	assert.Contains(t, out, "Kids_sparring")
	assert.Contains(t, out, "3 entrants")
	assert.Contains(t, out, "(1) Ann Ames")
	assert.Contains(t, out, "final")
}

func TestPrintDiff(t *testing.T) {
	color.NoColor = true
	d := &checkpoint.Diff{
		Modified: []checkpoint.FieldChange{{CompetitorID: "a", Field: "sparring.pool", Old: "P1", New: "P2"}},
		Affected: checkpoint.Set{},
	}
	d.Affected.Add(ring.Ident{Name: "Kids", Type: roster.TypeSparring, SubGroup: roster.SubGroupA})
	var buf bytes.Buffer
	printDiff(&buf, d)
	out := buf.String()
	assert.Contains(t, out, `~ a sparring.pool: "P1" -> "P2"`)
	assert.Contains(t, out, "Kids_sparring_a")

	buf.Reset()
	printDiff(&buf, &checkpoint.Diff{Affected: checkpoint.Set{}})
	assert.Equal(t, "No changes since the checkpoint.\n", buf.String())
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ringside.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		`addr = "0.0.0.0:9000"`,
		`[db]`,
		`path = "event.db"`,
		`[keeper]`,
		`undo-depth = 7`,
		`[keeper.ordering]`,
		`balance-window = 4`,
	}, "\n")), 0o644))
	t.Setenv(envDB, "")
	opts, err := loadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", opts.Addr)
	assert.Equal(t, "event.db", opts.DB.Path)
	assert.Equal(t, 7, opts.Keeper.UndoDepth)
	assert.Equal(t, 4, opts.Keeper.Ordering.BalanceWindow)
	assert.Equal(t, 1, opts.Keeper.Ordering.MaxSwaps)
	assert.Equal(t, 40, opts.API.RateBurst)

	t.Setenv(envDB, filepath.Join(dir, "override.db"))
	opts, err = loadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "override.db"), opts.DB.Path)
}
