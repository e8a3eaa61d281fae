package checkpoint

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
)

func entry(cat, pool string, rank int) roster.Entry {
	e := roster.Entry{Division: roster.Explicit("X"), CategoryID: cat, Pool: pool, Competing: true}
	if rank != 0 {
		e.SetRank(rank)
	}
	return e
}

func baseState() roster.State {
	return roster.State{
		Version: roster.CurrentVersion,
		Categories: []roster.Category{
			{ID: "kids", Name: "Kids", Division: "X", NumPools: 2},
			{ID: "teens", Name: "Teens", Division: "X", NumPools: 1},
		},
		Competitors: []roster.Competitor{
			{ID: "a", Forms: entry("kids", "P1", 1), Sparring: entry("kids", "P1", 1)},
			{ID: "b", Forms: entry("kids", "P1", 2), Sparring: entry("kids", "P1", 2)},
			{ID: "c", Forms: entry("teens", "", 1), Sparring: entry("teens", "", 1)},
		},
	}
}

func checkpointOf(s roster.State) *Checkpoint {
	return New("cp1", "before lunch", time.Date(2024, 4, 13, 12, 0, 0, 0, time.UTC), s)
}

func TestSelfDiff(t *testing.T) {
	s := baseState()
	d := Compute(s, checkpointOf(s))
	require.NotNil(t, d)
	assert.True(t, d.Empty())
	assert.Empty(t, d.Affected.Strings())
}

func TestNilCheckpoint(t *testing.T) {
	assert.Nil(t, Compute(baseState(), nil))
}

func TestRankOnlySubGroup(t *testing.T) {
	s := baseState()
	s.Competitors[0].Sparring.SubGroup = roster.SubGroupA
	cp := checkpointOf(s)

	s.Competitors[0].Sparring.SetRank(5)
	d := Compute(s, cp)
	assert.Equal(t, []string{"X - Kids Pool 1_sparring_a"}, d.Affected.Strings())
	assert.Equal(t, []FieldChange{
		{CompetitorID: "a", Field: "sparring.rank", Old: "1", New: "5"},
	}, d.Modified)
}

func TestReassignment(t *testing.T) {
	s := baseState()
	cp := checkpointOf(s)

	s.Competitors[1].Forms.Pool = "P2"
	s.Competitors[1].Forms.Rank = nil
	d := Compute(s, cp)
	assert.Equal(t, []string{
		"X - Kids Pool 1_forms",
		"X - Kids Pool 2_forms",
	}, d.Affected.Strings())
	assert.Equal(t, []FieldChange{
		{CompetitorID: "b", Field: "forms.pool", Old: "P1", New: "P2"},
		{CompetitorID: "b", Field: "forms.rank", Old: "2", New: ""},
	}, d.Modified)
}

func TestSubGroupChange(t *testing.T) {
	s := baseState()
	cp := checkpointOf(s)

	s.Competitors[0].Sparring.SubGroup = roster.SubGroupB
	d := Compute(s, cp)
	assert.Equal(t, []string{
		"X - Kids Pool 1_sparring",
		"X - Kids Pool 1_sparring_b",
	}, d.Affected.Strings())
}

func TestWithdrawal(t *testing.T) {
	s := baseState()
	cp := checkpointOf(s)

	s.Competitors[2].Sparring.Withdraw()
	d := Compute(s, cp)
	assert.Equal(t, []string{"X - Teens Pool 1_sparring"}, d.Affected.Strings())
	var fields []string
	for _, m := range d.Modified {
		fields = append(fields, m.Field)
	}
	assert.Equal(t, []string{"sparring.category", "sparring.competing", "sparring.rank"}, fields)
}

func TestAddedRemoved(t *testing.T) {
	s := baseState()
	cp := checkpointOf(s)

	s.Competitors = s.Competitors[1:]
	s.Competitors = append(s.Competitors, roster.Competitor{ID: "d", Forms: entry("teens", "P1", 0)})
	d := Compute(s, cp)
	require.Len(t, d.Added, 1)
	assert.Equal(t, "d", d.Added[0].ID)
	require.Len(t, d.Removed, 1)
	assert.Equal(t, "a", d.Removed[0].ID)
	assert.Empty(t, d.Modified)
	assert.Equal(t, []string{
		"X - Kids Pool 1_forms",
		"X - Kids Pool 1_sparring",
		"X - Teens Pool 1_forms",
	}, d.Affected.Strings())
}

func TestCategoryDeletedSinceCheckpoint(t *testing.T) {
	s := baseState()
	cp := checkpointOf(s)

	// The category disappears and c moves to kids: only the old ring is found
	// through the checkpoint's categories.
	s.Categories = s.Categories[:1]
	s.Competitors[2].Forms = entry("kids", "P2", 1)
	d := Compute(s, cp)
	assert.Equal(t, []string{
		"X - Kids Pool 2_forms",
		"X - Teens Pool 1_forms",
	}, d.Affected.Strings())
}

func TestCheckpointImmutable(t *testing.T) {
	s := baseState()
	cp := checkpointOf(s)
	s.Competitors[0].ID = "zzz"
	*s.Competitors[1].Forms.Rank = 42

	got := cp.State()
	assert.Equal(t, "a", got.Competitors[0].ID)
	assert.Equal(t, 2, *got.Competitors[1].Forms.Rank)

	got.Competitors[0].ID = "yyy"
	assert.Equal(t, "a", cp.State().Competitors[0].ID)
	assert.Equal(t, 3, cp.Info().NumCompetitors)
}

func TestDiffJSON(t *testing.T) {
	s := baseState()
	s.Competitors[0].Sparring.SubGroup = roster.SubGroupA
	cp := checkpointOf(s)
	s.Competitors[0].Sparring.SetRank(2)

	data, err := json.Marshal(Compute(s, cp))
	require.NoError(t, err)
	var back Diff
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"X - Kids Pool 1_sparring_a"}, back.Affected.Strings())
	assert.Contains(t, string(data), `"affected":["X - Kids Pool 1_sparring_a"]`)
}
