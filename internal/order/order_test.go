package order

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
)

var formsKey = ring.Key{Division: "Beginner", CategoryID: "c", Pool: 1, Type: roster.TypeForms}

func competitor(id, school string, inches int) roster.Competitor {
	e := roster.Entry{Division: roster.Explicit("Beginner"), CategoryID: "c", Pool: "P1", Competing: true}
	return roster.Competitor{
		ID:           id,
		FirstName:    "First" + id,
		LastName:     "Last" + id,
		School:       school,
		HeightInches: inches,
		Forms:        e,
		Sparring:     e,
	}
}

func schoolsByRank(t *testing.T, comps []roster.Competitor, key ring.Key) []string {
	t.Helper()
	ranked := Ranked(comps, key)
	res := make([]string, len(ranked))
	for i, c := range ranked {
		rank, ok := c.Entry(key.Type).RankValue()
		require.True(t, ok)
		require.Equal(t, i+1, rank)
		res[i] = c.School
	}
	return res
}

func checkDense(t *testing.T, comps []roster.Competitor, key ring.Key) {
	t.Helper()
	var ranks []int
	for _, c := range comps {
		if ring.Contains(key, c) {
			rank, ok := c.Entry(key.Type).RankValue()
			require.True(t, ok, "competitor %v has no rank", c.ID)
			ranks = append(ranks, rank)
		}
	}
	slices.Sort(ranks)
	for i, r := range ranks {
		if r != i+1 {
			t.Fatalf("ranks are not dense: expected = %v, got = %v", i+1, r)
		}
	}
}

func TestFormsInterleave(t *testing.T) {
	comps := []roster.Competitor{
		competitor("1", "Alpha", 0),
		competitor("2", "Alpha", 0),
		competitor("3", "Beta", 0),
		competitor("4", "Beta", 0),
	}
	res := Forms(comps, formsKey, DefaultPolicy())
	checkDense(t, res, formsKey)
	assert.Equal(t, []string{"Alpha", "Beta", "Alpha", "Beta"}, schoolsByRank(t, res, formsKey))
}

func TestFormsBalance(t *testing.T) {
	comps := []roster.Competitor{
		competitor("1", "Alpha", 0),
		competitor("2", "Alpha", 0),
		competitor("3", "Alpha", 0),
		competitor("4", "Beta", 0),
	}

	res := Forms(comps, formsKey, DefaultPolicy())
	assert.Equal(t, []string{"Alpha", "Alpha", "Beta", "Alpha"}, schoolsByRank(t, res, formsKey))

	res = Forms(comps, formsKey, Policy{BalanceWindow: 3, MaxSwaps: -1})
	assert.Equal(t, []string{"Alpha", "Alpha", "Alpha", "Beta"}, schoolsByRank(t, res, formsKey))
}

func TestFormsSlidingBalance(t *testing.T) {
	var comps []roster.Competitor
	for i := range 6 {
		comps = append(comps, competitor(fmt.Sprint(i), "Alpha", 0))
	}
	comps = append(comps, competitor("b1", "Beta", 0), competitor("b2", "Beta", 0))

	// Alpha fractions are 1/6..6/6 and Beta ones are 1/2 and 2/2, so the merge gives
	// A A A B A A A B before balancing.
	res := Forms(comps, formsKey, Policy{BalanceWindow: 3, MaxSwaps: -1})
	assert.Equal(t,
		[]string{"Alpha", "Alpha", "Alpha", "Beta", "Alpha", "Alpha", "Alpha", "Beta"},
		schoolsByRank(t, res, formsKey))

	res = Forms(comps, formsKey, DefaultPolicy())
	assert.Equal(t,
		[]string{"Alpha", "Alpha", "Beta", "Alpha", "Alpha", "Alpha", "Alpha", "Beta"},
		schoolsByRank(t, res, formsKey))

	res = Forms(comps, formsKey, Policy{BalanceWindow: 3, MaxSwaps: 2, Sliding: true})
	assert.Equal(t,
		[]string{"Alpha", "Alpha", "Beta", "Alpha", "Alpha", "Beta", "Alpha", "Alpha"},
		schoolsByRank(t, res, formsKey))
}

func TestFormsDeterministic(t *testing.T) {
	var comps []roster.Competitor
	for i := range 12 {
		comps = append(comps, competitor(fmt.Sprint(i), []string{"A", "B", "C"}[i%3], 0))
	}
	first := Forms(comps, formsKey, DefaultPolicy())
	checkDense(t, first, formsKey)

	reversed := slices.Clone(comps)
	slices.Reverse(reversed)
	second := Forms(reversed, formsKey, DefaultPolicy())

	rankOf := func(cs []roster.Competitor) map[string]int {
		res := make(map[string]int)
		for _, c := range cs {
			res[c.ID] = *c.Forms.Rank
		}
		return res
	}
	assert.Equal(t, rankOf(first), rankOf(second))
}

func TestOrderLeavesOthersAlone(t *testing.T) {
	other := competitor("x", "Gamma", 40)
	other.Forms.Pool = "P2"
	other.Forms.SetRank(9)
	other.Sparring.SetRank(5)
	withdrawn := competitor("w", "Gamma", 40)
	withdrawn.Forms.Withdraw()

	comps := []roster.Competitor{competitor("1", "A", 50), other, competitor("2", "B", 45), withdrawn}
	comps[0].Forms.SetRank(7)

	res := Forms(comps, formsKey, DefaultPolicy())
	checkDense(t, res, formsKey)
	assert.Equal(t, other, res[1])
	assert.Equal(t, withdrawn, res[3])
	// Input is not mutated.
	assert.Equal(t, 7, *comps[0].Forms.Rank)
	assert.Nil(t, comps[2].Forms.Rank)
}

func TestSparring(t *testing.T) {
	key := formsKey
	key.Type = roster.TypeSparring
	comps := []roster.Competitor{
		competitor("tall", "A", 60),
		competitor("short", "A", 48),
		competitor("mid2", "B", 54),
		competitor("mid1", "C", 54),
	}
	comps[0].Height = roster.Height{Feet: 5}

	res := Sparring(comps, key)
	checkDense(t, res, key)
	var ids []string
	for _, c := range Ranked(res, key) {
		ids = append(ids, c.ID)
	}
	// Equal heights fall back to last name: "Lastmid1" < "Lastmid2".
	assert.Equal(t, []string{"short", "mid1", "mid2", "tall"}, ids)
	assert.Equal(t, res, Group(comps, key, DefaultPolicy()))
}

func TestSparringSubGroup(t *testing.T) {
	key := formsKey
	key.Type = roster.TypeSparring
	comps := []roster.Competitor{
		competitor("1", "A", 60),
		competitor("2", "A", 50),
		competitor("3", "A", 55),
	}
	comps[0].Sparring.SubGroup = roster.SubGroupA
	comps[1].Sparring.SubGroup = roster.SubGroupB
	comps[2].Sparring.SubGroup = roster.SubGroupA

	res := Sparring(comps, key.WithSubGroup(roster.SubGroupA))
	assert.Equal(t, 2, *res[0].Sparring.Rank)
	assert.Nil(t, res[1].Sparring.Rank)
	assert.Equal(t, 1, *res[2].Sparring.Rank)
}
