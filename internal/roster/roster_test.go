package roster

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolIndex(t *testing.T) {
	for _, tc := range []struct {
		label string
		n     int
		ok    bool
	}{
		{"", 1, true},
		{"P1", 1, true},
		{"p3", 3, true},
		{"2", 2, true},
		{" P4 ", 4, true},
		{"P0", 0, false},
		{"Pool", 0, false},
		{"-1", 0, false},
	} {
		n, ok := PoolIndex(tc.label)
		if n != tc.n || ok != tc.ok {
			t.Fatalf("bad pool index for %q: expected = (%v, %v), got = (%v, %v)", tc.label, tc.n, tc.ok, n, ok)
		}
	}
	if got := PoolLabel(2); got != "P2" {
		t.Fatalf("bad label: expected = P2, got = %v", got)
	}
}

func TestDivisionText(t *testing.T) {
	for _, d := range []Division{NotEntered(), Explicit("Black Belt"), DerivedFrom(TypeForms), DerivedFrom(TypeSparring)} {
		v, err := DivisionFromString(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, v)
	}
	_, err := DivisionFromString("=")
	assert.Error(t, err)
	_, err = DivisionFromString("Beginner")
	assert.Error(t, err)

	assert.Equal(t, NotEntered(), divisionFromLegacy("Not Participating"))
	assert.Equal(t, DerivedFrom(TypeForms), divisionFromLegacy("same as forms"))
	assert.Equal(t, Explicit("Beginner"), divisionFromLegacy(" Beginner "))
}

func TestResolveDivisions(t *testing.T) {
	c := Competitor{
		Forms:    Entry{Division: Explicit("Beginner")},
		Sparring: Entry{Division: DerivedFrom(TypeForms)},
	}
	c.ResolveDivisions()
	assert.Equal(t, Explicit("Beginner"), c.Sparring.Division)

	c = Competitor{
		Forms:    Entry{Division: DerivedFrom(TypeSparring)},
		Sparring: Entry{Division: DerivedFrom(TypeForms)},
	}
	c.ResolveDivisions()
	assert.Equal(t, NotEntered(), c.Forms.Division)
	assert.Equal(t, NotEntered(), c.Sparring.Division)
}

func TestWithdrawReinstate(t *testing.T) {
	e := Entry{Division: Explicit("Beginner"), CategoryID: "c1", Pool: "P2", Competing: true, SubGroup: SubGroupA}
	e.SetRank(4)

	e.Withdraw()
	assert.False(t, e.Competing)
	assert.Empty(t, e.CategoryID)
	assert.Empty(t, e.Pool)
	assert.Nil(t, e.Rank)
	assert.Equal(t, SubGroupNone, e.SubGroup)
	assert.Equal(t, "c1", e.LastCategoryID)
	assert.Equal(t, "P2", e.LastPool)

	// Withdrawing twice keeps the remembered assignment.
	e.Withdraw()
	assert.Equal(t, "c1", e.LastCategoryID)

	require.True(t, e.Reinstate())
	assert.True(t, e.Competing)
	assert.Equal(t, "c1", e.CategoryID)
	assert.Equal(t, "P2", e.Pool)
	assert.Empty(t, e.LastCategoryID)
	assert.False(t, e.Reinstate())
}

func TestNormalize(t *testing.T) {
	rank := 3
	e := Entry{CategoryID: "c1", Pool: "P1", Rank: &rank}
	e.Normalize()
	assert.Equal(t, Entry{LastCategoryID: "c1", LastPool: "P1"}, e)

	e = Entry{Competing: true, CategoryID: "c1", LastCategoryID: "old"}
	e.Normalize()
	assert.Equal(t, Entry{Competing: true, CategoryID: "c1"}, e)
}

func TestStateClone(t *testing.T) {
	rank := 1
	s := State{
		Competitors: []Competitor{{ID: "a", Forms: Entry{Rank: &rank}}},
		Categories:  []Category{{ID: "c", CompetitorIDs: []string{"a"}}},
	}
	c := s.Clone()
	*c.Competitors[0].Forms.Rank = 7
	c.Categories[0].CompetitorIDs[0] = "b"
	c.Competitors[0].ID = "z"
	assert.Equal(t, 1, *s.Competitors[0].Forms.Rank)
	assert.Equal(t, "a", s.Categories[0].CompetitorIDs[0])
	assert.Equal(t, "a", s.Competitors[0].ID)

	_, ok := s.CategoryByID("missing")
	assert.False(t, ok)
	_, ok = s.CategoryByID("")
	assert.False(t, ok)
}

func TestLoadLegacy(t *testing.T) {
	f, err := os.Open("testdata/legacy_v0.json")
	require.NoError(t, err)
	defer f.Close()

	s, err := Load(f)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, s.Version)
	assert.Equal(t, "Spring Open", s.Config.Name)
	require.Len(t, s.Categories, 1)
	assert.Equal(t, 2, s.Categories[0].NumPools)
	assert.Equal(t, []RingMapping{{CategoryID: "c1", Pool: "P1", PhysicalRing: "Ring 3"}}, s.RingMappings)

	ada, ok := s.CompetitorByID("p1")
	require.True(t, ok)
	assert.Equal(t, GenderFemale, ada.Gender)
	assert.Equal(t, 50, ada.HeightInches)
	assert.Equal(t, Explicit("Beginner"), ada.Forms.Division)
	assert.Equal(t, Explicit("Beginner"), ada.Sparring.Division)
	assert.Equal(t, "P2", ada.Sparring.Pool)
	assert.Equal(t, SubGroupA, ada.Sparring.SubGroup)
	rank, ok := ada.Forms.RankValue()
	assert.True(t, ok)
	assert.Equal(t, 2, rank)
	assert.Nil(t, ada.Sparring.Rank)

	ben, ok := s.CompetitorByID("p2")
	require.True(t, ok)
	assert.Equal(t, Height{Feet: 4, Inches: 7}, ben.Height)
	assert.Equal(t, NotEntered(), ben.Sparring.Division)
	assert.False(t, ben.Sparring.Competing)
	assert.Empty(t, ben.Sparring.CategoryID)
	assert.Equal(t, "c1", ben.Sparring.LastCategoryID)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	f, err := os.Open("testdata/roster_v2.yaml")
	require.NoError(t, err)
	defer f.Close()

	s, err := Load(f)
	require.NoError(t, err)
	c, ok := s.CompetitorByID("x1")
	require.True(t, ok)
	assert.Equal(t, Explicit("Black Belt"), c.Forms.Division)
	assert.Equal(t, SubGroupB, c.Sparring.SubGroup)
	assert.Equal(t, 70, c.HeightInches)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, s))
	again, err := Load(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(s, again); diff != "" {
		t.Fatalf("state changed after save/load (-want +got):\n%s", diff)
	}
}

func TestLoadRejects(t *testing.T) {
	for _, doc := range []string{
		"version: 9\n",
		"version: two\n",
		"version: 2\ncompetitors:\n  - id: a\n  - id: a\n",
		"version: 2\ncategories:\n  - id: c\n    name: C\n    division: D\n    pools: 30\n",
		"version: 2\nconfig:\n  divisions:\n    - name: D\n      color: blurple\n",
		"version: 2\ncompetitors:\n  - id: a\n    sparring:\n      competing: true\n      subgroup: c\n",
	} {
		if _, err := Load(strings.NewReader(doc)); err == nil {
			t.Fatalf("expected error for %q", doc)
		}
	}
}

func TestLoadFillsIDs(t *testing.T) {
	s, err := Load(strings.NewReader("version: 2\ncompetitors:\n  - first-name: Al\n  - first-name: Bo\n"))
	require.NoError(t, err)
	require.Len(t, s.Competitors, 2)
	assert.NotEmpty(t, s.Competitors[0].ID)
	assert.NotEqual(t, s.Competitors[0].ID, s.Competitors[1].ID)
}
