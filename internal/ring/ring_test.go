package ring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
)

func entry(cat, pool string) roster.Entry {
	return roster.Entry{Division: roster.Explicit("Beginner"), CategoryID: cat, Pool: pool, Competing: true}
}

func fixture() ([]roster.Competitor, []roster.Category, []roster.RingMapping) {
	cats := []roster.Category{
		{ID: "mix", Name: "Mixed 8-10", Division: "Beginner", NumPools: 2},
		{ID: "adult", Name: "Adults", Division: "Black Belt", NumPools: 1},
	}
	comps := []roster.Competitor{
		{ID: "a", Forms: entry("mix", ""), Sparring: entry("mix", "P2")},
		{ID: "b", Forms: entry("mix", "P1"), Sparring: entry("mix", "P2")},
		{ID: "c", Forms: entry("mix", "P2"), Sparring: roster.Entry{CategoryID: "mix", Competing: false}},
		{ID: "d", Forms: entry("mix", "P7")},
		{ID: "e", Forms: entry("gone", "P1")},
		{ID: "f", Forms: entry("mix", "bogus")},
	}
	comps[1].Sparring.SubGroup = roster.SubGroupB
	mappings := []roster.RingMapping{
		{CategoryID: "mix", Pool: "P2", PhysicalRing: "Ring 4"},
		{CategoryID: "mix", Pool: "", PhysicalRing: "Ring 1"},
		{CategoryID: "mix", Pool: "1", PhysicalRing: "Ring 9"},
	}
	return comps, cats, mappings
}

func TestDerive(t *testing.T) {
	comps, cats, mappings := fixture()
	rings := Derive(comps, cats, mappings)
	expected := []Ring{
		{
			Key:          Key{Division: "Beginner", CategoryID: "mix", Pool: 1, Type: roster.TypeForms},
			Name:         "Beginner - Mixed 8-10 Pool 1",
			CategoryName: "Mixed 8-10",
			PhysicalRing: "Ring 1",
			MemberIDs:    []string{"a", "b"},
		},
		{
			Key:          Key{Division: "Beginner", CategoryID: "mix", Pool: 2, Type: roster.TypeForms},
			Name:         "Beginner - Mixed 8-10 Pool 2",
			CategoryName: "Mixed 8-10",
			PhysicalRing: "Ring 4",
			MemberIDs:    []string{"c"},
		},
		{
			Key:          Key{Division: "Beginner", CategoryID: "mix", Pool: 2, Type: roster.TypeSparring},
			Name:         "Beginner - Mixed 8-10 Pool 2",
			CategoryName: "Mixed 8-10",
			PhysicalRing: "Ring 4",
			MemberIDs:    []string{"a", "b"},
		},
	}
	if diff := cmp.Diff(expected, rings); diff != "" {
		t.Fatalf("bad rings (-want +got):\n%s", diff)
	}

	// Pure: a second call gives the same answer.
	assert.Equal(t, rings, Derive(comps, cats, mappings))
}

func TestDeriveProperties(t *testing.T) {
	comps, cats, mappings := fixture()
	rings := Derive(comps, cats, mappings)
	seen := make(map[Key]struct{})
	for _, r := range rings {
		_, dup := seen[r.Key]
		require.False(t, dup, "duplicate key %+v", r.Key)
		seen[r.Key] = struct{}{}
		for _, id := range r.MemberIDs {
			var c roster.Competitor
			for _, cc := range comps {
				if cc.ID == id {
					c = cc
				}
			}
			assert.True(t, Contains(r.Key, c), "competitor %v does not belong to %v", id, r.Name)
		}
	}
}

func TestDeriveEmpty(t *testing.T) {
	assert.Empty(t, Derive(nil, nil, nil))
	_, cats, _ := fixture()
	assert.Empty(t, Derive(nil, cats, nil))
}

func TestMembersSubGroup(t *testing.T) {
	comps, cats, mappings := fixture()
	rings := Derive(comps, cats, mappings)
	r, ok := Find(rings, "Beginner - Mixed 8-10 Pool 2", roster.TypeSparring)
	require.True(t, ok)

	ids := func(cs []roster.Competitor) []string {
		var res []string
		for _, c := range cs {
			res = append(res, c.ID)
		}
		return res
	}
	assert.Equal(t, []string{"a", "b"}, ids(Members(r, comps, roster.SubGroupNone)))
	assert.Equal(t, []string{"b"}, ids(Members(r, comps, roster.SubGroupB)))
	assert.Empty(t, Members(r, comps, roster.SubGroupA))
	assert.Equal(t, []roster.SubGroup{roster.SubGroupB}, SubGroups(r, comps))

	_, ok = Find(rings, "Beginner - Mixed 8-10 Pool 1", roster.TypeSparring)
	assert.False(t, ok)
	found, ok := FindKey(rings, r.Key.WithSubGroup(roster.SubGroupA))
	require.True(t, ok)
	assert.Equal(t, r.Name, found.Name)
}

func TestResolve(t *testing.T) {
	comps, cats, _ := fixture()
	id, ok := Resolve(comps[1], roster.TypeSparring, cats)
	require.True(t, ok)
	assert.Equal(t, "Beginner - Mixed 8-10 Pool 2_sparring_b", id.String())

	id, ok = Resolve(comps[0], roster.TypeForms, cats)
	require.True(t, ok)
	assert.Equal(t, "Beginner - Mixed 8-10 Pool 1_forms", id.String())

	for _, tc := range []struct {
		c roster.Competitor
		t roster.CompetitionType
	}{
		{comps[2], roster.TypeSparring},
		{comps[3], roster.TypeForms},
		{comps[4], roster.TypeForms},
		{comps[5], roster.TypeForms},
	} {
		_, ok := Resolve(tc.c, tc.t, cats)
		assert.False(t, ok, "competitor %v", tc.c.ID)
	}
}

func TestIdentRoundTrip(t *testing.T) {
	for _, id := range []Ident{
		{Name: "Beginner - Mixed 8-10 Pool 1", Type: roster.TypeForms},
		{Name: "Beginner - Mixed 8-10 Pool 1", Type: roster.TypeSparring},
		{Name: "Beginner - Mixed 8-10 Pool 1", Type: roster.TypeSparring, SubGroup: roster.SubGroupA},
		{Name: "Weird_sparring Pool 1", Type: roster.TypeSparring, SubGroup: roster.SubGroupB},
		{Name: "Ends_forms", Type: roster.TypeForms},
	} {
		got, err := ParseIdent(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	for _, s := range []string{"", "Name", "_forms", "Name_forms_a", "Name_sparring_c"} {
		_, err := ParseIdent(s)
		assert.Error(t, err, "input %q", s)
	}
}
