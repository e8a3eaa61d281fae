package ring

import (
	"fmt"

	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/sliceutil"
)

// Key is the structured identity of a ring. Pool is 1-based.
type Key struct {
	Division   string                 `json:"division"`
	CategoryID string                 `json:"category"`
	Pool       int                    `json:"pool"`
	Type       roster.CompetitionType `json:"type"`
	SubGroup   roster.SubGroup        `json:"subgroup,omitempty"`
}

func (k Key) WithSubGroup(sub roster.SubGroup) Key {
	k.SubGroup = sub
	return k
}

// Ring is a competition group computed from the roster. Rings are never stored.
type Ring struct {
	Key          Key      `json:"key"`
	Name         string   `json:"name"`
	CategoryName string   `json:"category_name"`
	PhysicalRing string   `json:"physical_ring,omitempty"`
	MemberIDs    []string `json:"members"`
}

func (r Ring) Ident() Ident {
	return Ident{Name: r.Name, Type: r.Key.Type, SubGroup: r.Key.SubGroup}
}

func DisplayName(cat *roster.Category, pool int) string {
	return fmt.Sprintf("%s - %s Pool %d", cat.Division, cat.Name, pool)
}

// Derive computes all non-empty rings. Sparring rings are not split by sub-group here.
func Derive(competitors []roster.Competitor, categories []roster.Category, mappings []roster.RingMapping) []Ring {
	var rings []Ring
	for ci := range categories {
		cat := &categories[ci]
		for _, t := range roster.AllTypes {
			for pool := 1; pool <= cat.NumPools; pool++ {
				var members []string
				for _, c := range competitors {
					if inPool(c.Entry(t), cat.ID, pool) {
						members = append(members, c.ID)
					}
				}
				if len(members) == 0 {
					continue
				}
				rings = append(rings, Ring{
					Key: Key{
						Division:   cat.Division,
						CategoryID: cat.ID,
						Pool:       pool,
						Type:       t,
					},
					Name:         DisplayName(cat, pool),
					CategoryName: cat.Name,
					PhysicalRing: physicalRing(mappings, cat.ID, pool),
					MemberIDs:    members,
				})
			}
		}
	}
	return rings
}

func inPool(e roster.Entry, categoryID string, pool int) bool {
	if !e.Competing || e.CategoryID == "" || e.CategoryID != categoryID {
		return false
	}
	p, ok := roster.PoolIndex(e.Pool)
	return ok && p == pool
}

// Contains reports whether the competitor belongs to the ring identified by key. A key
// with a sub-group also requires a matching sparring sub-group.
func Contains(key Key, c roster.Competitor) bool {
	e := c.Entry(key.Type)
	if !inPool(e, key.CategoryID, key.Pool) {
		return false
	}
	return key.SubGroup == roster.SubGroupNone || e.SubGroup == key.SubGroup
}

func physicalRing(mappings []roster.RingMapping, categoryID string, pool int) string {
	for _, m := range mappings {
		if m.CategoryID != categoryID {
			continue
		}
		if p, ok := roster.PoolIndex(m.Pool); ok && p == pool {
			return m.PhysicalRing
		}
	}
	return ""
}

// Members returns the ring members in competitor order, restricted to one sparring
// sub-group unless sub is SubGroupNone.
func Members(r *Ring, competitors []roster.Competitor, sub roster.SubGroup) []roster.Competitor {
	key := r.Key.WithSubGroup(sub)
	return sliceutil.FilterMap(competitors, func(c roster.Competitor) (roster.Competitor, bool) {
		return c, Contains(key, c)
	})
}

// SubGroups lists the sparring sub-groups used by the ring members, in order.
func SubGroups(r *Ring, competitors []roster.Competitor) []roster.SubGroup {
	if r.Key.Type != roster.TypeSparring {
		return nil
	}
	var seen [2]bool
	for _, c := range Members(r, competitors, roster.SubGroupNone) {
		switch c.Sparring.SubGroup {
		case roster.SubGroupA:
			seen[0] = true
		case roster.SubGroupB:
			seen[1] = true
		}
	}
	var res []roster.SubGroup
	if seen[0] {
		res = append(res, roster.SubGroupA)
	}
	if seen[1] {
		res = append(res, roster.SubGroupB)
	}
	return res
}

// Find looks a ring up by display name and type.
func Find(rings []Ring, name string, t roster.CompetitionType) (*Ring, bool) {
	for i := range rings {
		if rings[i].Name == name && rings[i].Key.Type == t {
			return &rings[i], true
		}
	}
	return nil, false
}

func FindKey(rings []Ring, key Key) (*Ring, bool) {
	base := key.WithSubGroup(roster.SubGroupNone)
	for i := range rings {
		if rings[i].Key == base {
			return &rings[i], true
		}
	}
	return nil, false
}

// Resolve finds the ring identity of one competitor for one competition type. Sparring
// identities carry the competitor's sub-group.
func Resolve(c roster.Competitor, t roster.CompetitionType, categories []roster.Category) (Ident, bool) {
	e := c.Entry(t)
	if !e.Competing {
		return Ident{}, false
	}
	cat, ok := roster.FindCategory(categories, e.CategoryID)
	if !ok {
		return Ident{}, false
	}
	pool, ok := roster.PoolIndex(e.Pool)
	if !ok || pool > cat.NumPools {
		return Ident{}, false
	}
	id := Ident{Name: DisplayName(cat, pool), Type: t}
	if t == roster.TypeSparring {
		id.SubGroup = e.SubGroup
	}
	return id, true
}
