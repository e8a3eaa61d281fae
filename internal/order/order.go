package order

import (
	"cmp"
	"hash/fnv"
	"slices"
	"strings"

	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/clone"
)

// Policy controls how hard forms ordering tries to keep one school from taking the front
// of the order. It is a heuristic, not a guarantee.
type Policy struct {
	// Number of consecutive competitors from one school that triggers a swap.
	BalanceWindow int `toml:"balance-window"`
	// Upper bound on swaps. Negative disables balancing.
	MaxSwaps int `toml:"max-swaps"`
	// Check every window instead of only the leading one.
	Sliding bool `toml:"sliding"`
}

func (p *Policy) FillDefaults() {
	if p.BalanceWindow == 0 {
		p.BalanceWindow = 3
	}
	if p.MaxSwaps == 0 {
		p.MaxSwaps = 1
	}
}

func (p Policy) enabled() bool {
	return p.MaxSwaps > 0 && p.BalanceWindow >= 2
}

func DefaultPolicy() Policy {
	var p Policy
	p.FillDefaults()
	return p
}

// Group orders the members of the ring identified by key, choosing the algorithm by
// key.Type. Competitors outside the ring are returned untouched.
func Group(competitors []roster.Competitor, key ring.Key, policy Policy) []roster.Competitor {
	switch key.Type {
	case roster.TypeForms:
		return Forms(competitors, key, policy)
	case roster.TypeSparring:
		return Sparring(competitors, key)
	default:
		panic("bad competition type")
	}
}

type member struct {
	idx    int
	c      *roster.Competitor
	school string
	hash   uint32
	// Fractional position within the school is num/den.
	num, den int
}

func nameHash(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return h.Sum32()
}

func schoolKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collect(res []roster.Competitor, key ring.Key) []*member {
	var members []*member
	for i := range res {
		if ring.Contains(key, res[i]) {
			members = append(members, &member{
				idx:    i,
				c:      &res[i],
				school: schoolKey(res[i].School),
				hash:   nameHash(res[i].FullName()),
			})
		}
	}
	return members
}

func assignRanks(members []*member, t roster.CompetitionType) {
	for i, m := range members {
		m.c.EntryMut(t).SetRank(i + 1)
	}
}

// Forms interleaves schools. Each school is shuffled by a stable name hash, members get a
// fractional position within their school, and schools are merged by that position.
func Forms(competitors []roster.Competitor, key ring.Key, policy Policy) []roster.Competitor {
	key.SubGroup = roster.SubGroupNone
	res := clone.DeepSlice(competitors)
	members := collect(res, key)

	bySchool := make(map[string][]*member)
	for _, m := range members {
		bySchool[m.school] = append(bySchool[m.school], m)
	}
	for _, group := range bySchool {
		slices.SortFunc(group, func(a, b *member) int {
			return cmp.Or(cmp.Compare(a.hash, b.hash), strings.Compare(a.c.ID, b.c.ID))
		})
		for i, m := range group {
			m.num, m.den = i+1, len(group)
		}
	}

	slices.SortFunc(members, func(a, b *member) int {
		return cmp.Or(
			cmp.Compare(a.num*b.den, b.num*a.den),
			strings.Compare(a.school, b.school),
			cmp.Compare(a.hash, b.hash),
			strings.Compare(a.c.ID, b.c.ID),
		)
	})
	balance(members, policy)
	assignRanks(members, key.Type)
	return res
}

func balance(members []*member, p Policy) {
	if !p.enabled() {
		return
	}
	w := p.BalanceWindow
	swaps := 0
	for end := w - 1; end < len(members) && swaps < p.MaxSwaps; end++ {
		if !p.Sliding && end != w-1 {
			return
		}
		school := members[end-w+1].school
		same := true
		for _, m := range members[end-w+2 : end+1] {
			if m.school != school {
				same = false
				break
			}
		}
		if !same {
			continue
		}
		for j := end + 1; j < len(members); j++ {
			if members[j].school != school {
				members[end], members[j] = members[j], members[end]
				swaps++
				break
			}
		}
	}
}

// Sparring orders by height, shortest first.
func Sparring(competitors []roster.Competitor, key ring.Key) []roster.Competitor {
	res := clone.DeepSlice(competitors)
	members := collect(res, key)
	slices.SortFunc(members, func(a, b *member) int {
		return cmp.Or(
			cmp.Compare(a.c.TotalInches(), b.c.TotalInches()),
			strings.Compare(a.c.LastName, b.c.LastName),
			strings.Compare(a.c.FirstName, b.c.FirstName),
			strings.Compare(a.c.ID, b.c.ID),
		)
	})
	assignRanks(members, key.Type)
	return res
}

// Ranked returns the ring members sorted by rank. Unranked members go last, in
// competitor order.
func Ranked(competitors []roster.Competitor, key ring.Key) []roster.Competitor {
	var res []roster.Competitor
	for _, c := range competitors {
		if ring.Contains(key, c) {
			res = append(res, c)
		}
	}
	slices.SortStableFunc(res, func(a, b roster.Competitor) int {
		ra, okA := a.Entry(key.Type).RankValue()
		rb, okB := b.Entry(key.Type).RankValue()
		switch {
		case okA && okB:
			return cmp.Compare(ra, rb)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
	return res
}
