package checkpoint

import (
	"encoding/json"
	"slices"

	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
)

// Set is a set of ring identities.
type Set map[ring.Ident]struct{}

func (s Set) Add(id ring.Ident) {
	s[id] = struct{}{}
}

func (s Set) Has(id ring.Ident) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Strings returns the wire form of every identity, sorted.
func (s Set) Strings() []string {
	res := make([]string, 0, len(s))
	for id := range s {
		res = append(res, id.String())
	}
	slices.Sort(res)
	return res
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *Set) UnmarshalJSON(b []byte) error {
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	res := make(Set, len(items))
	for _, item := range items {
		id, err := ring.ParseIdent(item)
		if err != nil {
			return err
		}
		res.Add(id)
	}
	*s = res
	return nil
}
