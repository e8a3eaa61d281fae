package ring

import (
	"fmt"
	"strings"

	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
)

// Ident is the ring identity exchanged with document renderers. Its string form is
// "{name}_{type}" with an extra "_{subgroup}" for split sparring rings.
type Ident struct {
	Name     string
	Type     roster.CompetitionType
	SubGroup roster.SubGroup
}

func (i Ident) String() string {
	var b strings.Builder
	b.WriteString(i.Name)
	b.WriteByte('_')
	b.WriteString(i.Type.String())
	if i.SubGroup != roster.SubGroupNone {
		b.WriteByte('_')
		b.WriteString(string(i.SubGroup))
	}
	return b.String()
}

func (i Ident) Base() Ident {
	i.SubGroup = roster.SubGroupNone
	return i
}

func (i Ident) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Ident) UnmarshalText(b []byte) error {
	v, err := ParseIdent(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// ParseIdent parses the string form from the right, so ring names that themselves
// contain "_sparring" are handled.
func ParseIdent(s string) (Ident, error) {
	rest := s
	sub := roster.SubGroupNone
	for _, g := range []roster.SubGroup{roster.SubGroupA, roster.SubGroupB} {
		suffix := "_" + roster.TypeSparring.String() + "_" + string(g)
		if strings.HasSuffix(rest, suffix) {
			sub = g
			rest = strings.TrimSuffix(rest, "_"+string(g))
			break
		}
	}
	for _, t := range roster.AllTypes {
		suffix := "_" + t.String()
		if !strings.HasSuffix(rest, suffix) {
			continue
		}
		name := strings.TrimSuffix(rest, suffix)
		if name == "" {
			return Ident{}, fmt.Errorf("empty ring name in %q", s)
		}
		return Ident{Name: name, Type: t, SubGroup: sub}, nil
	}
	return Ident{}, fmt.Errorf("bad ring identifier %q", s)
}
