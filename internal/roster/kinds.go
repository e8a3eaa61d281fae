package roster

import (
	"fmt"
	"strings"
)

type CompetitionType int

const (
	TypeForms CompetitionType = iota
	TypeSparring
)

var AllTypes = []CompetitionType{TypeForms, TypeSparring}

func (t CompetitionType) String() string {
	switch t {
	case TypeForms:
		return "forms"
	case TypeSparring:
		return "sparring"
	default:
		return "?"
	}
}

func (t CompetitionType) PrettyString() string {
	switch t {
	case TypeForms:
		return "Forms"
	case TypeSparring:
		return "Sparring"
	default:
		return "?"
	}
}

func (t CompetitionType) Other() CompetitionType {
	switch t {
	case TypeForms:
		return TypeSparring
	case TypeSparring:
		return TypeForms
	default:
		panic("bad competition type")
	}
}

func (t CompetitionType) MarshalText() ([]byte, error) {
	switch t {
	case TypeForms, TypeSparring:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("bad competition type %d", int(t))
	}
}

func (t *CompetitionType) UnmarshalText(b []byte) error {
	v, err := CompetitionTypeFromString(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func CompetitionTypeFromString(s string) (CompetitionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forms", "form":
		return TypeForms, nil
	case "sparring", "spar":
		return TypeSparring, nil
	default:
		return 0, fmt.Errorf("unknown competition type %q", s)
	}
}

// SubGroup splits an oversized sparring pool into two physically separate brackets.
type SubGroup string

const (
	SubGroupNone SubGroup = ""
	SubGroupA    SubGroup = "a"
	SubGroupB    SubGroup = "b"
)

func (s SubGroup) Valid() bool {
	return s == SubGroupNone || s == SubGroupA || s == SubGroupB
}

func SubGroupFromString(s string) (SubGroup, error) {
	sub := SubGroup(strings.ToLower(strings.TrimSpace(s)))
	if !sub.Valid() {
		return SubGroupNone, fmt.Errorf("bad sub-group %q", s)
	}
	return sub, nil
}

type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return ""
	}
}

func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Gender) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "male", "m", "boy", "boys":
		*g = GenderMale
	case "female", "f", "girl", "girls":
		*g = GenderFemale
	case "", "mixed", "any", "coed":
		*g = GenderUnknown
	default:
		return fmt.Errorf("unknown gender %q", string(b))
	}
	return nil
}

type Height struct {
	Feet   int `yaml:"feet" json:"feet" validate:"gte=0,lte=8"`
	Inches int `yaml:"inches" json:"inches" validate:"gte=0,lt=12"`
}

func (h Height) TotalInches() int {
	return h.Feet*12 + h.Inches
}

func (h Height) String() string {
	return fmt.Sprintf("%d'%d\"", h.Feet, h.Inches)
}
