package roster

import (
	"fmt"
	"strings"
)

type DivisionKind int

const (
	DivisionNotEntered DivisionKind = iota
	DivisionExplicit
	DivisionDerived
)

func (k DivisionKind) String() string {
	switch k {
	case DivisionNotEntered:
		return "not-entered"
	case DivisionExplicit:
		return "explicit"
	case DivisionDerived:
		return "derived"
	default:
		return "?"
	}
}

// Division is the division a competitor enters for one competition type. A Derived
// division takes its value from the other competition type and only exists until
// ResolveDivisions runs at load time.
type Division struct {
	Kind DivisionKind
	Name string
	From CompetitionType
}

func NotEntered() Division                   { return Division{Kind: DivisionNotEntered} }
func Explicit(name string) Division          { return Division{Kind: DivisionExplicit, Name: name} }
func DerivedFrom(t CompetitionType) Division { return Division{Kind: DivisionDerived, From: t} }

func (d Division) IsEntered() bool {
	return d.Kind == DivisionExplicit
}

// String returns the compact text form: "-" (not entered), "=<name>" (explicit) or
// "~<type>" (derived).
func (d Division) String() string {
	switch d.Kind {
	case DivisionNotEntered:
		return "-"
	case DivisionExplicit:
		return "=" + d.Name
	case DivisionDerived:
		return "~" + d.From.String()
	default:
		return "?"
	}
}

func DivisionFromString(s string) (Division, error) {
	if s == "" || s == "-" {
		return NotEntered(), nil
	}
	switch s[0] {
	case '=':
		if len(s) == 1 {
			return Division{}, fmt.Errorf("empty explicit division")
		}
		return Explicit(s[1:]), nil
	case '~':
		t, err := CompetitionTypeFromString(s[1:])
		if err != nil {
			return Division{}, fmt.Errorf("derived division: %w", err)
		}
		return DerivedFrom(t), nil
	default:
		return Division{}, fmt.Errorf("bad division %q", s)
	}
}

func (d Division) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Division) UnmarshalText(b []byte) error {
	v, err := DivisionFromString(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

const (
	sentinelNotParticipating = "not participating"
	sentinelSameAsForms      = "same as forms"
	sentinelSameAsSparring   = "same as sparring"
)

// divisionFromLegacy maps the free-text division values of old roster files, where
// sentinels were stored in place of a division name.
func divisionFromLegacy(raw string) Division {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "", sentinelNotParticipating, "none", "n/a":
		return NotEntered()
	case sentinelSameAsForms:
		return DerivedFrom(TypeForms)
	case sentinelSameAsSparring:
		return DerivedFrom(TypeSparring)
	default:
		return Explicit(v)
	}
}

// ResolveDivisions replaces derived divisions with the value they point at. A derived
// division pointing at another derived (or missing) division becomes NotEntered.
func (c *Competitor) ResolveDivisions() {
	forms, sparring := c.Forms.Division, c.Sparring.Division
	resolve := func(d Division, other Division) Division {
		if d.Kind != DivisionDerived {
			return d
		}
		if other.Kind == DivisionExplicit {
			return other
		}
		return NotEntered()
	}
	c.Forms.Division = resolve(forms, sparring)
	c.Sparring.Division = resolve(sparring, forms)
}
