package bracket

import (
	"errors"
	"fmt"
	"slices"

	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
)

const (
	MaxRounds   = 4
	MaxEntrants = 1 << MaxRounds

	// All regular matches of a full bracket plus the third-place match.
	NumMatches = MaxEntrants
)

var ErrUnsupportedSize = errors.New("unsupported bracket size")

type Kind int

const (
	KindRegular Kind = iota
	KindFinal
	KindThirdPlace
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindFinal:
		return "final"
	case KindThirdPlace:
		return "third-place"
	default:
		return "?"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for _, v := range []Kind{KindRegular, KindFinal, KindThirdPlace} {
		if v.String() == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("bad match kind %q", string(b))
}

type Slot int

const (
	SlotTop Slot = iota
	SlotBottom
)

// SlotRef points at one side of a match by its index in Bracket.Matches.
type SlotRef struct {
	Match int  `json:"match"`
	Slot  Slot `json:"slot"`
}

type Entrant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	School string `json:"school,omitempty"`
	Seed   int    `json:"seed"`
	Bye    bool   `json:"bye,omitempty"`
}

type Match struct {
	Round  int      `json:"round"`
	Index  int      `json:"index"`
	Kind   Kind     `json:"kind"`
	Top    *Entrant `json:"top,omitempty"`
	Bottom *Entrant `json:"bottom,omitempty"`
	// Zero means the match is not numbered.
	Number    int      `json:"number,omitempty"`
	Next      *SlotRef `json:"next,omitempty"`
	LoserNext *SlotRef `json:"loser_next,omitempty"`
}

func (m *Match) IsEmpty() bool {
	return m.Top == nil && m.Bottom == nil
}

func (m *Match) slot(s Slot) **Entrant {
	switch s {
	case SlotTop:
		return &m.Top
	case SlotBottom:
		return &m.Bottom
	default:
		panic("must not happen")
	}
}

type Bracket struct {
	Entrants   []Entrant         `json:"entrants"`
	StartRound int               `json:"start_round"`
	Byes       int               `json:"byes"`
	Matches    [NumMatches]Match `json:"matches"`
}

// slots returns the number of competitor positions in the round. The final has two.
func slots(round int) int {
	return 1 << (MaxRounds - round + 1)
}

func matchesIn(round int) int {
	return slots(round) / 2
}

func offset(round int) int {
	off := 0
	for r := 1; r < round; r++ {
		off += matchesIn(r)
	}
	return off
}

func thirdPlaceIndex() int {
	return NumMatches - 1
}

func finalIndex() int {
	return offset(MaxRounds)
}

// Layout computes where play starts for n entrants: the start round, how many entrants
// play in it and how many skip straight to the following round.
func Layout(n int) (startRound, competing, byes int, err error) {
	switch {
	case n < 0 || n > MaxEntrants:
		return 0, 0, 0, fmt.Errorf("%w: %d entrants, at most %d supported", ErrUnsupportedSize, n, MaxEntrants)
	case n == 0:
		return 0, 0, 0, nil
	case n == 1:
		return MaxRounds, 0, 0, nil
	}
	for r := 1; r <= MaxRounds; r++ {
		next := 1
		if r < MaxRounds {
			next = slots(r + 1)
		}
		if slots(r) >= n && next < n {
			competing = 2 * (n - next)
			return r, competing, n - competing, nil
		}
	}
	panic("must not happen")
}

func (b *Bracket) Match(round, index int) *Match {
	if round < 1 || round > MaxRounds || index < 0 || index >= matchesIn(round) {
		return nil
	}
	return &b.Matches[offset(round)+index]
}

func (b *Bracket) Final() *Match {
	return &b.Matches[finalIndex()]
}

func (b *Bracket) ThirdPlace() *Match {
	return &b.Matches[thirdPlaceIndex()]
}

// Numbered returns the numbered matches in play order.
func (b *Bracket) Numbered() []*Match {
	var res []*Match
	for i := range b.Matches {
		if b.Matches[i].Number != 0 {
			res = append(res, &b.Matches[i])
		}
	}
	slices.SortFunc(res, func(x, y *Match) int { return x.Number - y.Number })
	return res
}

func (b *Bracket) Placed() int {
	n := 0
	for i := range b.Matches {
		if b.Matches[i].Top != nil {
			n++
		}
		if b.Matches[i].Bottom != nil {
			n++
		}
	}
	return n
}

func skeleton() [NumMatches]Match {
	var ms [NumMatches]Match
	for r := 1; r <= MaxRounds; r++ {
		for i := range matchesIn(r) {
			m := &ms[offset(r)+i]
			m.Round = r
			m.Index = i
			m.Kind = KindRegular
			if r == MaxRounds {
				m.Kind = KindFinal
				continue
			}
			m.Next = &SlotRef{Match: offset(r+1) + i/2, Slot: Slot(i % 2)}
			if r == MaxRounds-1 {
				m.LoserNext = &SlotRef{Match: thirdPlaceIndex(), Slot: Slot(i % 2)}
			}
		}
	}
	third := &ms[thirdPlaceIndex()]
	third.Round = MaxRounds
	third.Kind = KindThirdPlace
	return ms
}

func (b *Bracket) place(round, pos int, e *Entrant) {
	m := b.Match(round, pos/2)
	if m == nil {
		panic("must not happen")
	}
	*m.slot(Slot(pos % 2)) = e
}

// Seed builds a single-elimination bracket from entrants listed best first. Byes go to
// the best entrants and take the top positions of the round after the start round;
// everyone else plays in the bottom positions of the start round.
func Seed(entrants []Entrant) (*Bracket, error) {
	start, competing, byes, err := Layout(len(entrants))
	if err != nil {
		return nil, err
	}
	b := &Bracket{
		Entrants:   slices.Clone(entrants),
		StartRound: start,
		Byes:       byes,
		Matches:    skeleton(),
	}
	for i := range b.Entrants {
		b.Entrants[i].Seed = i + 1
		b.Entrants[i].Bye = i < byes
	}

	switch len(b.Entrants) {
	case 0:
		return b, nil
	case 1:
		b.place(MaxRounds, 0, &b.Entrants[0])
	default:
		for i := range byes {
			b.place(start+1, i, &b.Entrants[i])
		}
		first := slots(start) - competing
		for i := range competing {
			b.place(start, first+i, &b.Entrants[byes+i])
		}
	}
	b.number()
	return b, nil
}

// number assigns match numbers: elimination matches top to bottom from the first match
// holding a competitor, then the third-place match, then the final. With fewer than four
// entrants the third-place match stays unnumbered.
func (b *Bracket) number() {
	n := 0
	for i := range offset(MaxRounds) {
		m := &b.Matches[i]
		if n == 0 && m.IsEmpty() {
			continue
		}
		n++
		m.Number = n
	}
	if len(b.Entrants) >= 4 {
		n++
		b.ThirdPlace().Number = n
	}
	n++
	b.Final().Number = n
}

// FromCompetitors turns ordered competitors into entrants.
func FromCompetitors(competitors []roster.Competitor) []Entrant {
	res := make([]Entrant, len(competitors))
	for i, c := range competitors {
		res[i] = Entrant{
			ID:     c.ID,
			Name:   c.FullName(),
			School: c.School,
			Seed:   i + 1,
		}
	}
	return res
}
