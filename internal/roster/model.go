package roster

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/alanjwade/tournament-manager-sub000/internal/util/clone"
)

const CurrentVersion = 2

type Entry struct {
	Division   Division `yaml:"division" json:"division"`
	CategoryID string   `yaml:"category,omitempty" json:"category,omitempty"`
	Pool       string   `yaml:"pool,omitempty" json:"pool,omitempty"`
	Rank       *int     `yaml:"rank,omitempty" json:"rank,omitempty" validate:"omitempty,gte=1"`
	Competing  bool     `yaml:"competing" json:"competing"`
	// Only meaningful for sparring.
	SubGroup SubGroup `yaml:"subgroup,omitempty" json:"subgroup,omitempty" validate:"omitempty,oneof=a b"`

	// Assignment remembered across a withdrawal, so that reinstating loses nothing.
	LastCategoryID string `yaml:"last-category,omitempty" json:"last_category,omitempty"`
	LastPool       string `yaml:"last-pool,omitempty" json:"last_pool,omitempty"`
}

func (e Entry) Clone() Entry {
	e.Rank = clone.TrivialPtr(e.Rank)
	return e
}

func (e Entry) RankValue() (int, bool) {
	if e.Rank == nil {
		return 0, false
	}
	return *e.Rank, true
}

func (e *Entry) SetRank(rank int) {
	e.Rank = &rank
}

func (e *Entry) Withdraw() {
	if e.CategoryID != "" {
		e.LastCategoryID = e.CategoryID
		e.LastPool = e.Pool
	}
	e.Competing = false
	e.CategoryID = ""
	e.Pool = ""
	e.Rank = nil
	e.SubGroup = SubGroupNone
}

// Reinstate restores the assignment saved by Withdraw. The rank is not restored, since
// the ring may have been reordered in the meantime.
func (e *Entry) Reinstate() bool {
	if e.Competing {
		return false
	}
	if e.LastCategoryID != "" {
		e.CategoryID = e.LastCategoryID
		e.Pool = e.LastPool
	}
	e.LastCategoryID = ""
	e.LastPool = ""
	e.Competing = true
	e.Rank = nil
	return true
}

// Normalize enforces that a non-competing entry carries no live assignment.
func (e *Entry) Normalize() {
	if e.Competing {
		e.LastCategoryID = ""
		e.LastPool = ""
		return
	}
	if e.CategoryID != "" {
		e.Withdraw()
		return
	}
	e.Pool = ""
	e.Rank = nil
	e.SubGroup = SubGroupNone
}

type Competitor struct {
	ID           string `yaml:"id" json:"id" validate:"required"`
	FirstName    string `yaml:"first-name" json:"first_name"`
	LastName     string `yaml:"last-name" json:"last_name"`
	Age          int    `yaml:"age" json:"age" validate:"gte=0,lte=120"`
	Gender       Gender `yaml:"gender" json:"gender"`
	Height       Height `yaml:"height" json:"height"`
	HeightInches int    `yaml:"height-inches" json:"height_inches"`
	School       string `yaml:"school" json:"school"`
	Forms        Entry  `yaml:"forms" json:"forms"`
	Sparring     Entry  `yaml:"sparring" json:"sparring"`
}

func (c Competitor) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Competitor) Entry(t CompetitionType) Entry {
	switch t {
	case TypeForms:
		return c.Forms
	case TypeSparring:
		return c.Sparring
	default:
		panic("bad competition type")
	}
}

func (c *Competitor) EntryMut(t CompetitionType) *Entry {
	switch t {
	case TypeForms:
		return &c.Forms
	case TypeSparring:
		return &c.Sparring
	default:
		panic("bad competition type")
	}
}

// TotalInches prefers the feet+inches pair and falls back to the cached value.
func (c Competitor) TotalInches() int {
	if total := c.Height.TotalInches(); total != 0 {
		return total
	}
	return c.HeightInches
}

func (c Competitor) Clone() Competitor {
	c.Forms = c.Forms.Clone()
	c.Sparring = c.Sparring.Clone()
	return c
}

type Category struct {
	ID            string   `yaml:"id" json:"id" validate:"required"`
	Name          string   `yaml:"name" json:"name" validate:"required"`
	Division      string   `yaml:"division" json:"division" validate:"required"`
	Gender        Gender   `yaml:"gender" json:"gender"`
	MinAge        int      `yaml:"min-age" json:"min_age" validate:"gte=0"`
	MaxAge        int      `yaml:"max-age" json:"max_age" validate:"gtefield=MinAge"`
	NumPools      int      `yaml:"pools" json:"pools" validate:"gte=1,lte=26"`
	CompetitorIDs []string `yaml:"competitors,omitempty" json:"competitors,omitempty"`
}

func (c Category) Clone() Category {
	c.CompetitorIDs = slices.Clone(c.CompetitorIDs)
	return c
}

// RingMapping maps a category pool to the physical ring it was run in by older files.
type RingMapping struct {
	CategoryID   string `yaml:"category" json:"category" validate:"required"`
	Pool         string `yaml:"pool" json:"pool"`
	PhysicalRing string `yaml:"ring" json:"ring" validate:"required"`
}

func (m RingMapping) Clone() RingMapping {
	return m
}

type DivisionConfig struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Color string `yaml:"color,omitempty" json:"color,omitempty" validate:"omitempty,color"`
}

func (d DivisionConfig) Clone() DivisionConfig {
	return d
}

type Config struct {
	Name      string           `yaml:"name" json:"name"`
	Date      string           `yaml:"date,omitempty" json:"date,omitempty"`
	Location  string           `yaml:"location,omitempty" json:"location,omitempty"`
	Divisions []DivisionConfig `yaml:"divisions,omitempty" json:"divisions,omitempty" validate:"dive"`
}

func (c Config) Clone() Config {
	c.Divisions = clone.DeepSlice(c.Divisions)
	return c
}

func (c Config) DivisionColor(name string) (string, bool) {
	for _, d := range c.Divisions {
		if d.Name == name && d.Color != "" {
			return d.Color, true
		}
	}
	return "", false
}

type State struct {
	Version      int           `yaml:"version" json:"version"`
	Config       Config        `yaml:"config" json:"config"`
	Competitors  []Competitor  `yaml:"competitors" json:"competitors" validate:"unique=ID,dive"`
	Categories   []Category    `yaml:"categories" json:"categories" validate:"unique=ID,dive"`
	RingMappings []RingMapping `yaml:"ring-mappings,omitempty" json:"ring_mappings,omitempty" validate:"dive"`
}

func NewState() *State {
	return &State{Version: CurrentVersion}
}

func (s State) Clone() State {
	s.Config = s.Config.Clone()
	s.Competitors = clone.DeepSlice(s.Competitors)
	s.Categories = clone.DeepSlice(s.Categories)
	s.RingMappings = clone.DeepSlice(s.RingMappings)
	return s
}

func (s *State) CompetitorByID(id string) (*Competitor, bool) {
	for i := range s.Competitors {
		if s.Competitors[i].ID == id {
			return &s.Competitors[i], true
		}
	}
	return nil, false
}

func (s *State) CategoryByID(id string) (*Category, bool) {
	return FindCategory(s.Categories, id)
}

// FindCategory looks a category up by id. Ids of deleted categories simply miss.
func FindCategory(categories []Category, id string) (*Category, bool) {
	if id == "" {
		return nil, false
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], true
		}
	}
	return nil, false
}

// PoolIndex parses a pool label into a 1-based pool number. An empty label means pool 1.
func PoolIndex(label string) (int, bool) {
	s := strings.TrimSpace(label)
	if s == "" {
		return 1, true
	}
	if s[0] == 'P' || s[0] == 'p' {
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func PoolLabel(n int) string {
	return fmt.Sprintf("P%d", n)
}
