package database

import (
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/timeutil"
)

type Entry struct {
	Division       roster.Division `gorm:"serializer:roster"`
	CategoryID     string          `gorm:"index"`
	Pool           string
	Rank           *int
	Competing      bool
	SubGroup       roster.SubGroup
	LastCategoryID string
	LastPool       string
}

type Competitor struct {
	ID           string `gorm:"primaryKey"`
	Position     int    `gorm:"index"`
	FirstName    string
	LastName     string
	Age          int
	Gender       roster.Gender `gorm:"serializer:roster"`
	Height       roster.Height `gorm:"embedded;embeddedPrefix:height_"`
	HeightInches int           `gorm:"column:total_inches"`
	School       string
	Forms        Entry `gorm:"embedded;embeddedPrefix:forms_"`
	Sparring     Entry `gorm:"embedded;embeddedPrefix:sparring_"`
}

type Category struct {
	ID            string `gorm:"primaryKey"`
	Position      int    `gorm:"index"`
	Name          string
	Division      string
	Gender        roster.Gender `gorm:"serializer:roster"`
	MinAge        int
	MaxAge        int
	NumPools      int
	CompetitorIDs []string `gorm:"serializer:json"`
}

type RingMapping struct {
	ID           uint `gorm:"primaryKey"`
	Position     int  `gorm:"index"`
	CategoryID   string
	Pool         string
	PhysicalRing string
}

// TournamentConfig holds a single row.
type TournamentConfig struct {
	ID        uint `gorm:"primaryKey"`
	Version   int
	Name      string
	Date      string
	Location  string
	Divisions []roster.DivisionConfig `gorm:"serializer:json"`
}

const configRowID = 1

type Checkpoint struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	CreatedAt      timeutil.UTCTime `gorm:"index"`
	NumCompetitors int
	State          roster.State `gorm:"serializer:json"`
}

var models = []any{
	&Competitor{},
	&Category{},
	&RingMapping{},
	&TournamentConfig{},
	&Checkpoint{},
}

func entryFromRoster(e roster.Entry) Entry {
	return Entry{
		Division:       e.Division,
		CategoryID:     e.CategoryID,
		Pool:           e.Pool,
		Rank:           e.Clone().Rank,
		Competing:      e.Competing,
		SubGroup:       e.SubGroup,
		LastCategoryID: e.LastCategoryID,
		LastPool:       e.LastPool,
	}
}

func (e Entry) toRoster() roster.Entry {
	return roster.Entry{
		Division:       e.Division,
		CategoryID:     e.CategoryID,
		Pool:           e.Pool,
		Rank:           e.Rank,
		Competing:      e.Competing,
		SubGroup:       e.SubGroup,
		LastCategoryID: e.LastCategoryID,
		LastPool:       e.LastPool,
	}
}

func competitorFromRoster(pos int, c roster.Competitor) Competitor {
	return Competitor{
		ID:           c.ID,
		Position:     pos,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Age:          c.Age,
		Gender:       c.Gender,
		Height:       c.Height,
		HeightInches: c.HeightInches,
		School:       c.School,
		Forms:        entryFromRoster(c.Forms),
		Sparring:     entryFromRoster(c.Sparring),
	}
}

func (c Competitor) toRoster() roster.Competitor {
	return roster.Competitor{
		ID:           c.ID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Age:          c.Age,
		Gender:       c.Gender,
		Height:       c.Height,
		HeightInches: c.HeightInches,
		School:       c.School,
		Forms:        c.Forms.toRoster(),
		Sparring:     c.Sparring.toRoster(),
	}
}

func categoryFromRoster(pos int, c roster.Category) Category {
	return Category{
		ID:            c.ID,
		Position:      pos,
		Name:          c.Name,
		Division:      c.Division,
		Gender:        c.Gender,
		MinAge:        c.MinAge,
		MaxAge:        c.MaxAge,
		NumPools:      c.NumPools,
		CompetitorIDs: c.Clone().CompetitorIDs,
	}
}

func (c Category) toRoster() roster.Category {
	return roster.Category{
		ID:            c.ID,
		Name:          c.Name,
		Division:      c.Division,
		Gender:        c.Gender,
		MinAge:        c.MinAge,
		MaxAge:        c.MaxAge,
		NumPools:      c.NumPools,
		CompetitorIDs: c.CompetitorIDs,
	}
}
