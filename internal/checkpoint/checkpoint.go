package checkpoint

import (
	"time"

	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
)

// Checkpoint is an immutable snapshot of the whole tournament state.
type Checkpoint struct {
	ID        string
	Name      string
	CreatedAt time.Time
	state     roster.State
}

func New(id, name string, createdAt time.Time, state roster.State) *Checkpoint {
	return &Checkpoint{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
		state:     state.Clone(),
	}
}

func (c *Checkpoint) State() roster.State {
	return c.state.Clone()
}

func (c *Checkpoint) NumCompetitors() int {
	return len(c.state.Competitors)
}

// Info is a checkpoint without its state.
type Info struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	NumCompetitors int       `json:"num_competitors"`
}

func (c *Checkpoint) Info() Info {
	return Info{
		ID:             c.ID,
		Name:           c.Name,
		CreatedAt:      c.CreatedAt,
		NumCompetitors: c.NumCompetitors(),
	}
}
