package tournament

import (
	"context"
	"errors"
	"time"

	"github.com/alanjwade/tournament-manager-sub000/internal/checkpoint"
	"github.com/alanjwade/tournament-manager-sub000/internal/order"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/backoff"
)

var (
	ErrNoSuchCheckpoint = errors.New("no such checkpoint")
	ErrNoSuchCompetitor = errors.New("no such competitor")
	ErrNoSuchRing       = errors.New("no such ring")
	ErrNotCompeting     = errors.New("competitor is not competing")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNothingToRedo    = errors.New("nothing to redo")

	// ErrStoreBusy marks a transient store failure, after which a save may be retried.
	ErrStoreBusy = errors.New("store is busy")
)

type Store interface {
	LoadState(ctx context.Context) (*roster.State, error)
	SaveState(ctx context.Context, state *roster.State) error
	CreateCheckpoint(ctx context.Context, cp *checkpoint.Checkpoint) error
	GetCheckpoint(ctx context.Context, checkpointID string) (*checkpoint.Checkpoint, error)
	ListCheckpoints(ctx context.Context) ([]checkpoint.Info, error)
	DeleteCheckpoint(ctx context.Context, checkpointID string) error
}

type Options struct {
	UndoDepth   int             `toml:"undo-depth"`
	SaveTimeout time.Duration   `toml:"save-timeout"`
	SaveBackoff backoff.Options `toml:"save-backoff"`
	Ordering    order.Policy    `toml:"ordering"`
}

func (o *Options) FillDefaults() {
	if o.UndoDepth == 0 {
		o.UndoDepth = 50
	}
	if o.SaveTimeout == 0 {
		o.SaveTimeout = 10 * time.Second
	}
	if o.SaveBackoff.Min == 0 {
		o.SaveBackoff.Min = 20 * time.Millisecond
	}
	if o.SaveBackoff.Max == 0 {
		o.SaveBackoff.Max = time.Second
	}
	if o.SaveBackoff.MaxAttempts == 0 {
		o.SaveBackoff.MaxAttempts = 10
	}
	o.Ordering.FillDefaults()
}
