package tournament

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/alanjwade/tournament-manager-sub000/internal/bracket"
	"github.com/alanjwade/tournament-manager-sub000/internal/checkpoint"
	"github.com/alanjwade/tournament-manager-sub000/internal/order"
	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/backoff"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/httputil"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/idgen"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/slogx"
	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
)

// errUnchanged is returned by an edit that turned out to be a no-op.
var errUnchanged = errors.New("unchanged")

// Keeper owns the live tournament state. Every edit is applied to a copy, persisted and
// only then published, and the previous state is kept for undo.
type Keeper struct {
	store Store
	opts  Options
	log   *slog.Logger
	now   func() time.Time

	mu    sync.RWMutex
	state roster.State
	undo  []roster.State
	redo  []roster.State
}

func New(ctx context.Context, log *slog.Logger, store Store, opts Options) (*Keeper, error) {
	opts.FillDefaults()
	state, err := store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	roster.Prepare(state)
	log.Info("tournament loaded",
		slog.Int("competitors", len(state.Competitors)),
		slog.Int("categories", len(state.Categories)),
	)
	return &Keeper{
		store: store,
		opts:  opts,
		log:   log,
		now:   time.Now,
		state: *state,
	}, nil
}

func (k *Keeper) logFromCtx(ctx context.Context) *slog.Logger {
	rid := httputil.ExtractReqID(ctx)
	log := k.log
	if rid != "" {
		log = log.With(slog.String("rid", rid))
	}
	return log
}

func (k *Keeper) State() roster.State {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.state.Clone()
}

func (k *Keeper) CanUndo() (undo bool, redo bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.undo) != 0, len(k.redo) != 0
}

func (k *Keeper) save(ctx context.Context, s *roster.State) error {
	ctx, cancel := context.WithTimeout(ctx, k.opts.SaveTimeout)
	defer cancel()
	b, err := backoff.New(k.opts.SaveBackoff)
	if err != nil {
		return fmt.Errorf("save backoff: %w", err)
	}
	for {
		saveErr := k.store.SaveState(ctx, s)
		if saveErr == nil {
			return nil
		}
		if !errors.Is(saveErr, ErrStoreBusy) {
			return fmt.Errorf("save state: %w", saveErr)
		}
		k.logFromCtx(ctx).Warn("store busy, retrying save", slogx.Err(saveErr))
		if err := b.Retry(ctx, saveErr); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
}

func (k *Keeper) pushUndo(s roster.State) {
	k.undo = append(k.undo, s)
	if over := len(k.undo) - k.opts.UndoDepth; over > 0 {
		k.undo = slices.Delete(k.undo, 0, over)
	}
}

func (k *Keeper) edit(ctx context.Context, what string, fn func(s *roster.State) error) error {
	log := k.logFromCtx(ctx)
	k.mu.Lock()
	defer k.mu.Unlock()

	next := k.state.Clone()
	if err := fn(&next); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	if err := roster.Validate(&next); err != nil {
		return fmt.Errorf("%v: %w", what, err)
	}
	if err := k.save(ctx, &next); err != nil {
		log.Error("could not persist edit", slog.String("edit", what), slogx.Err(err))
		return err
	}
	k.pushUndo(k.state)
	k.redo = nil
	k.state = next
	log.Info("state edited", slog.String("edit", what))
	return nil
}

func (k *Keeper) Undo(ctx context.Context) error {
	return k.travel(ctx, &k.undo, &k.redo, ErrNothingToUndo, "undo")
}

func (k *Keeper) Redo(ctx context.Context) error {
	return k.travel(ctx, &k.redo, &k.undo, ErrNothingToRedo, "redo")
}

func (k *Keeper) travel(ctx context.Context, from, to *[]roster.State, empty error, what string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(*from) == 0 {
		return empty
	}
	target := (*from)[len(*from)-1]
	if err := k.save(ctx, &target); err != nil {
		return err
	}
	*from = (*from)[:len(*from)-1]
	*to = append(*to, k.state)
	k.state = target
	k.logFromCtx(ctx).Info("state restored", slog.String("edit", what))
	return nil
}

func (k *Keeper) ReplaceState(ctx context.Context, state roster.State) error {
	state = state.Clone()
	roster.Prepare(&state)
	return k.edit(ctx, "replace state", func(s *roster.State) error {
		*s = state
		return nil
	})
}

func (k *Keeper) ImportRoster(ctx context.Context, r io.Reader) error {
	state, err := roster.Load(r)
	if err != nil {
		return fmt.Errorf("import roster: %w", err)
	}
	return k.ReplaceState(ctx, *state)
}

func (k *Keeper) ExportRoster(w io.Writer) error {
	state := k.State()
	return roster.Save(w, &state)
}

func (k *Keeper) UpsertCompetitor(ctx context.Context, c roster.Competitor) (roster.Competitor, error) {
	c = c.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.ResolveDivisions()
	c.Forms.SubGroup = roster.SubGroupNone
	c.Forms.Normalize()
	c.Sparring.Normalize()
	if total := c.Height.TotalInches(); total != 0 {
		c.HeightInches = total
	}
	err := k.edit(ctx, "upsert competitor", func(s *roster.State) error {
		if cur, ok := s.CompetitorByID(c.ID); ok {
			*cur = c
			return nil
		}
		s.Competitors = append(s.Competitors, c)
		return nil
	})
	if err != nil {
		return roster.Competitor{}, err
	}
	return c, nil
}

func (k *Keeper) DeleteCompetitor(ctx context.Context, competitorID string) error {
	return k.edit(ctx, "delete competitor", func(s *roster.State) error {
		idx := slices.IndexFunc(s.Competitors, func(c roster.Competitor) bool { return c.ID == competitorID })
		if idx < 0 {
			return ErrNoSuchCompetitor
		}
		s.Competitors = slices.Delete(s.Competitors, idx, idx+1)
		for i := range s.Categories {
			cat := &s.Categories[i]
			cat.CompetitorIDs = slices.DeleteFunc(cat.CompetitorIDs, func(id string) bool { return id == competitorID })
		}
		return nil
	})
}

func (k *Keeper) editEntry(ctx context.Context, what, competitorID string, t roster.CompetitionType, fn func(e *roster.Entry) error) error {
	err := k.edit(ctx, what, func(s *roster.State) error {
		c, ok := s.CompetitorByID(competitorID)
		if !ok {
			return ErrNoSuchCompetitor
		}
		return fn(c.EntryMut(t))
	})
	if err != nil {
		return err
	}
	k.logFromCtx(ctx).Debug("entry edited", slog.String("edit", what), slogx.Competitor(competitorID), slog.String("type", t.String()))
	return nil
}

func (k *Keeper) Withdraw(ctx context.Context, competitorID string, t roster.CompetitionType) error {
	return k.editEntry(ctx, "withdraw", competitorID, t, func(e *roster.Entry) error {
		if !e.Competing {
			return errUnchanged
		}
		e.Withdraw()
		return nil
	})
}

func (k *Keeper) Reinstate(ctx context.Context, competitorID string, t roster.CompetitionType) error {
	return k.editEntry(ctx, "reinstate", competitorID, t, func(e *roster.Entry) error {
		if !e.Reinstate() {
			return errUnchanged
		}
		return nil
	})
}

func (k *Keeper) SetSubGroup(ctx context.Context, competitorID string, sub roster.SubGroup) error {
	if !sub.Valid() {
		return fmt.Errorf("bad sub-group %q", sub)
	}
	return k.editEntry(ctx, "set sub-group", competitorID, roster.TypeSparring, func(e *roster.Entry) error {
		if !e.Competing {
			return ErrNotCompeting
		}
		if e.SubGroup == sub {
			return errUnchanged
		}
		e.SubGroup = sub
		return nil
	})
}

func (k *Keeper) Rings() []ring.Ring {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return ring.Derive(k.state.Competitors, k.state.Categories, k.state.RingMappings)
}

// Ring returns the ring with the given name and its members ordered by rank.
func (k *Keeper) Ring(name string, t roster.CompetitionType) (ring.Ring, []roster.Competitor, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	rings := ring.Derive(k.state.Competitors, k.state.Categories, k.state.RingMappings)
	r, ok := ring.Find(rings, name, t)
	if !ok {
		return ring.Ring{}, nil, fmt.Errorf("%w: %q (%v)", ErrNoSuchRing, name, t)
	}
	return *r, order.Ranked(k.state.Competitors, r.Key), nil
}

// OrderRing assigns ranks inside one ring and returns its members in the new order.
func (k *Keeper) OrderRing(ctx context.Context, key ring.Key) ([]roster.Competitor, error) {
	var ranked []roster.Competitor
	err := k.edit(ctx, "order ring", func(s *roster.State) error {
		rings := ring.Derive(s.Competitors, s.Categories, s.RingMappings)
		if _, ok := ring.FindKey(rings, key); !ok {
			return ErrNoSuchRing
		}
		s.Competitors = order.Group(s.Competitors, key, k.opts.Ordering)
		ranked = order.Ranked(s.Competitors, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

// Bracket seeds the members of one ring, or of one of its sparring sub-groups, in rank
// order.
func (k *Keeper) Bracket(key ring.Key, sub roster.SubGroup) (*bracket.Bracket, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	rings := ring.Derive(k.state.Competitors, k.state.Categories, k.state.RingMappings)
	if _, ok := ring.FindKey(rings, key); !ok {
		return nil, ErrNoSuchRing
	}
	members := order.Ranked(k.state.Competitors, key.WithSubGroup(sub))
	b, err := bracket.Seed(bracket.FromCompetitors(members))
	if err != nil {
		return nil, fmt.Errorf("seed bracket: %w", err)
	}
	return b, nil
}

func (k *Keeper) CreateCheckpoint(ctx context.Context, name string) (checkpoint.Info, error) {
	if name == "" {
		name = petname.Generate(2, "-")
	}
	cp := checkpoint.New(idgen.ID(), name, k.now().UTC(), k.State())
	if err := k.store.CreateCheckpoint(ctx, cp); err != nil {
		return checkpoint.Info{}, fmt.Errorf("create checkpoint: %w", err)
	}
	k.logFromCtx(ctx).Info("checkpoint created", slogx.Checkpoint(cp.ID), slog.String("name", name))
	return cp.Info(), nil
}

func (k *Keeper) ListCheckpoints(ctx context.Context) ([]checkpoint.Info, error) {
	return k.store.ListCheckpoints(ctx)
}

func (k *Keeper) DiffCheckpoint(ctx context.Context, checkpointID string) (*checkpoint.Diff, error) {
	cp, err := k.store.GetCheckpoint(ctx, checkpointID)
	if err != nil {
		return nil, err
	}
	return checkpoint.Compute(k.State(), cp), nil
}

func (k *Keeper) RestoreCheckpoint(ctx context.Context, checkpointID string) error {
	cp, err := k.store.GetCheckpoint(ctx, checkpointID)
	if err != nil {
		return err
	}
	state := cp.State()
	roster.Prepare(&state)
	return k.edit(ctx, "restore checkpoint", func(s *roster.State) error {
		*s = state
		return nil
	})
}

func (k *Keeper) DeleteCheckpoint(ctx context.Context, checkpointID string) error {
	if err := k.store.DeleteCheckpoint(ctx, checkpointID); err != nil {
		return err
	}
	k.logFromCtx(ctx).Info("checkpoint deleted", slogx.Checkpoint(checkpointID))
	return nil
}
