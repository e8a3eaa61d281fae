package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanjwade/tournament-manager-sub000/internal/checkpoint"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/tournament"
	_ "github.com/alanjwade/tournament-manager-sub000/internal/util/gormutil"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/sliceutil"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/slogx"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/timeutil"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Options struct {
	Path          string        `toml:"path"`
	Debug         bool          `toml:"debug"`
	SlowThreshold time.Duration `toml:"slow-threshold"`
	BusyTimeout   time.Duration `toml:"busy-timeout"`
	UseWAL        bool          `toml:"use-wal"`
}

func (o *Options) FillDefaults() {
	if o.Path == "" {
		o.Path = "ringside.db"
	}
	if o.SlowThreshold == 0 {
		o.SlowThreshold = 200 * time.Millisecond
	}
	if o.BusyTimeout == 0 {
		o.BusyTimeout = 1 * time.Minute
	}
}

type DB struct {
	db  *gorm.DB
	log *slog.Logger
}

var _ tournament.Store = (*DB)(nil)

func (d *DB) Close() {
	db, err := d.db.DB()
	if err != nil {
		d.log.Error("could not get underlying db", slogx.Err(err))
		return
	}
	err = db.Close()
	if err != nil {
		d.log.Error("could not close db", slogx.Err(err))
	}
}

func buildPath(o Options) string {
	var params []string
	if o.UseWAL {
		params = append(params, "_journal_mode=WAL")
		params = append(params, "_synchronous=NORMAL")
	}
	params = append(params, fmt.Sprintf("_busy_timeout=%v", o.BusyTimeout.Milliseconds()))
	params = append(params, "_foreign_keys=1")
	return o.Path + "?" + strings.Join(params, "&")
}

func New(log *slog.Logger, o Options) (*DB, error) {
	o.FillDefaults()

	log.Info("opening db", slog.String("path", o.Path))
	db, err := gorm.Open(sqlite.Open(buildPath(o)), &gorm.Config{
		Logger: Logger(log, o),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	d := &DB{db: db, log: log}

	log.Info("migrating db")
	if err := db.AutoMigrate(models...); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	log.Info("db opened")
	return d, nil
}

func (d *DB) LoadState(ctx context.Context) (*roster.State, error) {
	state := roster.NewState()
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfgs []TournamentConfig
		if err := tx.Where("id = ?", configRowID).Limit(1).Find(&cfgs).Error; err != nil {
			return fmt.Errorf("get config: %w", err)
		}
		if len(cfgs) != 0 {
			cfg := cfgs[0]
			state.Version = cfg.Version
			state.Config = roster.Config{
				Name:      cfg.Name,
				Date:      cfg.Date,
				Location:  cfg.Location,
				Divisions: cfg.Divisions,
			}
		}

		var comps []Competitor
		if err := tx.Order("position").Find(&comps).Error; err != nil {
			return fmt.Errorf("list competitors: %w", err)
		}
		state.Competitors = sliceutil.Map(comps, Competitor.toRoster)

		var cats []Category
		if err := tx.Order("position").Find(&cats).Error; err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		state.Categories = sliceutil.Map(cats, Category.toRoster)

		var mappings []RingMapping
		if err := tx.Order("position").Find(&mappings).Error; err != nil {
			return fmt.Errorf("list ring mappings: %w", err)
		}
		state.RingMappings = sliceutil.Map(mappings, func(m RingMapping) roster.RingMapping {
			return roster.RingMapping{
				CategoryID:   m.CategoryID,
				Pool:         m.Pool,
				PhysicalRing: m.PhysicalRing,
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// markBusy tags sqlite lock contention so the caller may retry.
func markBusy(err error) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && (sqlErr.Code == sqlite3.ErrBusy || sqlErr.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("%w: %w", tournament.ErrStoreBusy, err)
	}
	return err
}

// SaveState replaces the stored state as a whole.
func (d *DB) SaveState(ctx context.Context, state *roster.State) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&Competitor{}, &Category{}, &RingMapping{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}

		cfg := TournamentConfig{
			ID:        configRowID,
			Version:   state.Version,
			Name:      state.Config.Name,
			Date:      state.Config.Date,
			Location:  state.Config.Location,
			Divisions: state.Config.Divisions,
		}
		if err := tx.Save(&cfg).Error; err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		if len(state.Competitors) != 0 {
			comps := make([]Competitor, len(state.Competitors))
			for i, c := range state.Competitors {
				comps[i] = competitorFromRoster(i, c)
			}
			if err := tx.Create(&comps).Error; err != nil {
				return fmt.Errorf("create competitors: %w", err)
			}
		}
		if len(state.Categories) != 0 {
			cats := make([]Category, len(state.Categories))
			for i, c := range state.Categories {
				cats[i] = categoryFromRoster(i, c)
			}
			if err := tx.Create(&cats).Error; err != nil {
				return fmt.Errorf("create categories: %w", err)
			}
		}
		if len(state.RingMappings) != 0 {
			mappings := make([]RingMapping, len(state.RingMappings))
			for i, m := range state.RingMappings {
				mappings[i] = RingMapping{
					Position:     i,
					CategoryID:   m.CategoryID,
					Pool:         m.Pool,
					PhysicalRing: m.PhysicalRing,
				}
			}
			if err := tx.Create(&mappings).Error; err != nil {
				return fmt.Errorf("create ring mappings: %w", err)
			}
		}
		return nil
	})
	return markBusy(err)
}

func (d *DB) CreateCheckpoint(ctx context.Context, cp *checkpoint.Checkpoint) error {
	err := d.db.WithContext(ctx).Create(&Checkpoint{
		ID:             cp.ID,
		Name:           cp.Name,
		CreatedAt:      timeutil.FromTime(cp.CreatedAt),
		NumCompetitors: cp.NumCompetitors(),
		State:          cp.State(),
	}).Error
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	return nil
}

func (d *DB) GetCheckpoint(ctx context.Context, checkpointID string) (*checkpoint.Checkpoint, error) {
	var cps []Checkpoint
	err := d.db.WithContext(ctx).Where("id = ?", checkpointID).Limit(1).Find(&cps).Error
	if err != nil {
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	if len(cps) == 0 {
		return nil, tournament.ErrNoSuchCheckpoint
	}
	cp := cps[0]
	return checkpoint.New(cp.ID, cp.Name, cp.CreatedAt.UTC(), cp.State), nil
}

func (d *DB) ListCheckpoints(ctx context.Context) ([]checkpoint.Info, error) {
	var cps []Checkpoint
	err := d.db.WithContext(ctx).
		Select("id", "name", "created_at", "num_competitors").
		Order("created_at DESC").
		Find(&cps).Error
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return sliceutil.Map(cps, func(cp Checkpoint) checkpoint.Info {
		return checkpoint.Info{
			ID:             cp.ID,
			Name:           cp.Name,
			CreatedAt:      cp.CreatedAt.UTC(),
			NumCompetitors: cp.NumCompetitors,
		}
	}), nil
}

func (d *DB) DeleteCheckpoint(ctx context.Context, checkpointID string) error {
	res := d.db.WithContext(ctx).Delete(&Checkpoint{ID: checkpointID})
	if err := res.Error; err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	if res.RowsAffected == 0 {
		return tournament.ErrNoSuchCheckpoint
	}
	return nil
}
