package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanjwade/tournament-manager-sub000/internal/bracket"
	"github.com/alanjwade/tournament-manager-sub000/internal/checkpoint"
	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/tournament"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/sliceutil"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/slogx"
)

// Keeper is the part of tournament.Keeper served over HTTP.
type Keeper interface {
	State() roster.State
	CanUndo() (undo bool, redo bool)
	Undo(ctx context.Context) error
	Redo(ctx context.Context) error
	UpsertCompetitor(ctx context.Context, c roster.Competitor) (roster.Competitor, error)
	DeleteCompetitor(ctx context.Context, competitorID string) error
	Withdraw(ctx context.Context, competitorID string, t roster.CompetitionType) error
	Reinstate(ctx context.Context, competitorID string, t roster.CompetitionType) error
	SetSubGroup(ctx context.Context, competitorID string, sub roster.SubGroup) error
	Rings() []ring.Ring
	Ring(name string, t roster.CompetitionType) (ring.Ring, []roster.Competitor, error)
	OrderRing(ctx context.Context, key ring.Key) ([]roster.Competitor, error)
	Bracket(key ring.Key, sub roster.SubGroup) (*bracket.Bracket, error)
	CreateCheckpoint(ctx context.Context, name string) (checkpoint.Info, error)
	ListCheckpoints(ctx context.Context) ([]checkpoint.Info, error)
	DiffCheckpoint(ctx context.Context, checkpointID string) (*checkpoint.Diff, error)
	RestoreCheckpoint(ctx context.Context, checkpointID string) error
	DeleteCheckpoint(ctx context.Context, checkpointID string) error
}

var _ Keeper = (*tournament.Keeper)(nil)

type Options struct {
	RateLimit   float64 `toml:"rate-limit"`
	RateBurst   int     `toml:"rate-burst"`
	MaxBodySize int64   `toml:"max-body-size"`
	NoCompress  bool    `toml:"no-compress"`
}

func (o *Options) FillDefaults() {
	if o.RateLimit == 0 {
		o.RateLimit = 20
	}
	if o.RateBurst == 0 {
		o.RateBurst = 40
	}
	if o.MaxBodySize == 0 {
		o.MaxBodySize = 4 << 20
	}
}

type server struct {
	k Keeper
}

func parseRing(s string) (ring.Ident, error) {
	id, err := ring.ParseIdent(s)
	if err != nil {
		return ring.Ident{}, &Error{Code: ErrBadRequest, Message: err.Error()}
	}
	return id, nil
}

// ringKey resolves a wire identifier to the key of the ring, narrowed to the sparring
// sub-group the identifier names.
func (s *server) ringKey(rawIdent string) (ring.Key, ring.Ident, error) {
	id, err := parseRing(rawIdent)
	if err != nil {
		return ring.Key{}, ring.Ident{}, err
	}
	r, _, err := s.k.Ring(id.Name, id.Type)
	if err != nil {
		return ring.Key{}, ring.Ident{}, err
	}
	return r.Key.WithSubGroup(id.SubGroup), id, nil
}

func (s *server) Rings(_ context.Context, _ *slog.Logger, _ *RingsRequest) (*RingsResponse, error) {
	state := s.k.State()
	rings := s.k.Rings()
	return &RingsResponse{
		Rings: sliceutil.Map(rings, func(r ring.Ring) RingInfo {
			return RingInfo{
				Ring:      r,
				Ident:     r.Ident(),
				SubGroups: ring.SubGroups(&r, state.Competitors),
			}
		}),
	}, nil
}

func (s *server) Order(ctx context.Context, log *slog.Logger, req *OrderRequest) (*OrderResponse, error) {
	key, id, err := s.ringKey(req.Ring)
	if err != nil {
		return nil, err
	}
	ranked, err := s.k.OrderRing(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("order ring: %w", err)
	}
	log.Info("ring ordered", slogx.Ring(id), slog.Int("members", len(ranked)))
	members := sliceutil.Map(ranked, func(c roster.Competitor) Member {
		return memberFromCompetitor(c, id.Type)
	})
	return &OrderResponse{Members: members}, nil
}

func (s *server) Bracket(_ context.Context, _ *slog.Logger, req *BracketRequest) (*BracketResponse, error) {
	key, id, err := s.ringKey(req.Ring)
	if err != nil {
		return nil, err
	}
	if id.Type != roster.TypeSparring {
		return nil, &Error{Code: ErrBadRequest, Message: "brackets exist only for sparring rings"}
	}
	b, err := s.k.Bracket(key.WithSubGroup(roster.SubGroupNone), id.SubGroup)
	if err != nil {
		return nil, err
	}
	return &BracketResponse{Bracket: b}, nil
}

func (s *server) ListCheckpoints(ctx context.Context, _ *slog.Logger, _ *ListCheckpointsRequest) (*ListCheckpointsResponse, error) {
	infos, err := s.k.ListCheckpoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	if infos == nil {
		infos = []checkpoint.Info{}
	}
	return &ListCheckpointsResponse{Checkpoints: infos}, nil
}

func (s *server) CreateCheckpoint(ctx context.Context, _ *slog.Logger, req *CreateCheckpointRequest) (*CreateCheckpointResponse, error) {
	info, err := s.k.CreateCheckpoint(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return &CreateCheckpointResponse{Checkpoint: info}, nil
}

func (s *server) DiffCheckpoint(ctx context.Context, _ *slog.Logger, req *CheckpointRequest) (*DiffResponse, error) {
	d, err := s.k.DiffCheckpoint(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &DiffResponse{Diff: d}, nil
}

func (s *server) RestoreCheckpoint(ctx context.Context, _ *slog.Logger, req *CheckpointRequest) (*HistoryResponse, error) {
	if err := s.k.RestoreCheckpoint(ctx, req.ID); err != nil {
		return nil, err
	}
	return s.history(), nil
}

func (s *server) DeleteCheckpoint(ctx context.Context, _ *slog.Logger, req *CheckpointRequest) (*EmptyResponse, error) {
	if err := s.k.DeleteCheckpoint(ctx, req.ID); err != nil {
		return nil, err
	}
	return &EmptyResponse{}, nil
}

func (s *server) history() *HistoryResponse {
	undo, redo := s.k.CanUndo()
	return &HistoryResponse{CanUndo: undo, CanRedo: redo}
}

func (s *server) History(_ context.Context, _ *slog.Logger, _ *HistoryRequest) (*HistoryResponse, error) {
	return s.history(), nil
}

func (s *server) Undo(ctx context.Context, _ *slog.Logger, _ *HistoryRequest) (*HistoryResponse, error) {
	if err := s.k.Undo(ctx); err != nil {
		return nil, err
	}
	return s.history(), nil
}

func (s *server) Redo(ctx context.Context, _ *slog.Logger, _ *HistoryRequest) (*HistoryResponse, error) {
	if err := s.k.Redo(ctx); err != nil {
		return nil, err
	}
	return s.history(), nil
}

func (s *server) UpsertCompetitor(ctx context.Context, _ *slog.Logger, req *UpsertCompetitorRequest) (*UpsertCompetitorResponse, error) {
	c, err := s.k.UpsertCompetitor(ctx, req.Competitor)
	if err != nil {
		return nil, err
	}
	return &UpsertCompetitorResponse{Competitor: c}, nil
}

func (s *server) DeleteCompetitor(ctx context.Context, _ *slog.Logger, req *CompetitorRequest) (*EmptyResponse, error) {
	if err := s.k.DeleteCompetitor(ctx, req.ID); err != nil {
		return nil, err
	}
	return &EmptyResponse{}, nil
}

func (s *server) Withdraw(ctx context.Context, _ *slog.Logger, req *EntryRequest) (*EmptyResponse, error) {
	if err := s.k.Withdraw(ctx, req.ID, req.Type); err != nil {
		return nil, err
	}
	return &EmptyResponse{}, nil
}

func (s *server) Reinstate(ctx context.Context, _ *slog.Logger, req *EntryRequest) (*EmptyResponse, error) {
	if err := s.k.Reinstate(ctx, req.ID, req.Type); err != nil {
		return nil, err
	}
	return &EmptyResponse{}, nil
}

func (s *server) SetSubGroup(ctx context.Context, _ *slog.Logger, req *SubGroupRequest) (*EmptyResponse, error) {
	if err := s.k.SetSubGroup(ctx, req.ID, req.SubGroup); err != nil {
		return nil, err
	}
	return &EmptyResponse{}, nil
}

// Handle registers the API routes under prefix, plus the metrics endpoint at /metrics.
func Handle(log *slog.Logger, mux *http.ServeMux, prefix string, k Keeper, reg *prometheus.Registry, o Options) {
	o.FillDefaults()
	s := &server{k: k}
	b := newMiddlewareBuilder(log, reg, &o)

	route := func(pattern, name string, h http.Handler) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.Handle(method+" "+prefix+path, b.wrap(h, name))
	}
	hlog := func(name string) *slog.Logger { return log.With(slog.String("handler", name)) }

	route("GET /rings", "rings", makeHandler(hlog("rings"), &o, s.Rings))
	route("POST /rings/order", "order", makeHandler(hlog("order"), &o, s.Order))
	route("POST /bracket", "bracket", makeHandler(hlog("bracket"), &o, s.Bracket))
	route("GET /checkpoints", "list_checkpoints", makeHandler(hlog("list_checkpoints"), &o, s.ListCheckpoints))
	route("POST /checkpoints", "create_checkpoint", makeHandler(hlog("create_checkpoint"), &o, s.CreateCheckpoint))
	route("GET /checkpoints/{id}/diff", "diff_checkpoint", makeHandler(hlog("diff_checkpoint"), &o, s.DiffCheckpoint))
	route("POST /checkpoints/{id}/restore", "restore_checkpoint", makeHandler(hlog("restore_checkpoint"), &o, s.RestoreCheckpoint))
	route("DELETE /checkpoints/{id}", "delete_checkpoint", makeHandler(hlog("delete_checkpoint"), &o, s.DeleteCheckpoint))
	route("GET /history", "history", makeHandler(hlog("history"), &o, s.History))
	route("POST /undo", "undo", makeHandler(hlog("undo"), &o, s.Undo))
	route("POST /redo", "redo", makeHandler(hlog("redo"), &o, s.Redo))
	route("POST /competitors", "upsert_competitor", makeHandler(hlog("upsert_competitor"), &o, s.UpsertCompetitor))
	route("DELETE /competitors/{id}", "delete_competitor", makeHandler(hlog("delete_competitor"), &o, s.DeleteCompetitor))
	route("POST /competitors/{id}/withdraw", "withdraw", makeHandler(hlog("withdraw"), &o, s.Withdraw))
	route("POST /competitors/{id}/reinstate", "reinstate", makeHandler(hlog("reinstate"), &o, s.Reinstate))
	route("POST /competitors/{id}/subgroup", "subgroup", makeHandler(hlog("subgroup"), &o, s.SetSubGroup))

	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
}
