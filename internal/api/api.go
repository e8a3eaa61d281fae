package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alanjwade/tournament-manager-sub000/internal/bracket"
	"github.com/alanjwade/tournament-manager-sub000/internal/checkpoint"
	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
)

type ErrorCode int

const (
	ErrInvalidCode ErrorCode = iota
	ErrBadRequest
	ErrNotFound
	ErrConflict
	ErrUnsupported
	ErrRateLimited
	ErrMethodNotAllowed
)

func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	case ErrUnsupported:
		return http.StatusUnprocessableEntity
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func MatchesError(err error, code ErrorCode) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %v: %v", e.Code, e.Message)
}

var _ error = (*Error)(nil)

type Member struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	School   string          `json:"school,omitempty"`
	Rank     *int            `json:"rank,omitempty"`
	SubGroup roster.SubGroup `json:"subgroup,omitempty"`
}

func memberFromCompetitor(c roster.Competitor, t roster.CompetitionType) Member {
	e := c.Entry(t)
	return Member{
		ID:       c.ID,
		Name:     c.FullName(),
		School:   c.School,
		Rank:     e.Rank,
		SubGroup: e.SubGroup,
	}
}

type RingInfo struct {
	ring.Ring
	Ident     ring.Ident        `json:"ident"`
	SubGroups []roster.SubGroup `json:"subgroups,omitempty"`
}

type RingsRequest struct{}

type RingsResponse struct {
	Rings []RingInfo `json:"rings"`
}

// Ring fields below carry the ring identifier in its wire form, e.g.
// "Beginner - Mixed 8-10 Pool 1_sparring_a".

type OrderRequest struct {
	Ring string `json:"ring" validate:"required"`
}

type OrderResponse struct {
	Members []Member `json:"members"`
}

type BracketRequest struct {
	Ring string `json:"ring" validate:"required"`
}

type BracketResponse struct {
	Bracket *bracket.Bracket `json:"bracket"`
}

type ListCheckpointsRequest struct{}

type ListCheckpointsResponse struct {
	Checkpoints []checkpoint.Info `json:"checkpoints"`
}

type CreateCheckpointRequest struct {
	Name string `json:"name" validate:"max=128"`
}

type CreateCheckpointResponse struct {
	Checkpoint checkpoint.Info `json:"checkpoint"`
}

type CheckpointRequest struct {
	ID string `json:"-" validate:"required"`
}

func (r *CheckpointRequest) bindPath(req *http.Request) {
	r.ID = req.PathValue("id")
}

type DiffResponse struct {
	Diff *checkpoint.Diff `json:"diff"`
}

type EmptyResponse struct{}

type HistoryRequest struct{}

type HistoryResponse struct {
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// The competitor is validated by the keeper as part of the whole roster, since an empty id
// means a new competitor.
type UpsertCompetitorRequest struct {
	Competitor roster.Competitor `json:"competitor" validate:"-"`
}

type UpsertCompetitorResponse struct {
	Competitor roster.Competitor `json:"competitor"`
}

type CompetitorRequest struct {
	ID string `json:"-" validate:"required"`
}

func (r *CompetitorRequest) bindPath(req *http.Request) {
	r.ID = req.PathValue("id")
}

type EntryRequest struct {
	ID   string                 `json:"-" validate:"required"`
	Type roster.CompetitionType `json:"type"`
}

func (r *EntryRequest) bindPath(req *http.Request) {
	r.ID = req.PathValue("id")
}

type SubGroupRequest struct {
	ID       string          `json:"-" validate:"required"`
	SubGroup roster.SubGroup `json:"subgroup" validate:"omitempty,oneof=a b"`
}

func (r *SubGroupRequest) bindPath(req *http.Request) {
	r.ID = req.PathValue("id")
}
