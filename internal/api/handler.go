package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alanjwade/tournament-manager-sub000/internal/bracket"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/tournament"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/httputil"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/slogx"
)

const busyRetryAfter = 2 * time.Second

type pathBinder interface {
	bindPath(req *http.Request)
}

func toAPIError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var code ErrorCode
	switch {
	case errors.Is(err, tournament.ErrNoSuchRing),
		errors.Is(err, tournament.ErrNoSuchCompetitor),
		errors.Is(err, tournament.ErrNoSuchCheckpoint):
		code = ErrNotFound
	case errors.Is(err, tournament.ErrNothingToUndo),
		errors.Is(err, tournament.ErrNothingToRedo),
		errors.Is(err, tournament.ErrNotCompeting):
		code = ErrConflict
	case errors.Is(err, bracket.ErrUnsupportedSize),
		errors.Is(err, roster.ErrInvalid):
		code = ErrUnsupported
	default:
		return nil
	}
	return &Error{Code: code, Message: err.Error()}
}

func describeValidation(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%v: failed %q", e.Field(), e.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn("error marshalling json", slogx.Err(err))
		if err := httputil.WriteErrorResponse(fmt.Errorf("marshal json"), w); err != nil {
			log.Info("error writing error response", slogx.Err(err))
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		log.Info("error writing response", slogx.Err(err))
	}
}

func makeHandler[Req any, Rsp any](
	log *slog.Logger,
	o *Options,
	fn func(context.Context, *slog.Logger, *Req) (*Rsp, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, hReq *http.Request) {
		log := log.With(slog.String("rid", httputil.ExtractReqID(hReq.Context())))

		if err := func() error {
			req := new(Req)
			if hReq.Method != http.MethodGet {
				reqBytes, err := io.ReadAll(http.MaxBytesReader(w, hReq.Body, o.MaxBodySize))
				if err != nil {
					log.Info("error reading request", slogx.Err(err))
					return &Error{Code: ErrBadRequest, Message: "cannot read request body"}
				}
				if len(bytes.TrimSpace(reqBytes)) != 0 {
					if err := json.Unmarshal(reqBytes, req); err != nil {
						log.Warn("error unmarshalling json", slogx.Err(err))
						return &Error{Code: ErrBadRequest, Message: "unmarshal json request"}
					}
				}
			}
			if b, ok := any(req).(pathBinder); ok {
				b.bindPath(hReq)
			}
			if err := roster.Validator().Struct(req); err != nil {
				return &Error{Code: ErrBadRequest, Message: describeValidation(err)}
			}

			rsp, err := fn(hReq.Context(), log, req)
			if err != nil {
				if errors.Is(err, tournament.ErrStoreBusy) {
					log.Warn("store busy", slogx.Err(err))
					return httputil.MakeRetryError(http.StatusServiceUnavailable, "tournament store is busy", busyRetryAfter)
				}
				if apiErr := toAPIError(err); apiErr != nil {
					log.Info("request rejected", slogx.Err(err))
					return apiErr
				}
				log.Warn("handler failed", slogx.Err(err))
				return httputil.MakeError(http.StatusInternalServerError, "internal server error")
			}
			writeJSON(log, w, http.StatusOK, rsp)
			return nil
		}(); err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) {
				writeJSON(log, w, apiErr.Code.HTTPStatus(), apiErr)
				return
			}
			if err := httputil.WriteErrorResponse(err, w); err != nil {
				log.Info("error writing error response", slogx.Err(err))
			}
		}
	}
}
