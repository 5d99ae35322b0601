package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"effectjack/server/blackjack"
	"effectjack/server/engine"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type api struct {
	svc *blackjack.Service
	log *zap.Logger
}

func Router(svc *blackjack.Service, log *zap.Logger) http.Handler {
	a := &api{svc: svc, log: log}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Get("/status", a.status)

	r.Route("/blackjack", func(r chi.Router) {
		r.Post("/", a.startGame)
		r.Get("/{gameId}", a.getState)
		r.Post("/{gameId}/{action}", a.act)
	})
	return r
}

func (a *api) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (a *api) status(w http.ResponseWriter, r *http.Request) {
	ok := true
	if err := a.svc.Ping(r.Context()); err != nil {
		a.log.Warn("store ping failed", zap.Error(err))
		ok = false
	}
	writeJSON(w, http.StatusOK, map[string]bool{"Database": ok})
}

func (a *api) startGame(w http.ResponseWriter, r *http.Request) {
	var req blackjack.StartGameRequest
	// an empty body, chunked or not, means all defaults
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.fail(w, engine.Wrap(engine.CodeInvalidArgument, "malformed request body", err))
		return
	}
	v, err := a.svc.StartGame(r.Context(), req)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (a *api) getState(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		a.fail(w, err)
		return
	}
	v, err := a.svc.GetState(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *api) act(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		a.fail(w, err)
		return
	}

	var v blackjack.GameView
	switch action := chi.URLParam(r, "action"); action {
	case "bet":
		var body struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			a.fail(w, engine.Wrap(engine.CodeInvalidArgument, "malformed bet body", err))
			return
		}
		v, err = a.svc.PlaceBet(r.Context(), id, body.Amount)
	case "hit":
		v, err = a.svc.Hit(r.Context(), id)
	case "stand":
		v, err = a.svc.Stand(r.Context(), id)
	default:
		err = engine.Errorf(engine.CodeInvalidArgument, "unknown action %q (want bet, hit or stand)", action)
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func gameID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "gameId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, engine.Wrap(engine.CodeInvalidArgument, "invalid game id "+raw, err)
	}
	return id, nil
}

func httpStatus(code engine.Code) int {
	switch code {
	case engine.CodePhaseViolation, engine.CodeInvalidBet, engine.CodeInvalidArgument:
		return http.StatusBadRequest
	case engine.CodeNotFound:
		return http.StatusNotFound
	case engine.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (a *api) fail(w http.ResponseWriter, err error) {
	code := engine.CodeOf(err)
	status := httpStatus(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.log.Error("request failed", zap.Error(err))
		var de *engine.Error
		if !errors.As(err, &de) {
			code, msg = "INTERNAL", "internal error"
		}
	}
	writeJSON(w, status, map[string]string{"error": msg, "code": string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
