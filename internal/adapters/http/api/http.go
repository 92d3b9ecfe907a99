// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/letokens/internal/app"
	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/projection"
	"github.com/okian/letokens/internal/domain/report"
	"github.com/okian/letokens/internal/domain/tokens"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	ProgressDependencies
	PlanDependencies
	BattleDependencies
	TokenDependencies
	ProjectionDependencies
	StatsProvider
}

// ProgressDependencies stores submitted progress.
type ProgressDependencies interface {
	SubmitProgress(ctx context.Context, submissionID string, snap report.Snapshot) (service.Submission, error)
}

// PlanDependencies builds and reads plans.
type PlanDependencies interface {
	Report(ctx context.Context, userID string) (report.Report, error)
	BuildReport(ctx context.Context, snap report.Snapshot) (report.Report, bool, error)
}

// BattleDependencies answers set-cover questions.
type BattleDependencies interface {
	MinimumTokens(ctx context.Context, teams []model.Team, track string, battle int) (int, bool)
}

// TokenDependencies exposes the token clock.
type TokenDependencies interface {
	TokenSummary(premiums []bool) tokens.Summary
	TokenIteration(index, used int, premiums []bool) (int, bool)
}

// ProjectionDependencies runs the milestone cascade.
type ProjectionDependencies interface {
	Project(in projection.Input, totalPoints int) (model.EventProgress, projection.Goal, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	progressHandler   *ProgressHandler
	planHandler       *PlanHandler
	battleHandler     *BattleHandler
	tokensHandler     *TokensHandler
	projectionHandler *ProjectionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		progressHandler:   NewProgressHandler(deps),
		planHandler:       NewPlanHandler(deps),
		battleHandler:     NewBattleHandler(deps),
		tokensHandler:     NewTokensHandler(deps),
		projectionHandler: NewProjectionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/progress", MetricsMiddleware(s.progressHandler.HandlePostProgress, "progress"))
	mux.HandleFunc("/plan", MetricsMiddleware(s.planHandler.HandlePostPlan, "plan"))
	mux.HandleFunc("/plan/", MetricsMiddleware(s.planHandler.HandleGetPlan, "plan_user"))
	mux.HandleFunc("/battles/minimum-tokens", MetricsMiddleware(s.battleHandler.HandleMinimumTokens, "minimum_tokens"))
	mux.HandleFunc("/tokens", MetricsMiddleware(s.tokensHandler.HandleGetTokens, "tokens"))
	mux.HandleFunc("/projection", MetricsMiddleware(s.projectionHandler.HandlePostProjection, "projection"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service error kinds to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
