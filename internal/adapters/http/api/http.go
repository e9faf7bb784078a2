// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreDependencies
	ContestantDependencies
	RubricDependencies
	RankingDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoresHandler      *ScoresHandler
	contestantsHandler *ContestantsHandler
	rubricsHandler     *RubricsHandler
	rankingsHandler    *RankingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		scoresHandler:      NewScoresHandler(deps),
		contestantsHandler: NewContestantsHandler(deps),
		rubricsHandler:     NewRubricsHandler(deps),
		rankingsHandler:    NewRankingsHandler(deps),
	}
}

// Routes returns a chi.Router with every API route mounted.
func (s *Server) Routes(_ context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Post("/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	r.Get("/scores", MetricsMiddleware(s.scoresHandler.HandleListScores, "scores"))
	r.Get("/contestants", MetricsMiddleware(s.contestantsHandler.HandleListContestants, "contestants"))

	r.Get("/rubrics", MetricsMiddleware(s.rubricsHandler.HandleListRubrics, "rubrics"))
	r.Get("/rubrics/{category}", MetricsMiddleware(s.rubricsHandler.HandleGetRubric, "rubric"))
	r.Get("/deductions/{category}", MetricsMiddleware(s.rubricsHandler.HandleGetDeduction, "deductions"))

	r.Get("/classifications", MetricsMiddleware(s.rankingsHandler.HandleListClassifications, "classifications"))
	r.Get("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	r.Get("/standings", MetricsMiddleware(s.rankingsHandler.HandleGetStandings, "standings"))
	return r
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

// writeFailure maps err to a status and error code. Client input errors
// are checked before configuration errors since the service wraps an
// unknown classification in the request it came from.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, types.ErrInvalidRequest),
		errors.Is(err, repository.ErrInvalidContestant),
		errors.Is(err, repository.ErrInvalidScore):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrUnknownCategory),
		errors.Is(err, model.ErrUnknownClassification):
		return http.StatusInternalServerError, "configuration_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
