package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/types"
)

// RankingDependencies defines tabulation reads.
type RankingDependencies interface {
	Rankings(ctx context.Context, class model.Classification) (types.RankingReport, error)
	Standings(ctx context.Context) (types.StandingsReport, error)
	Classifications() []model.Classification
}

// RankingsHandler handles ranking and standings requests.
type RankingsHandler struct {
	deps RankingDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleGetRankings handles GET /rankings?category=&level=&medium=.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class := model.Classification{
		Category: model.Category(q.Get("category")),
		Level:    model.Level(q.Get("level")),
		Medium:   model.Medium(q.Get("medium")),
	}
	report, err := h.deps.Rankings(r.Context(), class)
	if err != nil {
		writeFailure(w, Wrap("api.get_rankings", err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleGetStandings handles GET /standings.
func (h *RankingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.Standings(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.get_standings", err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleListClassifications handles GET /classifications.
func (h *RankingsHandler) HandleListClassifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Classifications())
}

func intQuery(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("query %q: %w", key, err)
	}
	return n, nil
}
