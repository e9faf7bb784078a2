package api

import (
	"context"
	"net/http"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
)

// ContestantDependencies lists contestants.
type ContestantDependencies interface {
	Contestants(ctx context.Context, f repository.Filter) ([]model.Contestant, error)
}

// ContestantsHandler handles contestant requests.
type ContestantsHandler struct {
	deps ContestantDependencies
}

// NewContestantsHandler creates a new contestants handler.
func NewContestantsHandler(deps ContestantDependencies) *ContestantsHandler {
	return &ContestantsHandler{deps: deps}
}

// HandleListContestants handles GET /contestants.
func (h *ContestantsHandler) HandleListContestants(w http.ResponseWriter, r *http.Request) {
	contestants, err := h.deps.Contestants(r.Context(), filterFromQuery(r))
	if err != nil {
		writeFailure(w, Wrap("api.list_contestants", err))
		return
	}
	writeJSON(w, http.StatusOK, contestants)
}
