package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/types"
)

const maxBodyBytes = 1 << 20

// ScoreDependencies defines score intake and listing.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, sub types.ScoreSubmission) (types.ScoreReceipt, error)
	Scores(ctx context.Context, f repository.Filter) ([]model.ScoreEntry, error)
}

// ScoresHandler handles score requests.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandlePostScore handles POST /scores. A new sheet answers 201, a
// replaced one 200.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	var req types.ScoreSubmission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	receipt, err := h.deps.SubmitScore(r.Context(), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	status := http.StatusCreated
	if receipt.Replaced {
		status = http.StatusOK
	}
	writeJSON(w, status, receipt)
}

// HandleListScores handles GET /scores.
func (h *ScoresHandler) HandleListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.deps.Scores(r.Context(), filterFromQuery(r))
	if err != nil {
		writeFailure(w, Wrap("api.list_scores", err))
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func filterFromQuery(r *http.Request) repository.Filter {
	q := r.URL.Query()
	return repository.Filter{
		Category:     model.Category(q.Get("category")),
		Level:        model.Level(q.Get("level")),
		Medium:       model.Medium(q.Get("medium")),
		Division:     q.Get("division"),
		ContestantID: q.Get("contestant_id"),
		JudgeID:      q.Get("judge_id"),
	}
}
