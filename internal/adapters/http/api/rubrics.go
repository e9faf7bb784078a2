package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
	"github.com/okian/tally/internal/domain/types"
)

// RubricDependencies exposes the event's scoring rules.
type RubricDependencies interface {
	Rubric(category model.Category) (rubric.Rubric, error)
	Rubrics() []rubric.Rubric
	Deduction(category model.Category, elapsed int) (types.DeductionQuote, error)
}

// RubricsHandler handles rubric and deduction lookups.
type RubricsHandler struct {
	deps RubricDependencies
}

// NewRubricsHandler creates a new rubrics handler.
func NewRubricsHandler(deps RubricDependencies) *RubricsHandler {
	return &RubricsHandler{deps: deps}
}

// HandleListRubrics handles GET /rubrics.
func (h *RubricsHandler) HandleListRubrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Rubrics())
}

// HandleGetRubric handles GET /rubrics/{category}.
func (h *RubricsHandler) HandleGetRubric(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rubric"
	category, err := categoryParam(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	rb, err := h.deps.Rubric(category)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rubricResponse{Rubric: rb, MaxTotal: rb.MaxTotal()})
}

// HandleGetDeduction handles GET /deductions/{category}?seconds=N.
func (h *RubricsHandler) HandleGetDeduction(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_deduction"
	category, err := categoryParam(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	seconds, err := intQuery(r, "seconds", 0)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	q, err := h.deps.Deduction(category, seconds)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type rubricResponse struct {
	rubric.Rubric
	MaxTotal float64 `json:"max_total"`
}

// categoryParam reads the {category} segment. Category names carry spaces
// and ampersands, so the raw segment is unescaped.
func categoryParam(r *http.Request) (model.Category, error) {
	v, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil {
		return "", err
	}
	return model.Category(v), nil
}
