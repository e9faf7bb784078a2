// Package rubric holds the per-category judging criteria and grades raw
// criterion maps against them.
package rubric

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/tally/internal/domain/model"
)

// Criterion is one scored aspect of a rubric.
type Criterion struct {
	ID          string  `json:"id" yaml:"id" koanf:"id" validate:"required"`
	Label       string  `json:"label" yaml:"label" koanf:"label"`
	Description string  `json:"description" yaml:"description" koanf:"description"`
	MaxScore    float64 `json:"max_score" yaml:"max_score" koanf:"max_score" validate:"gt=0"`
}

// Rubric is the ordered list of criteria for one category.
type Rubric struct {
	Category model.Category `json:"category" yaml:"category"`
	Criteria []Criterion    `json:"criteria" yaml:"criteria"`
}

// Grade is the outcome of applying a rubric to raw criterion values.
// Values holds the clamped value of every known criterion.
type Grade struct {
	Values  map[string]float64
	Total   float64
	Clamped []string
	Unknown []string
}

// MaxTotal returns the sum of the criterion maxima.
func (r Rubric) MaxTotal() float64 {
	var total float64
	for _, c := range r.Criteria {
		total += c.MaxScore
	}
	return total
}

// Criterion looks up a criterion by id.
func (r Rubric) Criterion(id string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// Validate checks that the rubric has uniquely named criteria with positive
// maxima.
func (r Rubric) Validate() error {
	if r.Category == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidRubric)
	}
	if len(r.Criteria) == 0 {
		return fmt.Errorf("%w: %q has no criteria", ErrInvalidRubric, r.Category)
	}
	seen := make(map[string]struct{}, len(r.Criteria))
	for _, c := range r.Criteria {
		if c.ID == "" {
			return fmt.Errorf("%w: %q has a criterion without id", ErrInvalidRubric, r.Category)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: %q repeats criterion %q", ErrInvalidRubric, r.Category, c.ID)
		}
		if c.MaxScore <= 0 || math.IsNaN(c.MaxScore) || math.IsInf(c.MaxScore, 0) {
			return fmt.Errorf("%w: %q criterion %q has max %v", ErrInvalidRubric, r.Category, c.ID, c.MaxScore)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// Grade applies the rubric strictly: every criterion must be present, no
// unknown ids are allowed and values must be numbers. Out-of-range values
// are clamped to [0, max] and reported in Clamped.
func (r Rubric) Grade(raw map[string]float64) (Grade, error) {
	for id, v := range raw {
		if _, ok := r.Criterion(id); !ok {
			return Grade{}, fmt.Errorf("%w: %q for %q", ErrUnknownCriterion, id, r.Category)
		}
		if math.IsNaN(v) {
			return Grade{}, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, id)
		}
	}
	for _, c := range r.Criteria {
		if _, ok := raw[c.ID]; !ok {
			return Grade{}, fmt.Errorf("%w: %q for %q", ErrMissingCriterion, c.ID, r.Category)
		}
	}
	return r.Clamp(raw), nil
}

// Clamp applies the rubric leniently. Unknown ids are reported and ignored,
// missing criteria count as zero and NaN counts as zero.
func (r Rubric) Clamp(raw map[string]float64) Grade {
	g := Grade{Values: make(map[string]float64, len(r.Criteria))}
	for _, c := range r.Criteria {
		v, ok := raw[c.ID]
		if !ok {
			g.Values[c.ID] = 0
			continue
		}
		clamped := clamp(v, c.MaxScore)
		if clamped != v {
			g.Clamped = append(g.Clamped, c.ID)
		}
		g.Values[c.ID] = clamped
		g.Total += clamped
	}
	for id := range raw {
		if _, ok := r.Criterion(id); !ok {
			g.Unknown = append(g.Unknown, id)
		}
	}
	sort.Strings(g.Unknown)
	return g
}

func clamp(v, maxScore float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > maxScore:
		return maxScore
	default:
		return v
	}
}
