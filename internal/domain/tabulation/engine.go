// Package tabulation ranks contestants within a classification triple and
// aggregates the ranks into division points and overall standings.
//
// Ranking policy: contestants are ordered by highest average final score,
// then lowest sum of per-judge ranks, then highest single-judge final
// score. Contestants equal on all three keep their input order. Unscored
// contestants sort after scored ones with the same average.
//
// The engine is a pure function of its inputs. It holds only configuration,
// performs no I/O and is safe for concurrent use.
package tabulation

import (
	"fmt"
	"math"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
)

// scoreScale fixes finals and averages to six decimal places so ranking
// compares them exactly.
const scoreScale = 1e6

func roundScore(v float64) float64 {
	return math.Round(v*scoreScale) / scoreScale
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRubrics sets the rubric book used to re-check submitted values.
func WithRubrics(book rubric.Book) Option {
	return func(e *Engine) {
		if book != nil {
			e.rubrics = book
		}
	}
}

// WithClassifications sets the enumerations iterated by Overall, in order.
func WithClassifications(categories []model.Category, levels []model.Level, mediums []model.Medium) Option {
	return func(e *Engine) {
		if len(categories) > 0 {
			e.categories = append([]model.Category(nil), categories...)
		}
		if len(levels) > 0 {
			e.levels = append([]model.Level(nil), levels...)
		}
		if len(mediums) > 0 {
			e.mediums = append([]model.Medium(nil), mediums...)
		}
	}
}

// WithPointsCutoff limits division points to the top n ranks of each
// triple. Zero or less means every contestant contributes.
func WithPointsCutoff(n int) Option {
	return func(e *Engine) {
		if n < 0 {
			n = 0
		}
		e.cutoff = n
	}
}

// Engine tabulates snapshots of contestants and score entries.
type Engine struct {
	rubrics    rubric.Book
	categories []model.Category
	levels     []model.Level
	mediums    []model.Medium
	cutoff     int
}

// NewEngine builds an engine. Every configured category must have a rubric.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		rubrics:    rubric.DefaultBook(),
		categories: model.Categories(),
		levels:     model.Levels(),
		mediums:    model.Mediums(),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, c := range e.categories {
		if _, err := e.rubrics.Lookup(c); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}
	return e, nil
}

// PointsCutoff returns the configured cutoff; zero means none.
func (e *Engine) PointsCutoff() int {
	return e.cutoff
}

// Classifications returns every configured triple in iteration order.
func (e *Engine) Classifications() []model.Classification {
	out := make([]model.Classification, 0, len(e.categories)*len(e.levels)*len(e.mediums))
	for _, c := range e.categories {
		for _, l := range e.levels {
			for _, m := range e.mediums {
				out = append(out, model.Classification{Category: c, Level: l, Medium: m})
			}
		}
	}
	return out
}

// Configured reports whether class belongs to the configured enumerations.
func (e *Engine) Configured(class model.Classification) bool {
	return contains(e.categories, class.Category) &&
		contains(e.levels, class.Level) &&
		contains(e.mediums, class.Medium)
}

func contains[T comparable](s []T, v T) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
