// Package scoring turns one judge's raw criterion values into a graded
// score sheet: clamped values, raw total, time deduction and final score.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/tally/internal/domain/deduction"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
)

// Option applies a configuration option to the Sheet.
type Option func(*Sheet)

// WithRubrics sets the rubric book used to grade submissions.
func WithRubrics(book rubric.Book) Option {
	return func(s *Sheet) {
		if book != nil {
			s.rubrics = book
		}
	}
}

// WithDeductions sets the deduction calculator for timed categories.
func WithDeductions(c *deduction.Calculator) Option {
	return func(s *Sheet) {
		if c != nil {
			s.deductions = c
		}
	}
}

// Input carries the fields of a submission needed for scoring.
type Input struct {
	Category       model.Category
	RawScores      map[string]float64
	ElapsedSeconds int
}

// Result is a graded submission.
type Result struct {
	Values    map[string]float64
	Total     float64
	Deduction float64
	Final     float64
	Clamped   []string
}

// Scorer grades a submission.
type Scorer interface {
	Score(in Input) (Result, error)
}

// Sheet implements Scorer against a rubric book and a deduction calculator.
type Sheet struct {
	rubrics    rubric.Book
	deductions *deduction.Calculator
}

// NewSheet creates a score sheet. Without options it uses the default
// rubrics and deduction schedules.
func NewSheet(opts ...Option) (*Sheet, error) {
	s := &Sheet{rubrics: rubric.DefaultBook()}
	for _, opt := range opts {
		opt(s)
	}
	if s.deductions == nil {
		c, err := deduction.NewCalculator()
		if err != nil {
			return nil, fmt.Errorf("default deductions: %w", err)
		}
		s.deductions = c
	}
	return s, nil
}

// Score grades in. Unknown or missing criteria are rejected; out-of-range
// values are clamped. The deduction only applies to timed categories.
func (s *Sheet) Score(in Input) (Result, error) {
	r, err := s.rubrics.Lookup(in.Category)
	if err != nil {
		return Result{}, err
	}
	g, err := r.Grade(in.RawScores)
	if err != nil {
		return Result{}, err
	}
	d, err := s.deductions.Deduction(in.Category, in.ElapsedSeconds)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Values:    g.Values,
		Total:     g.Total,
		Deduction: d,
		Final:     FinalScore(g.Total, d),
		Clamped:   g.Clamped,
	}, nil
}

// FinalScore returns total minus deduction, floored at zero.
func FinalScore(total, deduction float64) float64 {
	if math.IsNaN(total) {
		return 0
	}
	return math.Max(0, total-deduction)
}
