package config

import (
	"fmt"
	"sort"

	"github.com/okian/tally/internal/domain/deduction"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
)

// Book builds the rubric book for the configured categories. Every
// category must have a rubric.
func (e Event) Book() (rubric.Book, error) {
	rubrics := make([]rubric.Rubric, 0, len(e.Categories))
	for _, c := range e.Categories {
		criteria, ok := e.Rubrics[c]
		if !ok {
			return nil, fmt.Errorf("%w: %w: no rubric for %q", ErrInvalidConfig, model.ErrUnknownCategory, c)
		}
		rubrics = append(rubrics, rubric.Rubric{Category: c, Criteria: criteria})
	}
	b, err := rubric.NewBook(rubrics...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return b, nil
}

// Calculator builds the deduction calculator for the configured schedules.
func (e Event) Calculator() (*deduction.Calculator, error) {
	opts := []deduction.Option{deduction.WithCategories(e.Categories...)}
	for _, name := range sortedKeys(e.Schedules) {
		s := e.Schedules[name]
		ds := deduction.Schedule{Name: name, LimitSeconds: s.LimitSeconds, OverPenalty: s.OverPenalty}
		for _, t := range s.Tiers {
			ds.Tiers = append(ds.Tiers, deduction.Tier{UpTo: t.UpTo, Penalty: t.Penalty})
		}
		opts = append(opts, deduction.WithSchedule(ds))
	}
	for cat, name := range e.CategorySchedules {
		if !contains(e.Categories, cat) {
			return nil, fmt.Errorf("%w: %w: schedule %q bound to %q", ErrInvalidConfig, model.ErrUnknownCategory, name, cat)
		}
		if _, ok := e.Schedules[name]; !ok {
			return nil, fmt.Errorf("%w: %w: %q for %q", ErrInvalidConfig, ErrUnknownSchedule, name, cat)
		}
	}
	opts = append(opts, deduction.WithCategorySchedules(e.CategorySchedules))
	c, err := deduction.NewCalculator(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains[T comparable](s []T, v T) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
