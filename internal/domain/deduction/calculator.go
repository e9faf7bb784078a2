package deduction

import (
	"fmt"

	"github.com/okian/tally/internal/domain/model"
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithSchedule registers (or replaces) a named schedule.
func WithSchedule(s Schedule) Option {
	return func(c *Calculator) {
		c.schedules[s.Name] = s
	}
}

// WithCategorySchedule binds a category to a named schedule. Any explicit
// binding replaces the default broadcasting bindings.
func WithCategorySchedule(category model.Category, schedule string) Option {
	return func(c *Calculator) {
		if c.bindings == nil {
			c.bindings = make(map[model.Category]string)
		}
		c.bindings[category] = schedule
	}
}

// WithCategorySchedules replaces every binding with bindings. An empty map
// leaves all categories untimed.
func WithCategorySchedules(bindings map[model.Category]string) Option {
	return func(c *Calculator) {
		c.bindings = make(map[model.Category]string, len(bindings))
		for cat, name := range bindings {
			c.bindings[cat] = name
		}
	}
}

// WithCategories sets the categories the calculator recognizes. Categories
// without a bound schedule incur no deduction.
func WithCategories(categories ...model.Category) Option {
	return func(c *Calculator) {
		c.known = make(map[model.Category]struct{}, len(categories))
		for _, cat := range categories {
			c.known[cat] = struct{}{}
		}
	}
}

// Calculator resolves a category to its schedule and computes penalties.
type Calculator struct {
	schedules map[string]Schedule
	bindings  map[model.Category]string
	known     map[model.Category]struct{}
}

// NewCalculator builds a calculator. Without options it reproduces the
// default event: radio and video schedules bound to the broadcasting
// categories and every default category recognized. When no binding option
// is given, the default bindings apply to the recognized categories only.
// Explicit bindings must name a recognized category and a registered schedule.
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		schedules: map[string]Schedule{
			RadioSchedule: Radio(),
			VideoSchedule: Video(),
		},
	}
	WithCategories(model.Categories()...)(c)

	for _, opt := range opts {
		opt(c)
	}

	for name, s := range c.schedules {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("schedule %q: %w", name, err)
		}
	}
	if c.bindings == nil {
		c.bindings = make(map[model.Category]string, len(defaultBindings))
		for cat, name := range defaultBindings {
			if _, ok := c.known[cat]; ok {
				c.bindings[cat] = name
			}
		}
	}
	for cat, name := range c.bindings {
		if _, ok := c.schedules[name]; !ok {
			return nil, fmt.Errorf("%w: %q bound to category %q", ErrUnknownSchedule, name, cat)
		}
		if _, ok := c.known[cat]; !ok {
			return nil, fmt.Errorf("%w: %q bound to schedule %q", model.ErrUnknownCategory, cat, name)
		}
	}
	return c, nil
}

var defaultBindings = map[model.Category]string{
	model.RadioBroadcast: RadioSchedule,
	model.TVBroadcast:    VideoSchedule,
}

// Deduction returns the penalty for a performance of elapsed seconds in the
// given category. Categories without a schedule return 0; categories the
// calculator does not know return model.ErrUnknownCategory.
func (c *Calculator) Deduction(category model.Category, elapsed int) (float64, error) {
	s, timed, err := c.ScheduleFor(category)
	if err != nil {
		return 0, err
	}
	if !timed {
		return 0, nil
	}
	return s.Penalty(elapsed), nil
}

// ScheduleFor returns the schedule bound to category. The boolean is false
// for untimed categories.
func (c *Calculator) ScheduleFor(category model.Category) (Schedule, bool, error) {
	if _, ok := c.known[category]; !ok {
		return Schedule{}, false, fmt.Errorf("%w: %q", model.ErrUnknownCategory, category)
	}
	name, ok := c.bindings[category]
	if !ok {
		return Schedule{}, false, nil
	}
	return c.schedules[name], true, nil
}

// Timed reports whether category carries a time deduction.
func (c *Calculator) Timed(category model.Category) bool {
	_, ok := c.bindings[category]
	return ok
}
