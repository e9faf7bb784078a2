// Package deduction maps elapsed performance time to a time penalty using
// step schedules such as the Annex C (radio) and Annex F (video) tables.
package deduction

import "fmt"

// Tier is one step of a schedule: any overtime up to and including UpTo
// seconds costs Penalty points.
type Tier struct {
	UpTo    int     `json:"up_to" yaml:"up_to"`
	Penalty float64 `json:"penalty" yaml:"penalty"`
}

// Schedule is a step table keyed on overtime (elapsed minus LimitSeconds).
// Overtime beyond the last tier costs OverPenalty.
type Schedule struct {
	Name         string  `json:"name" yaml:"name"`
	LimitSeconds int     `json:"limit_seconds" yaml:"limit_seconds"`
	Tiers        []Tier  `json:"tiers" yaml:"tiers"`
	OverPenalty  float64 `json:"over_penalty" yaml:"over_penalty"`
}

// Schedule names for the built-in tables.
const (
	RadioSchedule = "radio"
	VideoSchedule = "video"
)

const (
	radioLimitSeconds = 300
	videoLimitSeconds = 360
)

// Radio returns the Annex C schedule: 5 minutes, then 1/2/3/5 points.
func Radio() Schedule {
	return Schedule{
		Name:         RadioSchedule,
		LimitSeconds: radioLimitSeconds,
		Tiers: []Tier{
			{UpTo: 3, Penalty: 1},
			{UpTo: 20, Penalty: 2},
			{UpTo: 40, Penalty: 3},
		},
		OverPenalty: 5,
	}
}

// Video returns the Annex F schedule: 6 minutes, then 1/2/3/5 points.
func Video() Schedule {
	return Schedule{
		Name:         VideoSchedule,
		LimitSeconds: videoLimitSeconds,
		Tiers: []Tier{
			{UpTo: 15, Penalty: 1},
			{UpTo: 45, Penalty: 2},
			{UpTo: 75, Penalty: 3},
		},
		OverPenalty: 5,
	}
}

// Penalty returns the deduction for elapsed seconds. It never returns a
// negative value.
func (s Schedule) Penalty(elapsed int) float64 {
	if elapsed <= 0 {
		return 0
	}
	overtime := elapsed - s.LimitSeconds
	if overtime <= 0 {
		return 0
	}
	for _, t := range s.Tiers {
		if overtime <= t.UpTo {
			return nonNegative(t.Penalty)
		}
	}
	return nonNegative(s.OverPenalty)
}

// Validate checks that tiers are strictly ascending and that penalties
// are non-negative and never decrease.
func (s Schedule) Validate() error {
	if s.LimitSeconds < 0 {
		return fmt.Errorf("%w: %q has negative limit %d", ErrInvalidSchedule, s.Name, s.LimitSeconds)
	}
	prevUpTo, prevPenalty := 0, 0.0
	for i, t := range s.Tiers {
		if t.UpTo <= prevUpTo {
			return fmt.Errorf("%w: %q tier %d bound %d must exceed %d", ErrInvalidSchedule, s.Name, i, t.UpTo, prevUpTo)
		}
		if t.Penalty < prevPenalty {
			return fmt.Errorf("%w: %q tier %d penalty %.2f decreases", ErrInvalidSchedule, s.Name, i, t.Penalty)
		}
		prevUpTo, prevPenalty = t.UpTo, t.Penalty
	}
	if s.OverPenalty < prevPenalty {
		return fmt.Errorf("%w: %q over penalty %.2f below last tier", ErrInvalidSchedule, s.Name, s.OverPenalty)
	}
	return nil
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
