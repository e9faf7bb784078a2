package tabulation

import (
	"fmt"
	"sort"

	"github.com/okian/tally/internal/domain/model"
)

// Combination is one ranked triple and the division points it produced.
type Combination struct {
	Ranking
	Points map[string]int `json:"points"`
}

// Standings is the event-wide aggregate. Totals maps each division to the
// sum of its points across every combination.
type Standings struct {
	Totals       map[string]int `json:"totals"`
	Combinations []Combination  `json:"combinations"`
	Warnings     []Warning      `json:"warnings,omitempty"`
}

// DivisionStanding is one row of the sorted overall table.
type DivisionStanding struct {
	Place    int    `json:"place"`
	Division string `json:"division"`
	Points   int    `json:"points"`
}

// Overall ranks every configured triple that has at least one contestant
// and sums the division points. Triples are visited in configured order and
// empty ones are skipped. Every contestant must belong to a configured
// triple.
func (e *Engine) Overall(contestants []model.Contestant, entries []model.ScoreEntry) (Standings, error) {
	groups := make(map[model.Classification][]model.Contestant)
	owner := make(map[string]model.Classification, len(contestants))
	for _, c := range contestants {
		class := c.Classification()
		if !e.Configured(class) {
			return Standings{}, fmt.Errorf("%w: contestant %q is %s", model.ErrUnknownClassification, c.ID, class)
		}
		if _, dup := owner[c.ID]; dup {
			return Standings{}, fmt.Errorf("%w: %q", ErrDuplicateContestant, c.ID)
		}
		owner[c.ID] = class
		groups[class] = append(groups[class], c)
	}

	out := Standings{Totals: make(map[string]int), Combinations: []Combination{}}
	scores := make(map[model.Classification][]model.ScoreEntry)
	for _, entry := range entries {
		class, ok := owner[entry.ContestantID]
		if !ok {
			out.Warnings = append(out.Warnings, Warning{
				Kind:           WarnOrphanEntry,
				Classification: entry.Classification(),
				ContestantID:   entry.ContestantID,
				JudgeID:        entry.JudgeID,
				Detail:         "entry references an unknown contestant",
			})
			continue
		}
		scores[class] = append(scores[class], entry)
	}

	for _, class := range e.Classifications() {
		members := groups[class]
		if len(members) == 0 {
			continue
		}
		ranking, err := e.Rank(class, members, scores[class])
		if err != nil {
			return Standings{}, err
		}
		points := DivisionPoints(ranking.Results, e.cutoff)
		for div, p := range points {
			out.Totals[div] += p
		}
		out.Warnings = append(out.Warnings, ranking.Warnings...)
		out.Combinations = append(out.Combinations, Combination{Ranking: ranking, Points: points})
	}
	return out, nil
}

// Sorted returns the overall table, best (lowest points) first. Divisions
// with equal points are ordered by name and share no place.
func (s Standings) Sorted() []DivisionStanding {
	out := make([]DivisionStanding, 0, len(s.Totals))
	for div, p := range s.Totals {
		out = append(out, DivisionStanding{Division: div, Points: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points < out[j].Points
		}
		return out[i].Division < out[j].Division
	})
	for i := range out {
		out[i].Place = i + 1
	}
	return out
}
