package tabulation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
	"github.com/okian/tally/internal/domain/scoring"
)

// Ranking is the outcome of ranking one classification triple. Results are
// ordered by FinalRank. Judges lists the judges that scored the triple in
// ascending order; each result's JudgeRanks follows the same order, skipping
// judges that did not score that contestant.
type Ranking struct {
	Classification model.Classification `json:"classification"`
	Judges         []string             `json:"judges"`
	Results        []model.RankResult   `json:"results"`
	Warnings       []Warning            `json:"warnings,omitempty"`
}

type tally struct {
	contestant model.Contestant
	finals     map[string]float64
	ranks      []int
	sum        int
	average    float64
	best       float64
}

// Rank orders contestants of one triple by the ranking policy. Contestants
// without entries rank last with zero metrics. Entries for contestants not
// in the set are ignored with a warning. When a judge has several entries
// for the same contestant the later one wins.
func (e *Engine) Rank(class model.Classification, contestants []model.Contestant, entries []model.ScoreEntry) (Ranking, error) {
	if !e.Configured(class) {
		return Ranking{}, fmt.Errorf("%w: %s", model.ErrUnknownClassification, class)
	}
	r, err := e.rubrics.Lookup(class.Category)
	if err != nil {
		return Ranking{}, err
	}

	out := Ranking{Classification: class, Judges: []string{}, Results: make([]model.RankResult, 0, len(contestants))}
	tallies := make([]*tally, len(contestants))
	byID := make(map[string]*tally, len(contestants))
	for i, c := range contestants {
		if _, dup := byID[c.ID]; dup {
			return Ranking{}, fmt.Errorf("%w: %q", ErrDuplicateContestant, c.ID)
		}
		if c.Classification() != class {
			return Ranking{}, fmt.Errorf("%w: %q is %s, not %s", ErrClassificationMismatch, c.ID, c.Classification(), class)
		}
		t := &tally{contestant: c, finals: make(map[string]float64)}
		tallies[i] = t
		byID[c.ID] = t
	}

	judges := make(map[string]struct{})
	for _, entry := range entries {
		t, ok := byID[entry.ContestantID]
		if !ok {
			out.Warnings = append(out.Warnings, Warning{
				Kind:           WarnOrphanEntry,
				Classification: class,
				ContestantID:   entry.ContestantID,
				JudgeID:        entry.JudgeID,
				Detail:         "entry references a contestant outside this classification",
			})
			continue
		}
		final, warns := sanitize(class, r, entry)
		out.Warnings = append(out.Warnings, warns...)
		if _, dup := t.finals[entry.JudgeID]; dup {
			out.Warnings = append(out.Warnings, Warning{
				Kind:           WarnDuplicateEntry,
				Classification: class,
				ContestantID:   entry.ContestantID,
				JudgeID:        entry.JudgeID,
				Detail:         "later entry replaces earlier one",
			})
		}
		t.finals[entry.JudgeID] = roundScore(final)
		judges[entry.JudgeID] = struct{}{}
	}

	for id := range judges {
		out.Judges = append(out.Judges, id)
	}
	sort.Strings(out.Judges)

	for _, judge := range out.Judges {
		rankByJudge(judge, tallies)
	}

	for _, t := range tallies {
		t.summarize()
	}

	order := make([]*tally, len(tallies))
	copy(order, tallies)
	sort.SliceStable(order, func(i, j int) bool { return less(order[i], order[j]) })

	for i, t := range order {
		out.Results = append(out.Results, model.RankResult{
			ContestantID:       t.contestant.ID,
			ContestantCode:     t.contestant.Code,
			Division:           t.contestant.Division,
			JudgeRanks:         t.ranks,
			SumOfRanks:         t.sum,
			AverageRawScore:    t.average,
			MaxIndividualScore: t.best,
			FinalRank:          i + 1,
		})
	}
	return out, nil
}

// rankByJudge appends judge's rank to every contestant the judge scored.
// Equal finals get distinct ranks in input order.
func rankByJudge(judge string, tallies []*tally) {
	scored := make([]*tally, 0, len(tallies))
	for _, t := range tallies {
		if _, ok := t.finals[judge]; ok {
			scored = append(scored, t)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].finals[judge] > scored[j].finals[judge]
	})
	for i, t := range scored {
		t.ranks = append(t.ranks, i+1)
	}
}

func (t *tally) summarize() {
	if t.ranks == nil {
		t.ranks = []int{}
	}
	for _, r := range t.ranks {
		t.sum += r
	}
	if len(t.finals) == 0 {
		return
	}
	var total float64
	for _, f := range t.finals {
		total += f
		if f > t.best {
			t.best = f
		}
	}
	t.average = roundScore(total / float64(len(t.finals)))
}

// less reports whether a ranks ahead of b.
func less(a, b *tally) bool {
	if a.average != b.average {
		return a.average > b.average
	}
	aScored, bScored := len(a.ranks) > 0, len(b.ranks) > 0
	if aScored != bScored {
		return aScored
	}
	if a.sum != b.sum {
		return a.sum < b.sum
	}
	if a.best != b.best {
		return a.best > b.best
	}
	return false
}

// sanitize returns the final score to rank entry by. Values outside the
// rubric bounds are clamped and the final recomputed from the clamped total.
func sanitize(class model.Classification, r rubric.Rubric, entry model.ScoreEntry) (float64, []Warning) {
	var warns []Warning
	warn := func(kind WarningKind, detail string) {
		warns = append(warns, Warning{
			Kind:           kind,
			Classification: class,
			ContestantID:   entry.ContestantID,
			JudgeID:        entry.JudgeID,
			Detail:         detail,
		})
	}

	final := entry.FinalScore
	g := r.Clamp(entry.RawScores)
	if len(g.Unknown) > 0 {
		warn(WarnUnknownCriterion, "ignored "+strings.Join(g.Unknown, ", "))
	}
	if len(g.Clamped) > 0 {
		final = scoring.FinalScore(g.Total, entry.TimeDeduction)
		warn(WarnClamped, "clamped "+strings.Join(g.Clamped, ", "))
	}
	if math.IsNaN(final) || final < 0 {
		warn(WarnNegativeFinal, fmt.Sprintf("final score %v floored to 0", final))
		final = 0
	}
	return final, warns
}
