package simulate

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
	"github.com/okian/tally/internal/domain/tabulation"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/logger"
)

// ErrMismatch is returned when the served standings differ from a local
// tabulation of the same records.
var ErrMismatch = errors.New("standings mismatch")

// verifyStandings re-tabulates the served records locally and compares the
// result with GET /standings.
func verifyStandings(ctx context.Context, client *HTTPClient, event *eventInfo, stats *Stats) error {
	logger.Get().Info(ctx, "verifying standings")

	var (
		contestants []model.Contestant
		scores      []model.ScoreEntry
		served      types.StandingsReport
	)
	if err := client.getJSON(ctx, "/contestants", &contestants); err != nil {
		return err
	}
	if err := client.getJSON(ctx, "/scores", &scores); err != nil {
		return err
	}
	if err := client.getJSON(ctx, "/standings", &served); err != nil {
		return err
	}

	engine, err := event.engine(served.Combinations)
	if err != nil {
		return err
	}
	local, err := engine.Overall(contestants, scores)
	if err != nil {
		return fmt.Errorf("local tabulation: %w", err)
	}

	if !maps.Equal(local.Totals, served.Totals) {
		return fmt.Errorf("%w: totals %v, served %v", ErrMismatch, local.Totals, served.Totals)
	}
	if len(local.Combinations) != len(served.Combinations) {
		return fmt.Errorf("%w: %d classifications, served %d", ErrMismatch, len(local.Combinations), len(served.Combinations))
	}
	for i, c := range local.Combinations {
		s := served.Combinations[i]
		if c.Classification != s.Classification || len(c.Results) != len(s.Results) {
			return fmt.Errorf("%w: classification %d is %s, served %s", ErrMismatch, i, c.Classification, s.Classification)
		}
		for j, r := range c.Results {
			if r.ContestantID != s.Results[j].ContestantID || r.FinalRank != s.Results[j].FinalRank {
				return fmt.Errorf("%w: %s rank %d is %s, served %s", ErrMismatch,
					c.Classification, r.FinalRank, r.ContestantID, s.Results[j].ContestantID)
			}
		}
	}

	stats.Classifications = len(local.Combinations)
	logger.Get().Info(ctx, "standings verified",
		logger.Int("classifications", len(local.Combinations)),
		logger.Int("divisions", len(local.Totals)),
	)
	return nil
}

// eventInfo is the event definition as served by the API.
type eventInfo struct {
	classifications []model.Classification
	rubrics         map[model.Category]rubric.Rubric
	timings         map[model.Category]timing
}

// engine builds a local engine matching the served event. The points
// cutoff is read from any served combination.
func (e *eventInfo) engine(served []types.RankingReport) (*tabulation.Engine, error) {
	var (
		categories []model.Category
		levels     []model.Level
		mediums    []model.Medium
		seen       = make(map[string]bool)
	)
	for _, c := range e.classifications {
		if !seen["c"+string(c.Category)] {
			seen["c"+string(c.Category)] = true
			categories = append(categories, c.Category)
		}
		if !seen["l"+string(c.Level)] {
			seen["l"+string(c.Level)] = true
			levels = append(levels, c.Level)
		}
		if !seen["m"+string(c.Medium)] {
			seen["m"+string(c.Medium)] = true
			mediums = append(mediums, c.Medium)
		}
	}
	cutoff := 0
	if len(served) > 0 {
		cutoff = served[0].PointsCutoff
	}

	rubrics := make([]rubric.Rubric, 0, len(e.rubrics))
	for _, r := range e.rubrics {
		rubrics = append(rubrics, r)
	}
	book, err := rubric.NewBook(rubrics...)
	if err != nil {
		return nil, fmt.Errorf("served rubrics: %w", err)
	}
	return tabulation.NewEngine(
		tabulation.WithRubrics(book),
		tabulation.WithClassifications(categories, levels, mediums),
		tabulation.WithPointsCutoff(cutoff),
	)
}
