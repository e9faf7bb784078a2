package simulate

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/logger"
)

// Performance bands as fractions of a criterion's maximum.
type band struct{ lo, hi float64 }

var bands = []band{
	{0.55, 0.75}, // average, most common
	{0.55, 0.75},
	{0.75, 0.90}, // strong
	{0.90, 1.00}, // elite
	{0.30, 0.55}, // weak
}

// overtimeOdds is the chance a timed performance runs past its limit.
const overtimeOdds = 0.3

// maxOvertime bounds the generated overrun in seconds.
const maxOvertime = 90

// timing is the time limit of a timed category.
type timing struct {
	LimitSeconds int
}

// generateSheets builds one submission per judge per contestant for every
// round. Each contestant gets a band, and judges scatter around it.
func generateSheets(ctx context.Context, cfg *Config, contestants []model.Contestant,
	rubrics map[model.Category]rubric.Rubric, timings map[model.Category]timing, stats *Stats,
) []types.ScoreSubmission {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // scores are synthetic

	rounds := max(cfg.Rounds, 1)
	sheets := make([]types.ScoreSubmission, 0, len(contestants)*cfg.Judges*rounds)
	for round := 0; round < rounds; round++ {
		for _, c := range contestants {
			r, ok := rubrics[c.Category]
			if !ok {
				continue
			}
			b := bands[rng.IntN(len(bands))]
			for j := 1; j <= cfg.Judges; j++ {
				sheet := types.ScoreSubmission{
					ContestantID: c.ID,
					JudgeID:      "judge-" + strconv.Itoa(j),
					RawScores:    make(map[string]float64, len(r.Criteria)),
				}
				for _, crit := range r.Criteria {
					frac := b.lo + rng.Float64()*(b.hi-b.lo)
					sheet.RawScores[crit.ID] = math.Round(frac*crit.MaxScore*2) / 2
				}
				if t, timed := timings[c.Category]; timed {
					sheet.ElapsedSeconds = generateElapsed(rng, t.LimitSeconds)
				}
				sheets = append(sheets, sheet)
			}
		}
	}

	stats.SheetsGenerated = len(sheets)
	logger.Get().Info(ctx, "generated score sheets",
		logger.Int("count", len(sheets)),
		logger.Int("judges", cfg.Judges),
		logger.Int("rounds", rounds),
	)
	return sheets
}

func generateElapsed(rng *rand.Rand, limit int) int {
	if rng.Float64() < overtimeOdds {
		return limit + 1 + rng.IntN(maxOvertime)
	}
	return limit - rng.IntN(max(limit/4, 1))
}
