// Package simulate drives a running tabulation service through a judging
// session: it scores every seeded contestant with synthetic sheets, submits
// them concurrently and checks the served standings against a local
// tabulation of the same records.
package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrNoContestants is returned when the service has nothing to score.
var ErrNoContestants = errors.New("no contestants to score")

// Run executes a complete simulated session.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(stats.StartTime.UnixNano())
	}
	cfg.Judges = max(cfg.Judges, 1)
	cfg.Workers = max(cfg.Workers, 1)

	logger.Get().Info(ctx, "starting judging simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("judges", cfg.Judges),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
	)
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	var contestants []model.Contestant
	if err := client.getJSON(ctx, "/contestants", &contestants); err != nil {
		return stats, err
	}
	if len(contestants) == 0 {
		return stats, ErrNoContestants
	}
	stats.Contestants = len(contestants)

	event, err := fetchEvent(ctx, client)
	if err != nil {
		return stats, fmt.Errorf("fetch event: %w", err)
	}

	sheets := generateSheets(ctx, cfg, contestants, event.rubrics, event.timings, stats)
	submitSheets(ctx, cfg, client, sheets, stats)
	if stats.SheetsFailed > 0 {
		return stats, fmt.Errorf("%d of %d sheets were rejected", stats.SheetsFailed, stats.SheetsSubmitted)
	}

	if err := verifyStandings(ctx, client, event, stats); err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		if err := saveSheets(cfg.OutputFile, sheets); err != nil {
			logger.Get().Warn(ctx, "failed to save sheets to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// fetchEvent reads the classifications, rubrics and time limits.
func fetchEvent(ctx context.Context, client *HTTPClient) (*eventInfo, error) {
	event := &eventInfo{
		rubrics: make(map[model.Category]rubric.Rubric),
		timings: make(map[model.Category]timing),
	}
	if err := client.getJSON(ctx, "/classifications", &event.classifications); err != nil {
		return nil, err
	}
	var rubrics []rubric.Rubric
	if err := client.getJSON(ctx, "/rubrics", &rubrics); err != nil {
		return nil, err
	}
	for _, r := range rubrics {
		event.rubrics[r.Category] = r
		var q types.DeductionQuote
		if err := client.getJSON(ctx, categoryPath("/deductions/", string(r.Category)), &q); err != nil {
			return nil, err
		}
		if q.Schedule != "" {
			event.timings[r.Category] = timing{LimitSeconds: q.LimitSeconds}
		}
	}
	return event, nil
}

// saveSheets writes the generated sheets as a JSON array.
func saveSheets(filename string, sheets []types.ScoreSubmission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(sheets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sheets: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the final session statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var sheetsPerSecond float64
	if stats.Duration > 0 {
		sheetsPerSecond = float64(stats.SheetsSubmitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("contestants", stats.Contestants),
		logger.Int("classifications", stats.Classifications),
		logger.Int("sheetsGenerated", stats.SheetsGenerated),
		logger.Int("sheetsCreated", stats.SheetsCreated),
		logger.Int("sheetsReplaced", stats.SheetsReplaced),
		logger.Int("sheetsFailed", stats.SheetsFailed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("sheetsPerSecond", sheetsPerSecond),
	)
}
