package simulate

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/logger"
)

const reportInterval = time.Second

// submitSheets posts sheets concurrently using a worker pool. Rounds are
// submitted in order so a later round always replaces an earlier one.
func submitSheets(ctx context.Context, cfg *Config, client *HTTPClient, sheets []types.ScoreSubmission, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting score sheets", logger.Int("count", len(sheets)), logger.Int("workers", cfg.Workers))

	var created, replaced, failed, submitted int64
	var lastReport atomic.Int64

	perRound := len(sheets) / max(cfg.Rounds, 1)
	if perRound == 0 {
		perRound = len(sheets)
	}
	for start := 0; start < len(sheets); start += perRound {
		end := min(start+perRound, len(sheets))

		sheetChan := make(chan types.ScoreSubmission, cfg.Workers*workerChannelMultiplier)
		var wg sync.WaitGroup
		for i := 0; i < cfg.Workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for sheet := range sheetChan {
					status, err := client.postJSON(ctx, "/scores", sheet)
					atomic.AddInt64(&submitted, 1)
					switch {
					case err == nil && status == http.StatusCreated:
						atomic.AddInt64(&created, 1)
					case err == nil && status == http.StatusOK:
						atomic.AddInt64(&replaced, 1)
					default:
						atomic.AddInt64(&failed, 1)
						if cfg.Verbose {
							log.Warn(ctx, "sheet rejected",
								logger.String("contestant", sheet.ContestantID),
								logger.String("judge", sheet.JudgeID),
								logger.Int("status", status),
								logger.Error(err),
							)
						}
					}

					now := time.Now().UnixNano()
					last := lastReport.Load()
					if now-last >= int64(reportInterval) && lastReport.CompareAndSwap(last, now) {
						log.Info(ctx, "submission progress",
							logger.Int("submitted", int(atomic.LoadInt64(&submitted))),
							logger.Int("total", len(sheets)),
						)
					}
				}
			}()
		}

	feed:
		for _, sheet := range sheets[start:end] {
			select {
			case <-ctx.Done():
				break feed
			case sheetChan <- sheet:
			}
		}
		close(sheetChan)
		wg.Wait()
	}

	stats.SheetsSubmitted = int(submitted)
	stats.SheetsCreated = int(created)
	stats.SheetsReplaced = int(replaced)
	stats.SheetsFailed = int(failed)
	log.Info(ctx, "sheet submission completed",
		logger.Int("created", stats.SheetsCreated),
		logger.Int("replaced", stats.SheetsReplaced),
		logger.Int("failed", stats.SheetsFailed),
	)
}

// workerChannelMultiplier sizes the feed buffer per worker.
const workerChannelMultiplier = 2
