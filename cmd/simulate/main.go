// Command simulate scores every contestant of a running service with
// synthetic judge sheets and verifies the served standings.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/tally/internal/simulate"
	"github.com/okian/tally/pkg/logger"
)

// Default configuration constants.
const (
	defaultJudges  = 3
	defaultRounds  = 1
	defaultWorkers = 2 // multiplier for runtime.NumCPU()
	defaultTimeout = 30 * time.Second
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		judges     = flag.Int("judges", defaultJudges, "Judges scoring every contestant")
		rounds     = flag.Int("rounds", defaultRounds, "Submission rounds; later rounds replace earlier sheets")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Uint64("seed", 0, "Seed for score generation (default: from the clock)")
		outputFile = flag.String("output", "", "Write the generated sheets to this JSON file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err := simulate.Run(ctx, &simulate.Config{
		BaseURL:    *baseURL,
		Judges:     *judges,
		Rounds:     *rounds,
		Workers:    *workers,
		Timeout:    *timeout,
		Seed:       *seed,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	})
	if err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		os.Exit(1)
	}
}
