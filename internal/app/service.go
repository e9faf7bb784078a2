// Package service provides the core business service that implements
// the dependencies required by the HTTP API: score intake backed by the
// record store, and tabulation over fresh snapshots of it.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/deduction"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
	"github.com/okian/tally/internal/domain/scoring"
	"github.com/okian/tally/internal/domain/tabulation"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/internal/snapshot"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

const defaultFetchTimeout = 5 * time.Second

// Tabulation kinds used for metrics labels.
const (
	kindRanking   = "ranking"
	kindStandings = "standings"
)

// Service implements the API dependencies for the tabulation system.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	rubrics    rubric.Book
	deductions *deduction.Calculator
	sheet      *scoring.Sheet
	engine     *tabulation.Engine
	validate   *validator.Validate

	// Configuration
	categories   []model.Category
	levels       []model.Level
	mediums      []model.Medium
	cutoff       int
	fetchTimeout time.Duration

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the record store. Defaults to an empty memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRubrics sets the rubric book.
func WithRubrics(book rubric.Book) Option {
	return func(s *Service) {
		if book != nil {
			s.rubrics = book
		}
	}
}

// WithDeductions sets the deduction calculator.
func WithDeductions(c *deduction.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.deductions = c
		}
	}
}

// WithClassifications sets the category, level and medium enumerations.
func WithClassifications(categories []model.Category, levels []model.Level, mediums []model.Medium) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.categories = categories
		}
		if len(levels) > 0 {
			s.levels = levels
		}
		if len(mediums) > 0 {
			s.mediums = mediums
		}
	}
}

// WithPointsCutoff limits division points to the top n ranks.
func WithPointsCutoff(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.cutoff = n
		}
	}
}

// WithFetchTimeout bounds the store reads behind one tabulation.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// New constructs a Service. It fails if the rubrics, deductions and
// classifications do not form a consistent event.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		rubrics:      rubric.DefaultBook(),
		categories:   model.Categories(),
		levels:       model.Levels(),
		mediums:      model.Mediums(),
		fetchTimeout: defaultFetchTimeout,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Default()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.deductions == nil {
		c, err := deduction.NewCalculator(deduction.WithCategories(s.categories...))
		if err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}
		s.deductions = c
	}

	sheet, err := scoring.NewSheet(scoring.WithRubrics(s.rubrics), scoring.WithDeductions(s.deductions))
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	s.sheet = sheet

	engine, err := tabulation.NewEngine(
		tabulation.WithRubrics(s.rubrics),
		tabulation.WithClassifications(s.categories, s.levels, s.mediums),
		tabulation.WithPointsCutoff(s.cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	s.engine = engine
	return s, nil
}

// Start marks the service ready and publishes the initial store gauges.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	counts, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	metrics.UpdateStoreTotals(counts.Contestants, counts.Scores)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "tabulation service started",
		logger.String("store", s.store.Backend()),
		logger.Int("contestants", counts.Contestants),
		logger.Int("scores", counts.Scores),
		logger.Int("pointsCutoff", s.cutoff),
	)
	return nil
}

// Stop marks the service stopped. The store is owned by the caller.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "tabulation service stopped")
}

// Seed loads a snapshot into the store. Every contestant must belong to a
// configured classification.
func (s *Service) Seed(ctx context.Context, snap snapshot.Snapshot) error {
	for _, c := range snap.Contestants {
		if !s.engine.Configured(c.Classification()) {
			return fmt.Errorf("%w: %w: contestant %q is %s",
				types.ErrInvalidRequest, model.ErrUnknownClassification, c.ID, c.Classification())
		}
	}
	if err := snapshot.Seed(ctx, s.store, snap); err != nil {
		return err
	}
	s.logger.Info(ctx, "seeded store",
		logger.Int("contestants", len(snap.Contestants)),
		logger.Int("scores", len(snap.Scores)),
	)
	return nil
}

// SubmitScore grades a judge's sheet against the contestant's rubric,
// applies the time deduction and stores it, replacing any earlier sheet
// from the same judge.
func (s *Service) SubmitScore(ctx context.Context, sub types.ScoreSubmission) (types.ScoreReceipt, error) {
	if err := s.validate.Struct(sub); err != nil {
		metrics.RecordScoreRejected("invalid")
		return types.ScoreReceipt{}, fmt.Errorf("%w: %w", types.ErrInvalidRequest, err)
	}

	c, err := s.store.GetContestant(ctx, sub.ContestantID)
	if err != nil {
		metrics.RecordScoreRejected("contestant")
		return types.ScoreReceipt{}, err
	}

	res, err := s.sheet.Score(scoring.Input{
		Category:       c.Category,
		RawScores:      sub.RawScores,
		ElapsedSeconds: sub.ElapsedSeconds,
	})
	if err != nil {
		metrics.RecordScoreRejected("rubric")
		if isRubricError(err) {
			return types.ScoreReceipt{}, fmt.Errorf("%w: %w", types.ErrInvalidRequest, err)
		}
		return types.ScoreReceipt{}, err
	}

	entry, replaced, err := s.store.UpsertScore(ctx, model.ScoreEntry{
		ContestantID:   c.ID,
		JudgeID:        sub.JudgeID,
		Category:       c.Category,
		Level:          c.Level,
		Medium:         c.Medium,
		RawScores:      res.Values,
		TotalScore:     res.Total,
		TimeDeduction:  res.Deduction,
		FinalScore:     res.Final,
		ElapsedSeconds: sub.ElapsedSeconds,
		IsFinal:        sub.Final(),
	})
	if err != nil {
		metrics.RecordScoreRejected("store")
		return types.ScoreReceipt{}, err
	}
	metrics.RecordScoreSubmitted(replaced)

	fields := []logger.Field{
		logger.String("contestant", c.ID),
		logger.String("judge", sub.JudgeID),
		logger.Float64("final", res.Final),
		logger.Bool("replaced", replaced),
	}
	if len(res.Clamped) > 0 {
		s.logger.Warn(ctx, "score values clamped", append(fields, logger.Any("criteria", res.Clamped))...)
	} else {
		s.logger.Debug(ctx, "score stored", fields...)
	}
	return types.ScoreReceipt{Entry: entry, Replaced: replaced, Clamped: res.Clamped}, nil
}

func isRubricError(err error) bool {
	return errors.Is(err, rubric.ErrUnknownCriterion) ||
		errors.Is(err, rubric.ErrMissingCriterion) ||
		errors.Is(err, rubric.ErrInvalidValue)
}

// Rankings tabulates one classification triple from a fresh snapshot.
func (s *Service) Rankings(ctx context.Context, class model.Classification) (types.RankingReport, error) {
	if class.IsZero() {
		return types.RankingReport{}, fmt.Errorf("%w: category, level and medium are required", types.ErrInvalidRequest)
	}
	if !s.engine.Configured(class) {
		return types.RankingReport{}, fmt.Errorf("%w: %w: %s", types.ErrInvalidRequest, model.ErrUnknownClassification, class)
	}

	start := time.Now()
	contestants, scores, err := s.fetch(ctx, repository.ClassificationFilter(class))
	if err != nil {
		return types.RankingReport{}, err
	}
	ranking, err := s.engine.Rank(class, contestants, scores)
	if err != nil {
		metrics.RecordErrorByComponent("tabulation", kindRanking)
		return types.RankingReport{}, err
	}
	report := rankingReport(ranking, tabulation.DivisionPoints(ranking.Results, s.cutoff), s.cutoff)

	metrics.RecordTabulation(kindRanking, time.Since(start).Seconds())
	s.reportWarnings(ctx, ranking.Warnings)
	s.logger.Debug(ctx, "ranked classification",
		logger.String("classification", class.String()),
		logger.Int("contestants", len(ranking.Results)),
		logger.Int("judges", len(ranking.Judges)),
	)
	return report, nil
}

// Standings tabulates every classification and sums division points.
func (s *Service) Standings(ctx context.Context) (types.StandingsReport, error) {
	start := time.Now()
	contestants, scores, err := s.fetch(ctx, repository.Filter{})
	if err != nil {
		return types.StandingsReport{}, err
	}
	standings, err := s.engine.Overall(contestants, scores)
	if err != nil {
		metrics.RecordErrorByComponent("tabulation", kindStandings)
		return types.StandingsReport{}, err
	}

	report := types.StandingsReport{
		Standings:    standings.Sorted(),
		Totals:       standings.Totals,
		Combinations: make([]types.RankingReport, 0, len(standings.Combinations)),
		Warnings:     standings.Warnings,
	}
	for _, c := range standings.Combinations {
		report.Combinations = append(report.Combinations, rankingReport(c.Ranking, c.Points, s.cutoff))
	}

	metrics.RecordTabulation(kindStandings, time.Since(start).Seconds())
	s.reportWarnings(ctx, standings.Warnings)
	s.logger.Debug(ctx, "computed standings",
		logger.Int("combinations", len(report.Combinations)),
		logger.Int("divisions", len(report.Standings)),
	)
	return report, nil
}

func rankingReport(r tabulation.Ranking, points map[string]int, cutoff int) types.RankingReport {
	return types.RankingReport{
		Classification: r.Classification,
		Judges:         r.Judges,
		Results:        r.Results,
		DivisionPoints: points,
		PointsCutoff:   cutoff,
		Warnings:       r.Warnings,
	}
}

func (s *Service) reportWarnings(ctx context.Context, warnings []tabulation.Warning) {
	if len(warnings) == 0 {
		return
	}
	byKind := make(map[tabulation.WarningKind]int)
	for _, w := range warnings {
		metrics.RecordTabulationWarning(string(w.Kind))
		byKind[w.Kind]++
	}
	s.logger.Warn(ctx, "tabulation input repaired", logger.Any("warnings", byKind))
}

// fetch reads contestants and scores matching f concurrently, bounded by
// the fetch timeout.
func (s *Service) fetch(ctx context.Context, f repository.Filter) ([]model.Contestant, []model.ScoreEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var (
		contestants []model.Contestant
		scores      []model.ScoreEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contestants, err = s.store.ListContestants(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		scores, err = s.store.ListScores(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.RecordErrorByComponent("store", "fetch")
		return nil, nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	return contestants, scores, nil
}

// Contestants lists contestants matching f.
func (s *Service) Contestants(ctx context.Context, f repository.Filter) ([]model.Contestant, error) {
	return s.store.ListContestants(ctx, f)
}

// Scores lists score entries matching f.
func (s *Service) Scores(ctx context.Context, f repository.Filter) ([]model.ScoreEntry, error) {
	return s.store.ListScores(ctx, f)
}

// Rubric returns the rubric of a category.
func (s *Service) Rubric(category model.Category) (rubric.Rubric, error) {
	r, err := s.rubrics.Lookup(category)
	if err != nil {
		return rubric.Rubric{}, fmt.Errorf("%w: %w", repository.ErrNotFound, err)
	}
	return r, nil
}

// Rubrics returns every configured rubric in category order.
func (s *Service) Rubrics() []rubric.Rubric {
	out := make([]rubric.Rubric, 0, len(s.categories))
	for _, c := range s.categories {
		if r, err := s.rubrics.Lookup(c); err == nil {
			out = append(out, r)
		}
	}
	return out
}

// Deduction quotes the time penalty for a performance.
func (s *Service) Deduction(category model.Category, elapsed int) (types.DeductionQuote, error) {
	if elapsed < 0 {
		return types.DeductionQuote{}, fmt.Errorf("%w: elapsed seconds must not be negative", types.ErrInvalidRequest)
	}
	sched, timed, err := s.deductions.ScheduleFor(category)
	if err != nil {
		return types.DeductionQuote{}, fmt.Errorf("%w: %w", repository.ErrNotFound, err)
	}
	q := types.DeductionQuote{Category: category, ElapsedSeconds: elapsed}
	if timed {
		q.Schedule = sched.Name
		q.LimitSeconds = sched.LimitSeconds
		q.Deduction = sched.Penalty(elapsed)
	}
	return q, nil
}

// Classifications returns every configured triple.
func (s *Service) Classifications() []model.Classification {
	return s.engine.Classifications()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) (types.Stats, error) {
	s.mu.RLock()
	started, startedAt := s.started, s.startedAt
	s.mu.RUnlock()

	counts, err := s.store.Count(ctx)
	if err != nil {
		return types.Stats{}, err
	}
	metrics.UpdateStoreTotals(counts.Contestants, counts.Scores)

	stats := types.Stats{
		Contestants: counts.Contestants,
		Scores:      counts.Scores,
		Store:       s.store.Backend(),
	}
	if started {
		stats.Uptime = time.Since(startedAt).Round(time.Second).String()
	}
	return stats, nil
}
