package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/okian/tally/internal/domain/model"
)

// BackendPostgres names the PostgreSQL store.
const BackendPostgres = "postgres"

// Pool defaults for OpenPostgres.
const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
)

// foreignKeyViolation is the SQLSTATE for a missing referenced row.
const foreignKeyViolation = "23503"

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

const contestantColumns = `id, code, name, school, division, category, level, medium`

const scoreColumns = `id, contestant_id, judge_id, category, level, medium, raw_scores,
	total_score, time_deduction, final_score, elapsed_seconds, is_final, created_at, updated_at`

// OpenPostgres opens and pings a connection pool for dsn.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PostgresStore is a Store backed by PostgreSQL. The (contestant_id,
// judge_id) unique constraint makes UpsertScore safe under concurrent
// submissions.
type PostgresStore struct {
	db   *sql.DB
	opts options
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, opts ...Option) *PostgresStore {
	return &PostgresStore{db: db, opts: defaultOptions(opts)}
}

// Backend implements Store.
func (s *PostgresStore) Backend() string { return BackendPostgres }

// PutContestant implements Store.
func (s *PostgresStore) PutContestant(ctx context.Context, c model.Contestant) error {
	defer observe(BackendPostgres, "put_contestant", time.Now())
	if err := validateContestant(c); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contestants (`+contestantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			school = EXCLUDED.school,
			division = EXCLUDED.division,
			category = EXCLUDED.category,
			level = EXCLUDED.level,
			medium = EXCLUDED.medium`,
		c.ID, c.Code, c.Name, c.School, c.Division, string(c.Category), string(c.Level), string(c.Medium))
	if isPQCode(err, uniqueViolation) {
		return fmt.Errorf("%w: code %q already used", ErrInvalidContestant, c.Code)
	}
	if err != nil {
		return fmt.Errorf("put contestant %q: %w", c.ID, err)
	}
	return nil
}

// GetContestant implements Store.
func (s *PostgresStore) GetContestant(ctx context.Context, id string) (model.Contestant, error) {
	defer observe(BackendPostgres, "get_contestant", time.Now())
	row := s.db.QueryRowContext(ctx, `SELECT `+contestantColumns+` FROM contestants WHERE id = $1`, id)
	c, err := scanContestant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contestant{}, fmt.Errorf("%w: contestant %q", ErrNotFound, id)
	}
	if err != nil {
		return model.Contestant{}, fmt.Errorf("get contestant %q: %w", id, err)
	}
	return c, nil
}

// ListContestants implements Store.
func (s *PostgresStore) ListContestants(ctx context.Context, f Filter) ([]model.Contestant, error) {
	defer observe(BackendPostgres, "list_contestants", time.Now())
	where, args := whereClause([]condition{
		{"category", string(f.Category)},
		{"level", string(f.Level)},
		{"medium", string(f.Medium)},
		{"division", f.Division},
		{"id", f.ContestantID},
	})
	rows, err := s.db.QueryContext(ctx, `SELECT `+contestantColumns+` FROM contestants`+where+` ORDER BY code, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list contestants: %w", err)
	}
	defer rows.Close()

	out := []model.Contestant{}
	for rows.Next() {
		c, err := scanContestant(rows)
		if err != nil {
			return nil, fmt.Errorf("list contestants: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contestants: %w", err)
	}
	return out, nil
}

// UpsertScore implements Store.
func (s *PostgresStore) UpsertScore(ctx context.Context, e model.ScoreEntry) (model.ScoreEntry, bool, error) {
	defer observe(BackendPostgres, "upsert_score", time.Now())
	if err := validateScore(e); err != nil {
		return model.ScoreEntry{}, false, err
	}
	raw, err := json.Marshal(rawScores(e.RawScores))
	if err != nil {
		return model.ScoreEntry{}, false, fmt.Errorf("%w: raw scores: %v", ErrInvalidScore, err)
	}
	out := e.Clone()
	if out.ID == "" {
		out.ID = s.opts.newID()
	}
	now := s.opts.now()
	out.UpdatedAt = now

	var replaced bool
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO scores (`+scoreColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		ON CONFLICT (contestant_id, judge_id) DO UPDATE SET
			category = EXCLUDED.category,
			level = EXCLUDED.level,
			medium = EXCLUDED.medium,
			raw_scores = EXCLUDED.raw_scores,
			total_score = EXCLUDED.total_score,
			time_deduction = EXCLUDED.time_deduction,
			final_score = EXCLUDED.final_score,
			elapsed_seconds = EXCLUDED.elapsed_seconds,
			is_final = EXCLUDED.is_final,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax <> 0)`,
		out.ID, out.ContestantID, out.JudgeID,
		string(out.Category), string(out.Level), string(out.Medium), raw,
		out.TotalScore, out.TimeDeduction, out.FinalScore, out.ElapsedSeconds, out.IsFinal, now,
	).Scan(&out.ID, &out.CreatedAt, &replaced)
	if isPQCode(err, foreignKeyViolation) {
		return model.ScoreEntry{}, false, fmt.Errorf("%w: contestant %q", ErrNotFound, e.ContestantID)
	}
	if err != nil {
		return model.ScoreEntry{}, false, fmt.Errorf("upsert score: %w", err)
	}
	return out, replaced, nil
}

// ListScores implements Store.
func (s *PostgresStore) ListScores(ctx context.Context, f Filter) ([]model.ScoreEntry, error) {
	defer observe(BackendPostgres, "list_scores", time.Now())
	where, args := whereClause([]condition{
		{"category", string(f.Category)},
		{"level", string(f.Level)},
		{"medium", string(f.Medium)},
		{"contestant_id", f.ContestantID},
		{"judge_id", f.JudgeID},
	})
	rows, err := s.db.QueryContext(ctx, `SELECT `+scoreColumns+` FROM scores`+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	out := []model.ScoreEntry{}
	for rows.Next() {
		var (
			e                       model.ScoreEntry
			category, level, medium string
			raw                     []byte
		)
		if err := rows.Scan(&e.ID, &e.ContestantID, &e.JudgeID, &category, &level, &medium, &raw,
			&e.TotalScore, &e.TimeDeduction, &e.FinalScore, &e.ElapsedSeconds, &e.IsFinal,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list scores: %w", err)
		}
		e.Category, e.Level, e.Medium = model.Category(category), model.Level(level), model.Medium(medium)
		if err := json.Unmarshal(raw, &e.RawScores); err != nil {
			return nil, fmt.Errorf("list scores: raw scores of %q: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return out, nil
}

// Count implements Store.
func (s *PostgresStore) Count(ctx context.Context) (Counts, error) {
	defer observe(BackendPostgres, "count", time.Now())
	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM contestants), (SELECT COUNT(*) FROM scores)`,
	).Scan(&c.Contestants, &c.Scores)
	if err != nil {
		return Counts{}, fmt.Errorf("count: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContestant(r rowScanner) (model.Contestant, error) {
	var (
		c                       model.Contestant
		category, level, medium string
	)
	if err := r.Scan(&c.ID, &c.Code, &c.Name, &c.School, &c.Division, &category, &level, &medium); err != nil {
		return model.Contestant{}, err
	}
	c.Category, c.Level, c.Medium = model.Category(category), model.Level(level), model.Medium(medium)
	return c, nil
}

type condition struct {
	column string
	value  string
}

// whereClause builds "WHERE a = $1 AND b = $2" from the non-empty
// conditions.
func whereClause(conds []condition) (string, []any) {
	var (
		parts []string
		args  []any
	)
	for _, c := range conds {
		if c.value == "" {
			continue
		}
		args = append(args, c.value)
		parts = append(parts, fmt.Sprintf("%s = $%d", c.column, len(args)))
	}
	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func rawScores(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
