// Package repository stores contestants and judges' score entries. It is
// the record store the tabulation engine reads snapshots from.
package repository

import (
	"context"

	"github.com/okian/tally/internal/domain/model"
)

// Filter narrows list queries. Empty fields match everything. JudgeID only
// applies to score entries and Division only to contestants.
type Filter struct {
	Category     model.Category
	Level        model.Level
	Medium       model.Medium
	Division     string
	ContestantID string
	JudgeID      string
}

// ClassificationFilter matches one classification triple.
func ClassificationFilter(c model.Classification) Filter {
	return Filter{Category: c.Category, Level: c.Level, Medium: c.Medium}
}

// MatchContestant reports whether c passes the filter.
func (f Filter) MatchContestant(c model.Contestant) bool {
	return match(f.Category, c.Category) &&
		match(f.Level, c.Level) &&
		match(f.Medium, c.Medium) &&
		match(f.Division, c.Division) &&
		match(f.ContestantID, c.ID)
}

// MatchScore reports whether e passes the filter.
func (f Filter) MatchScore(e model.ScoreEntry) bool {
	return match(f.Category, e.Category) &&
		match(f.Level, e.Level) &&
		match(f.Medium, e.Medium) &&
		match(f.ContestantID, e.ContestantID) &&
		match(f.JudgeID, e.JudgeID)
}

func match[T ~string](want, got T) bool {
	return want == "" || want == got
}

// Counts reports the number of stored records.
type Counts struct {
	Contestants int `json:"contestants"`
	Scores      int `json:"scores"`
}

// Store provides read/write access to contestants and score entries.
// Contestants are listed by code then id; score entries in the order they
// were first submitted.
type Store interface {
	// PutContestant inserts c or replaces the contestant with the same id.
	PutContestant(ctx context.Context, c model.Contestant) error
	// GetContestant returns ErrNotFound if id is unknown.
	GetContestant(ctx context.Context, id string) (model.Contestant, error)
	ListContestants(ctx context.Context, f Filter) ([]model.Contestant, error)

	// UpsertScore inserts e or replaces the entry for the same
	// (contestant, judge) pair, keeping its id and creation time. The
	// boolean reports a replacement. Returns ErrNotFound if the contestant
	// is unknown.
	UpsertScore(ctx context.Context, e model.ScoreEntry) (model.ScoreEntry, bool, error)
	ListScores(ctx context.Context, f Filter) ([]model.ScoreEntry, error)

	Count(ctx context.Context) (Counts, error)
	// Backend names the implementation for logs and metrics.
	Backend() string
}
