// Package types contains the request and report shapes shared by the
// service and its adapters
package types

import (
	"errors"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/tabulation"
)

// ErrInvalidRequest marks errors caused by client input.
var ErrInvalidRequest = errors.New("invalid request")

// ScoreSubmission is one judge's score sheet for one contestant. The
// classification is taken from the contestant record, not the request.
type ScoreSubmission struct {
	ContestantID   string             `json:"contestant_id" validate:"required"`
	JudgeID        string             `json:"judge_id" validate:"required"`
	RawScores      map[string]float64 `json:"raw_scores" validate:"required,min=1"`
	ElapsedSeconds int                `json:"elapsed_seconds" validate:"gte=0"`
	IsFinal        *bool              `json:"is_final,omitempty"`
}

// Final reports the finality flag, defaulting to true.
func (s ScoreSubmission) Final() bool {
	return s.IsFinal == nil || *s.IsFinal
}

// ScoreReceipt acknowledges a stored submission.
type ScoreReceipt struct {
	Entry    model.ScoreEntry `json:"entry"`
	Replaced bool             `json:"replaced"`
	Clamped  []string         `json:"clamped,omitempty"`
}

// RankingReport is the ranking of one classification triple with its
// division points.
type RankingReport struct {
	Classification model.Classification `json:"classification"`
	Judges         []string             `json:"judges"`
	Results        []model.RankResult   `json:"results"`
	DivisionPoints map[string]int       `json:"division_points"`
	PointsCutoff   int                  `json:"points_cutoff,omitempty"`
	Warnings       []tabulation.Warning `json:"warnings,omitempty"`
}

// StandingsReport is the event-wide division table.
type StandingsReport struct {
	Standings    []tabulation.DivisionStanding `json:"standings"`
	Totals       map[string]int                `json:"totals"`
	Combinations []RankingReport               `json:"combinations"`
	Warnings     []tabulation.Warning          `json:"warnings,omitempty"`
}

// DeductionQuote is the penalty a performance would receive.
type DeductionQuote struct {
	Category       model.Category `json:"category"`
	ElapsedSeconds int            `json:"elapsed_seconds"`
	LimitSeconds   int            `json:"limit_seconds,omitempty"`
	Schedule       string         `json:"schedule,omitempty"`
	Deduction      float64        `json:"deduction"`
}

// Stats summarizes the service state.
type Stats struct {
	Contestants int    `json:"contestants"`
	Scores      int    `json:"scores"`
	Store       string `json:"store"`
	Uptime      string `json:"uptime"`
}
