package model

import "time"

// Contestant is an anonymized competition entry. Division is the
// administrative grouping used for points aggregation and is independent of
// the classification triple.
type Contestant struct {
	ID       string   `json:"id" yaml:"id"`
	Code     string   `json:"code" yaml:"code"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	School   string   `json:"school,omitempty" yaml:"school,omitempty"`
	Division string   `json:"division" yaml:"division"`
	Category Category `json:"category" yaml:"category"`
	Level    Level    `json:"level" yaml:"level"`
	Medium   Medium   `json:"medium" yaml:"medium"`
}

// Classification returns the contestant's ranking scope.
func (c Contestant) Classification() Classification {
	return Classification{Category: c.Category, Level: c.Level, Medium: c.Medium}
}

// ScoreEntry is one judge's submission for one contestant. At most one entry
// exists per (ContestantID, JudgeID); a resubmission replaces the previous one.
type ScoreEntry struct {
	ID             string             `json:"id" yaml:"id"`
	ContestantID   string             `json:"contestant_id" yaml:"contestant_id"`
	JudgeID        string             `json:"judge_id" yaml:"judge_id"`
	Category       Category           `json:"category" yaml:"category"`
	Level          Level              `json:"level" yaml:"level"`
	Medium         Medium             `json:"medium" yaml:"medium"`
	RawScores      map[string]float64 `json:"raw_scores" yaml:"raw_scores"`
	TotalScore     float64            `json:"total_score" yaml:"total_score"`
	TimeDeduction  float64            `json:"time_deduction" yaml:"time_deduction"`
	FinalScore     float64            `json:"final_score" yaml:"final_score"`
	ElapsedSeconds int                `json:"elapsed_seconds,omitempty" yaml:"elapsed_seconds,omitempty"`
	IsFinal        bool               `json:"is_final" yaml:"is_final"`
	CreatedAt      time.Time          `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Classification returns the triple denormalized onto the entry.
func (e ScoreEntry) Classification() Classification {
	return Classification{Category: e.Category, Level: e.Level, Medium: e.Medium}
}

// Clone returns a copy of e that does not share its RawScores map.
func (e ScoreEntry) Clone() ScoreEntry {
	out := e
	if e.RawScores != nil {
		out.RawScores = make(map[string]float64, len(e.RawScores))
		for k, v := range e.RawScores {
			out.RawScores[k] = v
		}
	}
	return out
}

// RankResult is the derived, per-run outcome for one contestant within a
// classification triple. FinalRank is 1 for the best contestant.
type RankResult struct {
	ContestantID       string  `json:"contestant_id"`
	ContestantCode     string  `json:"contestant_code"`
	Division           string  `json:"division"`
	JudgeRanks         []int   `json:"judge_ranks"`
	SumOfRanks         int     `json:"sum_of_ranks"`
	AverageRawScore    float64 `json:"average_raw_score"`
	MaxIndividualScore float64 `json:"max_individual_score"`
	FinalRank          int     `json:"final_rank"`
}
