package tabulation

import "github.com/okian/tally/internal/domain/model"

// WarningKind classifies a non-fatal problem found while tabulating.
type WarningKind string

// Warning kinds.
const (
	WarnClamped          WarningKind = "clamped"
	WarnUnknownCriterion WarningKind = "unknown_criterion"
	WarnNegativeFinal    WarningKind = "negative_final"
	WarnDuplicateEntry   WarningKind = "duplicate_entry"
	WarnOrphanEntry      WarningKind = "orphan_entry"
)

// Warning reports input the engine repaired or ignored.
type Warning struct {
	Kind           WarningKind          `json:"kind"`
	Classification model.Classification `json:"classification"`
	ContestantID   string               `json:"contestant_id,omitempty"`
	JudgeID        string               `json:"judge_id,omitempty"`
	Detail         string               `json:"detail,omitempty"`
}
