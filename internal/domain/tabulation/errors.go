package tabulation

import "errors"

// Sentinel kinds for malformed snapshots.
var (
	ErrDuplicateContestant    = errors.New("duplicate contestant")
	ErrClassificationMismatch = errors.New("contestant outside classification")
)
