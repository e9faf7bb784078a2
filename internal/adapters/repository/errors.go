package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidContestant = errors.New("invalid contestant")
	ErrInvalidScore      = errors.New("invalid score entry")
)
