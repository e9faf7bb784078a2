package model

import "errors"

// Configuration errors shared by the rubric, deduction and tabulation
// packages. They indicate a misconfigured event rather than a runtime state.
var (
	ErrUnknownCategory       = errors.New("unknown category")
	ErrUnknownClassification = errors.New("unknown classification")
)
