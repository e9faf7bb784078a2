package deduction

import "errors"

// Sentinel kinds for deduction configuration errors.
var (
	ErrInvalidSchedule = errors.New("invalid deduction schedule")
	ErrUnknownSchedule = errors.New("unknown deduction schedule")
)
