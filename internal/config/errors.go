package config

import "errors"

var (
	// ErrInvalidConfig marks a configuration that loaded but cannot run an event.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file, dotenv or decode failure.
	ErrLoadConfig = errors.New("load config failed")
	// ErrUnknownSchedule marks a category bound to an undeclared deduction schedule.
	ErrUnknownSchedule = errors.New("unknown deduction schedule")
)
