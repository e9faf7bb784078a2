// Package config defines service configuration and the event definition
// (enumerations, rubrics and deduction schedules) it carries.
//
// Conventions:
// - New returns a Config holding the defaults.
// - Load layers a YAML file and TALLY_ environment variables over New.
// - Errors are wrapped with ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"time"

	"github.com/okian/tally/internal/domain/deduction"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// Store selects the record store backend.
	Store string `koanf:"store" validate:"oneof=memory postgres"`

	// DatabaseURL is the PostgreSQL DSN used when Store is postgres.
	DatabaseURL string `koanf:"database_url" validate:"required_if=Store postgres"`

	// MigrateOnStart applies schema migrations before serving.
	MigrateOnStart bool `koanf:"migrate_on_start"`

	// SeedFile optionally names a JSON or YAML snapshot loaded at start.
	SeedFile string `koanf:"seed_file"`

	// PointsCutoff limits division points to the top N ranks; 0 disables.
	PointsCutoff int `koanf:"points_cutoff" validate:"gte=0"`

	// FetchTimeout bounds the store reads behind one tabulation.
	FetchTimeout time.Duration `koanf:"fetch_timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// MetricsInterval sets how often store and runtime gauges refresh.
	MetricsInterval time.Duration `koanf:"metrics_interval" validate:"gt=0"`

	// Event describes the competition being tabulated.
	Event Event `koanf:"event"`
}

// Event is the per-year competition definition.
type Event struct {
	Name       string           `koanf:"name"`
	Categories []model.Category `koanf:"categories" validate:"required,min=1,unique,dive,required"`
	Levels     []model.Level    `koanf:"levels" validate:"required,min=1,unique,dive,required"`
	Mediums    []model.Medium   `koanf:"mediums" validate:"required,min=1,unique,dive,required"`

	// Rubrics maps a category to its ordered criteria.
	Rubrics map[model.Category][]rubric.Criterion `koanf:"rubrics" validate:"dive,min=1,dive"`

	// Schedules holds the named deduction tables.
	Schedules map[string]Schedule `koanf:"schedules" validate:"dive"`

	// CategorySchedules binds timed categories to a schedule name.
	CategorySchedules map[model.Category]string `koanf:"category_schedules"`
}

// Schedule is a deduction table in configuration form.
type Schedule struct {
	LimitSeconds int     `koanf:"limit_seconds" validate:"gte=0"`
	Tiers        []Tier  `koanf:"tiers" validate:"dive"`
	OverPenalty  float64 `koanf:"over_penalty" validate:"gte=0"`
}

// Tier is one step of a Schedule.
type Tier struct {
	UpTo    int     `koanf:"up_to" validate:"gt=0"`
	Penalty float64 `koanf:"penalty" validate:"gte=0"`
}

// New creates a Config holding the defaults: an in-memory store and the
// campus press event with the Annex C and Annex F schedules.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		Store:           StoreMemory,
		PointsCutoff:    0,
		FetchTimeout:    5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MetricsInterval: 10 * time.Second,
		Event:           DefaultEvent(),
	}
}

// DefaultEvent returns the built-in event definition.
func DefaultEvent() Event {
	e := Event{
		Name:       "Campus Press Conference",
		Categories: model.Categories(),
		Levels:     model.Levels(),
		Mediums:    model.Mediums(),
		Rubrics:    make(map[model.Category][]rubric.Criterion),
		Schedules: map[string]Schedule{
			deduction.RadioSchedule: fromSchedule(deduction.Radio()),
			deduction.VideoSchedule: fromSchedule(deduction.Video()),
		},
		CategorySchedules: map[model.Category]string{
			model.RadioBroadcast: deduction.RadioSchedule,
			model.TVBroadcast:    deduction.VideoSchedule,
		},
	}
	for _, r := range rubric.DefaultRubrics() {
		e.Rubrics[r.Category] = r.Criteria
	}
	return e
}

func fromSchedule(s deduction.Schedule) Schedule {
	out := Schedule{LimitSeconds: s.LimitSeconds, OverPenalty: s.OverPenalty}
	for _, t := range s.Tiers {
		out.Tiers = append(out.Tiers, Tier{UpTo: t.UpTo, Penalty: t.Penalty})
	}
	return out
}
