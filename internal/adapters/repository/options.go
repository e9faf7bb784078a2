package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

func defaultOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock sets the time source used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator sets the generator for new score entry ids.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

func validateContestant(c model.Contestant) error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidContestant)
	case c.Code == "":
		return fmt.Errorf("%w: %q missing code", ErrInvalidContestant, c.ID)
	case c.Division == "":
		return fmt.Errorf("%w: %q missing division", ErrInvalidContestant, c.ID)
	case c.Classification().IsZero():
		return fmt.Errorf("%w: %q has incomplete classification %s", ErrInvalidContestant, c.ID, c.Classification())
	}
	return nil
}

func validateScore(e model.ScoreEntry) error {
	switch {
	case e.ContestantID == "":
		return fmt.Errorf("%w: missing contestant id", ErrInvalidScore)
	case e.JudgeID == "":
		return fmt.Errorf("%w: missing judge id", ErrInvalidScore)
	}
	return nil
}

func observe(backend, op string, start time.Time) {
	metrics.RecordStoreLatency(backend, op, time.Since(start).Seconds())
}
