package rubric

import "errors"

// Sentinel kinds for rubric errors. ErrInvalidRubric is a configuration
// error; the others reject a score submission.
var (
	ErrInvalidRubric    = errors.New("invalid rubric")
	ErrUnknownCriterion = errors.New("unknown criterion")
	ErrMissingCriterion = errors.New("missing criterion")
	ErrInvalidValue     = errors.New("invalid criterion value")
)
