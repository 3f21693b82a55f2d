package rubric

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidRubric is matched by every ConfigurationError.
var ErrInvalidRubric = errors.New("invalid rubric")

// ConfigurationError reports every problem found while loading a rubric table.
type ConfigurationError struct {
	err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidRubric, e.err)
}

// Unwrap allows errors.Is(err, ErrInvalidRubric).
func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidRubric
}

// Problems returns the individual validation failures.
func (e *ConfigurationError) Problems() []error {
	return multierr.Errors(e.err)
}

func newConfigurationError(err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{err: err}
}
