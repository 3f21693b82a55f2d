package evaluator

import (
	"errors"
	"fmt"
)

// ErrUnknownQuestion is returned for question indices without a rubric entry.
var ErrUnknownQuestion = errors.New("unknown question")

// UnknownQuestionError carries the offending question index.
type UnknownQuestionError struct {
	Index int
}

func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("%s: no rubric for question index %d", ErrUnknownQuestion, e.Index)
}

func (e *UnknownQuestionError) Unwrap() error {
	return ErrUnknownQuestion
}
