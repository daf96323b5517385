package llm

import (
	"errors"
	"fmt"
)

// ErrAllModelsFailed is returned when every candidate model failed.
var ErrAllModelsFailed = errors.New("all candidate models failed")

// ErrEmptyResponse is returned when a model answered with no text.
var ErrEmptyResponse = errors.New("empty response")

// ModelNotFoundError means the provider does not recognise the model identifier.
type ModelNotFoundError struct {
	Model string
	Err   error
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %s not found: %v", e.Model, e.Err)
}

func (e *ModelNotFoundError) Unwrap() error {
	return e.Err
}

// GenerationError is any other failure of a generation call.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("model %s failed: %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func IsModelNotFound(err error) bool {
	var nf *ModelNotFoundError
	return errors.As(err, &nf)
}
