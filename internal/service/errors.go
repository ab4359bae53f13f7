package service

import "errors"

var (
	ErrJobNotCompleted = errors.New("job not completed")
	ErrOutputMissing   = errors.New("output file not found")
)

// ValidationError is a client input problem; no job is created.
type ValidationError struct {
	Message string
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string, details map[string]interface{}) error {
	return &ValidationError{Message: msg, Details: details}
}
