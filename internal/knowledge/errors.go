package knowledge

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound is returned when the knowledge table does not exist.
	ErrSourceNotFound = errors.New("knowledge source not found")
	// ErrMissingColumns is returned when a required column is absent from the table.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrMalformedRow is returned when a row cannot be read.
	ErrMalformedRow = errors.New("malformed row")
)

// LoadError reports a fatal failure to load the knowledge table or the model.
// The process cannot serve requests after one.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(source string, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{Source: source, Err: err}
}
