package language

import (
	"errors"
	"fmt"
)

// ErrInvalidPattern matches every *InvalidPatternError via errors.Is.
var ErrInvalidPattern = errors.New("invalid character class pattern")

// InvalidPatternError reports a language pattern that does not compile to a
// single character class.
type InvalidPatternError struct {
	Field   string
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("language: %s pattern %q: %v", e.Field, e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }

func (e *InvalidPatternError) Is(target error) bool { return target == ErrInvalidPattern }
