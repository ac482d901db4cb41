package profile

import (
	"errors"
	"fmt"
)

// ErrEmptyResume is returned when the provided resume text is empty or
// whitespace-only.
var ErrEmptyResume = errors.New("resume text is empty")

// ExtractionError means the resume could not be turned into a candidate
// profile. It is fatal: the whole pipeline depends on the profile and there
// is no safe fallback for it.
type ExtractionError struct {
	Cause error
	Raw   string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("resume extraction failed: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
