package pdf

import (
	"errors"
	"fmt"
)

// Validation sentinels. Callers treat any of these as "this document
// cannot be mined" rather than a batch-level failure.
var (
	ErrNotPDF    = errors.New("not a PDF file")
	ErrEmptyFile = errors.New("file is empty")
	ErrTooLarge  = errors.New("file exceeds size limit")
)

// ParseError wraps a failure (including a recovered panic) from the
// underlying PDF parser with the page it occurred on.
type ParseError struct {
	Source string
	Page   int
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("pdf parse %s page %d: %v", e.Source, e.Page, e.Err)
	}
	return fmt.Sprintf("pdf parse %s: %v", e.Source, e.Err)
}

// Unwrap supports errors.Is and errors.As.
func (e *ParseError) Unwrap() error {
	return e.Err
}
