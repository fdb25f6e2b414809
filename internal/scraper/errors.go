package scraper

import (
	"fmt"
)

// FetchError reports a transport failure or a non-success response while
// fetching the results page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MissingDataError reports a match block without a mandatory field.
// Block is 1-based, in document order.
type MissingDataError struct {
	Block int
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("match block %d: missing %s", e.Block, e.Field)
}

// Mandatory fields named in MissingDataError.
const (
	FieldTeamNames = "team names"
	FieldResult    = "result"
)
