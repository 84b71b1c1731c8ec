package sheets

import "fmt"

// FetchError reports a failed sheet download. StatusCode is zero when the
// request never produced a response.
type FetchError struct {
	Sheet      string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch sheet %s: unexpected status %d from %s", e.Sheet, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch sheet %s: %v", e.Sheet, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RedirectLoopError is returned when a sheet keeps redirecting past the
// configured hop limit.
type RedirectLoopError struct {
	Sheet string
	URL   string
	Hops  int
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("fetch sheet %s: more than %d redirects (last location %s)", e.Sheet, e.Hops, e.URL)
}

// ParseError reports a CSV body that could not be parsed
type ParseError struct {
	Sheet string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse sheet %s: %v", e.Sheet, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
