package clock

import "fmt"

// QueryError reports that an emacsclient query could not produce a usable
// answer: the command failed to run, exited non-zero, or printed something
// that was not the expected text.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// TimestampConversionError reports a clock-in time that cannot be turned into
// a time.Time.
type TimestampConversionError struct {
	Seconds float64
}

func (e *TimestampConversionError) Error() string {
	return fmt.Sprintf("could not convert timestamp %v to a time", e.Seconds)
}
