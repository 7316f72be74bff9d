package clock

import (
	"math"
	"time"
)

// Bounds of what encoding/json and RFC 3339 formatting accept for a
// time.Time.
var (
	minEpochSeconds = float64(time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix())
	maxEpochSeconds = float64(time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix())
)

// FromEpochSeconds converts fractional seconds since the Unix epoch into a
// local time. Negative and fractional values are exact to the nanosecond
// that float64 can carry.
func FromEpochSeconds(seconds float64) (time.Time, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) ||
		seconds < minEpochSeconds || seconds > maxEpochSeconds {
		return time.Time{}, &TimestampConversionError{Seconds: seconds}
	}

	whole := math.Floor(seconds)
	nanos := math.Round((seconds - whole) * 1e9)
	if nanos >= 1e9 {
		whole++
		nanos = 0
	}
	return time.Unix(int64(whole), int64(nanos)).Local(), nil
}
