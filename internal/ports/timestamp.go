package ports

import "time"

// TimestampLayout is fixed-width UTC so stored timestamps sort
// lexicographically in the same order as in time. RFC3339Nano trims
// trailing zeros and would break that.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp also accepts the naive ISO timestamps written by older
// builds, reading them as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", value, time.UTC)
}
