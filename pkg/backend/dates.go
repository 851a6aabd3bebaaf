package backend

import (
	"time"

	"github.com/softmembers/soft-members/pkg/proto"
)

// DateLayout is the layout of membership dates.
const DateLayout = time.DateOnly

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddMonths adds calendar months to t. The day of month is clipped to the
// last day of the target month, so Jan 31 plus one month is Feb 28 or 29.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// parseDateField parses an optional date input, returning a validation
// error naming the field when it is malformed.
func parseDateField(field string, s *string, def time.Time) (time.Time, error) {
	if s == nil || *s == "" {
		return def, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return time.Time{}, proto.Validationf("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}
