package quota

import "time"

const dayLayout = "2006-01-02"

// DayKey returns the calendar date of now in loc.
func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(dayLayout)
}

// NextDayStart returns the next local midnight in loc, converted to UTC.
func NextDayStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	// AddDate handles DST correctly, Add(24h) does not
	next := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return next.UTC()
}

// ParseTimezone parses an IANA zone name, returning fallback when it is empty
// or unknown.
func ParseTimezone(tz string, fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	if tz == "" {
		return fallback
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fallback
	}
	return loc
}
