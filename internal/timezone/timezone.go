package timezone

import (
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "America/Santiago"

const dateLayout = "2006-01-02"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location loads tz, falling back to the salon default and then UTC.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// Clock returns a "now" function bound to the salon timezone.
func Clock(tz string) func() time.Time {
	return func() time.Time { return NowIn(tz) }
}

// DaySpan returns the instants bounding the civil days from..to in tz:
// midnight of from and midnight after to. Empty bounds come back zero.
func DaySpan(tz, from, to string) (start, end time.Time, err error) {
	loc := Location(tz)
	if from != "" {
		if start, err = time.ParseInLocation(dateLayout, from, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		if end, err = time.ParseInLocation(dateLayout, to, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}
