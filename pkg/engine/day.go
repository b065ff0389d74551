package engine

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

// Day is a timezone-naive calendar day in YYYY-MM-DD form. Values produced by
// ParseDay compare correctly as strings.
type Day string

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidInterval, s)
	}
	// Only canonical keys are accepted; they are compared as strings later.
	if t.Format(DayLayout) != s {
		return "", fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidInterval, s)
	}
	return Day(s), nil
}

func (d Day) String() string {
	return string(d)
}

func (d Day) time() time.Time {
	t, _ := time.Parse(DayLayout, string(d))
	return t
}

// DayRange is an inclusive range of calendar days.
type DayRange struct {
	Start Day
	End   Day
}

// ParseDayRange parses both bounds and rejects start > end. A single-day range
// (start == end) is valid.
func ParseDayRange(start, end string) (DayRange, error) {
	s, err := ParseDay(start)
	if err != nil {
		return DayRange{}, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return DayRange{}, err
	}
	if s > e {
		return DayRange{}, fmt.Errorf("%w: start day %s is after end day %s", ErrInvalidInterval, s, e)
	}
	return DayRange{Start: s, End: e}, nil
}

func (r DayRange) Contains(d Day) bool {
	return d >= r.Start && d <= r.End
}

// Days is the inclusive number of calendar days in the range.
func (r DayRange) Days() int {
	// UTC midnights are exactly 24h apart, no DST drift.
	return int(r.End.time().Sub(r.Start.time()).Hours()/24) + 1
}
