/*
dayrange.go - Civil day-boundary calculation for the operating timezone

PURPOSE:
  Every budget in this system is scoped to a civil day in the operating
  region, while all timestamps are stored as UTC instants. This file turns
  "a civil date in a named zone" into the UTC instant range
  [startOfDay, startOfNextDay).

WHY NOT A LITERAL OFFSET:
  Adding a fixed hour count to UTC silently breaks the moment the zone's
  rules change. The conversion here goes through the host timezone
  database and verifies the chosen instant reads back as civil midnight of
  the requested date. If timezone data is missing the calculation fails
  fast; a silent UTC fallback would shift every budget boundary by the
  offset amount.

PURITY:
  DayBounds and friends take the date explicitly and never read the wall
  clock. "Today" is derived by the caller from an injected Clock.

SEE ALSO:
  - payout/planner.go: uses today's bounds for eligibility
  - instantwin/monitor.go: uses today's bounds for the prize-pool ceiling
*/
package engine

import (
	"fmt"
	"time"
)

// Clock supplies the current instant. Injectable for testability;
// production uses time.Now.
type Clock func() time.Time

// =============================================================================
// CIVIL DATE
// =============================================================================

// CivilDate is a calendar date with no time or zone attached.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCivilDate parses a YYYY-MM-DD string.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// AddDays returns the civil date n days later (negative n allowed).
func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Before reports whether d is earlier than other.
func (d CivilDate) Before(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// CivilDateAt returns the civil date of instant t in the named zone.
func CivilDateAt(t time.Time, zoneName string) (CivilDate, error) {
	loc, err := loadZone(zoneName)
	if err != nil {
		return CivilDate{}, err
	}
	y, m, day := t.In(loc).Date()
	return CivilDate{Year: y, Month: m, Day: day}, nil
}

// =============================================================================
// DAY BOUNDS
// =============================================================================

// DayBounds returns the UTC instants [start, end) covering the civil date in
// the named zone: start is civil midnight, end is the next civil midnight.
func DayBounds(d CivilDate, zoneName string) (start, end time.Time, err error) {
	loc, err := loadZone(zoneName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err = civilMidnight(d, loc, zoneName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = civilMidnight(d.AddDays(1), loc, zoneName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// TodayBounds returns DayBounds for the civil date containing now.
func TodayBounds(now time.Time, zoneName string) (start, end time.Time, err error) {
	d, err := CivilDateAt(now, zoneName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return DayBounds(d, zoneName)
}

// WeekBounds returns the UTC instants covering the ISO week (Monday..Sunday)
// containing the civil date.
func WeekBounds(d CivilDate, zoneName string) (start, end time.Time, err error) {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	back := (int(t.Weekday()) + 6) % 7 // days since Monday
	return rangeBounds(d.AddDays(-back), d.AddDays(-back).AddDays(7), zoneName)
}

// MonthBounds returns the UTC instants covering the calendar month
// containing the civil date.
func MonthBounds(d CivilDate, zoneName string) (start, end time.Time, err error) {
	first := CivilDate{Year: d.Year, Month: d.Month, Day: 1}
	next := time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return rangeBounds(first, CivilDate{Year: next.Year(), Month: next.Month(), Day: 1}, zoneName)
}

func rangeBounds(from, to CivilDate, zoneName string) (time.Time, time.Time, error) {
	loc, err := loadZone(zoneName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := civilMidnight(from, loc, zoneName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := civilMidnight(to, loc, zoneName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// civilMidnight resolves civil midnight of d in loc and verifies the chosen
// instant formats back to the requested date at 00:00. The round trip
// catches zones where midnight does not exist on a given date (a DST jump);
// the operating regions have no DST, so a failure here means bad zone data.
func civilMidnight(d CivilDate, loc *time.Location, zoneName string) (time.Time, error) {
	candidate := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	local := candidate.In(loc)
	y, m, day := local.Date()
	if y != d.Year || m != d.Month || day != d.Day ||
		local.Hour() != 0 || local.Minute() != 0 || local.Second() != 0 {
		return time.Time{}, &TimezoneError{
			Zone: zoneName,
			Err:  fmt.Errorf("civil midnight of %s does not exist in this zone", d),
		}
	}
	return candidate.UTC(), nil
}

func loadZone(zoneName string) (*time.Location, error) {
	if zoneName == "" {
		return nil, &TimezoneError{Zone: zoneName, Err: fmt.Errorf("zone name is empty")}
	}
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, &TimezoneError{Zone: zoneName, Err: err}
	}
	return loc, nil
}
