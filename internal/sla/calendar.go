package sla

import (
	"fmt"
	"math"
	"time"
)

const dateKeyLayout = "2006-01-02"

// WorkWeek describes the working schedule used for SLA arithmetic.
type WorkWeek struct {
	Days      []time.Weekday
	StartHour int
	EndHour   int
	// Location is the zone working hours are expressed in. Nil means UTC.
	Location *time.Location
	// Holidays are calendar dates (interpreted in Location) treated as
	// non-working days.
	Holidays []time.Time
}

// DefaultWorkWeek returns Monday to Friday, 09:00-18:00 UTC.
func DefaultWorkWeek() WorkWeek {
	return WorkWeek{
		Days:      []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		StartHour: 9,
		EndHour:   18,
		Location:  time.UTC,
	}
}

// Calendar adds and measures business hours. It is immutable and safe for
// concurrent use.
type Calendar struct {
	workDays  [7]bool
	startHour int
	endHour   int
	loc       *time.Location
	holidays  map[string]struct{}
}

// NewCalendar validates the work week and builds a calendar.
func NewCalendar(week WorkWeek) (*Calendar, error) {
	if week.StartHour < 0 || week.StartHour > 23 {
		return nil, fmt.Errorf("%w: start hour %d out of range", ErrInvalidArgument, week.StartHour)
	}
	if week.EndHour < 1 || week.EndHour > 24 {
		return nil, fmt.Errorf("%w: end hour %d out of range", ErrInvalidArgument, week.EndHour)
	}
	if week.EndHour <= week.StartHour {
		return nil, fmt.Errorf("%w: end hour %d must be after start hour %d", ErrInvalidArgument, week.EndHour, week.StartHour)
	}

	cal := &Calendar{
		startHour: week.StartHour,
		endHour:   week.EndHour,
		loc:       week.Location,
		holidays:  make(map[string]struct{}, len(week.Holidays)),
	}
	if cal.loc == nil {
		cal.loc = time.UTC
	}

	count := 0
	for _, day := range week.Days {
		if day < time.Sunday || day > time.Saturday {
			return nil, fmt.Errorf("%w: unknown weekday %d", ErrInvalidArgument, day)
		}
		if !cal.workDays[day] {
			cal.workDays[day] = true
			count++
		}
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: work week needs at least one working day", ErrInvalidArgument)
	}

	for _, h := range week.Holidays {
		y, m, d := h.Date()
		cal.holidays[time.Date(y, m, d, 0, 0, 0, 0, cal.loc).Format(dateKeyLayout)] = struct{}{}
	}
	return cal, nil
}

// HoursPerDay is the length of one working day.
func (c *Calendar) HoursPerDay() int {
	return c.endHour - c.startHour
}

// Location returns the zone the calendar evaluates working hours in.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// AddBusinessHours advances start by hours of working time, skipping
// non-working days and hours. The result is expressed in start's location.
func (c *Calendar) AddBusinessHours(start time.Time, hours float64) (time.Time, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return time.Time{}, fmt.Errorf("%w: business hours must be finite and non-negative, got %v", ErrInvalidArgument, hours)
	}
	if hours == 0 {
		return start, nil
	}

	current := start.In(c.loc)
	remaining := hours
	for remaining > 0 {
		if !c.isWorkingDay(current) {
			current = c.nextDayStart(current)
			continue
		}
		if current.Hour() < c.startHour {
			current = c.atHour(current, c.startHour)
		} else if current.Hour() >= c.endHour {
			// exactly at end hour counts as the day being over
			current = c.nextDayStart(current)
			continue
		}

		hoursLeftToday := c.atHour(current, c.endHour).Sub(current).Hours()
		if remaining <= hoursLeftToday {
			current = current.Add(hoursToDuration(remaining))
			remaining = 0
		} else {
			remaining -= hoursLeftToday
			current = c.nextDayStart(current)
		}
	}
	return current.In(start.Location()), nil
}

// BusinessHoursBetween measures the working time elapsed between from and
// to. It returns zero when to is not after from.
func (c *Calendar) BusinessHoursBetween(from, to time.Time) time.Duration {
	if !to.After(from) {
		return 0
	}
	from = from.In(c.loc)
	to = to.In(c.loc)

	var total time.Duration
	day := c.atHour(from, 0)
	for day.Before(to) {
		if c.isWorkingDay(day) {
			lo := maxTime(c.atHour(day, c.startHour), from)
			hi := minTime(c.atHour(day, c.endHour), to)
			if hi.After(lo) {
				total += hi.Sub(lo)
			}
		}
		day = c.nextDayAt(day, 0)
	}
	return total
}

// IsBusinessTime reports whether t falls inside working hours.
func (c *Calendar) IsBusinessTime(t time.Time) bool {
	t = t.In(c.loc)
	if !c.isWorkingDay(t) {
		return false
	}
	return !t.Before(c.atHour(t, c.startHour)) && t.Before(c.atHour(t, c.endHour))
}

func (c *Calendar) isWorkingDay(t time.Time) bool {
	if !c.workDays[t.Weekday()] {
		return false
	}
	_, holiday := c.holidays[t.Format(dateKeyLayout)]
	return !holiday
}

func (c *Calendar) atHour(t time.Time, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, c.loc)
}

func (c *Calendar) nextDayAt(t time.Time, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, hour, 0, 0, 0, c.loc)
}

func (c *Calendar) nextDayStart(t time.Time) time.Time {
	return c.nextDayAt(t, c.startHour)
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(math.Round(hours * float64(time.Hour)))
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
