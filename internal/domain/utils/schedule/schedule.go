// Package schedule expands the weekly run days of a club into concrete dates.
package schedule

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
)

var weekdays = []struct {
	name string
	day  rrule.Weekday
}{
	{"monday", rrule.MO},
	{"tuesday", rrule.TU},
	{"wednesday", rrule.WE},
	{"thursday", rrule.TH},
	{"friday", rrule.FR},
	{"saturday", rrule.SA},
	{"sunday", rrule.SU},
}

// Weekdays maps run-day entries to rrule weekdays. An entry matches a weekday when its
// lowercase form contains the full English name or its three-letter abbreviation.
func Weekdays(runDays []string) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(runDays))
	for _, wd := range weekdays {
		for _, day := range runDays {
			day = strings.ToLower(day)
			if strings.Contains(day, wd.name) || strings.Contains(day, wd.name[:3]) {
				out = append(out, wd.day)
				break
			}
		}
	}
	return out
}

// Rule builds the weekly recurrence of club runs starting on the day of from.
// Runs start at the club start time, or at midnight when it is not set.
func Rule(club entity.Club, from time.Time) (*rrule.RRule, error) {
	days := Weekdays(club.RunDays)
	if len(days) == 0 {
		return nil, errorz.ErrNoRunDays
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	if club.StartTime != "" {
		if t, err := time.Parse(entity.TimeLayout, club.StartTime); err == nil {
			start = start.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
		}
	}

	return rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   start,
		Byweekday: days,
	})
}

// NextRuns returns up to n run starts at or after from.
func NextRuns(club entity.Club, from time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return []time.Time{}, nil
	}
	rule, err := Rule(club, from)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, n)
	next := rule.Iterator()
	for len(out) < n {
		t, ok := next()
		if !ok {
			break
		}
		if t.Before(from) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
