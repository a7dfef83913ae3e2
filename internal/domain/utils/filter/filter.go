// Package filter narrows and groups already-fetched clubs and events for display.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
)

// AllCities is the city selector value that disables city filtering.
const AllCities = "all"

// NoDateKey buckets events without a date.
const NoDateKey = "No date"

// Clubs applies the city selector and then the search text.
func Clubs(clubs []entity.Club, city, search string) []entity.Club {
	return BySearch(ByCity(clubs, city), search)
}

// ByCity keeps clubs whose city equals city exactly. AllCities keeps everything.
func ByCity(clubs []entity.Club, city string) []entity.Club {
	out := make([]entity.Club, 0, len(clubs))
	for _, club := range clubs {
		if city == AllCities || (club.City != "" && club.City == city) {
			out = append(out, club)
		}
	}
	return out
}

// BySearch keeps clubs whose name, area or city contains search, ignoring case.
// An empty search keeps everything.
func BySearch(clubs []entity.Club, search string) []entity.Club {
	out := make([]entity.Club, 0, len(clubs))
	if search == "" {
		return append(out, clubs...)
	}
	needle := strings.ToLower(search)
	for _, club := range clubs {
		if containsFold(club.Name, needle) || containsFold(club.Area, needle) || containsFold(club.City, needle) {
			out = append(out, club)
		}
	}
	return out
}

func containsFold(field, lowerNeedle string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), lowerNeedle)
}

// RunningToday keeps clubs that run on the weekday of now.
func RunningToday(clubs []entity.Club, now time.Time) []entity.Club {
	out := make([]entity.Club, 0)
	for _, club := range clubs {
		if RunsOn(club, now.Weekday()) {
			out = append(out, club)
		}
	}
	return out
}

// RunsOn reports whether one of the club run days names weekday, either in full
// ("Monday") or by its three-letter abbreviation ("Mon").
func RunsOn(club entity.Club, weekday time.Weekday) bool {
	full := strings.ToLower(weekday.String())
	short := full[:3]
	for _, day := range club.RunDays {
		day = strings.ToLower(day)
		if strings.Contains(day, full) || strings.Contains(day, short) {
			return true
		}
	}
	return false
}

// Cities lists the distinct non-empty cities of clubs in ascending order.
func Cities(clubs []entity.Club) []string {
	seen := make(map[string]struct{})
	cities := make([]string, 0)
	for _, club := range clubs {
		if club.City == "" {
			continue
		}
		if _, ok := seen[club.City]; ok {
			continue
		}
		seen[club.City] = struct{}{}
		cities = append(cities, club.City)
	}
	sort.Strings(cities)
	return cities
}

// CityCounts counts, for every candidate city, the clubs with exactly that city.
func CityCounts(clubs []entity.Club, cities []string) []dto.CityCount {
	counts := make(map[string]int, len(cities))
	for _, club := range clubs {
		counts[club.City]++
	}
	out := make([]dto.CityCount, 0, len(cities))
	for _, city := range cities {
		out = append(out, dto.CityCount{City: city, Count: counts[city]})
	}
	return out
}

// GroupByDate buckets events by date. Keys are in ascending string order, which is
// chronological for ISO dates; each bucket keeps the input order.
func GroupByDate(events []entity.Event) []dto.EventDay {
	buckets := make(map[string][]entity.Event)
	keys := make([]string, 0)
	for _, event := range events {
		key := event.Date
		if key == "" {
			key = NoDateKey
		}
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], event)
	}
	sort.Strings(keys)

	days := make([]dto.EventDay, 0, len(keys))
	for _, key := range keys {
		days = append(days, dto.EventDay{Date: key, Events: buckets[key]})
	}
	return days
}
