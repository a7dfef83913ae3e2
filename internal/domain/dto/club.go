package dto

import (
	"strings"
	"time"

	"github.com/jooksuklubid/runclubs/internal/domain/entity"
)

type Socials struct {
	Instagram string `json:"instagram" validate:"omitempty,url,max=200"`
	Facebook  string `json:"facebook" validate:"omitempty,url,max=200"`
	Strava    string `json:"strava" validate:"omitempty,url,max=200"`
	Website   string `json:"website" validate:"omitempty,url,max=200"`
}

// ClubInput is the registration and edit form of a club.
type ClubInput struct {
	Name        string   `json:"name" validate:"required,min=3,max=80"`
	City        string   `json:"city" validate:"required,max=60"`
	Area        string   `json:"area" validate:"required,max=80"`
	Address     string   `json:"address" validate:"max=200"`
	Distance    string   `json:"distance" validate:"required,max=40"`
	Pace        string   `json:"pace" validate:"max=60"`
	RunDays     []string `json:"runDays" validate:"required,min=1,max=7,dive,weekday"`
	StartTime   string   `json:"startTime" validate:"omitempty,clock"`
	Description string   `json:"description" validate:"required,max=2000"`
	Email       string   `json:"email" validate:"required,email,max=120"`
	Socials     Socials  `json:"socials"`
}

// Apply copies the form onto club, leaving identity, ownership and approval untouched.
func (in ClubInput) Apply(club *entity.Club) {
	club.Name = strings.TrimSpace(in.Name)
	club.City = strings.TrimSpace(in.City)
	club.Area = strings.TrimSpace(in.Area)
	club.Address = strings.TrimSpace(in.Address)
	club.Distance = strings.TrimSpace(in.Distance)
	club.Pace = strings.TrimSpace(in.Pace)
	club.RunDays = normalizeRunDays(in.RunDays)
	club.StartTime = in.StartTime
	club.Description = strings.TrimSpace(in.Description)
	club.Email = strings.ToLower(strings.TrimSpace(in.Email))
	club.Socials = entity.Socials{
		Instagram: in.Socials.Instagram,
		Facebook:  in.Socials.Facebook,
		Strava:    in.Socials.Strava,
		Website:   in.Socials.Website,
	}
}

// normalizeRunDays title-cases weekday names and drops duplicates, keeping input order.
func normalizeRunDays(days []string) []string {
	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, day := range days {
		day = strings.ToLower(strings.TrimSpace(day))
		if day == "" {
			continue
		}
		day = strings.ToUpper(day[:1]) + day[1:]
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	return out
}

// CityCount is one option of the city selector.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// ClubList is the public directory listing.
type ClubList struct {
	Clubs        []entity.Club `json:"clubs"`
	RunningToday []entity.Club `json:"runningToday"`
	Cities       []CityCount   `json:"cities"`
	Total        int           `json:"total"`
}

// ClubDetails is a single club together with its upcoming regular runs.
type ClubDetails struct {
	entity.Club
	NextRuns []time.Time `json:"nextRuns"`
}

type Dashboard struct {
	Clubs  []entity.Club `json:"clubs"`
	Events []EventDay    `json:"events"`
}
