package entity

import (
	"time"
)

// DateLayout is the ISO calendar-day format events are stored and compared in.
const DateLayout = "2006-01-02"

// TimeLayout is the time-of-day format of event and club start times.
const TimeLayout = "15:04"

type Event struct {
	ID              string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	Title           string    `gorm:"not null" json:"title"`
	Date            string    `gorm:"type:varchar(10);index;not null" json:"date"`
	StartTime       string    `json:"startTime,omitempty"`
	EndTime         string    `json:"endTime,omitempty"`
	LocationName    string    `json:"locationName,omitempty"`
	LocationAddress string    `json:"locationAddress,omitempty"`
	LocationURL     string    `json:"locationUrl,omitempty"`
	About           string    `json:"about"`
	ClubID          string    `gorm:"type:uuid;index;not null" json:"clubId"`
	CreatedBy       string    `gorm:"type:uuid;not null" json:"createdBy"`
}

func (Event) TableName() string {
	return "events"
}

// IsOver checks if the event date lies strictly before today ("YYYY-MM-DD").
// ISO dates compare correctly as strings.
func (e *Event) IsOver(today string) bool {
	return e.Date < today
}

// Start returns the moment the event begins in loc.
// Events without a start time begin at midnight; allDay is true for them.
func (e *Event) Start(loc *time.Location) (start time.Time, allDay bool, err error) {
	if e.StartTime == "" {
		start, err = time.ParseInLocation(DateLayout, e.Date, loc)
		return start, true, err
	}
	start, err = time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.StartTime, loc)
	return start, false, err
}

// End returns the moment the event ends in loc.
// Without an end time the event is assumed to last one hour.
func (e *Event) End(loc *time.Location) (time.Time, error) {
	start, allDay, err := e.Start(loc)
	if err != nil {
		return time.Time{}, err
	}
	if allDay {
		return start.AddDate(0, 0, 1), nil
	}
	if e.EndTime == "" {
		return start.Add(time.Hour), nil
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.EndTime, loc)
}
