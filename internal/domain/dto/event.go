package dto

import (
	"strings"

	"github.com/jooksuklubid/runclubs/internal/domain/entity"
)

// EventInput is the creation form of an event.
type EventInput struct {
	Title           string `json:"title" validate:"required,min=3,max=120"`
	Date            string `json:"date" validate:"required,isodate,notpast"`
	StartTime       string `json:"startTime" validate:"omitempty,clock"`
	EndTime         string `json:"endTime" validate:"omitempty,clock"`
	LocationName    string `json:"locationName" validate:"max=120"`
	LocationAddress string `json:"locationAddress" validate:"max=200"`
	LocationURL     string `json:"locationUrl" validate:"omitempty,url,max=300"`
	About           string `json:"about" validate:"required,max=2000"`
	ClubID          string `json:"clubId" validate:"required,uuid"`
}

// NewEventFromInput builds an event owned by clubID and created by createdBy.
func NewEventFromInput(in EventInput, createdBy string) entity.Event {
	return entity.Event{
		Title:           strings.TrimSpace(in.Title),
		Date:            in.Date,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		LocationName:    strings.TrimSpace(in.LocationName),
		LocationAddress: strings.TrimSpace(in.LocationAddress),
		LocationURL:     in.LocationURL,
		About:           strings.TrimSpace(in.About),
		ClubID:          in.ClubID,
		CreatedBy:       createdBy,
	}
}

// EventDay is one date divider of an event listing.
type EventDay struct {
	Date   string         `json:"date"`
	Events []entity.Event `json:"events"`
}
