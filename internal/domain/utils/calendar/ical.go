package calendar

import (
	"bytes"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/schedule"
)

// ExportClubToICS converts a club and its events into an iCalendar (.ics) feed.
// Every event becomes a VEVENT with a reminder one hour before it starts. When the club
// has run days, a weekly recurring VEVENT describing the regular runs is added, starting
// on the day of now. Timed starts and ends are wall-clock times in loc carrying a TZID,
// so the recurrence keeps its local hour across daylight saving changes.
func ExportClubToICS(club entity.Club, events []entity.Event, baseURL string, loc *time.Location, now time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Jooksuklubid//Run Clubs//EN")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetName(club.Name)
	cal.SetXWRCalName(club.Name)
	cal.SetXWRTimezone(loc.String())

	if rule, err := schedule.Rule(club, now.In(loc)); err == nil {
		start := rule.GetDTStart()
		e := cal.AddEvent(fmt.Sprintf("club-%s@runclubs", club.ID))
		e.SetDtStampTime(now)
		if !club.UpdatedAt.IsZero() {
			e.SetModifiedAt(club.UpdatedAt)
		}
		setLocalTime(e, ics.ComponentPropertyDtStart, start, loc)
		setLocalTime(e, ics.ComponentPropertyDtEnd, start.Add(time.Hour), loc)
		e.AddRrule(rule.OrigOptions.RRuleString())
		e.SetSummary(fmt.Sprintf("%s: regular run", club.Name))
		e.SetDescription(regularRunDescription(club))
		e.SetLocation(runLocation(club))
		e.SetURL(club.Link(baseURL))
		e.SetStatus(ics.ObjectStatusConfirmed)
		e.SetClass(ics.ClassificationPublic)
	}

	for _, event := range events {
		start, allDay, err := event.Start(loc)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", event.ID, err)
		}
		end, err := event.End(loc)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", event.ID, err)
		}

		e := cal.AddEvent(fmt.Sprintf("%s@runclubs", event.ID))
		e.SetDtStampTime(now)
		if !event.CreatedAt.IsZero() {
			e.SetCreatedTime(event.CreatedAt)
		}
		if allDay {
			e.SetAllDayStartAt(start)
			e.SetAllDayEndAt(end)
		} else {
			setLocalTime(e, ics.ComponentPropertyDtStart, start, loc)
			setLocalTime(e, ics.ComponentPropertyDtEnd, end, loc)
		}
		e.SetSummary(event.Title)
		e.SetDescription(event.About)
		if location := eventLocation(event); location != "" {
			e.SetLocation(location)
		}
		if event.LocationURL != "" {
			e.SetURL(event.LocationURL)
		}
		e.SetStatus(ics.ObjectStatusConfirmed)
		e.SetTimeTransparency(ics.TransparencyOpaque)
		e.SetClass(ics.ClassificationPublic)
		e.SetSequence(0)

		if !allDay {
			alarm := e.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.AddProperty("TRIGGER;VALUE=DURATION", "-PT1H")
			alarm.SetDescription(fmt.Sprintf("%s starts in an hour", event.Title))
		}
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, fmt.Errorf("error serializing calendar: %w", err)
	}
	return buf.Bytes(), nil
}

const localTimestampFormat = "20060102T150405"

func setLocalTime(e *ics.VEvent, property ics.ComponentProperty, t time.Time, loc *time.Location) {
	if loc == time.UTC {
		e.SetProperty(property, t.UTC().Format(localTimestampFormat+"Z"))
		return
	}
	e.SetProperty(property, t.In(loc).Format(localTimestampFormat), ics.WithTZID(loc.String()))
}

func regularRunDescription(club entity.Club) string {
	desc := fmt.Sprintf("Distance: %s", club.Distance)
	if club.Pace != "" {
		desc += fmt.Sprintf("\nPace: %s", club.Pace)
	}
	return desc
}

func runLocation(club entity.Club) string {
	if club.Address != "" {
		return fmt.Sprintf("%s, %s, %s", club.Address, club.Area, club.City)
	}
	return fmt.Sprintf("%s, %s", club.Area, club.City)
}

func eventLocation(event entity.Event) string {
	switch {
	case event.LocationName != "" && event.LocationAddress != "":
		return event.LocationName + ", " + event.LocationAddress
	case event.LocationName != "":
		return event.LocationName
	default:
		return event.LocationAddress
	}
}
