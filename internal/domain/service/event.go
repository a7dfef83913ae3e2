package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/calendar"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/clock"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/filter"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

type EventStorage interface {
	Create(ctx context.Context, event *entity.Event) (*entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Event, error)
	Delete(ctx context.Context, id string) error
}

// EventReader lists upcoming events of at most errorz.MaxInValues clubs per call,
// ordered by date.
type EventReader interface {
	ListUpcomingByClubIDs(ctx context.Context, clubIDs []string, from string) ([]entity.Event, error)
}

type eventClubStorage interface {
	Get(ctx context.Context, id string) (*entity.Club, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Club, error)
}

type EventService struct {
	storage   EventStorage
	reader    EventReader
	clubs     eventClubStorage
	validator Validator
	clock     clock.Clock
	location  *time.Location
	baseURL   string
	logger    *types.Logger
}

func NewEventService(
	storage EventStorage,
	reader EventReader,
	clubs eventClubStorage,
	validator Validator,
	clk clock.Clock,
	location *time.Location,
	baseURL string,
	logger *types.Logger,
) *EventService {
	return &EventService{
		storage:   storage,
		reader:    reader,
		clubs:     clubs,
		validator: validator,
		clock:     clk,
		location:  location,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Create stores an event for a club owned by callerID.
func (s *EventService) Create(ctx context.Context, callerID string, in dto.EventInput) (*entity.Event, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	club, err := s.clubs.Get(ctx, in.ClubID)
	if err != nil {
		return nil, err
	}
	if !club.IsOwnedBy(callerID) {
		return nil, errorz.ErrForbidden
	}

	event := dto.NewEventFromInput(in, callerID)
	created, err := s.storage.Create(ctx, &event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Infof("Event created (event_id=%s, club_id=%s, date=%s)", created.ID, club.ID, created.Date)
	return created, nil
}

// Delete removes an event of a club owned by callerID.
func (s *EventService) Delete(ctx context.Context, callerID, eventID string) error {
	event, err := s.storage.Get(ctx, eventID)
	if err != nil {
		return err
	}

	club, err := s.clubs.Get(ctx, event.ClubID)
	if err != nil {
		return err
	}
	if !club.IsOwnedBy(callerID) {
		return errorz.ErrForbidden
	}

	if err = s.storage.Delete(ctx, eventID); err != nil {
		return err
	}
	s.logger.Infof("Event deleted (event_id=%s, club_id=%s)", eventID, club.ID)
	return nil
}

// UpcomingForClubs returns events dated today or later for the given clubs.
// Ids are queried in chunks of errorz.MaxInValues and the results are concatenated in chunk
// order without re-sorting. Any failure is logged and yields an empty list.
func (s *EventService) UpcomingForClubs(ctx context.Context, clubIDs []string) []entity.Event {
	events := make([]entity.Event, 0)
	if len(clubIDs) == 0 {
		return events
	}

	today := clock.Today(s.clock)
	for start := 0; start < len(clubIDs); start += errorz.MaxInValues {
		end := min(start+errorz.MaxInValues, len(clubIDs))

		chunk, err := s.reader.ListUpcomingByClubIDs(ctx, clubIDs[start:end], today)
		if err != nil {
			s.logger.Errorf("failed to list upcoming events (clubs=%d, chunk=%d-%d): %v", len(clubIDs), start, end, err)
			return make([]entity.Event, 0)
		}
		events = append(events, chunk...)
	}
	return events
}

// ListForClub returns the upcoming events of one club grouped by date.
func (s *EventService) ListForClub(ctx context.Context, clubID string) []dto.EventDay {
	return filter.GroupByDate(s.UpcomingForClubs(ctx, []string{clubID}))
}

// ListForClubs returns the upcoming events of several clubs grouped by date.
func (s *EventService) ListForClubs(ctx context.Context, clubIDs []string) []dto.EventDay {
	return filter.GroupByDate(s.UpcomingForClubs(ctx, clubIDs))
}

// Dashboard lists the clubs of ownerID and the upcoming events of all of them.
func (s *EventService) Dashboard(ctx context.Context, ownerID string) (*dto.Dashboard, error) {
	clubs, err := s.clubs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if clubs == nil {
		clubs = []entity.Club{}
	}

	ids := make([]string, 0, len(clubs))
	for _, club := range clubs {
		ids = append(ids, club.ID)
	}

	return &dto.Dashboard{
		Clubs:  clubs,
		Events: s.ListForClubs(ctx, ids),
	}, nil
}

// Calendar exports the upcoming events and the regular runs of a published club as ICS.
func (s *EventService) Calendar(ctx context.Context, clubID string) ([]byte, error) {
	club, err := s.clubs.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !club.ApprovedForPublication {
		return nil, errorz.ErrClubNotFound
	}

	events := s.UpcomingForClubs(ctx, []string{club.ID})
	return calendar.ExportClubToICS(*club, events, s.baseURL, s.location, s.clock.Now())
}
