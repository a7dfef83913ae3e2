package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
)

type EventStorage struct {
	db *gorm.DB
}

func NewEventStorage(db *gorm.DB) *EventStorage {
	return &EventStorage{
		db: db,
	}
}

// Create is a function that creates a new event in the database.
func (s *EventStorage) Create(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	err := s.db.WithContext(ctx).Create(event).Error
	return event, err
}

// Get is a function that gets an event from the database by id.
func (s *EventStorage) Get(ctx context.Context, id string) (*entity.Event, error) {
	id, ok := parseID(id)
	if !ok {
		return nil, errorz.ErrEventNotFound
	}

	var event entity.Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete is a function that deletes an event from the database by id.
func (s *EventStorage) Delete(ctx context.Context, id string) error {
	id, ok := parseID(id)
	if !ok {
		return errorz.ErrEventNotFound
	}

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errorz.ErrEventNotFound
	}
	return nil
}

// ListUpcomingByClubIDs returns the events of the given clubs dated on or after from,
// ordered by date. At most errorz.MaxInValues club ids are accepted.
func (s *EventStorage) ListUpcomingByClubIDs(ctx context.Context, clubIDs []string, from string) ([]entity.Event, error) {
	return listUpcoming(s.db.WithContext(ctx).Model(&entity.Event{}), clubIDs, from)
}

// DeleteBefore deletes every event dated strictly before cutoff in a single transaction
// and returns how many were removed.
func (s *EventStorage) DeleteBefore(ctx context.Context, cutoff string) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&entity.Event{}).Where("date < ?", cutoff).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("select expired events: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		res := tx.Where("id IN ?", ids).Delete(&entity.Event{})
		if res.Error != nil {
			return fmt.Errorf("delete expired events: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// PublicEventStorage reads events the way anonymous visitors see them:
// only events of clubs approved for publication.
type PublicEventStorage struct {
	db *gorm.DB
}

func NewPublicEventStorage(db *gorm.DB) *PublicEventStorage {
	return &PublicEventStorage{
		db: db,
	}
}

func (s *PublicEventStorage) ListUpcomingByClubIDs(ctx context.Context, clubIDs []string, from string) ([]entity.Event, error) {
	query := s.db.WithContext(ctx).
		Model(&entity.Event{}).
		Select("events.*").
		Joins("JOIN runclubs ON runclubs.id = events.club_id AND runclubs.approved_for_publication = ?", true)
	return listUpcoming(query, clubIDs, from)
}

func listUpcoming(query *gorm.DB, clubIDs []string, from string) ([]entity.Event, error) {
	if len(clubIDs) > errorz.MaxInValues {
		return nil, fmt.Errorf("%d club ids: %w", len(clubIDs), errorz.ErrTooManyValues)
	}

	ids := make([]string, 0, len(clubIDs))
	for _, id := range clubIDs {
		if parsed, ok := parseID(id); ok {
			ids = append(ids, parsed)
		}
	}

	events := make([]entity.Event, 0)
	if len(ids) == 0 {
		return events, nil
	}

	err := query.
		Where("events.club_id IN ? AND events.date >= ?", ids, from).
		Order("events.date").
		Order("events.start_time").
		Find(&events).Error
	return events, err
}
