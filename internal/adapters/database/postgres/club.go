package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
)

type ClubStorage struct {
	db *gorm.DB
}

func NewClubStorage(db *gorm.DB) *ClubStorage {
	return &ClubStorage{
		db: db,
	}
}

// parseID returns the canonical form of a uuid id. Malformed ids cannot match any row.
func parseID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// Create is a function that creates a new club in the database.
func (s *ClubStorage) Create(ctx context.Context, club *entity.Club) (*entity.Club, error) {
	err := s.db.WithContext(ctx).Create(club).Error
	return club, err
}

// Get is a function that gets a club from the database by id.
func (s *ClubStorage) Get(ctx context.Context, id string) (*entity.Club, error) {
	id, ok := parseID(id)
	if !ok {
		return nil, errorz.ErrClubNotFound
	}

	var club entity.Club
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&club).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.ErrClubNotFound
	}
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func (s *ClubStorage) GetBySlug(ctx context.Context, slug string) (*entity.Club, error) {
	var club entity.Club
	err := s.db.WithContext(ctx).
		Where("slug = ? AND approved_for_publication = ?", slug, true).
		Order("created_at").
		First(&club).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.ErrClubNotFound
	}
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// Update saves the editable fields of a club. Approval, ownership and creation time
// are left as stored, and the returned club reflects the stored row.
func (s *ClubStorage) Update(ctx context.Context, club *entity.Club) (*entity.Club, error) {
	err := s.db.WithContext(ctx).
		Omit("approved_for_publication", "owner_id", "created_at").
		Save(club).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, club.ID)
}

// ListApproved returns the clubs visible in the public directory, ordered by name.
func (s *ClubStorage) ListApproved(ctx context.Context) ([]entity.Club, error) {
	var clubs []entity.Club
	err := s.db.WithContext(ctx).
		Where("approved_for_publication = ?", true).
		Order("name").
		Find(&clubs).Error
	return clubs, err
}

func (s *ClubStorage) ListByOwner(ctx context.Context, ownerID string) ([]entity.Club, error) {
	var clubs []entity.Club
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Find(&clubs).Error
	return clubs, err
}

// ListPending returns the clubs waiting for moderation, oldest first.
func (s *ClubStorage) ListPending(ctx context.Context) ([]entity.Club, error) {
	var clubs []entity.Club
	err := s.db.WithContext(ctx).
		Where("approved_for_publication = ?", false).
		Order("created_at").
		Find(&clubs).Error
	return clubs, err
}

// Approve marks a club as approved for publication.
func (s *ClubStorage) Approve(ctx context.Context, id string) error {
	id, ok := parseID(id)
	if !ok {
		return errorz.ErrClubNotFound
	}

	res := s.db.WithContext(ctx).
		Model(&entity.Club{}).
		Where("id = ?", id).
		Update("approved_for_publication", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errorz.ErrClubNotFound
	}
	return nil
}
