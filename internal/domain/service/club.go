package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/clock"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/filter"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/schedule"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/slug"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

// NextRunsCount is how many upcoming regular runs club details list.
const NextRunsCount = 5

type ClubStorage interface {
	Create(ctx context.Context, club *entity.Club) (*entity.Club, error)
	Get(ctx context.Context, id string) (*entity.Club, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Club, error)
	Update(ctx context.Context, club *entity.Club) (*entity.Club, error)
	ListApproved(ctx context.Context) ([]entity.Club, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Club, error)
	ListPending(ctx context.Context) ([]entity.Club, error)
	Approve(ctx context.Context, id string) error
}

type Validator interface {
	Struct(s any) error
}

type clubNotifier interface {
	ClubRegistered(club entity.Club) error
}

type logoSaver interface {
	Save(r io.Reader) (string, error)
	Remove(url string) error
}

type ClubService struct {
	storage   ClubStorage
	validator Validator
	notifier  clubNotifier
	logos     logoSaver
	clock     clock.Clock
	logger    *types.Logger
}

func NewClubService(
	storage ClubStorage,
	validator Validator,
	notifier clubNotifier,
	logos logoSaver,
	clk clock.Clock,
	logger *types.Logger,
) *ClubService {
	return &ClubService{
		storage:   storage,
		validator: validator,
		notifier:  notifier,
		logos:     logos,
		clock:     clk,
		logger:    logger,
	}
}

// Register stores a new club owned by ownerID. New clubs wait for moderation
// and are hidden from the directory until approved.
func (s *ClubService) Register(ctx context.Context, ownerID string, in dto.ClubInput) (*entity.Club, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	club := &entity.Club{OwnerID: ownerID}
	in.Apply(club)
	club.Slug = slug.Make(club.Name)
	club.ApprovedForPublication = false

	club, err := s.storage.Create(ctx, club)
	if err != nil {
		return nil, fmt.Errorf("create club: %w", err)
	}
	s.logger.Infof("Club registered (club_id=%s, owner_id=%s)", club.ID, ownerID)

	if err = s.notifier.ClubRegistered(*club); err != nil {
		s.logger.Errorf("failed to notify moderators about club %s: %v", club.ID, err)
	}
	return club, nil
}

// Update replaces the editable fields of a club owned by callerID.
func (s *ClubService) Update(ctx context.Context, callerID, clubID string, in dto.ClubInput) (*entity.Club, error) {
	club, err := s.owned(ctx, callerID, clubID)
	if err != nil {
		return nil, err
	}
	if err = s.validator.Struct(in); err != nil {
		return nil, err
	}

	in.Apply(club)
	club.Slug = slug.Make(club.Name)

	club, err = s.storage.Update(ctx, club)
	if err != nil {
		return nil, fmt.Errorf("update club: %w", err)
	}
	return club, nil
}

func (s *ClubService) Approve(ctx context.Context, clubID string) error {
	if err := s.storage.Approve(ctx, clubID); err != nil {
		return err
	}
	s.logger.Infof("Club approved for publication (club_id=%s)", clubID)
	return nil
}

func (s *ClubService) Get(ctx context.Context, id string) (*entity.Club, error) {
	return s.storage.Get(ctx, id)
}

// GetPublic returns a club only if it is approved for publication.
func (s *ClubService) GetPublic(ctx context.Context, id string) (*entity.Club, error) {
	club, err := s.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !club.ApprovedForPublication {
		return nil, errorz.ErrClubNotFound
	}
	return club, nil
}

// Details returns a published club together with its next regular runs.
func (s *ClubService) Details(ctx context.Context, id string) (*dto.ClubDetails, error) {
	club, err := s.GetPublic(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.details(*club), nil
}

// DetailsBySlug resolves a public page link. Only published clubs are found.
func (s *ClubService) DetailsBySlug(ctx context.Context, slug string) (*dto.ClubDetails, error) {
	club, err := s.storage.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.details(*club), nil
}

func (s *ClubService) details(club entity.Club) *dto.ClubDetails {
	runs, err := schedule.NextRuns(club, s.clock.Now(), NextRunsCount)
	if err != nil {
		s.logger.Debugf("no regular runs for club %s: %v", club.ID, err)
		runs = nil
	}
	if runs == nil {
		runs = []time.Time{}
	}
	return &dto.ClubDetails{Club: club, NextRuns: runs}
}

func (s *ClubService) ListApproved(ctx context.Context) ([]entity.Club, error) {
	return s.storage.ListApproved(ctx)
}

func (s *ClubService) ListByOwner(ctx context.Context, ownerID string) ([]entity.Club, error) {
	return s.storage.ListByOwner(ctx, ownerID)
}

func (s *ClubService) ListPending(ctx context.Context) ([]entity.Club, error) {
	return s.storage.ListPending(ctx)
}

// Directory lists published clubs narrowed by city and search text.
// City counts are computed on the search result so the selector reflects the search.
func (s *ClubService) Directory(ctx context.Context, city, search string) (*dto.ClubList, error) {
	if city == "" {
		city = filter.AllCities
	}

	clubs, err := s.storage.ListApproved(ctx)
	if err != nil {
		return nil, err
	}

	searched := filter.BySearch(clubs, search)
	result := filter.ByCity(searched, city)

	return &dto.ClubList{
		Clubs:        result,
		RunningToday: filter.RunningToday(result, s.clock.Now()),
		Cities:       filter.CityCounts(searched, filter.Cities(clubs)),
		Total:        len(result),
	}, nil
}

// SetLogo stores a new logo for a club owned by callerID and returns its URL.
// The previous logo file is removed once the club points at the new one.
func (s *ClubService) SetLogo(ctx context.Context, callerID, clubID string, image io.Reader) (string, error) {
	club, err := s.owned(ctx, callerID, clubID)
	if err != nil {
		return "", err
	}

	url, err := s.logos.Save(image)
	if err != nil {
		return "", err
	}

	previous := club.LogoURL
	club.LogoURL = url
	if _, err = s.storage.Update(ctx, club); err != nil {
		s.removeLogo(club.ID, url)
		return "", fmt.Errorf("update club logo: %w", err)
	}
	if previous != "" && previous != url {
		s.removeLogo(club.ID, previous)
	}
	return url, nil
}

func (s *ClubService) removeLogo(clubID, url string) {
	if err := s.logos.Remove(url); err != nil {
		s.logger.Warnf("failed to remove logo %s of club %s: %v", url, clubID, err)
	}
}

// owned loads a club and checks that callerID owns it.
func (s *ClubService) owned(ctx context.Context, callerID, clubID string) (*entity.Club, error) {
	club, err := s.storage.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !club.IsOwnedBy(callerID) {
		return nil, errorz.ErrForbidden
	}
	return club, nil
}
