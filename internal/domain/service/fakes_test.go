package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/clock"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/validator"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func testClock() clock.Clock {
	return clock.NewFixed(testNow)
}

func testValidator() *validator.Validator {
	return validator.New(testClock())
}

type fakeClubStorage struct {
	mu        sync.Mutex
	clubs     map[string]*entity.Club
	nextID    int
	err       error
	updateErr error
}

func newFakeClubStorage(clubs ...entity.Club) *fakeClubStorage {
	s := &fakeClubStorage{clubs: make(map[string]*entity.Club)}
	for i := range clubs {
		club := clubs[i]
		s.clubs[club.ID] = &club
	}
	return s
}

func (s *fakeClubStorage) Create(_ context.Context, club *entity.Club) (*entity.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	club.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", s.nextID)
	stored := *club
	s.clubs[club.ID] = &stored
	return club, nil
}

func (s *fakeClubStorage) Get(_ context.Context, id string) (*entity.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	club, ok := s.clubs[id]
	if !ok {
		return nil, errorz.ErrClubNotFound
	}
	copied := *club
	return &copied, nil
}

func (s *fakeClubStorage) GetBySlug(_ context.Context, slug string) (*entity.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, club := range s.clubs {
		if club.Slug == slug && club.ApprovedForPublication {
			copied := *club
			return &copied, nil
		}
	}
	return nil, errorz.ErrClubNotFound
}

func (s *fakeClubStorage) Update(_ context.Context, club *entity.Club) (*entity.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	stored := *club
	s.clubs[club.ID] = &stored
	return club, nil
}

func (s *fakeClubStorage) list(keep func(entity.Club) bool) []entity.Club {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Club, 0)
	for _, club := range s.clubs {
		if keep(*club) {
			out = append(out, *club)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeClubStorage) ListApproved(context.Context) ([]entity.Club, error) {
	return s.list(func(c entity.Club) bool { return c.ApprovedForPublication }), s.err
}

func (s *fakeClubStorage) ListByOwner(_ context.Context, ownerID string) ([]entity.Club, error) {
	return s.list(func(c entity.Club) bool { return c.OwnerID == ownerID }), s.err
}

func (s *fakeClubStorage) ListPending(context.Context) ([]entity.Club, error) {
	return s.list(func(c entity.Club) bool { return !c.ApprovedForPublication }), s.err
}

func (s *fakeClubStorage) Approve(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	club, ok := s.clubs[id]
	if !ok {
		return errorz.ErrClubNotFound
	}
	club.ApprovedForPublication = true
	return nil
}

type fakeEventStorage struct {
	events  map[string]*entity.Event
	nextID  int
	deleted []string
}

func newFakeEventStorage(events ...entity.Event) *fakeEventStorage {
	s := &fakeEventStorage{events: make(map[string]*entity.Event)}
	for i := range events {
		event := events[i]
		s.events[event.ID] = &event
	}
	return s
}

func (s *fakeEventStorage) Create(_ context.Context, event *entity.Event) (*entity.Event, error) {
	s.nextID++
	event.ID = fmt.Sprintf("event-%d", s.nextID)
	stored := *event
	s.events[event.ID] = &stored
	return event, nil
}

func (s *fakeEventStorage) Get(_ context.Context, id string) (*entity.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, errorz.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (s *fakeEventStorage) Delete(_ context.Context, id string) error {
	if _, ok := s.events[id]; !ok {
		return errorz.ErrEventNotFound
	}
	delete(s.events, id)
	s.deleted = append(s.deleted, id)
	return nil
}

// DeleteBefore applies the same strict string comparison as the database.
func (s *fakeEventStorage) DeleteBefore(_ context.Context, cutoff string) (int64, error) {
	var n int64
	for id, event := range s.events {
		if event.Date < cutoff {
			delete(s.events, id)
			n++
		}
	}
	return n, nil
}

// stubReader returns perClub events for every requested club and records each call.
type stubReader struct {
	calls    [][]string
	froms    []string
	perClub  int
	failCall int
}

func (r *stubReader) ListUpcomingByClubIDs(_ context.Context, clubIDs []string, from string) ([]entity.Event, error) {
	r.calls = append(r.calls, append([]string(nil), clubIDs...))
	r.froms = append(r.froms, from)
	if len(clubIDs) > errorz.MaxInValues {
		return nil, errorz.ErrTooManyValues
	}
	if r.failCall > 0 && len(r.calls) == r.failCall {
		return nil, fmt.Errorf("backend unavailable")
	}

	out := make([]entity.Event, 0, len(clubIDs)*r.perClub)
	for _, id := range clubIDs {
		for i := 0; i < r.perClub; i++ {
			out = append(out, entity.Event{ID: fmt.Sprintf("%s-%d", id, i), ClubID: id, Date: "2026-10-20"})
		}
	}
	return out, nil
}

type recordingNotifier struct {
	clubs []entity.Club
	err   error
}

func (n *recordingNotifier) ClubRegistered(club entity.Club) error {
	n.clubs = append(n.clubs, club)
	return n.err
}
