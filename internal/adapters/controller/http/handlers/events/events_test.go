package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/common"
	"github.com/jooksuklubid/runclubs/internal/adapters/database/postgres"
	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/internal/domain/service"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/clock"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/validator"
	"github.com/jooksuklubid/runclubs/internal/testutil"
	"github.com/jooksuklubid/runclubs/pkg/logger"
)

const (
	ownerID    = "9b2f3c1e-4d5a-4b6c-8d7e-0f1a2b3c4d5e"
	strangerID = "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
	clubID     = "3f6c1a2b-7d8e-4f90-a1b2-c3d4e5f60718"
	missingID  = "00000000-0000-4000-8000-000000000000"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type memoryEvents struct {
	events    map[string]entity.Event
	seq       int
	createErr error
}

func (m *memoryEvents) Create(_ context.Context, event *entity.Event) (*entity.Event, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.seq++
	event.ID = fmt.Sprintf("event-%d", m.seq)
	m.events[event.ID] = *event
	return event, nil
}

func (m *memoryEvents) Get(_ context.Context, id string) (*entity.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, errorz.ErrEventNotFound
	}
	return &event, nil
}

func (m *memoryEvents) Delete(_ context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return errorz.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memoryEvents) ListUpcomingByClubIDs(_ context.Context, clubIDs []string, from string) ([]entity.Event, error) {
	if len(clubIDs) > errorz.MaxInValues {
		return nil, errorz.ErrTooManyValues
	}
	var out []entity.Event
	for _, event := range m.events {
		for _, id := range clubIDs {
			if event.ClubID == id && event.Date >= from {
				out = append(out, event)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type memoryClubs map[string]entity.Club

func (m memoryClubs) Get(_ context.Context, id string) (*entity.Club, error) {
	club, ok := m[id]
	if !ok {
		return nil, errorz.ErrClubNotFound
	}
	return &club, nil
}

func (m memoryClubs) ListByOwner(_ context.Context, ownerID string) ([]entity.Club, error) {
	var out []entity.Club
	for _, club := range m {
		if club.OwnerID == ownerID {
			out = append(out, club)
		}
	}
	return out, nil
}

func fakeAuthorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if userID == "" {
			common.WriteError(w, http.StatusUnauthorized, common.CodeUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithIdentity(r.Context(), &dto.Identity{UserID: userID})))
	})
}

type fixture struct {
	router *mux.Router
	events *memoryEvents
}

func newFixture() fixture {
	clk := clock.NewFixed(testNow)
	storage := &memoryEvents{events: map[string]entity.Event{}}
	clubs := memoryClubs{clubID: {ID: clubID, Name: "Tartu Jooksjad", OwnerID: ownerID, ApprovedForPublication: true}}
	svc := service.NewEventService(storage, storage, clubs, validator.New(clk), clk, time.UTC, "https://jooksuklubid.ee", logger.Nop("events"))

	router := mux.NewRouter()
	New(svc, svc, logger.Nop("http")).Setup(router, fakeAuthorized)
	return fixture{router: router, events: storage}
}

func (f fixture) do(method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+userID)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func eventBody(date, club string) string {
	return fmt.Sprintf(`{
		"title": "Sunday long run",
		"date": %q,
		"startTime": "09:00",
		"endTime": "11:00",
		"locationName": "Raekoja plats",
		"about": "20 km along the Emajõgi.",
		"clubId": %q
	}`, date, club)
}

func TestCreateEvent(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		body       string
		storeErr   error
		wantStatus int
		wantField  string
	}{
		{name: "created", userID: ownerID, body: eventBody("2026-10-25", clubID), wantStatus: http.StatusCreated},
		{name: "today is allowed", userID: ownerID, body: eventBody("2026-10-19", clubID), wantStatus: http.StatusCreated},
		{name: "past date", userID: ownerID, body: eventBody("2026-10-18", clubID), wantStatus: http.StatusBadRequest, wantField: "date"},
		{name: "malformed body", userID: ownerID, body: `{"title":`, wantStatus: http.StatusBadRequest},
		{name: "no token", userID: "", body: eventBody("2026-10-25", clubID), wantStatus: http.StatusUnauthorized},
		{name: "not the owner", userID: strangerID, body: eventBody("2026-10-25", clubID), wantStatus: http.StatusForbidden},
		{name: "unknown club", userID: ownerID, body: eventBody("2026-10-25", missingID), wantStatus: http.StatusNotFound},
		{name: "storage failure", userID: ownerID, body: eventBody("2026-10-25", clubID), storeErr: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.events.createErr = tt.storeErr

			rec := f.do(http.MethodPost, "/api/events", tt.userID, tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			switch {
			case tt.wantStatus == http.StatusCreated:
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Contains(t, f.events.events, body["id"])
			case tt.wantField != "":
				var body common.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "must not be in the past", body.Fields[tt.wantField])
			case tt.wantStatus == http.StatusInternalServerError:
				assert.NotContains(t, rec.Body.String(), "connection reset")
			}
		})
	}
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture()
	f.events.events["event-9"] = entity.Event{ID: "event-9", ClubID: clubID, Date: "2026-10-25"}

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/events/event-9", strangerID, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/events/event-404", ownerID, "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/events/event-9", ownerID, "").Code)
	assert.NotContains(t, f.events.events, "event-9")
}

func TestMalformedIDsAgainstDatabase(t *testing.T) {
	db := testutil.NewTestDB(t)
	club := testutil.InsertClub(t, db, "Tartu Jooksjad", "Tartu", true)
	testutil.InsertEvent(t, db, club, "Sunday long run", "2026-10-25")

	clk := clock.NewFixed(testNow)
	storage := postgres.NewEventStorage(db)
	svc := service.NewEventService(storage, storage, postgres.NewClubStorage(db), validator.New(clk), clk, time.UTC, "https://jooksuklubid.ee", logger.Nop("events"))
	router := mux.NewRouter()
	New(svc, svc, logger.Nop("http")).Setup(router, fakeAuthorized)
	f := fixture{router: router}

	rec := f.do(http.MethodDelete, "/api/events/not-a-uuid", club.OwnerID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/events", club.OwnerID, eventBody("2026-10-30", "not-a-uuid"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/events?clubIds=not-a-uuid,"+club.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var days []dto.EventDay
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
	require.Len(t, days, 1)
	assert.Equal(t, "2026-10-25", days[0].Date)
}

func TestListEvents(t *testing.T) {
	f := newFixture()
	f.events.events["a"] = entity.Event{ID: "a", ClubID: clubID, Date: "2026-10-25", Title: "Later"}
	f.events.events["b"] = entity.Event{ID: "b", ClubID: clubID, Date: "2026-10-20", Title: "Sooner"}
	f.events.events["c"] = entity.Event{ID: "c", ClubID: clubID, Date: "2026-10-01", Title: "Gone"}

	rec := f.do(http.MethodGet, "/api/events?clubIds="+clubID+","+clubID+",", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var days []dto.EventDay
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
	require.Len(t, days, 2)
	assert.Equal(t, "2026-10-20", days[0].Date)
	assert.Equal(t, "2026-10-25", days[1].Date)

	rec = f.do(http.MethodGet, "/api/events", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	ids := make([]string, MaxClubIDs+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("club-%d", i)
	}
	rec = f.do(http.MethodGet, "/api/events?clubIds="+strings.Join(ids, ","), "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard(t *testing.T) {
	f := newFixture()
	f.events.events["a"] = entity.Event{ID: "a", ClubID: clubID, Date: "2026-10-25"}

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/dashboard", "", "").Code)

	rec := f.do(http.MethodGet, "/api/dashboard", ownerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard dto.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dashboard))
	assert.Len(t, dashboard.Clubs, 1)
	require.Len(t, dashboard.Events, 1)
	assert.Equal(t, "a", dashboard.Events[0].Events[0].ID)

	rec = f.do(http.MethodGet, "/api/dashboard", strangerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"clubs":[],"events":[]}`, rec.Body.String())
}
