package clubs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/common"
	"github.com/jooksuklubid/runclubs/internal/adapters/database/postgres"
	"github.com/jooksuklubid/runclubs/internal/adapters/storage/logos"
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
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type memoryClubs struct {
	clubs map[string]*entity.Club
	seq   int
}

func newMemoryClubs() *memoryClubs {
	return &memoryClubs{clubs: map[string]*entity.Club{}}
}

func (m *memoryClubs) Create(_ context.Context, club *entity.Club) (*entity.Club, error) {
	m.seq++
	club.ID = fmt.Sprintf("club-%d", m.seq)
	stored := *club
	m.clubs[club.ID] = &stored
	return club, nil
}

func (m *memoryClubs) Get(_ context.Context, id string) (*entity.Club, error) {
	club, ok := m.clubs[id]
	if !ok {
		return nil, errorz.ErrClubNotFound
	}
	c := *club
	return &c, nil
}

func (m *memoryClubs) GetBySlug(_ context.Context, slug string) (*entity.Club, error) {
	for _, club := range m.clubs {
		if club.Slug == slug && club.ApprovedForPublication {
			c := *club
			return &c, nil
		}
	}
	return nil, errorz.ErrClubNotFound
}

func (m *memoryClubs) Update(_ context.Context, club *entity.Club) (*entity.Club, error) {
	stored := *club
	m.clubs[club.ID] = &stored
	return club, nil
}

func (m *memoryClubs) ListApproved(context.Context) ([]entity.Club, error) {
	var out []entity.Club
	for _, club := range m.clubs {
		if club.ApprovedForPublication {
			out = append(out, *club)
		}
	}
	return out, nil
}

func (m *memoryClubs) ListByOwner(_ context.Context, ownerID string) ([]entity.Club, error) {
	var out []entity.Club
	for _, club := range m.clubs {
		if club.OwnerID == ownerID {
			out = append(out, *club)
		}
	}
	return out, nil
}

func (m *memoryClubs) ListPending(context.Context) ([]entity.Club, error) {
	return nil, nil
}

func (m *memoryClubs) Approve(_ context.Context, id string) error {
	club, ok := m.clubs[id]
	if !ok {
		return errorz.ErrClubNotFound
	}
	club.ApprovedForPublication = true
	return nil
}

type stubEvents struct{}

func (stubEvents) ListForClub(context.Context, string) []dto.EventDay {
	return []dto.EventDay{}
}

func (stubEvents) Calendar(_ context.Context, clubID string) ([]byte, error) {
	if clubID != "club-1" {
		return nil, errorz.ErrClubNotFound
	}
	return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), nil
}

type stubQR struct{}

func (stubQR) ClubQR(context.Context, string) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func fakeAuthorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if userID == "" {
			common.WriteError(w, http.StatusUnauthorized, common.CodeUnauthorized, "unauthorized")
			return
		}
		ctx := common.WithIdentity(r.Context(), &dto.Identity{UserID: userID, Email: "owner@jooks.ee"})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type fixture struct {
	router  *mux.Router
	storage *memoryClubs
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	logoStorage, err := logos.NewStorage(t.TempDir(), "/static/logos")
	require.NoError(t, err)

	clk := clock.NewFixed(testNow)
	storage := newMemoryClubs()
	clubService := service.NewClubService(storage, validator.New(clk), service.NopNotifier{}, logoStorage, clk, logger.Nop("clubs"))

	router := mux.NewRouter()
	New(clubService, stubEvents{}, stubQR{}, 1<<20, logger.Nop("http")).Setup(router, fakeAuthorized)
	return fixture{router: router, storage: storage}
}

func (f fixture) do(method, path, userID string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+userID)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

const validClub = `{
	"name": "Kalamaja Jooksjad",
	"city": "Tallinn",
	"area": "Kalamaja",
	"distance": "8-10 km",
	"runDays": ["Tuesday", "thu"],
	"startTime": "18:30",
	"description": "Easy social runs around Kalamaja.",
	"email": "Info@Kalamaja.ee"
}`

func TestRegisterStoresUnapprovedClub(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/clubs", ownerID, validClub)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "kalamaja-jooksjad", body["slug"])

	stored := f.storage.clubs[body["id"]]
	require.NotNil(t, stored)
	assert.False(t, stored.ApprovedForPublication)
	assert.Equal(t, ownerID, stored.OwnerID)
	assert.Equal(t, "info@kalamaja.ee", stored.Email)
	assert.Equal(t, []string{"Tuesday", "Thu"}, []string(stored.RunDays))
}

func TestRegisterErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/clubs", "", validClub)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/clubs", ownerID, `{"name":"X"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.CodeValidationFailed, body.Code)
	assert.Contains(t, body.Fields, "name")
	assert.Contains(t, body.Fields, "runDays")
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/clubs", ownerID, validClub)
	require.Equal(t, http.StatusCreated, rec.Code)

	updated := strings.Replace(validClub, "Kalamaja Jooksjad", "Põhja Tallinna Jooksjad", 1)

	rec = f.do(http.MethodPut, "/api/clubs/club-1", strangerID, updated)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPut, "/api/clubs/club-404", ownerID, updated)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPut, "/api/clubs/club-1", ownerID, updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pohja-tallinna-jooksjad", f.storage.clubs["club-1"].Slug)
	assert.False(t, f.storage.clubs["club-1"].ApprovedForPublication)
}

func TestPublicReadsHideUnapproved(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/clubs", ownerID, validClub).Code)

	rec := f.do(http.MethodGet, "/api/clubs/club-1", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(http.MethodGet, "/api/clubs/by-slug/kalamaja-jooksjad", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/clubs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.ClubList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Total)

	require.NoError(t, f.storage.Approve(context.Background(), "club-1"))

	rec = f.do(http.MethodGet, "/api/clubs?city=Tallinn&q=kalamaja", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	rec = f.do(http.MethodGet, "/api/clubs/club-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var details dto.ClubDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Len(t, details.NextRuns, service.NextRunsCount)

	rec = f.do(http.MethodGet, "/api/clubs/by-slug/kalamaja-jooksjad", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, "club-1", details.ID)
}

func TestMalformedClubIDIsNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	club := testutil.InsertClub(t, db, "Kalamaja Jooksjad", "Tallinn", true)

	logoStorage, err := logos.NewStorage(t.TempDir(), "/static/logos")
	require.NoError(t, err)
	clk := clock.NewFixed(testNow)
	clubService := service.NewClubService(postgres.NewClubStorage(db), validator.New(clk), service.NopNotifier{}, logoStorage, clk, logger.Nop("clubs"))

	router := mux.NewRouter()
	New(clubService, stubEvents{}, stubQR{}, 1<<20, logger.Nop("http")).Setup(router, fakeAuthorized)
	f := fixture{router: router}

	rec := f.do(http.MethodGet, "/api/clubs/not-a-uuid", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.CodeNotFound, body.Code)

	rec = f.do(http.MethodPut, "/api/clubs/not-a-uuid", club.OwnerID, validClub)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/clubs/"+club.ID, "", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCalendarAndQR(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/clubs/club-1/calendar.ics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")

	rec = f.do(http.MethodGet, "/api/clubs/club-2/calendar.ics", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/clubs/club-1/qr.png", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = f.do(http.MethodGet, "/api/clubs/club-1/events", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func logoUpload(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, "logo.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadLogo(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/clubs", ownerID, validClub).Code)

	send := func(userID, field string) *httptest.ResponseRecorder {
		body, contentType := logoUpload(t, field)
		req := httptest.NewRequest(http.MethodPost, "/api/clubs/club-1/logo", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+userID)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := send(ownerID, "logo")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body["logoUrl"], "/static/logos/"))
	assert.Equal(t, body["logoUrl"], f.storage.clubs["club-1"].LogoURL)

	assert.Equal(t, http.StatusForbidden, send(strangerID, "logo").Code)
	assert.Equal(t, http.StatusBadRequest, send(ownerID, "image").Code)
}
