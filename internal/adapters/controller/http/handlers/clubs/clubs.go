package clubs

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/common"
	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

const CodeUploadTooLarge = "upload_too_large"

type clubService interface {
	Register(ctx context.Context, ownerID string, in dto.ClubInput) (*entity.Club, error)
	Update(ctx context.Context, callerID, clubID string, in dto.ClubInput) (*entity.Club, error)
	Details(ctx context.Context, id string) (*dto.ClubDetails, error)
	DetailsBySlug(ctx context.Context, slug string) (*dto.ClubDetails, error)
	Directory(ctx context.Context, city, search string) (*dto.ClubList, error)
	SetLogo(ctx context.Context, callerID, clubID string, image io.Reader) (string, error)
}

type eventService interface {
	ListForClub(ctx context.Context, clubID string) []dto.EventDay
	Calendar(ctx context.Context, clubID string) ([]byte, error)
}

type qrService interface {
	ClubQR(ctx context.Context, clubID string) ([]byte, error)
}

type Handler struct {
	clubs          clubService
	events         eventService
	qr             qrService
	maxUploadBytes int64
	logger         *types.Logger
}

// New builds the club handler. events must read through the public event storage.
func New(clubs clubService, events eventService, qr qrService, maxUploadBytes int64, logger *types.Logger) *Handler {
	return &Handler{
		clubs:          clubs,
		events:         events,
		qr:             qr,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	list, err := h.clubs.Directory(r.Context(), query.Get("city"), query.Get("q"))
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, list)
}

func (h Handler) details(w http.ResponseWriter, r *http.Request) {
	details, err := h.clubs.Details(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, details)
}

func (h Handler) bySlug(w http.ResponseWriter, r *http.Request) {
	details, err := h.clubs.DetailsBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, details)
}

func (h Handler) clubEvents(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.events.ListForClub(r.Context(), mux.Vars(r)["id"]))
}

func (h Handler) calendar(w http.ResponseWriter, r *http.Request) {
	ics, err := h.events.Calendar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="club.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ics)
}

func (h Handler) qrCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.qr.ClubQR(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h Handler) register(w http.ResponseWriter, r *http.Request) {
	var in dto.ClubInput
	if !common.DecodeJSON(w, r, &in) {
		return
	}

	identity := common.IdentityFrom(r.Context())
	club, err := h.clubs.Register(r.Context(), identity.UserID, in)
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}

	h.logger.Infof("(user: %s) registered club %s (%s)", identity.Email, club.ID, club.Name)
	common.WriteJSON(w, http.StatusCreated, map[string]string{"id": club.ID, "slug": club.Slug})
}

func (h Handler) update(w http.ResponseWriter, r *http.Request) {
	var in dto.ClubInput
	if !common.DecodeJSON(w, r, &in) {
		return
	}

	club, err := h.clubs.Update(r.Context(), common.IdentityFrom(r.Context()).UserID, mux.Vars(r)["id"], in)
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, club)
}

func (h Handler) uploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.WriteError(w, http.StatusRequestEntityTooLarge, CodeUploadTooLarge, "logo is too large")
			return
		}
		common.WriteError(w, http.StatusBadRequest, common.CodeInvalidRequestBody, "expected multipart form")
		return
	}

	file, _, err := r.FormFile("logo")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, common.CodeInvalidRequestBody, "missing logo file")
		return
	}
	defer file.Close()

	url, err := h.clubs.SetLogo(r.Context(), common.IdentityFrom(r.Context()).UserID, mux.Vars(r)["id"], file)
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"logoUrl": url})
}

// Setup registers the club routes. authorized wraps routes that need a bearer token.
func (h Handler) Setup(router *mux.Router, authorized func(http.Handler) http.Handler) {
	router.HandleFunc("/api/clubs", h.list).Methods(http.MethodGet)
	router.HandleFunc("/api/clubs/by-slug/{slug}", h.bySlug).Methods(http.MethodGet)
	router.HandleFunc("/api/clubs/{id}", h.details).Methods(http.MethodGet)
	router.HandleFunc("/api/clubs/{id}/events", h.clubEvents).Methods(http.MethodGet)
	router.HandleFunc("/api/clubs/{id}/calendar.ics", h.calendar).Methods(http.MethodGet)
	router.HandleFunc("/api/clubs/{id}/qr.png", h.qrCode).Methods(http.MethodGet)

	router.Handle("/api/clubs", authorized(http.HandlerFunc(h.register))).Methods(http.MethodPost)
	router.Handle("/api/clubs/{id}", authorized(http.HandlerFunc(h.update))).Methods(http.MethodPut)
	router.Handle("/api/clubs/{id}/logo", authorized(http.HandlerFunc(h.uploadLogo))).Methods(http.MethodPost)
}
