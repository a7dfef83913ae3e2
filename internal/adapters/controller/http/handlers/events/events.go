package events

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/common"
	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

// MaxClubIDs bounds the clubIds query parameter of the public listing.
const MaxClubIDs = 100

type eventService interface {
	Create(ctx context.Context, callerID string, in dto.EventInput) (*entity.Event, error)
	Delete(ctx context.Context, callerID, eventID string) error
	Dashboard(ctx context.Context, ownerID string) (*dto.Dashboard, error)
}

type publicEventService interface {
	ListForClubs(ctx context.Context, clubIDs []string) []dto.EventDay
}

type Handler struct {
	events eventService
	public publicEventService
	logger *types.Logger
}

// New builds the event handler. events reads through the privileged storage and
// public through the storage that only sees published clubs.
func New(events eventService, public publicEventService, logger *types.Logger) *Handler {
	return &Handler{
		events: events,
		public: public,
		logger: logger,
	}
}

func (h Handler) list(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(r.URL.Query().Get("clubIds"))
	if len(ids) > MaxClubIDs {
		common.WriteError(w, http.StatusBadRequest, common.CodeValidationFailed, "too many club ids")
		return
	}
	common.WriteJSON(w, http.StatusOK, h.public.ListForClubs(r.Context(), ids))
}

func splitIDs(raw string) []string {
	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (h Handler) create(w http.ResponseWriter, r *http.Request) {
	var in dto.EventInput
	if !common.DecodeJSON(w, r, &in) {
		return
	}

	event, err := h.events.Create(r.Context(), common.IdentityFrom(r.Context()).UserID, in)
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, map[string]string{"id": event.ID})
}

func (h Handler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.events.Delete(r.Context(), common.IdentityFrom(r.Context()).UserID, mux.Vars(r)["id"])
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.events.Dashboard(r.Context(), common.IdentityFrom(r.Context()).UserID)
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, dashboard)
}

// Setup registers the event and dashboard routes. authorized wraps routes that need a bearer token.
func (h Handler) Setup(router *mux.Router, authorized func(http.Handler) http.Handler) {
	router.HandleFunc("/api/events", h.list).Methods(http.MethodGet)
	router.Handle("/api/events", authorized(http.HandlerFunc(h.create))).Methods(http.MethodPost)
	router.Handle("/api/events/{id}", authorized(http.HandlerFunc(h.delete))).Methods(http.MethodDelete)
	router.Handle("/api/dashboard", authorized(http.HandlerFunc(h.dashboard))).Methods(http.MethodGet)
}
