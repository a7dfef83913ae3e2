package admin

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/common"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

type clubService interface {
	Approve(ctx context.Context, clubID string) error
	ListPending(ctx context.Context) ([]entity.Club, error)
}

type Handler struct {
	clubs  clubService
	logger *types.Logger
}

func New(clubs clubService, logger *types.Logger) *Handler {
	return &Handler{
		clubs:  clubs,
		logger: logger,
	}
}

func (h Handler) pending(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubs.ListPending(r.Context())
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	if clubs == nil {
		clubs = []entity.Club{}
	}
	common.WriteJSON(w, http.StatusOK, clubs)
}

func (h Handler) approve(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.clubs.Approve(r.Context(), id); err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}

	h.logger.Infof("(admin: %s) approved club %s", common.IdentityFrom(r.Context()).Email, id)
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": id, "approvedForPublication": true})
}

// Setup registers the moderation routes. admin wraps every route and must check both
// the bearer token and the administrator list.
func (h Handler) Setup(router *mux.Router, admin func(http.Handler) http.Handler) {
	router.Handle("/api/admin/clubs/pending", admin(http.HandlerFunc(h.pending))).Methods(http.MethodGet)
	router.Handle("/api/admin/clubs/{id}/approve", admin(http.HandlerFunc(h.approve))).Methods(http.MethodPost)
}
