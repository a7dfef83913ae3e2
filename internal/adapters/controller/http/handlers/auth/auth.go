package auth

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/common"
	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

type authService interface {
	RequestCode(ctx context.Context, req dto.CodeRequest) error
	Exchange(ctx context.Context, req dto.TokenRequest) (*dto.Token, error)
	Logout(ctx context.Context, identity *dto.Identity) error
}

type Handler struct {
	auth   authService
	logger *types.Logger
}

func New(auth authService, logger *types.Logger) *Handler {
	return &Handler{
		auth:   auth,
		logger: logger,
	}
}

func (h Handler) requestCode(w http.ResponseWriter, r *http.Request) {
	var req dto.CodeRequest
	if !common.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.RequestCode(r.Context(), req); err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	common.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h Handler) token(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if !common.DecodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Exchange(r.Context(), req)
	if err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, token)
}

func (h Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), common.IdentityFrom(r.Context())); err != nil {
		common.WriteServiceError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Setup registers the auth routes. authorized wraps routes that need a bearer token.
func (h Handler) Setup(router *mux.Router, authorized func(http.Handler) http.Handler) {
	router.HandleFunc("/api/auth/code", h.requestCode).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/token", h.token).Methods(http.MethodPost)
	router.Handle("/api/auth/logout", authorized(http.HandlerFunc(h.logout))).Methods(http.MethodPost)
}
