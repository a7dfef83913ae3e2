package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/common"
	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

type authService interface {
	Verify(ctx context.Context, raw string) (*dto.Identity, error)
	IsAdmin(identity *dto.Identity) bool
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

// Authorized requires a valid, unrevoked bearer token and stores the caller in the request context.
func (h Handler) Authorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			common.WriteError(w, http.StatusUnauthorized, common.CodeUnauthorized, "missing bearer token")
			return
		}

		identity, err := h.auth.Verify(r.Context(), raw)
		if err != nil {
			common.WriteServiceError(w, h.logger, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(common.WithIdentity(r.Context(), identity)))
	})
}

// IsAdmin must run after Authorized.
func (h Handler) IsAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := common.IdentityFrom(r.Context())
		if identity == nil {
			common.WriteError(w, http.StatusUnauthorized, common.CodeUnauthorized, "unauthorized")
			return
		}
		if !h.auth.IsAdmin(identity) {
			h.logger.Infof("(user: %s) admin route denied: %s", identity.Email, r.URL.Path)
			common.WriteError(w, http.StatusForbidden, common.CodeForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequestLogger logs method, path, status and latency of every request.
func (h Handler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Recover turns a handler panic into a 500 response.
func (h Handler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				h.logger.Errorf("panic in %s %s: %v", r.Method, r.URL.Path, rv)
				common.WriteError(w, http.StatusInternalServerError, common.CodeInternalError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
