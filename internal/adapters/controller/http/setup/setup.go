package setup

import (
	"net/http"
	"strings"

	"github.com/jooksuklubid/runclubs/cmd/server"
	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/admin"
	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/auth"
	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/clubs"
	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/common"
	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/events"
	"github.com/jooksuklubid/runclubs/internal/adapters/controller/http/handlers/middlewares"
)

// Setup registers every route on s.Router and installs the global middlewares
// as the server handler.
func Setup(s *server.Server) {
	middle := middlewares.New(s.Auth, s.Logger)
	adminOnly := func(next http.Handler) http.Handler {
		return middle.Authorized(middle.IsAdmin(next))
	}

	router := s.Router
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.WriteError(w, http.StatusNotFound, common.CodeNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.WriteError(w, http.StatusMethodNotAllowed, common.CodeMethodNotAllowed, "method not allowed")
	})

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	logoPrefix := strings.TrimRight(s.Config.Logos.URLPrefix, "/") + "/"
	router.PathPrefix(logoPrefix).
		Handler(http.StripPrefix(logoPrefix, http.FileServer(http.Dir(s.Logos.Dir())))).
		Methods(http.MethodGet)

	auth.New(s.Auth, s.Logger).Setup(router, middle.Authorized)
	clubs.New(s.Clubs, s.Public, s.QR, s.Config.HTTP.MaxUploadBytes, s.Logger).Setup(router, middle.Authorized)
	events.New(s.Events, s.Public, s.Logger).Setup(router, middle.Authorized)
	admin.New(s.Clubs, s.Logger).Setup(router, adminOnly)

	s.HTTP.Handler = middle.Recover(middle.RequestLogger(middlewares.CORS(s.Config.HTTP.CORSOrigins)(router)))
}
