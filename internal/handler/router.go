package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/diarylab/backend/internal/auth"
	aihandler "github.com/diarylab/backend/internal/handler/ai"
	authhandler "github.com/diarylab/backend/internal/handler/auth"
	notehandler "github.com/diarylab/backend/internal/handler/note"
	"github.com/diarylab/backend/internal/middleware"
	aiservice "github.com/diarylab/backend/internal/service/ai"
	noteservice "github.com/diarylab/backend/internal/service/note"
	userservice "github.com/diarylab/backend/internal/service/user"
	"github.com/diarylab/backend/internal/ws"
)

// NewRouter wires HTTP routes to core services. aiSvc may be nil when the
// model backend is not configured; the affected endpoints then answer 503.
func NewRouter(users *userservice.Service, notes *noteservice.Service, aiSvc *aiservice.Service, wsHandler *ws.Handler, registry *ws.Registry, tokens *auth.TokenService, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	authHandler := authhandler.New(users)
	noteHandler := notehandler.New(notes)

	// The AI handler tolerates a nil generator, but a typed-nil interface
	// would defeat its check.
	var generator aihandler.Generator
	if aiSvc != nil {
		generator = aiSvc
	}
	aiHandler := aihandler.New(generator, registry)

	r.Route("/api", func(api chi.Router) {
		authHandler.RegisterRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(tokens, users))

			authHandler.RegisterProtectedRoutes(protected)
			noteHandler.RegisterRoutes(protected)
			aiHandler.RegisterRoutes(protected)
		})
	})

	// The websocket endpoint runs its own token gate, outside the REST
	// middleware chain.
	r.Handle("/ws/ai-chat", wsHandler)

	return r
}
