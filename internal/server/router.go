package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard-api/internal/auth"
	"github.com/BuzzLyutic/taskboard-api/internal/handler"
	"github.com/BuzzLyutic/taskboard-api/internal/service"
	"github.com/BuzzLyutic/taskboard-api/pkg/respond"
)

type Deps struct {
	Tasks          *service.TaskService
	Auth           *auth.Service
	Logger         *zap.Logger
	RequestTimeout time.Duration
	MaxInFlight    int
}

// NewRouter wires the public and token-protected routes.
func NewRouter(d Deps) http.Handler {
	taskHandler := handler.NewTaskHandler(d.Tasks, d.Logger)
	authHandler := handler.NewAuthHandler(d.Auth, d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(d.Logger))
	r.Use(middleware.Recoverer)
	if d.MaxInFlight > 0 {
		r.Use(middleware.Throttle(d.MaxInFlight))
	}
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", handler.Health(d.Tasks, d.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Route("/tasks", func(r chi.Router) {
			r.Use(auth.Middleware(d.Auth, d.Logger))
			taskHandler.Routes(r)
		})
	})

	return r
}
