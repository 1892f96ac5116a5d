package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/orbitlms/authgate"
	"github.com/orbitlms/authgate/internal/obs"
	mw "github.com/orbitlms/authgate/middleware"
)

// Server owns the HTTP surface of authd.
type Server struct {
	engine  *authgate.Engine
	logger  *obs.Logger
	metrics *obs.HTTPMetrics
}

// New creates a Server over an already-built engine.
func New(engine *authgate.Engine, logger *obs.Logger, metrics *obs.HTTPMetrics) *Server {
	return &Server{engine: engine, logger: logger, metrics: metrics}
}

// policy is the single data-driven route policy table. First match wins;
// anything unmatched requires authentication.
func (s *Server) policy() *authgate.Policy {
	return authgate.NewPolicy(
		authgate.Rule{Method: http.MethodPost, Pattern: "/api/v1/users/login", Access: authgate.Public()},
		authgate.Rule{Method: http.MethodGet, Pattern: "/healthz", Access: authgate.Public()},
		authgate.Rule{Method: http.MethodGet, Pattern: "/metrics", Access: authgate.Public()},
		authgate.Rule{Method: http.MethodGet, Pattern: "/api/v1/users/hello", Access: authgate.Authenticated()},
		authgate.Rule{Method: http.MethodGet, Pattern: "/api/v1/users/me", Access: authgate.Authenticated()},
		authgate.Rule{Method: http.MethodGet, Pattern: "/api/v1/users/{id}", Access: authgate.RequiresSelfOrRole(authgate.RoleAdmin)},
		authgate.Rule{Pattern: "/api/v1/admin/*", Access: authgate.RequiresRole(authgate.RoleAdmin)},
	)
}

// Handler builds the middleware chain and route table. Invariant: the
// authentication gate always runs before the authorization stage, which
// always runs before any handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(obs.RequestID)
	r.Use(obs.Logging(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	}))
	r.Use(s.metrics.Instrument)
	r.Use(mw.Gate(s.engine))
	r.Use(mw.Authorize(s.policy()))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users/login", s.handleLogin)
		r.With(mw.RateLimit(s.engine, mw.KeyByPrincipal)).Get("/users/hello", s.handleHello)
		r.Get("/users/me", s.handleMe)
		r.Get("/users/{id}", s.handleUserByID)
		r.Get("/admin/attempts/{username}", s.handleAttempts)
		r.Delete("/admin/rate/{key}", s.handleRateReset)
	})

	return r
}
