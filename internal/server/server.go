package server

import (
	"encoding/json"
	"net/http"

	"discord-auth-gateway/internal/application"
	"discord-auth-gateway/internal/infrastructure/metrics"
	"discord-auth-gateway/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Server wires the HTTP surface of the gateway.
type Server struct {
	auth       *application.AuthService
	sessions   ports.SessionStore
	metrics    *metrics.Metrics
	cookies    *cookieCodec
	entryPoint string
	logger     zerolog.Logger
}

// Options configures a Server.
type Options struct {
	EntryPoint    string
	CookieDomain  string
	SessionSecret string
}

// New creates a new Server.
func New(auth *application.AuthService, sessions ports.SessionStore, m *metrics.Metrics, opts Options, logger zerolog.Logger) *Server {
	return &Server{
		auth:       auth,
		sessions:   sessions,
		metrics:    m,
		cookies:    newCookieCodec(opts.SessionSecret, opts.CookieDomain),
		entryPoint: opts.EntryPoint,
		logger:     logger,
	}
}

// Router assembles the chi router for the gateway.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Get("/", s.handleRoot)
	r.Get("/login", s.handleLogin)
	r.Get("/callback", s.handleCallback)

	return r
}
