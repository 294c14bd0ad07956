// Package server implements the task REST API on top of a store.Store.
package server

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"tasktrack/internal/auth"
	"tasktrack/internal/config"
	"tasktrack/internal/logger"
	"tasktrack/internal/store"
)

// Server serves the API.
type Server struct {
	store      store.Store
	issuer     *auth.Issuer
	log        logrus.FieldLogger
	registry   *prometheus.Registry
	metrics    *Metrics
	corsOrigin string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// WithRegistry sets the registry that request metrics are registered in
// and /metrics exposes.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithIssuer replaces the token issuer built from the config.
func WithIssuer(iss *auth.Issuer) Option {
	return func(s *Server) { s.issuer = iss }
}

// New creates a Server for cfg backed by st.
func New(cfg *config.ServerConfig, st store.Store, opts ...Option) *Server {
	s := &Server{
		store:      st,
		issuer:     auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		log:        logger.Discard(),
		corsOrigin: cfg.CORSOrigin,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)

	tasks := api.PathPrefix("/tasks").Subrouter()
	tasks.Use(s.requireAuth)
	tasks.HandleFunc("", s.listTasks).Methods(http.MethodGet)
	tasks.HandleFunc("", s.createTask).Methods(http.MethodPost)
	tasks.HandleFunc("/{id}", s.updateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{id}", s.deleteTask).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	var h http.Handler = r
	h = s.recoverer(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{s.corsOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	h = s.logRequests(h)
	return h
}
