package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/hongminglow/feedback-hub/internal/config"
	"github.com/hongminglow/feedback-hub/internal/docs"
	"github.com/hongminglow/feedback-hub/internal/http/handlers"
	"github.com/hongminglow/feedback-hub/internal/http/respond"
	"github.com/hongminglow/feedback-hub/internal/middleware"
	"github.com/hongminglow/feedback-hub/internal/observability"
)

// Banner is the body of GET /.
const Banner = "FeedbackHub API running"

// Deps groups everything the HTTP layer needs.
type Deps struct {
	Config       config.Config
	Logger       *slog.Logger
	Auth         handlers.AuthService
	Feedback     handlers.FeedbackService
	Tokens       middleware.TokenParser
	Metrics      *observability.Metrics
	HealthChecks map[string]handlers.HealthCheck
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(deps Deps) (*Server, error) {
	handler, err := NewHandler(deps)
	if err != nil {
		return nil, err
	}
	httpServer := &http.Server{
		Addr:              deps.Config.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}, nil
}

// NewHandler builds the routed handler without binding a listener.
func NewHandler(deps Deps) (http.Handler, error) {
	if deps.Auth == nil || deps.Feedback == nil || deps.Tokens == nil {
		return nil, errors.New("server: auth, feedback and tokens are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	apiDocs, err := docs.NewHandler()
	if err != nil {
		return nil, fmt.Errorf("load api docs: %w", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if deps.Config.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Logging(logger),
		chimw.Recoverer,
		deps.Metrics.Middleware,
		middleware.SecureHeaders(deps.Config.IsProduction()),
		middleware.CORS(deps.Config.CORSOrigins),
		rateLimiter(deps.Config),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Status(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.Status(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(Banner))
	})
	handlers.NewHealthHandler(time.Now(), deps.HealthChecks, logger).MountRoutes(r)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	apiDocs.MountRoutes(r)

	authenticate := middleware.Authenticate(deps.Tokens, logger)
	r.Route("/auth", handlers.NewAuthHandler(deps.Auth, logger).MountRoutes)
	r.Route("/feedback", handlers.NewFeedbackHandler(deps.Feedback, authenticate, logger).MountRoutes)

	return r, nil
}

func rateLimiter(cfg config.Config) func(http.Handler) http.Handler {
	requests, window := cfg.RateLimitRequests, cfg.RateLimitWindow
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			respond.Status(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
		}),
	)
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.inner.Addr
}
