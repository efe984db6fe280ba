package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gofrs/flock"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/session"
	"marquee/internal/users"
)

// ErrAlreadyRunning reports that another server holds the state directory lock.
var ErrAlreadyRunning = errors.New("another marquee server is already running")

// Dependencies are the collaborators a Server routes requests to.
type Dependencies struct {
	Recommend *api.RecommendService
	Users     *users.Store
	Sessions  *session.Manager
}

// Server exposes accounts and recommendations over HTTP.
type Server struct {
	bind      string
	logger    *slog.Logger
	svc       *api.RecommendService
	users     *users.Store
	sessions  *session.Manager
	loginRate int
	lock      *flock.Flock
	lockPath  string

	handler  http.Handler
	server   *http.Server
	mu       sync.Mutex
	listener net.Listener
}

// New builds a server from cfg. Call Serve to start listening.
func New(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server requires config")
	}
	if deps.Recommend == nil || deps.Users == nil {
		return nil, errors.New("server requires a recommend service and a user store")
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewManager(cfg.SessionTTL())
	}
	bind := strings.TrimSpace(cfg.Server.Bind)
	if bind == "" {
		return nil, errors.New("server.bind is empty")
	}

	s := &Server{
		bind:      bind,
		logger:    logging.NewComponentLogger(logger, "server"),
		svc:       deps.Recommend,
		users:     deps.Users,
		sessions:  deps.Sessions,
		loginRate: cfg.Server.LoginRatePerMinute,
		lockPath:  cfg.LockPath(),
		lock:      flock.New(cfg.LockPath()),
	}
	s.handler = s.routes()
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.TMDBTimeout() + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/session", s.handleSession)

	r.Group(func(r chi.Router) {
		if s.loginRate > 0 {
			r.Use(httprate.Limit(s.loginRate, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					s.writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
				}),
			))
		}
		r.Post("/api/signup", s.handleSignUp)
		r.Post("/api/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Post("/api/logout", s.handleLogout)
		r.Get("/api/titles", s.handleTitles)
		r.Get("/api/recommendations", s.handleRecommendations)
	})
	return r
}

// Serve takes the state lock, listens on the configured address and blocks
// until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, s.lockPath)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release server lock", logging.Error(err))
		}
	}()

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()
	s.logger.Info("server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("posters", s.svc.PostersEnabled()),
		logging.Int("entries", s.svc.Size()),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Addr returns the bound address once Serve is listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
