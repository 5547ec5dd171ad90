// Package httpapi exposes the REST/JSON interface: auth endpoints, owner
// scoped task CRUD, health and Prometheus metrics, on a chi router.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// UserService is the subset of services.UserService the handlers need.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Verify(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// TaskService is the subset of services.TaskService the handlers need.
type TaskService interface {
	List(ctx context.Context, userID string) ([]*models.Task, error)
	Get(ctx context.Context, userID, taskID string) (*models.Task, error)
	Create(ctx context.Context, userID, title, description string) (*models.Task, error)
	Update(ctx context.Context, userID, taskID, title, description string, completed bool) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

// Options carries the router's dependencies. Users and Tasks are required;
// the rest fall back to permissive defaults.
type Options struct {
	Users          UserService
	Tasks          TaskService
	Limiter        RateLimiter
	Metrics        *Metrics
	Logger         logging.Logger
	HealthCheck    func(context.Context) error
	CORSOrigins    []string
	RequestTimeout time.Duration

	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For / X-Real-IP.
	// Left off, a client cannot choose its own rate-limit key.
	TrustProxyHeaders bool
}

const (
	maxBodyBytes       = 1 << 20
	healthCheckTimeout = 2 * time.Second
)

// Router wires HTTP endpoints to services.
type Router struct {
	users   UserService
	tasks   TaskService
	limiter RateLimiter
	metrics *Metrics
	logger  logging.Logger
	health  func(context.Context) error
}

// NewRouter assembles routes with dependencies.
func NewRouter(opts Options) http.Handler {
	rt := &Router{
		users:   opts.Users,
		tasks:   opts.Tasks,
		limiter: opts.Limiter,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		health:  opts.HealthCheck,
	}
	if rt.logger == nil {
		rt.logger = logging.Nop()
	}
	if rt.metrics == nil {
		rt.metrics = NewMetrics()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(rt.observe)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", rt.handleHealth)
	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(rt.rateLimit).Post("/register", rt.handleRegister)
			r.With(rt.rateLimit).Post("/login", rt.handleLogin)
			r.Post("/logout", rt.handleLogout)
			r.With(rt.requireAuth).Get("/me", rt.handleMe)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(rt.requireAuth)
			r.Get("/", rt.handleListTasks)
			r.Post("/", rt.handleCreateTask)
			r.Get("/{id}", rt.handleGetTask)
			r.Put("/{id}", rt.handleUpdateTask)
			r.Delete("/{id}", rt.handleDeleteTask)
		})
	})

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := rt.health(ctx); err != nil {
			rt.logger.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
