// Package server initializes and runs the TaskKeeper server: it selects the
// storage backend, wires services into the HTTP API and the gRPC health
// endpoint, and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/revocation"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/taskkeeper/internal/server/grpc"
)

const startupTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	redis       *redis.Client
	httpServer  *http.Server
}

// NewApp connects storage (and Redis when configured), runs migrations and
// builds the HTTP handler. Log output goes to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	logger := logging.New(w, c.LogLevel, c.LogFormat)

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	rm, err := openStorage(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, repomanager: rm}

	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		logger.Info(ctx, "Using redis", "address", c.RedisAddr)
	}

	userOpts := []services.UserServiceOption{services.WithUserLogger(logger.With("module", "user_service"))}
	if c.RevokeOnLogout {
		userOpts = append(userOpts, services.WithDenylist(app.newDenylist()))
	}

	us, err := services.NewUserService(rm, c, userOpts...)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("user service init error: %w", err)
	}
	ts := services.NewTaskService(rm, services.WithTaskLogger(logger.With("module", "task_service")))

	handler := httpapi.NewRouter(httpapi.Options{
		Users:          us,
		Tasks:          ts,
		Limiter:        app.newRateLimiter(),
		Metrics:        httpapi.NewMetrics(),
		Logger:         logger.With("module", "http"),
		HealthCheck:    rm.Ping,
		CORSOrigins:    c.CORSOrigins,
		RequestTimeout: c.RequestTimeout,

		TrustProxyHeaders: c.TrustProxyHeaders,
	})

	app.httpServer = &http.Server{
		Addr:              c.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}

func openStorage(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "No database DSN configured, using in-memory storage")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	rm, err := repomanager.OpenPostgres(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.Ping(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return rm, nil
}

func (app *App) newDenylist() revocation.Denylist {
	if app.redis != nil {
		return revocation.NewRedisDenylist(app.redis)
	}
	return revocation.NewMemoryDenylist(nil)
}

func (app *App) newRateLimiter() httpapi.RateLimiter {
	if app.redis != nil {
		return httpapi.NewRedisRateLimiter(app.redis, app.config.AuthRateLimit, app.config.AuthRateLimitWindow)
	}
	return httpapi.NewMemoryRateLimiter(app.config.AuthRateLimit, app.config.AuthRateLimitWindow, nil)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)

	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCAddr, app.logger, app.repomanager.Ping, 0)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails, then releases storage connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(context.Background(), "redis close error", "error", err)
		}
	}
	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
}
