// Package grpc serves the standard grpc.health.v1 service, reporting
// SERVING while the storage backend answers pings.
package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "taskkeeper"

const defaultCheckInterval = 10 * time.Second

type HealthServer struct {
	address  string
	logger   logging.Logger
	check    func(context.Context) error
	interval time.Duration
	health   *health.Server
}

// NewHealthServer builds a health endpoint on address. check is polled every
// interval; a nil check always reports SERVING.
func NewHealthServer(address string, l logging.Logger, check func(context.Context) error, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &HealthServer{
		address:  address,
		logger:   l.With("module", "grpc_health"),
		check:    check,
		interval: interval,
		health:   health.NewServer(),
	}
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve runs on an existing listener until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.refresh(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC health server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-ticker.C:
				s.refresh(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}

func (s *HealthServer) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.check != nil {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.check(checkCtx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "health check failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
