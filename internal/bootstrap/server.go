package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/railbooking/railbooking/config"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	// ServiceName is the name reported by the gRPC health service.
	ServiceName = "railbooking"

	swaggerSpec    = "railbooking.swagger.json"
	healthInterval = 10 * time.Second
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	checks     []HealthCheck
	logger     *slog.Logger
}

// Run starts the HTTP API and the gRPC health endpoint and blocks until ctx
// is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, logger *slog.Logger, checks ...HealthCheck) error {
	s := newServers(cfg, handler, logger, checks)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	go s.watchHealth(healthCtx)

	logger.Info("servers started", "http", cfg.HTTP.Address, "grpc", cfg.GRPC.Address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, handler http.Handler, logger *slog.Logger, checks []HealthCheck) *Servers {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           withDocs(cfg.HTTP.SwaggerDir, handler),
			ReadHeaderTimeout: 10 * time.Second,
		},
		health: healthSrv,
		checks: checks,
		logger: logger,
	}
}

// withDocs serves the OpenAPI document from swaggerDir and a Swagger UI
// under /docs/. Everything else goes to the API handler.
func withDocs(swaggerDir string, api http.Handler) http.Handler {
	if swaggerDir == "" {
		return api
	}
	mux := http.NewServeMux()
	mux.Handle("/", api)
	mux.Handle("/swagger/", http.StripPrefix("/swagger/", http.FileServer(http.Dir(swaggerDir))))
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerSpec)))
	return mux
}

// watchHealth flips the health status to NOT_SERVING while any check fails.
func (s *Servers) watchHealth(ctx context.Context) {
	if len(s.checks) == 0 {
		return
	}
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		s.health.SetServingStatus(ServiceName, s.status(ctx))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Servers) status(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	for _, check := range s.checks {
		if err := check(checkCtx); err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("health check failed", "error", err)
			}
			return healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	return healthpb.HealthCheckResponse_SERVING
}
