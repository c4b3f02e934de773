package observability

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthService is the service name reported alongside the overall status
const GRPCHealthService = "lexiqai.interpreter.Gateway"

// GRPCHealthServer exposes the standard gRPC health protocol for probes
// that speak gRPC rather than HTTP.
type GRPCHealthServer struct {
	server *grpc.Server
	health *health.Server
	addr   string
	checks []DependencyCheck
	stop   chan struct{}
}

// NewGRPCHealthServer creates a health server on addr. The serving status
// follows the same dependency checks as the HTTP readiness endpoint.
func NewGRPCHealthServer(addr string, checks ...DependencyCheck) *GRPCHealthServer {
	server := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	return &GRPCHealthServer{
		server: server,
		health: healthServer,
		addr:   addr,
		checks: checks,
		stop:   make(chan struct{}),
	}
}

// Start listens on the configured address and serves in a goroutine
func (s *GRPCHealthServer) Start(refresh time.Duration) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.Refresh(context.Background())

	logger := WithComponent("grpc_health")
	go func() {
		logger.Info().Str("addr", s.addr).Msg("gRPC health server listening")
		if err := s.server.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("gRPC health server stopped")
		}
	}()

	if refresh > 0 {
		go s.refreshLoop(refresh)
	}
	return nil
}

// Refresh re-runs the dependency checks and updates the serving status
func (s *GRPCHealthServer) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if _, ok := RunChecks(ctx, s.checks...); !ok {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(GRPCHealthService, status)
}

func (s *GRPCHealthServer) refreshLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Refresh(context.Background())
		}
	}
}

// Shutdown marks the service NOT_SERVING and stops the server gracefully
func (s *GRPCHealthServer) Shutdown() {
	close(s.stop)
	s.health.Shutdown()
	s.server.GracefulStop()
}
