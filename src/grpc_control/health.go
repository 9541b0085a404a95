package grpc_control

import (
	"fmt"
	"net"
	"sync"

	"sales-dashboard/src/config"
	"sales-dashboard/src/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// LiveService reports SERVING while the push channel is live.
const LiveService = "dashboard.live"

// -----------------------------------------------------------------------------
// HealthReporter
// -----------------------------------------------------------------------------

// HealthReporter mirrors the sync controller's mode onto grpc.health.v1.
// The overall service ("") is NOT_SERVING only when the channel is down and
// the fallback pull is failing too.
type HealthReporter struct {
	Config *config.Config
	Logger *logger.Logger
	Health *health.Server

	mu       sync.Mutex
	server   *grpc.Server
	listener net.Listener
}

// NewHealthReporter creates a reporter whose services start NOT_SERVING
// for "dashboard.live" and SERVING overall.
func NewHealthReporter(cfg *config.Config, log *logger.Logger) *HealthReporter {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(LiveService, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthReporter{
		Config: cfg,
		Logger: log,
		Health: hs,
	}
}

// -----------------------------------------------------------------------------

// OnModeChange implements IStatusListener.
func (r *HealthReporter) OnModeChange(live bool, pullHealthy bool) {
	liveStatus := healthpb.HealthCheckResponse_NOT_SERVING
	if live {
		liveStatus = healthpb.HealthCheckResponse_SERVING
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if !live && !pullHealthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}

	r.Health.SetServingStatus(LiveService, liveStatus)
	r.Health.SetServingStatus("", overall)
	r.Logger.Debug("Health: live=%s overall=%s", liveStatus, overall)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Listen binds the configured gRPC address.
func (r *HealthReporter) Listen() error {
	addr := fmt.Sprintf("%s:%d", r.Config.GrpcHost, r.Config.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", addr, err)
	}

	r.mu.Lock()
	r.listener = lis
	r.server = grpc.NewServer()
	healthpb.RegisterHealthServer(r.server, r.Health)
	r.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (r *HealthReporter) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Serve blocks until Stop.
func (r *HealthReporter) Serve() error {
	r.mu.Lock()
	srv, lis := r.server, r.listener
	r.mu.Unlock()
	if srv == nil {
		return fmt.Errorf("gRPC health server not listening")
	}

	r.Logger.Info("Starting gRPC health server on %s", lis.Addr())
	return srv.Serve(lis)
}

// Stop marks every service NOT_SERVING and stops the server.
func (r *HealthReporter) Stop() {
	r.Health.Shutdown()

	r.mu.Lock()
	srv := r.server
	r.mu.Unlock()
	if srv != nil {
		srv.GracefulStop()
	}
}
