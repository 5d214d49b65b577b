// Package server assembles the gRPC server shell: interceptor chain, health
// service, and engine error mapping. The role engine itself is consumed
// in-process; this package owns no request or response encoding.
package server

import (
	"context"
	"database/sql"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	auditrepo "github.com/Sorchess/picaton-rbac/internal/audit/repository"
	"github.com/Sorchess/picaton-rbac/internal/security"
	"github.com/Sorchess/picaton-rbac/internal/server/interceptors"
)

// healthFullMethod is exempt from auth and auditing.
const healthFullMethod = "/grpc.health.v1.Health/Check"

// Deps holds the dependencies wired into the server shell.
type Deps struct {
	// Tokens validates Bearer tokens for protected RPCs. Required.
	Tokens *security.TokenProvider
	// AuditRepo receives an audit entry per authenticated RPC. If nil, the
	// audit interceptor is not installed.
	AuditRepo auditrepo.Repository
	// DB is pinged for readiness. If nil, the health service always reports
	// serving.
	DB *sql.DB
}

// Server wraps a grpc.Server with the standard interceptor chain and the
// built-in health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	db     *sql.DB
}

// New builds the server: otelgrpc stats handler for traces and metrics, then
// auth, then audit.
func New(deps Deps) *Server {
	exempt := map[string]bool{healthFullMethod: true}

	chain := []grpc.UnaryServerInterceptor{
		interceptors.AuthUnary(deps.Tokens, exempt),
	}
	if deps.AuditRepo != nil {
		chain = append(chain, interceptors.AuditUnary(deps.AuditRepo, exempt))
	}

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(chain...),
	)

	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, h)

	return &Server{grpc: s, health: h, db: deps.DB}
}

// Registrar exposes the underlying server for service registration.
func (s *Server) Registrar() grpc.ServiceRegistrar { return s.grpc }

// Serve starts serving on lis and blocks until the server stops.
func (s *Server) Serve(lis net.Listener) error { return s.grpc.Serve(lis) }

// GracefulStop drains in-flight RPCs and stops the server.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// WatchReadiness pings the database every interval and reflects the result in
// the health service. Blocks until ctx is done. No-op without a database.
func (s *Server) WatchReadiness(ctx context.Context, interval time.Duration) {
	if s.db == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s.checkReadiness(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) checkReadiness(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.PingContext(pingCtx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
}
