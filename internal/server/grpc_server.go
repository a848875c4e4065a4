package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/oggyb/crush-radar/internal/auth"
)

// maxRecvMsgSize leaves room for a base64-encoded avatar in a JSON request.
const maxRecvMsgSize = 8 << 20

// GRPCServer bundles the gRPC server with its health service.
type GRPCServer struct {
	*grpc.Server
	Health *health.Server
	log    *slog.Logger
}

// NewGRPCServer builds a gRPC server with the interceptor chain and
// registers all provided services, health and reflection.
//
// Interceptor order: recover, logging, metrics, timeout, auth.
func NewGRPCServer(verifier *auth.Service, log *slog.Logger, opts Options, registrars ...Registrar) *GRPCServer {
	grpc_prometheus.EnableHandlingTimeHistogram()

	s := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxRecvMsgSize),
		grpc.ChainUnaryInterceptor(
			Recover(log),
			UnaryLogging(log),
			grpc_prometheus.UnaryServerInterceptor,
			WithTimeout(opts.RequestTimeout),
			Authenticate(verifier, PublicMethods),
		),
	)

	// register all services
	for _, r := range registrars {
		r.Register(s)
	}

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// enable reflection for easier debugging with grpcurl
	if opts.Reflection {
		reflection.Register(s)
	}
	grpc_prometheus.Register(s)

	return &GRPCServer{Server: s, Health: hs, log: log}
}

// Options tune NewGRPCServer.
type Options struct {
	RequestTimeout time.Duration
	Reflection     bool
}

// Serve marks the server SERVING and blocks until ctx is done or the
// listener fails. On ctx cancellation it stops gracefully.
func (g *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	g.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 1)
	go func() {
		if err := g.Server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		g.Health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		g.GracefulStop()
		g.log.Info("grpc server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

// StartGRPCServer listens on addr and serves until ctx is done.
func StartGRPCServer(ctx context.Context, addr string, g *GRPCServer) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	g.log.Info("starting gRPC server", "addr", addr)
	return g.Serve(ctx, lis)
}
