package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	unitriggerv1 "github.com/unijord/unitrigger/pkg/gen/go/proto/unitrigger/v1"
	"github.com/unijord/unitrigger/pkg/trigger"
)

// Server hosts TriggerService and the standard health service.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// NewServer registers svc on a gRPC server bound to lis.
func NewServer(lis net.Listener, svc unitriggerv1.TriggerServiceServer, logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "grpc")

	opts = append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(requestIDInterceptor, loggingInterceptor(logger)),
	}, opts...)
	grpcServer := grpc.NewServer(opts...)
	unitriggerv1.RegisterTriggerServiceServer(grpcServer, svc)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{
		listener:   lis,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}
}

// Listen binds addr and builds a Server on it.
func Listen(addr string, svc unitriggerv1.TriggerServiceServer, logger *slog.Logger, opts ...grpc.ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return NewServer(lis, svc, logger, opts...), nil
}

func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve runs until ctx is canceled, then stops gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("grpc server listening", "addr", s.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.Close()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Close stops the server and releases the listener even when Serve never
// ran. It may be called more than once.
func (s *Server) Close() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	_ = s.listener.Close()
}

// requestIDInterceptor echoes the caller's request id, or a fresh one, in
// the response header.
func requestIDInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	id := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(MetadataRequestID); len(v) > 0 {
			id = v[0]
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(MetadataRequestID, id))
	return handler(ctx, req)
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []any{
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		}
		if err == nil {
			logger.Debug("rpc", attrs...)
			return resp, nil
		}
		attrs = append(attrs, "kind", trigger.KindOf(err).String(), "error", err)
		if trigger.KindOf(err) == trigger.KindInternal {
			logger.Error("rpc failed", attrs...)
		} else {
			logger.Info("rpc rejected", attrs...)
		}
		return resp, err
	}
}
