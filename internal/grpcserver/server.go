// Package grpcserver runs the optional gRPC health endpoint. It reports
// SERVING while the store answers Ping and NOT_SERVING otherwise, and
// exposes server reflection for tools such as grpcurl.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/patric-chuzhbe/apidemo/internal/grpcserver/interceptor"
	"github.com/patric-chuzhbe/apidemo/internal/logger"
)

// ServiceName is the name the catalog API reports its health under.
const ServiceName = "apidemo.Catalog"

const defaultRefreshInterval = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// Server is a gRPC server with the health and reflection services.
type Server struct {
	server          *grpc.Server
	lis             net.Listener
	health          *health.Server
	db              pinger
	refreshInterval time.Duration
}

type InitOption func(*Server)

// WithRefreshInterval sets how often the store is pinged while serving.
func WithRefreshInterval(interval time.Duration) InitOption {
	return func(s *Server) {
		s.refreshInterval = interval
	}
}

// New listens on addr. Nothing is served until Serve is called.
func New(addr string, db pinger, optionsProto ...InitOption) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		lis:             lis,
		health:          health.NewServer(),
		db:              db,
		refreshInterval: defaultRefreshInterval,
	}
	for _, protoOption := range optionsProto {
		protoOption(s)
	}

	quiet := []string{
		"/grpc.health.v1.Health/Check",
	}
	s.server = grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.UnaryLoggingInterceptor(quiet)),
		grpc.ChainStreamInterceptor(interceptor.StreamLoggingInterceptor()),
	)
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)

	return s, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}

// Refresh pings the store and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		logger.Log.Warnln("store ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until Stop is called. The health status is refreshed in the
// background until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	s.Refresh(ctx)

	go func() {
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Refresh(ctx)
			}
		}
	}()

	logger.Log.Infoln("gRPC health server running", "addr", s.lis.Addr().String())

	return s.server.Serve(s.lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
