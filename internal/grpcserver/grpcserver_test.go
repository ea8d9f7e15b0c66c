package grpcserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/apidemo/internal/db/memorystorage"
	"github.com/patric-chuzhbe/apidemo/internal/logger"
	"github.com/patric-chuzhbe/apidemo/internal/mockstorage"
)

const (
	addr        = "localhost:0"
	dialTimeout = 5 * time.Second
)

// startTestGRPCServer boots a health server and returns a client and the shutdown function.
func startTestGRPCServer(t *testing.T, db pinger) (healthpb.HealthClient, *Server, func()) {
	t.Helper()

	require.NoError(t, logger.Init("debug"))

	server, err := New(addr, db, WithRefreshInterval(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := server.Serve(ctx); err != nil {
			t.Logf("gRPC server stopped: %v", err)
		}
	}()

	dialContext, cancelDial := context.WithTimeout(context.Background(), dialTimeout)
	defer cancelDial()

	conn, err := grpc.DialContext(
		dialContext,
		server.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	require.NoError(t, err)

	return healthpb.NewHealthClient(conn),
		server,
		func() {
			cancel()
			server.Stop()
			conn.Close()
		}
}

func TestHealthServing(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)

	client, _, shutdown := startTestGRPCServer(t, db)
	defer shutdown()

	for _, service := range []string{"", ServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus(), "service %q", service)
	}
}

func TestHealthUnknownService(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)

	client, _, shutdown := startTestGRPCServer(t, db)
	defer shutdown()

	_, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "nope"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealthFollowsStore(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("Ping", mock.Anything).Return(errors.New("store is down"))

	client, _, shutdown := startTestGRPCServer(t, db)
	defer shutdown()

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	db.AssertCalled(t, "Ping", mock.Anything)
}

func TestStopReportsNotServing(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)

	server, err := New(addr, db)
	require.NoError(t, err)
	defer server.lis.Close()

	server.Refresh(context.Background())
	server.health.Shutdown()

	resp, err := server.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	server.Stop()
}
