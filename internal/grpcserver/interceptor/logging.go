// Package interceptor holds the gRPC middlewares.
package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/apidemo/internal/logger"
)

func peerAddr(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	return p.Addr.String()
}

// UnaryLoggingInterceptor logs each unary call with its method, peer,
// duration and status code. Calls to quietMethods are logged at debug level,
// which keeps frequent probes out of the info log.
func UnaryLoggingInterceptor(quietMethods []string) grpc.UnaryServerInterceptor {
	quiet := make(map[string]struct{}, len(quietMethods))
	for _, m := range quietMethods {
		quiet[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		start := time.Now()

		resp, err = handler(ctx, req)

		st, _ := status.FromError(err)
		fields := []interface{}{
			"method", info.FullMethod,
			"peer", peerAddr(ctx),
			"duration", time.Since(start),
			"code", st.Code().String(),
		}

		if _, ok := quiet[info.FullMethod]; ok && err == nil {
			logger.Log.Debugln(append([]interface{}{"gRPC request"}, fields...)...)
			return resp, err
		}
		logger.Log.Infoln(append([]interface{}{"gRPC request"}, fields...)...)

		return resp, err
	}
}

// StreamLoggingInterceptor logs each stream once it ends.
func StreamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		stream grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()

		err := handler(srv, stream)

		st, _ := status.FromError(err)
		logger.Log.Infoln(
			"gRPC stream",
			"method", info.FullMethod,
			"peer", peerAddr(stream.Context()),
			"duration", time.Since(start),
			"code", st.Code().String(),
		)

		return err
	}
}
