// Package interceptors holds the unary interceptors of the admin gRPC server.
package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/shop-checkout/internal/pkg/interceptors/constants"
)

// RequestIDServerInterceptor copies x-request-id from the incoming metadata
// into the context, generating one when absent, and logs every call.
func RequestIDServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := GetMetadataValue(ctx, constants.HeaderXRequestId)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, constants.ContextKeyRequestID, requestID)

		start := time.Now()
		resp, err := handler(ctx, req)

		slog.DebugContext(ctx, "grpc call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// RequestID returns the request id stored by the interceptor or by the HTTP
// request-context middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(constants.ContextKeyRequestID).(string)
	return id
}

// GetMetadataValue returns the first incoming metadata value for key.
func GetMetadataValue(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(key); len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}
