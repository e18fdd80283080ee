package interceptors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/shop-checkout/internal/pkg/interceptors/constants"
)

func runInterceptor(t *testing.T, ctx context.Context) string {
	t.Helper()
	var seen string
	_, err := RequestIDServerInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			seen = RequestID(ctx)
			return nil, nil
		})
	require.NoError(t, err)
	return seen
}

func TestRequestIDServerInterceptor_PropagatesIncoming(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(constants.HeaderXRequestId, "req-1"))
	assert.Equal(t, "req-1", runInterceptor(t, ctx))
}

func TestRequestIDServerInterceptor_GeneratesWhenMissing(t *testing.T) {
	id := runInterceptor(t, context.Background())
	assert.Len(t, id, 36)
}

func TestGetMetadataValue_Missing(t *testing.T) {
	assert.Empty(t, GetMetadataValue(context.Background(), "absent"))
}
