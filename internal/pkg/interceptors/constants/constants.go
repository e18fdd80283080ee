// Package constants holds the header names and context keys shared by the
// HTTP edge and the admin gRPC server.
package constants

type contextKey string

const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"

	ContextKeyRequestID contextKey = HeaderXRequestId
)
