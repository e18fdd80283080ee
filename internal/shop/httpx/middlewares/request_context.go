package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/shop-checkout/internal/pkg/interceptors/constants"
)

// AttachRequestContext stores chi's request id under the shared context key
// and echoes it back as X-Request-Id. Must run after middleware.RequestID.
func AttachRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set(constants.HeaderXRequestId, requestID)
		}

		ctx := context.WithValue(r.Context(), constants.ContextKeyRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
