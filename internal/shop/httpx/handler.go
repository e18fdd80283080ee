package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/shop-checkout/internal/pkg/cache"
	"github.com/jcmexdev/shop-checkout/internal/pkg/metrics"
	"github.com/jcmexdev/shop-checkout/internal/shop/app"
	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

// Handler adapts the shop services to HTTP.
type Handler struct {
	carts          *app.CartService
	checkout       *app.CheckoutEngine
	catalog        *app.CatalogService
	orders         *app.OrderService
	metrics        *metrics.ServerMetrics
	replay         cache.Cache // nil-safe: idempotent replay disabled if nil
	idempotencyTTL time.Duration
}

type Services struct {
	Carts    *app.CartService
	Checkout *app.CheckoutEngine
	Catalog  *app.CatalogService
	Orders   *app.OrderService
}

// NewHandler wires the services. replay may be nil.
func NewHandler(svc Services, m *metrics.ServerMetrics, replay cache.Cache, idempotencyTTL time.Duration) *Handler {
	return &Handler{
		carts:          svc.Carts,
		checkout:       svc.Checkout,
		catalog:        svc.Catalog,
		orders:         svc.Orders,
		metrics:        m,
		replay:         replay,
		idempotencyTTL: idempotencyTTL,
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidation("invalid JSON payload")
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewValidation("%s must be a positive integer", name)
	}
	return id, nil
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientStock, domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError maps a shop error to its status. Internal causes are
// logged, not returned to the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	if kind == domain.KindInternal {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeError(w, statusFor(kind), string(kind), msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
