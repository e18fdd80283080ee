package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jcmexdev/shop-checkout/internal/pkg/interceptors/constants"
	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/session"
)

const opPlaceOrder = "place_order"

// PlaceOrder checks out the caller's cart. With an X-Idempotency-Key header
// a repeated request replays the first successful result.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	ctx := r.Context()
	sessionID := session.FromContext(ctx)

	replayKey := ""
	if idemKey := strings.TrimSpace(r.Header.Get(constants.HeaderXIdempotencyKey)); idemKey != "" && h.replay != nil {
		replayKey = h.replay.GenerateKey(opPlaceOrder, sessionID+":"+idemKey)
		cached, err := h.replay.Get(ctx, replayKey)
		if err != nil {
			slog.WarnContext(ctx, "idempotency lookup failed", "error", err)
		}
		if cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(cached))
			return
		}
	}

	placed, err := h.checkout.PlaceOrder(ctx, sessionID, domain.CustomerInfo{
		Name:         req.CustomerName,
		Email:        req.CustomerEmail,
		Phone:        req.CustomerPhone,
		DeliveryDate: req.DeliveryDate,
		DeliveryTime: req.DeliveryTime,
	})
	if err != nil {
		h.observeCheckout(string(domain.KindOf(err)))
		writeDomainError(w, r, err)
		return
	}
	h.observeCheckout("placed")

	resp := PlaceOrderResponse{OrderID: placed.OrderID, TotalAmount: placed.TotalAmount.StringFixed(2)}
	if replayKey != "" {
		if body, err := json.Marshal(resp); err == nil {
			if err := h.replay.Set(ctx, replayKey, string(body), h.idempotencyTTL); err != nil {
				slog.WarnContext(ctx, "idempotency store failed", "order_id", placed.OrderID, "error", err)
			}
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func (h *Handler) observeCheckout(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveCheckout(outcome)
	}
}
