package httpx

import (
	"net/http"
	"strings"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/session"
)

// AddCartItem sets a product's quantity in the caller's cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var missing []string
	if req.ProductID == nil {
		missing = append(missing, "product_id")
	}
	if req.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		writeDomainError(w, r, domain.NewValidation("Following fields are required: %s", strings.Join(missing, ", ")))
		return
	}

	sessionID := session.FromContext(r.Context())
	if err := h.carts.AddItem(r.Context(), sessionID, *req.ProductID, *req.Quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Successfully created"})
}

func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.carts.Items(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartLines(lines))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productID")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.carts.RemoveItem(r.Context(), session.FromContext(r.Context()), productID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Successfully Deleted"})
}
