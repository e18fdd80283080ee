package httpx

import (
	"net/http"
	"strconv"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	in := domain.NewProduct{Description: req.Description, Price: req.Price, Quantity: req.Quantity}
	if req.Name != nil {
		in.Name = *req.Name
	}
	p, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(p))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	p, err := h.catalog.Update(r.Context(), id, domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Successfully Deleted"})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

// ListProducts serves ?keyword=&page=&limit=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := domain.ListQuery{Keyword: r.URL.Query().Get("keyword")}
	var err error
	if q.Page, err = queryInt(r, "page"); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		writeDomainError(w, r, err)
		return
	}

	page, err := h.catalog.List(r.Context(), q)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	resp := ProductListResponse{Count: page.Count, Results: make([]ProductResponse, len(page.Items))}
	for i, p := range page.Items {
		resp.Results[i] = mapProduct(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.NewValidation("%s must be a positive integer", name)
	}
	return n, nil
}
