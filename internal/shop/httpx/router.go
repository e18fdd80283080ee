package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/shop-checkout/internal/shop/httpx/middlewares"
	"github.com/jcmexdev/shop-checkout/internal/shop/session"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterOptions struct {
	Sessions session.Provider
	Health   Pinger
	Metrics  http.Handler
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestContext)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if handler.metrics != nil {
		r.Use(handler.metrics.Middleware)
	}

	r.Get("/health", healthHandler(opts.Health))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(opts.Sessions))

		r.Post("/cart", handler.AddCartItem)
		r.Get("/cart", handler.ListCart)
		r.Delete("/cart/{productID}", handler.RemoveCartItem)
		r.Post("/orders", handler.PlaceOrder)
	})

	r.Get("/orders/{id}", handler.GetOrder)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", handler.CreateProduct)
		r.Get("/", handler.ListProducts)
		r.Get("/{id}", handler.GetProduct)
		r.Put("/{id}", handler.UpdateProduct)
		r.Delete("/{id}", handler.DeleteProduct)
	})
	return r
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
