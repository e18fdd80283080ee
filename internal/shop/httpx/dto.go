package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

type AddCartItemRequest struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type CartLineResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	EachPrice   string `json:"each_price"`
	TotalPrice  string `json:"total_price"`
}

type PlaceOrderRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	DeliveryDate  string `json:"delivery_date"`
	DeliveryTime  string `json:"delivery_time"`
}

type PlaceOrderResponse struct {
	OrderID     int64  `json:"order_id"`
	TotalAmount string `json:"total_amount"`
}

type OrderResponse struct {
	ID            int64               `json:"id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
	TotalAmount   string              `json:"total_amount"`
	Status        string              `json:"status"`
	OrderedAt     string              `json:"ordered_at"`
	DeliveryDate  string              `json:"delivery_date"`
	DeliveryTime  string              `json:"delivery_time"`
	Items         []OrderItemResponse `json:"items"`
}

type OrderItemResponse struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type ProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
}

type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	CreatedAt   string `json:"created_on"`
}

type ProductListResponse struct {
	Count   int               `json:"count"`
	Results []ProductResponse `json:"results"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapCartLines(lines []domain.CartLine) []CartLineResponse {
	out := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		out[i] = CartLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			EachPrice:   l.UnitPrice.StringFixed(2),
			TotalPrice:  l.Total().StringFixed(2),
		}
	}
	return out
}

func mapOrderToResponse(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		}
	}
	return OrderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Status:        string(o.Status),
		OrderedAt:     o.OrderedAt.UTC().Format(time.RFC3339),
		DeliveryDate:  o.DeliveryDate,
		DeliveryTime:  o.DeliveryTime,
		Items:         items,
	}
}

func mapProduct(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
