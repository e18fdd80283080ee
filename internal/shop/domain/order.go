package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPlaced  OrderStatus = "placed"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// CustomerInfo carries the contact and delivery fields of an order request.
type CustomerInfo struct {
	Name         string
	Email        string
	Phone        string
	DeliveryDate string
	DeliveryTime string
}

// Validate checks that every field is present and that the delivery date
// and time parse.
func (c CustomerInfo) Validate() error {
	fields := []struct {
		key, value string
	}{
		{"customer_name", c.Name},
		{"customer_email", c.Email},
		{"customer_phone", c.Phone},
		{"delivery_date", c.DeliveryDate},
		{"delivery_time", c.DeliveryTime},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return requiredFields(missing)
	}
	if _, err := time.Parse(DateLayout, c.DeliveryDate); err != nil {
		return NewValidation("delivery_date must be formatted as YYYY-MM-DD")
	}
	if _, err := ParseDeliveryTime(c.DeliveryTime); err != nil {
		return NewValidation("delivery_time must be formatted as HH:MM or HH:MM:SS")
	}
	return nil
}

// ParseDeliveryTime accepts HH:MM and HH:MM:SS.
func ParseDeliveryTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.TimeOnly, s)
}

type Order struct {
	ID            int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	TotalAmount   decimal.Decimal
	Status        OrderStatus
	OrderedAt     time.Time
	DeliveryDate  string
	DeliveryTime  string
	Items         []OrderItem
}

// OrderItem snapshots the quantity and unit price at checkout time.
type OrderItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PlacedOrder is what a successful checkout reports back.
type PlacedOrder struct {
	OrderID     int64
	TotalAmount decimal.Decimal
}
