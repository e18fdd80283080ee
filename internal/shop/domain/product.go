package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Deleted     bool
	CreatedAt   time.Time
}

// NewProduct is the input for creating a catalog entry. Pointer fields
// distinguish "missing" from zero.
type NewProduct struct {
	Name        string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
}

func (p NewProduct) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if p.Description == nil {
		missing = append(missing, "description")
	}
	if p.Price == nil {
		missing = append(missing, "price")
	}
	if p.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return requiredFields(missing)
	}
	if p.Price.IsNegative() {
		return NewValidation("price must not be negative")
	}
	if *p.Quantity < 0 {
		return NewValidation("quantity must not be negative")
	}
	return nil
}

// ProductPatch is a partial update; nil fields are left unchanged.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
}

func (p ProductPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidation("name must not be empty")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return NewValidation("price must not be negative")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return NewValidation("quantity must not be negative")
	}
	return nil
}

// Apply returns a copy of prod with the patch applied.
func (p ProductPatch) Apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Price != nil {
		prod.Price = p.Price.Round(2)
	}
	if p.Quantity != nil {
		prod.Quantity = *p.Quantity
	}
	return prod
}

// ListQuery filters the catalog listing. Pagination applies only when both
// Page and Limit are positive.
type ListQuery struct {
	Keyword string
	Page    int
	Limit   int
}

func (q ListQuery) Paginated() bool { return q.Page > 0 && q.Limit > 0 }

type ProductPage struct {
	Items []Product
	Count int
}

func requiredFields(missing []string) *Error {
	return NewValidation("Following fields are required: %s", strings.Join(missing, ", "))
}
