package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound = errors.New("product not found")
	// ErrStockMismatch is returned at the write boundary when a variant
	// product's aggregate stock does not equal the sum of its option stocks.
	ErrStockMismatch = errors.New("product stock does not match sum of option stocks")
)

// Option is a selectable value of a variant dimension, carrying its own stock.
type Option struct {
	Name       string `json:"name"`
	Stock      int    `json:"stock"`
	ImageIndex *int   `json:"imageIndex,omitempty"`
}

// Variant is a named product dimension (e.g. "Color") with selectable options.
type Variant struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// Product is a catalog item. When Variants is non-empty, Stock is an aggregate
// derived from the option stocks; otherwise Stock is authoritative.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Images        []string         `json:"images"`
	Category      string           `json:"category"`
	Stock         int              `json:"stock"`
	Rating        float64          `json:"rating"`
	IsFeatured    bool             `json:"isFeatured"`
	Variants      []Variant        `json:"variants"`

	// Derived from reviews; Rating is the fallback when no reviews exist.
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
}

// UnitPrice is the effective price per unit: the discount price when present,
// the base price otherwise.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// HasVariants reports whether stock is tracked per variant option.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// Validate checks the invariants enforced at the repository write boundary.
// Products are rejected here instead of being silently backfilled on read.
func (p *Product) Validate() error {
	if p.ID == "" {
		return errors.New("product id is required")
	}
	if p.Name == "" {
		return errors.New("product name is required")
	}
	if p.Price.IsNegative() {
		return errors.New("product price must not be negative")
	}
	if p.DiscountPrice != nil && p.DiscountPrice.IsNegative() {
		return errors.New("discount price must not be negative")
	}
	if p.HasVariants() && p.Stock != TotalOptionStock(p.Variants) {
		return ErrStockMismatch
	}
	return nil
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
}
