package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidOrExpired is returned when a coupon code is unknown, inactive, or
// past its expiry. Callers cannot distinguish the three cases; an expired code
// is treated exactly like a code that never existed.
var ErrInvalidOrExpired = errors.New("invalid or expired coupon code")

// Coupon is a fixed-amount discount redeemable until its expiry. Codes are
// unique case-insensitively. Percentage discounts are out of scope.
type Coupon struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	ExpiryDate    time.Time       `json:"expiryDate"`
	IsActive      bool            `json:"isActive"`
}

// Repository provides lookup and administration of coupons.
type Repository interface {
	// FindByCode looks up a coupon by code, matching case-insensitively.
	// Returns ErrInvalidOrExpired when no such coupon exists.
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) error
}
