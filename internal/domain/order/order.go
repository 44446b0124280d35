package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dokanhq/dokan-api/internal/domain/cart"
)

// Sentinel errors for order operations.
var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// Status is the single mutable field of an order.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether s is one of the allowed status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a placed customer order. Everything except Status is immutable
// once created; items are a frozen snapshot of the cart at placement time and
// every intermediate monetary value is stored so it can be displayed without
// recomputation. The JSON field names are the stable persisted contract.
type Order struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	UserName       string          `json:"userName"`
	UserPhone      string          `json:"userPhone"`
	UserAddress    string          `json:"userAddress"`
	Items          []cart.Item     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	CouponDiscount decimal.Decimal `json:"couponDiscount"`
	CouponCode     string          `json:"couponCode,omitempty"`
	CODFee         decimal.Decimal `json:"codFee,omitempty"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
	PaymentMethod  string          `json:"paymentMethod"`
	TransactionID  string          `json:"transactionId,omitempty"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Repository defines persistence operations for orders. Creation happens only
// through the checkout engine's transactional store; orders are never deleted,
// only status-transitioned.
type Repository interface {
	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]Order, error)
	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	// UpdateStatus transitions an order to the given status and returns the
	// updated order. Returns ErrNotFound when no such order exists.
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
}
