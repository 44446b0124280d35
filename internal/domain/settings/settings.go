// Package settings holds store-wide configuration maintained by the admin.
package settings

import (
	"context"

	"github.com/shopspring/decimal"
)

// Delivery holds the configured delivery charges and the cash-on-delivery fee.
// All amounts are non-negative currency values.
type Delivery struct {
	InsideDhaka  decimal.Decimal `json:"insideDhaka"`
	OutsideDhaka decimal.Decimal `json:"outsideDhaka"`
	CODFee       decimal.Decimal `json:"codFee"`
}

// DefaultDelivery returns the charges used until an admin saves their own.
func DefaultDelivery() Delivery {
	return Delivery{
		InsideDhaka:  decimal.NewFromInt(60),
		OutsideDhaka: decimal.NewFromInt(120),
		CODFee:       decimal.NewFromInt(10),
	}
}

// Repository provides read and write access to delivery settings.
type Repository interface {
	Delivery(ctx context.Context) (Delivery, error)
	SaveDelivery(ctx context.Context, d Delivery) error
}
