package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/dokanhq/dokan-api/internal/domain/cart"
	"github.com/dokanhq/dokan-api/internal/domain/coupon"
	"github.com/dokanhq/dokan-api/internal/domain/settings"
)

// Zone is the delivery pricing tier. The single zilla named "Dhaka" maps to
// the inside tier; every other zilla maps to the outside tier.
type Zone string

const (
	ZoneInsideDhaka  Zone = "insideDhaka"
	ZoneOutsideDhaka Zone = "outsideDhaka"
)

// ZoneForZilla resolves the delivery zone for a zilla.
func ZoneForZilla(zilla string) Zone {
	if zilla == "Dhaka" {
		return ZoneInsideDhaka
	}
	return ZoneOutsideDhaka
}

// PaymentMethod is the customer's chosen way to pay.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentBkash  PaymentMethod = "bkash"
	PaymentNagad  PaymentMethod = "nagad"
	PaymentRocket PaymentMethod = "rocket"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentBkash, PaymentNagad, PaymentRocket:
		return true
	}
	return false
}

// DisplayName is the human-readable form stored on orders.
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentCOD:
		return "Cash on Delivery"
	case PaymentBkash:
		return "bKash"
	case PaymentNagad:
		return "Nagad"
	case PaymentRocket:
		return "Rocket"
	}
	return string(m)
}

// Breakdown carries every intermediate monetary value of a priced cart, not
// just the total, so each line can be displayed and tested independently.
type Breakdown struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	CODFee         decimal.Decimal `json:"codFee"`
	CouponDiscount decimal.Decimal `json:"couponDiscount"`
	CouponCode     string          `json:"couponCode,omitempty"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// Price computes the monetary breakdown for a cart, delivery zone, payment
// method and optional coupon. It is a pure function: no stock is touched and
// nothing is persisted.
//
// The coupon discount is capped at the subtotal so it can never contribute a
// negative subtotal on its own. The grand total is deliberately not clamped at
// zero: with a non-empty cart the fees keep it positive, and clamping would
// hide pathological inputs instead of surfacing them.
func Price(items []cart.Item, zone Zone, method PaymentMethod, cpn *coupon.Coupon, delivery settings.Delivery) Breakdown {
	subtotal := decimal.Zero
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		subtotal = subtotal.Add(it.Product.UnitPrice().Mul(qty))
	}

	charge := delivery.OutsideDhaka
	if zone == ZoneInsideDhaka {
		charge = delivery.InsideDhaka
	}

	codFee := decimal.Zero
	if method == PaymentCOD {
		codFee = delivery.CODFee
	}

	discount := decimal.Zero
	code := ""
	if cpn != nil {
		discount = decimal.Min(cpn.DiscountValue, subtotal)
		if discount.IsNegative() {
			discount = decimal.Zero
		}
		code = cpn.Code
	}

	return Breakdown{
		Subtotal:       subtotal,
		DeliveryCharge: charge,
		CODFee:         codFee,
		CouponDiscount: discount,
		CouponCode:     code,
		GrandTotal:     subtotal.Add(charge).Add(codFee).Sub(discount),
	}
}
