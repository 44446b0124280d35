package checkout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dokanhq/dokan-api/internal/domain/cart"
	"github.com/dokanhq/dokan-api/internal/domain/catalog"
	"github.com/dokanhq/dokan-api/internal/domain/coupon"
	"github.com/dokanhq/dokan-api/internal/domain/settings"
)

func testDelivery() settings.Delivery {
	return settings.Delivery{
		InsideDhaka:  decimal.NewFromInt(60),
		OutsideDhaka: decimal.NewFromInt(120),
		CODFee:       decimal.NewFromInt(10),
	}
}

func item(id string, price int64, discount *int64, qty int) cart.Item {
	p := catalog.Product{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(price)}
	if discount != nil {
		d := decimal.NewFromInt(*discount)
		p.DiscountPrice = &d
	}
	return cart.Item{
		Key:      cart.ItemKey(id, nil),
		Product:  p,
		Quantity: qty,
	}
}

func ptr(v int64) *int64 { return &v }

func TestPrice_DiscountedScenarioWithCODAndCoupon(t *testing.T) {
	// Cart: price 1000, discountPrice 800, qty 2; inside Dhaka; COD; coupon 100.
	items := []cart.Item{item("p1", 1000, ptr(800), 2)}
	cpn := &coupon.Coupon{
		Code:          "SAVE100",
		DiscountValue: decimal.NewFromInt(100),
		ExpiryDate:    time.Now().Add(time.Hour),
		IsActive:      true,
	}

	b := Price(items, ZoneInsideDhaka, PaymentCOD, cpn, testDelivery())

	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(1600)), "subtotal %s", b.Subtotal)
	assert.True(t, b.DeliveryCharge.Equal(decimal.NewFromInt(60)))
	assert.True(t, b.CODFee.Equal(decimal.NewFromInt(10)))
	assert.True(t, b.CouponDiscount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "SAVE100", b.CouponCode)
	assert.True(t, b.GrandTotal.Equal(decimal.NewFromInt(1570)), "grand total %s", b.GrandTotal)
}

func TestPrice_WalletWithoutCoupon(t *testing.T) {
	items := []cart.Item{item("p1", 1000, ptr(800), 2)}

	b := Price(items, ZoneInsideDhaka, PaymentBkash, nil, testDelivery())

	assert.True(t, b.CODFee.IsZero())
	assert.True(t, b.CouponDiscount.IsZero())
	assert.True(t, b.GrandTotal.Equal(decimal.NewFromInt(1660)), "grand total %s", b.GrandTotal)
}

func TestPrice_SubtotalMixesDiscountedAndRegularItems(t *testing.T) {
	items := []cart.Item{
		item("p1", 1000, ptr(800), 2), // 1600
		item("p2", 250, nil, 3),       // 750
	}

	b := Price(items, ZoneOutsideDhaka, PaymentNagad, nil, testDelivery())

	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(2350)))
	assert.True(t, b.DeliveryCharge.Equal(decimal.NewFromInt(120)))
	assert.True(t, b.GrandTotal.Equal(decimal.NewFromInt(2470)))
}

func TestPrice_CouponCappedAtSubtotal(t *testing.T) {
	items := []cart.Item{item("p1", 100, nil, 1)}
	cpn := &coupon.Coupon{Code: "BIG", DiscountValue: decimal.NewFromInt(500)}

	b := Price(items, ZoneInsideDhaka, PaymentCOD, cpn, testDelivery())

	assert.True(t, b.CouponDiscount.Equal(decimal.NewFromInt(100)), "capped at subtotal")
	// subtotal 100 + delivery 60 + cod 10 - discount 100
	assert.True(t, b.GrandTotal.Equal(decimal.NewFromInt(70)))
}

func TestPrice_NegativeCouponValueFloorsAtZero(t *testing.T) {
	items := []cart.Item{item("p1", 100, nil, 1)}
	cpn := &coupon.Coupon{Code: "NEG", DiscountValue: decimal.NewFromInt(-50)}

	b := Price(items, ZoneInsideDhaka, PaymentBkash, cpn, testDelivery())

	assert.True(t, b.CouponDiscount.IsZero())
	assert.True(t, b.GrandTotal.Equal(decimal.NewFromInt(160)))
}

func TestPrice_GrandTotalIdentity(t *testing.T) {
	items := []cart.Item{
		item("p1", 999, ptr(750), 3),
		item("p2", 120, nil, 2),
	}
	cpn := &coupon.Coupon{Code: "C", DiscountValue: decimal.NewFromInt(75)}

	for _, zone := range []Zone{ZoneInsideDhaka, ZoneOutsideDhaka} {
		for _, method := range []PaymentMethod{PaymentCOD, PaymentBkash, PaymentNagad, PaymentRocket} {
			for _, c := range []*coupon.Coupon{nil, cpn} {
				b := Price(items, zone, method, c, testDelivery())

				want := b.Subtotal.Add(b.DeliveryCharge).Add(b.CODFee).Sub(b.CouponDiscount)
				assert.True(t, b.GrandTotal.Equal(want),
					"zone=%s method=%s coupon=%v: %s != %s", zone, method, c != nil, b.GrandTotal, want)
				assert.False(t, b.CouponDiscount.IsNegative())
				assert.True(t, b.CouponDiscount.LessThanOrEqual(b.Subtotal))
			}
		}
	}
}

func TestZoneForZilla(t *testing.T) {
	assert.Equal(t, ZoneInsideDhaka, ZoneForZilla("Dhaka"))
	assert.Equal(t, ZoneOutsideDhaka, ZoneForZilla("Chattogram"))
	assert.Equal(t, ZoneOutsideDhaka, ZoneForZilla("dhaka"), "zilla match is exact")
}

func TestValidPhone(t *testing.T) {
	valid := []string{"01712345678", "+8801812345678", "8801912345678", "01345678901"}
	for _, p := range valid {
		assert.True(t, ValidPhone(p), p)
	}

	invalid := []string{"12345", "", "01212345678", "017123456789", "0171234567", "+88017123456789", "018123456ab"}
	for _, p := range invalid {
		assert.False(t, ValidPhone(p), p)
	}
}
