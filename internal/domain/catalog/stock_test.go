package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variantProduct() *Product {
	return &Product{
		ID:    "p1",
		Name:  "T-Shirt",
		Price: decimal.NewFromInt(500),
		Stock: 30,
		Variants: []Variant{
			{
				Name: "Color",
				Options: []Option{
					{Name: "Red", Stock: 10},
					{Name: "Blue", Stock: 5},
				},
			},
			{
				Name: "Size",
				Options: []Option{
					{Name: "M", Stock: 7},
					{Name: "L", Stock: 8},
				},
			},
		},
	}
}

func TestApplyDeduction_VariantProduct(t *testing.T) {
	p := variantProduct()

	ApplyDeduction(p, StockDeduction{
		ProductID: "p1",
		Options:   map[string]string{"Color": "Red", "Size": "L"},
		Quantity:  3,
	})

	assert.Equal(t, 7, p.Variants[0].Options[0].Stock, "Red decremented")
	assert.Equal(t, 5, p.Variants[0].Options[1].Stock, "Blue untouched")
	assert.Equal(t, 7, p.Variants[1].Options[0].Stock, "M untouched")
	assert.Equal(t, 5, p.Variants[1].Options[1].Stock, "L decremented")

	// Aggregate equals the sum of all option stocks afterwards.
	assert.Equal(t, TotalOptionStock(p.Variants), p.Stock)
	assert.Equal(t, 24, p.Stock)
}

func TestApplyDeduction_UnknownOptionSkipped(t *testing.T) {
	p := variantProduct()

	ApplyDeduction(p, StockDeduction{
		ProductID: "p1",
		Options:   map[string]string{"Color": "Green"},
		Quantity:  2,
	})

	// No option matched, but the aggregate is still recomputed.
	assert.Equal(t, 10, p.Variants[0].Options[0].Stock)
	assert.Equal(t, 30, p.Stock)
}

func TestApplyDeduction_SimpleProduct(t *testing.T) {
	p := &Product{ID: "p2", Name: "Mug", Price: decimal.NewFromInt(200), Stock: 4}

	ApplyDeduction(p, StockDeduction{ProductID: "p2", Quantity: 3})
	assert.Equal(t, 1, p.Stock)

	// No floor at zero: a second oversized deduction goes negative.
	ApplyDeduction(p, StockDeduction{ProductID: "p2", Quantity: 3})
	assert.Equal(t, -2, p.Stock)
}

func TestProductValidate(t *testing.T) {
	p := variantProduct()
	require.NoError(t, p.Validate())

	p.Stock = 29
	require.ErrorIs(t, p.Validate(), ErrStockMismatch)

	neg := decimal.NewFromInt(-1)
	bad := &Product{ID: "p3", Name: "Bad", Price: decimal.NewFromInt(10), DiscountPrice: &neg}
	require.Error(t, bad.Validate())
}

func TestUnitPrice(t *testing.T) {
	dp := decimal.NewFromInt(800)
	p := &Product{ID: "p1", Name: "X", Price: decimal.NewFromInt(1000), DiscountPrice: &dp}
	assert.True(t, p.UnitPrice().Equal(dp))

	p.DiscountPrice = nil
	assert.True(t, p.UnitPrice().Equal(decimal.NewFromInt(1000)))
}
