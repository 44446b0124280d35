package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokanhq/dokan-api/internal/domain/catalog"
)

func product(id string) catalog.Product {
	return catalog.Product{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(100)}
}

func TestItemKey_DeterministicAcrossMapOrder(t *testing.T) {
	a := ItemKey("p1", map[string]string{"Color": "Red", "Size": "M"})
	b := ItemKey("p1", map[string]string{"Size": "M", "Color": "Red"})
	assert.Equal(t, a, b)
	assert.Equal(t, "p1-Color:Red|Size:M", a)
}

func TestAdd_MergesIdenticalSelections(t *testing.T) {
	c := &Cart{}
	c.Add(product("p1"), map[string]string{"Color": "Red"}, 2, "img1")
	c.Add(product("p1"), map[string]string{"Color": "Red"}, 3, "img1")
	c.Add(product("p1"), map[string]string{"Color": "Blue"}, 1, "img2")

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 6, c.Count())
}

func TestAdd_IgnoresNonPositiveQuantity(t *testing.T) {
	c := &Cart{}
	c.Add(product("p1"), nil, 0, "")
	c.Add(product("p1"), nil, -2, "")
	assert.True(t, c.Empty())
}

func TestUpdateQuantity(t *testing.T) {
	c := &Cart{}
	c.Add(product("p1"), nil, 2, "")
	key := c.Items()[0].Key

	c.UpdateQuantity(key, 7)
	assert.Equal(t, 7, c.Items()[0].Quantity)

	// Dropping below one removes the line.
	c.UpdateQuantity(key, 0)
	assert.True(t, c.Empty())
}

func TestRemoveAndClear(t *testing.T) {
	c := New(
		Item{Product: product("p1"), Quantity: 1},
		Item{Product: product("p2"), Quantity: 2},
	)
	require.Len(t, c.Items(), 2)

	c.Remove(c.Items()[0].Key)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, "p2", c.Items()[0].Product.ID)

	c.Clear()
	assert.True(t, c.Empty())
}
