// Package cart models the customer's cart: an ordered sequence of line items
// keyed by product and variant selection.
package cart

import (
	"sort"
	"strings"

	"github.com/dokanhq/dokan-api/internal/domain/catalog"
)

// Item is one cart line: a product snapshot with the selected variant options,
// a quantity and the image chosen for display. The JSON field names are the
// stable shape persisted inside an order's frozen item snapshot.
type Item struct {
	Key             string            `json:"cartItemId"`
	Product         catalog.Product   `json:"product"`
	SelectedOptions map[string]string `json:"selectedOptions"`
	Quantity        int               `json:"quantity"`
	SelectedImage   string            `json:"selectedImage"`
}

// ItemKey derives the identity of a (product, variant selection) pair: the
// product id joined with the option pairs sorted by variant name. Two items
// with the same key are the same selection and merge on add.
func ItemKey(productID string, selected map[string]string) string {
	pairs := make([]string, 0, len(selected))
	for variant, option := range selected {
		pairs = append(pairs, variant+":"+option)
	}
	sort.Strings(pairs)
	return productID + "-" + strings.Join(pairs, "|")
}

// Cart is an ordered collection of items with at most one item per key.
type Cart struct {
	items []Item
}

// New builds a cart from raw items, merging duplicates by key in order.
func New(items ...Item) *Cart {
	c := &Cart{}
	for _, it := range items {
		c.Add(it.Product, it.SelectedOptions, it.Quantity, it.SelectedImage)
	}
	return c
}

// Add appends a line item, merging with an existing line when the product and
// variant selection match. Quantities below one are ignored.
func (c *Cart) Add(p catalog.Product, selected map[string]string, quantity int, image string) {
	if quantity < 1 {
		return
	}
	key := ItemKey(p.ID, selected)
	for i := range c.items {
		if c.items[i].Key == key {
			c.items[i].Quantity += quantity
			return
		}
	}
	c.items = append(c.items, Item{
		Key:             key,
		Product:         p,
		SelectedOptions: selected,
		Quantity:        quantity,
		SelectedImage:   image,
	})
}

// Remove deletes the item with the given key, if present.
func (c *Cart) Remove(key string) {
	for i := range c.items {
		if c.items[i].Key == key {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity for a line; a quantity below one removes it.
func (c *Cart) UpdateQuantity(key string, quantity int) {
	if quantity < 1 {
		c.Remove(key)
		return
	}
	for i := range c.items {
		if c.items[i].Key == key {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Items returns the cart lines in insertion order.
func (c *Cart) Items() []Item {
	return c.items
}

// Count is the total number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.items = nil
}
