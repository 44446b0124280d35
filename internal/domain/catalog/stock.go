package catalog

// StockDeduction is an explicit command to decrement stock for one purchased
// line item. Options maps variant name to the selected option name; it is
// empty for products without variants. Deductions are produced by the checkout
// engine and applied through the repository inside the order placement
// transaction, never by mutating objects returned from a getter.
type StockDeduction struct {
	ProductID string            `json:"productId"`
	Options   map[string]string `json:"options,omitempty"`
	Quantity  int               `json:"quantity"`
}

// ApplyDeduction decrements p's stock in place. For variant products every
// variant's selected option is decremented by the quantity and the aggregate
// stock is recomputed as the sum of all option stocks. Variants with no
// matching option are left untouched. Stock is deliberately not floored at
// zero; oversell shows up as negative stock rather than a lost decrement.
func ApplyDeduction(p *Product, d StockDeduction) {
	if !p.HasVariants() {
		p.Stock -= d.Quantity
		return
	}

	for i := range p.Variants {
		v := &p.Variants[i]
		selected, ok := d.Options[v.Name]
		if !ok {
			continue
		}
		for j := range v.Options {
			if v.Options[j].Name == selected {
				v.Options[j].Stock -= d.Quantity
				break
			}
		}
	}

	p.Stock = TotalOptionStock(p.Variants)
}

// TotalOptionStock sums option stocks across all variants.
func TotalOptionStock(variants []Variant) int {
	total := 0
	for _, v := range variants {
		for _, o := range v.Options {
			total += o.Stock
		}
	}
	return total
}
