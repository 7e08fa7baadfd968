package catalog

import "math"

// FinalPrice applies the product's discount to its list price. A
// percentage discount takes a share of the price, a fixed discount
// subtracts an absolute amount. The result never goes below zero and
// is rounded to cents.
func FinalPrice(price, discount float64, discountType string) float64 {
	out := price
	switch discountType {
	case DiscountPercentage:
		out = price * (1 - discount/100)
	case DiscountFixed:
		out = price - discount
	}
	if out < 0 {
		out = 0
	}
	return math.Round(out*100) / 100
}
