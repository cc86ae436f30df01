// Package pricing does money arithmetic for carts and orders with exact
// decimals. Prices are stored as float64 in Mongo; they are converted once
// at the boundary and rounded to cents.
package pricing

import (
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tolerance is the largest difference between a client-reported total and
// the computed one that still counts as a match.
var Tolerance = decimal.New(1, -2)

// Price converts a stored price to a decimal rounded to cents.
func Price(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// LineSubtotal returns price * qty.
func LineSubtotal(price float64, qty int) decimal.Decimal {
	return Price(price).Mul(decimal.NewFromInt(int64(qty)))
}

// CartTotal sums the subtotals of lines whose product is known. Lines for
// missing products contribute nothing.
func CartTotal(lines []models.OrderLine, products map[primitive.ObjectID]models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		total = total.Add(LineSubtotal(p.Price, l.Quantity))
	}
	return total
}

// Matches reports whether reported is within Tolerance of computed.
func Matches(reported float64, computed decimal.Decimal) bool {
	return decimal.NewFromFloat(reported).Sub(computed).Abs().LessThanOrEqual(Tolerance)
}

// Float returns d as a float64 for storage.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Format renders d with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
