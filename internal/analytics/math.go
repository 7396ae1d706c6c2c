package analytics

import (
	"database/sql"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/entity"
)

// SafeRatio returns numerator/denominator as a percentage rounded to two
// decimals, or 0 when the denominator is not positive. Division by zero must
// never leak NaN or Inf into a payload.
func SafeRatio(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return Round2(numerator / denominator * 100)
}

// SafeAverage returns the mean of values, or 0 for an empty slice.
func SafeAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Round2(sum / float64(len(values)))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SafeRatioDec is SafeRatio over decimals, used where the operands are money.
func SafeRatioDec(numerator, denominator decimal.Decimal) float64 {
	if !denominator.IsPositive() {
		return 0
	}
	f, _ := numerator.Div(denominator).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return f
}

// Money converts a decimal amount to the two-decimal float used in payloads.
func Money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

var costFallbackFactor = decimal.NewFromFloat(0.6)

// UnitCost resolves a product's unit cost: costPrice when present, otherwise
// 60% of the sale price. The fallback is a business rule, not a placeholder.
func UnitCost(costPrice decimal.NullDecimal, price decimal.Decimal) decimal.Decimal {
	if costPrice.Valid {
		return costPrice.Decimal
	}
	return price.Mul(costFallbackFactor)
}

// UnitCostForItem resolves the cost of one order item line. When the item's
// product still exists its cost fields win; otherwise the fallback applies to
// the item's snapshot price.
func UnitCostForItem(item entity.OrderItem, products map[int]entity.Product) decimal.Decimal {
	if item.ProductID.Valid {
		if p, ok := products[int(item.ProductID.Int64)]; ok {
			return UnitCost(p.CostPrice, p.Price)
		}
	}
	return item.Price.Mul(costFallbackFactor)
}

const unspecified = "unspecified"

// PaymentMethodOrDefault normalizes a nullable payment method.
func PaymentMethodOrDefault(m sql.NullString) string {
	if m.Valid && strings.TrimSpace(m.String) != "" {
		return strings.ToLower(strings.TrimSpace(m.String))
	}
	return unspecified
}

// RegionOrDefault resolves an order's region: governorate, then city, then
// "unspecified".
func RegionOrDefault(governorate, city sql.NullString) string {
	if governorate.Valid && strings.TrimSpace(governorate.String) != "" {
		return strings.TrimSpace(governorate.String)
	}
	if city.Valid && strings.TrimSpace(city.String) != "" {
		return strings.TrimSpace(city.String)
	}
	return unspecified
}
