package trader

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// sizePrecision is the fixed decimal precision orders are rounded to
	// before submission.
	sizePrecision = 4
	// openPricePrecision rounds the re-quoted limit price for opens.
	openPricePrecision = 2
)

// Size computes the order quantity from spare balance, leverage and market
// price: round(balance * leverage / price, 4dp, half-up). Rejects
// non-positive balance or price so a zero or negative order can never reach
// the venue.
func Size(availableBalance, leverage, marketPrice float64) (float64, error) {
	if marketPrice <= 0 {
		return 0, &SizingError{Reason: fmt.Sprintf("market price must be positive, got %v", marketPrice)}
	}
	if availableBalance <= 0 {
		return 0, &SizingError{Reason: fmt.Sprintf("available balance must be positive, got %v", availableBalance)}
	}
	if leverage <= 0 {
		return 0, &SizingError{Reason: fmt.Sprintf("leverage must be positive, got %v", leverage)}
	}
	qty := decimal.NewFromFloat(availableBalance).
		Mul(decimal.NewFromFloat(leverage)).
		Div(decimal.NewFromFloat(marketPrice)).
		Round(sizePrecision)
	out, _ := qty.Float64()
	if out <= 0 {
		return 0, &SizingError{Reason: "computed quantity rounds to zero"}
	}
	return out, nil
}

// roundOpenPrice rounds a re-quoted mid to the venue's quote precision for
// opening orders. Closes pass the mid through unrounded.
func roundOpenPrice(price float64) float64 {
	out, _ := decimal.NewFromFloat(price).Round(openPricePrecision).Float64()
	return out
}
