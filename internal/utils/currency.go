package utils

import (
	"fmt"
	"math"
)

// RoundCurrency rounds an amount to cents.
func RoundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func FormatCurrency(amount float64, currencyCode string) string {
	symbol := "$"
	switch currencyCode {
	case "EUR":
		symbol = "€"
	case "GBP":
		symbol = "£"
	}
	return fmt.Sprintf("%s%.2f", symbol, RoundCurrency(amount))
}
