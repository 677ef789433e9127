// Package money converts between product prices and the text shown in the
// forms. Prices are displayed with a comma as decimal separator and totals
// in reais ("R$ 31,50").
package money

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPrefix is prepended to formatted totals.
const CurrencyPrefix = "R$ "

var (
	disallowedRe = regexp.MustCompile(`[^0-9.,]`)
	decimalRe    = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)
	integerRe    = regexp.MustCompile(`^\d+`)
)

// Sanitize strips every character that is not a digit, comma or period.
func Sanitize(text string) string {
	return disallowedRe.ReplaceAllString(text, "")
}

// ParsePrice reads a price typed with either comma or period as decimal
// separator. Like a lenient number parser it reads the longest numeric
// prefix, so "10,50abc" is 10.50. ok is false when no digits lead the text.
func ParsePrice(text string) (decimal.Decimal, bool) {
	s := strings.Replace(strings.TrimSpace(text), ",", ".", 1)
	m := decimalRe.FindString(s)
	if m == "" {
		return decimal.Zero, false
	}
	m = strings.TrimSuffix(m, ".")
	if strings.HasPrefix(m, ".") {
		m = "0" + m
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuantity reads the leading integer of text.
func ParseQuantity(text string) (int64, bool) {
	m := integerRe.FindString(strings.TrimSpace(text))
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Total is round(price * quantity, 2). Non-numeric input yields zero.
func Total(priceText, quantityText string) decimal.Decimal {
	p, ok := ParsePrice(priceText)
	if !ok {
		return decimal.Zero
	}
	q, ok := ParseQuantity(quantityText)
	if !ok {
		return decimal.Zero
	}
	return p.Mul(decimal.NewFromInt(q)).Round(2)
}

// FormatBRL renders d with two decimals and a comma separator, "R$ 31,50".
func FormatBRL(d decimal.Decimal) string {
	return CurrencyPrefix + strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// FormatField renders a price for an editable text field: shortest form,
// comma separator. 10.5 becomes "10,5".
func FormatField(price float64) string {
	return strings.Replace(Plain(price), ".", ",", 1)
}

// Plain renders a price in its shortest decimal form with a period, the way
// the export file carries it. 9.9 stays "9.9", 10.0 is "10".
func Plain(price float64) string {
	return decimal.NewFromFloat(price).String()
}

// Float converts a parsed price back to the wire representation.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
