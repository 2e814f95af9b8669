// Package currency formats amounts for display.
package currency

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var symbols = map[string]string{
	"NGN": "₦",
	"GHS": "₵",
	"KES": "KSh",
	"ZAR": "R",
	"USD": "$",
}

var printer = message.NewPrinter(language.English)

// Codes lists the currencies with a known symbol.
func Codes() []string {
	return []string{"NGN", "GHS", "KES", "ZAR", "USD"}
}

// Symbol returns the display symbol, or "CODE " for unknown currencies.
func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if s, ok := symbols[code]; ok {
		return s
	}
	return code + " "
}

// Format renders amount with two fraction digits and thousands separators.
// Negative amounts get a leading "-"; positive ones get "+" when showSign.
func Format(amount decimal.Decimal, code string, showSign bool) string {
	amount = amount.Round(2)
	sign := ""
	switch {
	case amount.IsNegative():
		sign = "-"
	case showSign && amount.IsPositive():
		sign = "+"
	}
	whole, frac, _ := strings.Cut(amount.Abs().StringFixed(2), ".")
	return sign + Symbol(code) + groupDigits(whole) + "." + frac
}

// groupDigits inserts thousands separators into a run of digits. Values
// that fit in an int64 go through the locale printer.
func groupDigits(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return printer.Sprint(number.Decimal(n))
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
