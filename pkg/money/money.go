// Package money provides currency-safe amount handling using integer cents
// and the Fowler Money pattern. Amounts are parsed with shopspring/decimal so
// floating-point noise never reaches the accounting export.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// EUR is the ISO-4217 code of every Shopify amount this export books.
const EUR = "EUR"

var (
	// ErrEmptyAmount is returned when an amount string carries no digits at all.
	ErrEmptyAmount = errors.New("empty amount")
	// ErrAmountOutOfRange is returned when the amount does not fit in int64 minor units.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

var (
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(math.MinInt64)
)

// Money represents a monetary value with currency.
// It wraps go-money for the currency metadata and shopspring/decimal for precision.
type Money struct {
	m *money.Money
}

// New creates a new Money value from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountCents, currencyCode),
	}
}

// minorUnits scales amount to the currency's minor unit, rounding half away
// from zero. Unknown currencies fall back to EUR.
func minorUnits(amount decimal.Decimal, currencyCode string) (decimal.Decimal, string) {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(EUR)
		currencyCode = EUR
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	return amount.Mul(multiplier).Round(0), currencyCode
}

// NewFromString parses a plain numeric amount such as "1234.5" or "-12".
// Grouping separators are not accepted: Shopify reports never use them and
// guessing would silently turn "1,234.50" into a different number.
func NewFromString(amount string, currencyCode string) (*Money, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, ErrEmptyAmount
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	cents, code := minorUnits(d, currencyCode)
	if cents.GreaterThan(maxMinorUnits) || cents.LessThan(minMinorUnits) {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, ErrAmountOutOfRange)
	}

	return New(cents.IntPart(), code), nil
}

// Format renders the amount with exactly the currency's number of decimals,
// the given decimal separator and no thousands grouping ("1234,50").
func (m *Money) Format(decimalSeparator string) string {
	fraction := int32(2)
	if m != nil && m.m != nil {
		fraction = int32(m.m.Currency().Fraction)
	}

	s := m.toDecimal().StringFixed(fraction)
	if decimalSeparator == "." {
		return s
	}
	return strings.Replace(s, ".", decimalSeparator, 1)
}

func (m *Money) toDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}
