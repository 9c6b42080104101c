package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxSafeAmount is the largest integer a float64 represents exactly (2^53-1).
// Amounts above it lose cent precision, so construction rejects them.
const maxSafeAmount = float64(1<<53 - 1)

// Common errors for Money construction and arithmetic
var (
	ErrInvalidAmount    = errors.New("amount must be a finite, non-negative number")
	ErrInvalidCurrency  = errors.New("currency must be a 3-letter code")
	ErrCurrencyMismatch = errors.New("currencies do not match")
	ErrNegativeResult   = errors.New("resulting amount cannot be negative")
	ErrInvalidFactor    = errors.New("multiplication factor cannot be negative")
	ErrInvalidDivisor   = errors.New("divisor must be positive")
)

// Money is an immutable amount/currency pair. All operations return new
// values; two Money values are equal when both amount and currency match.
type Money struct {
	amount   float64
	currency string
}

// New validates and creates a Money value. The currency code is trimmed and
// upper-cased on store.
func New(amount float64, currencyCode string) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}
	if amount < 0 {
		return Money{}, fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}
	if amount > maxSafeAmount {
		return Money{}, fmt.Errorf("%w: %v exceeds the safe bound", ErrInvalidAmount, amount)
	}

	currencyCode = strings.TrimSpace(currencyCode)
	if len(currencyCode) != 3 {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currencyCode)
	}

	return Money{
		amount:   amount,
		currency: strings.ToUpper(currencyCode),
	}, nil
}

// NewUSD creates a Money value in the default currency.
func NewUSD(amount float64) (Money, error) {
	return New(amount, "USD")
}

// Amount returns the numeric amount.
func (m Money) Amount() float64 {
	return m.amount
}

// Currency returns the upper-cased 3-letter currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns the sum of two same-currency amounts.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return New(m.amount+other.amount, m.currency)
}

// Subtract returns the difference of two same-currency amounts. The result
// cannot go negative; use the comparison methods to order operands first.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	if other.amount > m.amount {
		return Money{}, fmt.Errorf("%w: %v - %v", ErrNegativeResult, m.amount, other.amount)
	}
	return New(m.amount-other.amount, m.currency)
}

// Multiply scales the amount by a non-negative factor.
func (m Money) Multiply(factor float64) (Money, error) {
	if factor < 0 {
		return Money{}, fmt.Errorf("%w: got %v", ErrInvalidFactor, factor)
	}
	return New(m.amount*factor, m.currency)
}

// Divide splits the amount by a positive divisor.
func (m Money) Divide(divisor float64) (Money, error) {
	if divisor <= 0 || math.IsNaN(divisor) {
		return Money{}, fmt.Errorf("%w: got %v", ErrInvalidDivisor, divisor)
	}
	return New(m.amount/divisor, m.currency)
}

// Equals reports structural equality: same amount and same currency.
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

// GreaterThan reports whether m exceeds other. Comparing across currencies
// is an error.
func (m Money) GreaterThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return m.amount > other.amount, nil
}

// LessThan reports whether m is below other. Comparing across currencies is
// an error.
func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return m.amount < other.amount, nil
}

// Format renders the amount with its currency symbol (e.g. "$12.34").
// The symbol and amount are composed directly: x/text's own amount
// rendering puts a space after the symbol. Codes outside ISO 4217 fall back
// to "CODE 12.34".
func (m Money) Format() string {
	unit, err := currency.ParseISO(m.currency)
	if err != nil {
		return fmt.Sprintf("%s %.2f", m.currency, m.amount)
	}
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf("%v%.2f", currency.Symbol(unit), m.amount)
}

type moneyJSON struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// MarshalJSON serializes as {"amount": ..., "currency": "..."}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency})
}

// UnmarshalJSON restores a Money value, re-running construction validation
// so a decoded value is as trustworthy as a constructed one.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := New(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
