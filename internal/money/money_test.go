package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		wantErr  error
	}{
		{"valid USD", 12.34, "USD", nil},
		{"zero amount", 0, "USD", nil},
		{"lowercase currency", 5, "eur", nil},
		{"padded currency", 5, " gbp ", nil},
		{"negative amount", -1, "USD", ErrInvalidAmount},
		{"NaN amount", math.NaN(), "USD", ErrInvalidAmount},
		{"infinite amount", math.Inf(1), "USD", ErrInvalidAmount},
		{"beyond safe bound", float64(1 << 53), "USD", ErrInvalidAmount},
		{"empty currency", 5, "", ErrInvalidCurrency},
		{"blank currency", 5, "   ", ErrInvalidCurrency},
		{"short currency", 5, "US", ErrInvalidCurrency},
		{"long currency", 5, "USDT", ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.amount, tt.currency)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.amount, m.Amount())
			assert.Len(t, m.Currency(), 3)
		})
	}
}

func TestNew_NormalizesCurrency(t *testing.T) {
	m, err := New(10, " usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency())
}

func TestAdd(t *testing.T) {
	a, _ := New(10.25, "USD")
	b, _ := New(5.50, "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, 15.75, sum.Amount())
	assert.Equal(t, "USD", sum.Currency())

	// operands are untouched
	assert.Equal(t, 10.25, a.Amount())

	eur, _ := New(5, "EUR")
	_, err = a.Add(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestSubtract(t *testing.T) {
	a, _ := New(10.5, "USD")
	b, _ := New(3.25, "USD")

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, 7.25, diff.Amount())

	_, err = b.Subtract(a)
	assert.ErrorIs(t, err, ErrNegativeResult)

	eur, _ := New(1, "EUR")
	_, err = a.Subtract(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

// Subtracting and re-adding the same value must restore the original.
func TestSubtractAddRoundTrip(t *testing.T) {
	pairs := []struct{ a, b float64 }{
		{10.5, 3.25},
		{100, 100},
		{0.75, 0.25},
		{1 << 20, 0.5},
	}

	for _, p := range pairs {
		a, err := New(p.a, "USD")
		require.NoError(t, err)
		b, err := New(p.b, "USD")
		require.NoError(t, err)

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		back, err := diff.Add(b)
		require.NoError(t, err)
		assert.True(t, back.Equals(a), "expected %v, got %v", a.Amount(), back.Amount())
	}
}

func TestMultiply(t *testing.T) {
	m, _ := New(10, "USD")

	doubled, err := m.Multiply(2.5)
	require.NoError(t, err)
	assert.Equal(t, 25.0, doubled.Amount())

	zeroed, err := m.Multiply(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, zeroed.Amount())

	_, err = m.Multiply(-1)
	assert.ErrorIs(t, err, ErrInvalidFactor)
}

func TestDivide(t *testing.T) {
	m, _ := New(10, "USD")

	half, err := m.Divide(2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, half.Amount())

	_, err = m.Divide(0)
	assert.ErrorIs(t, err, ErrInvalidDivisor)

	_, err = m.Divide(-2)
	assert.ErrorIs(t, err, ErrInvalidDivisor)
}

func TestComparisons(t *testing.T) {
	big, _ := New(20, "USD")
	small, _ := New(10, "USD")
	eur, _ := New(10, "EUR")

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	_, err = big.GreaterThan(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = small.LessThan(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	sameAmountOtherCurrency, _ := New(10, "EUR")
	assert.False(t, small.Equals(sameAmountOtherCurrency))
	assert.True(t, small.Equals(small))
}

func TestFormat(t *testing.T) {
	// symbol directly followed by the two-decimal amount, no separator
	usd, _ := New(12.34, "USD")
	assert.Equal(t, "$12.34", usd.Format())

	eur, _ := New(5, "EUR")
	assert.Equal(t, "€5.00", eur.Format())

	wholeUnits, _ := New(7, "USD")
	assert.Equal(t, "$7.00", wholeUnits.Format())

	// non-ISO codes fall back to a plain rendering
	zzz, _ := New(5, "ZZZ")
	assert.Equal(t, "ZZZ 5.00", zzz.Format())
}

func TestJSONRoundTrip(t *testing.T) {
	original, err := New(42.50, "EUR")
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":42.5,"currency":"EUR"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(original))
}

func TestUnmarshalJSON_RejectsInvalid(t *testing.T) {
	var m Money
	err := json.Unmarshal([]byte(`{"amount":-5,"currency":"USD"}`), &m)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	err = json.Unmarshal([]byte(`{"amount":5,"currency":"X"}`), &m)
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}
