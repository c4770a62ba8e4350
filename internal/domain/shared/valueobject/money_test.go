package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromFloat(100.50), EUR)
	require.NoError(t, err)
	assert.Equal(t, "100.50 EUR", m.String())

	_, err = NewMoney(decimal.NewFromInt(1), "")
	assert.Error(t, err)
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("1234.56", EUR)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", m.StringFixed(2))

	_, err = NewMoneyFromString("not-a-number", EUR)
	assert.Error(t, err)
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyEURFromFloat(100.00)
	b := NewMoneyEURFromFloat(23.45)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "123.45", sum.StringFixed(2))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "76.55", diff.StringFixed(2))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	a := NewMoneyEURFromFloat(1)
	b, err := NewMoney(decimal.NewFromInt(1), USD)
	require.NoError(t, err)

	_, err = a.Add(b)
	assert.Error(t, err)
	_, err = a.Subtract(b)
	assert.Error(t, err)
	_, err = a.LessThan(b)
	assert.Error(t, err)
}

func TestMoney_RoundHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"49.995", "50.00"},
		{"0.125", "0.13"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := NewMoneyEURFromString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Round(2).StringFixed(2))
		})
	}
}

func TestMoney_CalculatePercentage(t *testing.T) {
	m := NewMoneyEURFromFloat(1000)
	p := m.CalculatePercentage(decimal.NewFromInt(5))
	assert.Equal(t, "50.00", p.StringFixed(2))
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, ZeroEUR().IsZero())
	assert.True(t, NewMoneyEURFromFloat(1).IsPositive())
	assert.True(t, NewMoneyEURFromFloat(-1).IsNegative())
	assert.True(t, NewMoneyEURFromFloat(-1).Negate().IsPositive())
	assert.True(t, NewMoneyEURFromFloat(-2).Abs().IsPositive())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyEURFromFloat(99.99)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var out Money
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, m.Equals(out))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.42"))
	assert.Equal(t, "42.42", m.StringFixed(2))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(3.14))
}
