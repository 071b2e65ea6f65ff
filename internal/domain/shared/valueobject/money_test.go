package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(19.90), BRL)
		require.NoError(t, err)
		assert.Equal(t, BRL, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(19.90)))
	})

	t.Run("allows negative amounts", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(-5.50), BRL)
		require.NoError(t, err)
		assert.True(t, m.IsNegative())
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("12.34", BRL)
	require.NoError(t, err)
	assert.Equal(t, "12.34 BRL", m.String())

	_, err = NewMoneyFromString("not-a-number", BRL)
	assert.Error(t, err)
}

func TestMoneyAdd(t *testing.T) {
	a := NewMoneyBRLFromFloat(10.50)
	b := NewMoneyBRLFromFloat(4.50)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "15.00", sum.StringFixed(2))

	usd, _ := NewMoneyFromFloat(1, USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
}

func TestMoneySubtract(t *testing.T) {
	a := NewMoneyBRLFromFloat(10)
	b := NewMoneyBRLFromFloat(3.25)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "6.75", diff.StringFixed(2))

	usd, _ := NewMoneyFromFloat(1, USD)
	_, err = a.Subtract(usd)
	assert.Error(t, err)
}

func TestMoneyMultiplyByInt(t *testing.T) {
	unit := NewMoneyBRLFromFloat(3.50)
	total := unit.MultiplyByInt(4)
	assert.Equal(t, "14.00", total.StringFixed(2))
}

func TestMoneyComparisons(t *testing.T) {
	small := NewMoneyBRLFromFloat(1)
	big := NewMoneyBRLFromFloat(2)

	less, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, greater)

	assert.True(t, small.Equals(NewMoneyBRLFromFloat(1)))
	assert.False(t, small.Equals(big))

	_, err = small.LessThan(Zero(USD))
	assert.Error(t, err)
}

func TestMoneySigns(t *testing.T) {
	assert.True(t, ZeroBRL().IsZero())
	assert.True(t, NewMoneyBRLFromFloat(5).IsPositive())
	assert.True(t, NewMoneyBRLFromFloat(5).Negate().IsNegative())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyBRLFromFloat(99.99)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"99.99","currency":"BRL"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.42"))
	assert.Equal(t, "42.42", m.StringFixed(2))
	assert.Equal(t, DefaultCurrency, m.Currency())

	var fromBytes Money
	require.NoError(t, fromBytes.Scan([]byte("7.01")))
	assert.Equal(t, "7.01", fromBytes.StringFixed(2))

	var fromNil Money
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())

	var bad Money
	assert.Error(t, bad.Scan(struct{}{}))
}
