package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRounding(t *testing.T) {
	assert.Equal(t, "15000.51", RoundMoney(MustMoney("15000.505")).StringFixed(2))
	assert.Equal(t, "1.235", RoundQuantity(decimal.RequireFromString("1.2345")).StringFixed(3))
}

func TestMinMax(t *testing.T) {
	a := MustMoney("10")
	b := MustMoney("-2.5")

	assert.True(t, Min(a, b).Equal(b))
	assert.True(t, Max(a, b).Equal(a))
	assert.True(t, Max(b, Zero()).IsZero())
}
