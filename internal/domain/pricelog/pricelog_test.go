package pricelog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestChangePercent(t *testing.T) {
	u := PriceUpdate{
		OldEffectivePrice: decimal.NewFromInt(80),
		NewEffectivePrice: decimal.NewFromInt(100),
	}
	assert.True(t, decimal.NewFromInt(25).Equal(u.ChangePercent()))

	u = PriceUpdate{
		OldEffectivePrice: decimal.NewFromInt(100),
		NewEffectivePrice: decimal.NewFromInt(90),
	}
	assert.True(t, decimal.NewFromInt(-10).Equal(u.ChangePercent()))
}

func TestChangePercent_ZeroOldPrice(t *testing.T) {
	u := PriceUpdate{NewEffectivePrice: decimal.NewFromInt(10)}
	assert.True(t, u.ChangePercent().IsZero())
}
