package products

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestAdjustedPrice_PercentageUp(t *testing.T) {
	got := adjustedPrice(d("100.00"), BulkAdjustment{Mode: product.DiscountPercentage, Value: d("10")})
	assert.True(t, d("110.00").Equal(got))
}

func TestAdjustedPrice_PercentageDown(t *testing.T) {
	got := adjustedPrice(d("80.00"), BulkAdjustment{Mode: product.DiscountPercentage, Value: d("-25")})
	assert.True(t, d("60.00").Equal(got))
}

func TestAdjustedPrice_FixedDelta(t *testing.T) {
	got := adjustedPrice(d("42.10"), BulkAdjustment{Mode: product.DiscountFixed, Value: d("-2.10")})
	assert.True(t, d("40.00").Equal(got))
}

func TestAdjustedPrice_ClampsAtZero(t *testing.T) {
	got := adjustedPrice(d("5.00"), BulkAdjustment{Mode: product.DiscountFixed, Value: d("-9")})
	assert.True(t, got.IsZero())
}

func TestAdjustedPrice_Rounds(t *testing.T) {
	// 9.99 * 1.075 = 10.73925 -> 10.74
	got := adjustedPrice(d("9.99"), BulkAdjustment{Mode: product.DiscountPercentage, Value: d("7.5")})
	assert.True(t, d("10.74").Equal(got))
}
