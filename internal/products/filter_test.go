package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestBuildWhere_Empty(t *testing.T) {
	where, args := buildWhere(Filter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhere_Search(t *testing.T) {
	where, args := buildWhere(Filter{Search: "rice"})
	assert.Equal(t, "WHERE (p.name ILIKE $1 OR p.code ILIKE $1)", where)
	assert.Equal(t, []any{"%rice%"}, args)
}

func TestBuildWhere_AllPredicates(t *testing.T) {
	where, args := buildWhere(Filter{
		Search:      "oil",
		CategoryID:  3,
		Active:      boolPtr(true),
		StockStatus: StockInStock,
	})
	assert.Equal(t,
		"WHERE (p.name ILIKE $1 OR p.code ILIKE $1) AND p.category_id = $2 AND p.is_active = $3 AND p.stock_qty > 0",
		where)
	assert.Equal(t, []any{"%oil%", int64(3), true}, args)
}

func TestBuildWhere_OutOfStock(t *testing.T) {
	where, args := buildWhere(Filter{StockStatus: StockOutOfStock})
	assert.Equal(t, "WHERE p.stock_qty <= 0", where)
	assert.Empty(t, args)
}

func TestFilterNormalized(t *testing.T) {
	f := Filter{Page: 0, PerPage: 500}.normalized()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PerPage)

	f = Filter{Page: 3, PerPage: 50}.normalized()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 50, f.PerPage)
}
