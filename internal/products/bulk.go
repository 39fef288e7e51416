package products

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
)

// BulkAdjustment changes base prices across a set of products:
// percentage mode scales by (1 + value/100), fixed mode adds value.
// Negative values lower prices; results clamp at zero.
type BulkAdjustment struct {
	ProductIDs []int64
	CategoryID int64 // used when ProductIDs is empty
	Mode       string
	Value      decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

func adjustedPrice(base decimal.Decimal, adj BulkAdjustment) decimal.Decimal {
	var p decimal.Decimal
	switch adj.Mode {
	case product.DiscountPercentage:
		p = base.Mul(hundred.Add(adj.Value)).Div(hundred)
	default:
		p = base.Add(adj.Value)
	}
	if p.IsNegative() {
		p = decimal.Zero
	}
	return p.Round(2)
}

// BulkUpdatePrices applies the adjustment in a single transaction with
// per-row locks, writing one price_updates audit row per product. All
// rows commit together or none do.
func (r *Repo) BulkUpdatePrices(ctx context.Context, adj BulkAdjustment) (int, error) {
	if adj.Mode != product.DiscountPercentage && adj.Mode != product.DiscountFixed {
		return 0, &httpx.ValidationError{Msg: "mode must be percentage or fixed"}
	}
	if len(adj.ProductIDs) == 0 && adj.CategoryID == 0 {
		return 0, &httpx.ValidationError{Msg: "product ids or category id required"}
	}

	ids := adj.ProductIDs
	if len(ids) == 0 {
		rows, err := r.db.Query(ctx, `SELECT id FROM products WHERE category_id=$1`, adj.CategoryID)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return 0, err
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return 0, err
		}
	}
	if len(ids) == 0 {
		return 0, &httpx.BusinessError{Msg: "no products matched"}
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updated := 0
	for _, id := range ids {
		before, err := r.lockForUpdate(ctx, tx, id)
		if err != nil {
			return 0, err
		}

		after := before
		after.BasePrice = adjustedPrice(before.BasePrice, adj)
		if after.BasePrice.Equal(before.BasePrice) {
			continue
		}

		if _, err := tx.Exec(ctx, `
			UPDATE products SET base_price=$2, updated_at=now() WHERE id=$1
		`, id, after.BasePrice); err != nil {
			return 0, err
		}
		if err := insertPriceUpdate(ctx, tx, before, after, "bulk_update"); err != nil {
			return 0, err
		}
		updated++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return updated, nil
}
