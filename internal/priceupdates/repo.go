package priceupdates

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/pricelog"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const cols = `u.id, u.product_id, p.name, u.old_price, u.new_price,
	u.old_effective_price, u.new_effective_price, u.old_stock_qty, u.new_stock_qty, u.reason, u.created_at`

func (r *Repo) list(ctx context.Context, where string, limit, offset int, args ...any) ([]pricelog.PriceUpdate, error) {
	q := `SELECT ` + cols + `
		FROM price_updates u
		JOIN products p ON p.id = u.product_id ` + where +
		fmt.Sprintf(` ORDER BY u.created_at DESC, u.id DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pricelog.PriceUpdate
	for rows.Next() {
		var u pricelog.PriceUpdate
		if err := rows.Scan(&u.ID, &u.ProductID, &u.ProductName, &u.OldPrice, &u.NewPrice,
			&u.OldEffectivePrice, &u.NewEffectivePrice, &u.OldStockQty, &u.NewStockQty, &u.Reason, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context, productID int64, page, perPage int) ([]pricelog.PriceUpdate, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	where := ""
	var args []any
	if productID > 0 {
		where = "WHERE u.product_id = $1"
		args = append(args, productID)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM price_updates u `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	items, err := r.list(ctx, where, perPage, (page-1)*perPage, args...)
	return items, total, err
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]pricelog.PriceUpdate, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return r.list(ctx, "", limit, 0)
}
