package products

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/pricing"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const productCols = `p.id, p.category_id, c.name, p.name, p.code, p.base_price, p.stock_qty, p.stock_unit,
	p.min_order_qty, p.max_order_qty, p.image_url, p.is_active, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (product.Product, error) {
	var p product.Product
	var minQ, maxQ decimal.NullDecimal
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Category, &p.Name, &p.Code, &p.BasePrice, &p.StockQty, &p.StockUnit,
		&minQ, &maxQ, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return product.Product{}, err
	}
	if minQ.Valid {
		p.MinOrderQty = &minQ.Decimal
	}
	if maxQ.Valid {
		p.MaxOrderQty = &maxQ.Decimal
	}
	return p, nil
}

// List returns a page of products with discounts loaded and effective
// prices derived, plus the unpaged total for the filter.
func (r *Repo) List(ctx context.Context, f Filter) ([]product.Product, int64, error) {
	f = f.normalized()
	where, args := buildWhere(f)

	var total int64
	countQ := `SELECT COUNT(*) FROM products p ` + where
	if err := r.db.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + productCols + `
		FROM products p
		JOIN categories c ON c.id = p.category_id ` + where +
		fmt.Sprintf(` ORDER BY p.name ASC LIMIT %d OFFSET %d`, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachDiscounts(ctx, out); err != nil {
		return nil, 0, err
	}
	now := time.Now()
	for i := range out {
		out[i].EffectivePrice = pricing.EffectivePrice(out[i], now)
	}
	return out, total, nil
}

func (r *Repo) ByID(ctx context.Context, id int64) (product.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productCols+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id))
	if err != nil {
		return product.Product{}, err
	}
	ps := []product.Product{p}
	if err := r.attachDiscounts(ctx, ps); err != nil {
		return product.Product{}, err
	}
	ps[0].EffectivePrice = pricing.EffectivePrice(ps[0], time.Now())
	return ps[0], nil
}

// ByIDs loads products with their discount history for order pricing.
// Missing ids are simply absent from the result map.
func (r *Repo) ByIDs(ctx context.Context, ids []int64) (map[int64]product.Product, error) {
	if len(ids) == 0 {
		return map[int64]product.Product{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachDiscounts(ctx, list); err != nil {
		return nil, err
	}

	out := make(map[int64]product.Product, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// ActiveForPriceList returns every active product with discounts loaded,
// ordered the way the published price list reads: category, then name.
func (r *Repo) ActiveForPriceList(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.is_active = true AND c.is_active = true
		ORDER BY c.sort_order ASC, c.name ASC, p.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachDiscounts(ctx, out); err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range out {
		out[i].EffectivePrice = pricing.EffectivePrice(out[i], now)
	}
	return out, nil
}

func (r *Repo) attachDiscounts(ctx context.Context, ps []product.Product) error {
	if len(ps) == 0 {
		return nil
	}
	ids := make([]int64, len(ps))
	idx := make(map[int64]int, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
		idx[p.ID] = i
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, discount_type, value, starts_at, ends_at, is_active, created_at, updated_at
		FROM product_discounts
		WHERE product_id = ANY($1)
		ORDER BY created_at DESC, id DESC
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d product.Discount
		if err := rows.Scan(&d.ID, &d.ProductID, &d.Type, &d.Value, &d.StartsAt, &d.EndsAt, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return err
		}
		i := idx[d.ProductID]
		ps[i].Discounts = append(ps[i].Discounts, d)
	}
	return rows.Err()
}

type CreateInput struct {
	CategoryID  int64
	Name        string
	Code        string
	BasePrice   decimal.Decimal
	StockQty    decimal.Decimal
	StockUnit   string
	MinOrderQty *decimal.Decimal
	MaxOrderQty *decimal.Decimal
	ImageURL    string
}

func (r *Repo) Create(ctx context.Context, in CreateInput) (product.Product, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (category_id, name, code, base_price, stock_qty, stock_unit,
			min_order_qty, max_order_qty, image_url, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,true)
		RETURNING id
	`, in.CategoryID, in.Name, in.Code, in.BasePrice, in.StockQty, in.StockUnit,
		in.MinOrderQty, in.MaxOrderQty, in.ImageURL).Scan(&id)
	if err != nil {
		return product.Product{}, err
	}
	return r.ByID(ctx, id)
}

type UpdateInput struct {
	CategoryID  *int64
	Name        *string
	Code        *string
	BasePrice   *decimal.Decimal
	StockQty    *decimal.Decimal
	StockUnit   *string
	MinOrderQty *decimal.Decimal
	MaxOrderQty *decimal.Decimal
	ImageURL    *string
}

// Update edits a product in a transaction. The row is locked first so a
// price change and its audit record stay consistent; a price_updates row
// is written whenever base price or stock changes.
func (r *Repo) Update(ctx context.Context, id int64, in UpdateInput) (product.Product, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return product.Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	before, err := r.lockForUpdate(ctx, tx, id)
	if err != nil {
		return product.Product{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE products
		SET
		  category_id = COALESCE($2, category_id),
		  name = COALESCE($3, name),
		  code = COALESCE($4, code),
		  base_price = COALESCE($5, base_price),
		  stock_qty = COALESCE($6, stock_qty),
		  stock_unit = COALESCE($7, stock_unit),
		  min_order_qty = COALESCE($8, min_order_qty),
		  max_order_qty = COALESCE($9, max_order_qty),
		  image_url = COALESCE($10, image_url),
		  updated_at = now()
		WHERE id = $1
	`, id, in.CategoryID, in.Name, in.Code, in.BasePrice, in.StockQty, in.StockUnit,
		in.MinOrderQty, in.MaxOrderQty, in.ImageURL)
	if err != nil {
		return product.Product{}, err
	}

	priceChanged := in.BasePrice != nil && !in.BasePrice.Equal(before.BasePrice)
	stockChanged := in.StockQty != nil && !in.StockQty.Equal(before.StockQty)
	if priceChanged || stockChanged {
		after := before
		if in.BasePrice != nil {
			after.BasePrice = *in.BasePrice
		}
		if in.StockQty != nil {
			after.StockQty = *in.StockQty
		}
		if err := insertPriceUpdate(ctx, tx, before, after, "manual"); err != nil {
			return product.Product{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return product.Product{}, err
	}
	return r.ByID(ctx, id)
}

func (r *Repo) ToggleStatus(ctx context.Context, id int64) (product.Product, error) {
	_, err := r.db.Exec(ctx, `
		UPDATE products SET is_active = NOT is_active, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return product.Product{}, err
	}
	return r.ByID(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	return err
}

// lockForUpdate reads the product row with FOR UPDATE inside tx and loads
// its discount history, so effective prices in audit rows are computed
// against a stable snapshot.
func (r *Repo) lockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (product.Product, error) {
	var p product.Product
	var minQ, maxQ decimal.NullDecimal
	err := tx.QueryRow(ctx, `
		SELECT id, category_id, name, code, base_price, stock_qty, stock_unit,
			min_order_qty, max_order_qty, image_url, is_active, created_at, updated_at
		FROM products WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Code, &p.BasePrice, &p.StockQty, &p.StockUnit,
		&minQ, &maxQ, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return product.Product{}, err
	}
	if minQ.Valid {
		p.MinOrderQty = &minQ.Decimal
	}
	if maxQ.Valid {
		p.MaxOrderQty = &maxQ.Decimal
	}

	rows, err := tx.Query(ctx, `
		SELECT id, product_id, discount_type, value, starts_at, ends_at, is_active, created_at, updated_at
		FROM product_discounts WHERE product_id = $1
	`, id)
	if err != nil {
		return product.Product{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var d product.Discount
		if err := rows.Scan(&d.ID, &d.ProductID, &d.Type, &d.Value, &d.StartsAt, &d.EndsAt, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return product.Product{}, err
		}
		p.Discounts = append(p.Discounts, d)
	}
	return p, rows.Err()
}

func insertPriceUpdate(ctx context.Context, tx pgx.Tx, before, after product.Product, reason string) error {
	now := time.Now()
	_, err := tx.Exec(ctx, `
		INSERT INTO price_updates (product_id, old_price, new_price,
			old_effective_price, new_effective_price, old_stock_qty, new_stock_qty, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, before.ID, before.BasePrice, after.BasePrice,
		pricing.EffectivePrice(before, now), pricing.EffectivePrice(after, now),
		before.StockQty, after.StockQty, reason)
	return err
}
