package cart

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/cart"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Create opens a new cart and returns it with a fresh token.
func (r *Repo) Create(ctx context.Context) (cart.Cart, error) {
	token, err := newToken()
	if err != nil {
		return cart.Cart{}, err
	}
	var c cart.Cart
	err = r.db.QueryRow(ctx, `
		INSERT INTO carts (token) VALUES ($1)
		RETURNING id, token, customer_name, customer_phone, customer_address, created_at, updated_at
	`, token).Scan(&c.ID, &c.Token, &c.CustomerName, &c.CustomerPhone, &c.CustomerAddress, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repo) ByToken(ctx context.Context, token string) (cart.Cart, error) {
	var c cart.Cart
	err := r.db.QueryRow(ctx, `
		SELECT id, token, customer_name, customer_phone, customer_address, created_at, updated_at
		FROM carts WHERE token=$1
	`, token).Scan(&c.ID, &c.Token, &c.CustomerName, &c.CustomerPhone, &c.CustomerAddress, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return cart.Cart{}, httpx.ErrNotFound
	}

	rows, err := r.db.Query(ctx, `
		SELECT ci.id, ci.product_id, p.name, p.code, ci.qty, ci.unit
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC, ci.id ASC
	`, c.ID)
	if err != nil {
		return cart.Cart{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.ProductCode, &it.Qty, &it.Unit); err != nil {
			return cart.Cart{}, err
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

// UpsertItem adds a product line or replaces its quantity/unit.
func (r *Repo) UpsertItem(ctx context.Context, cartID, productID int64, qty decimal.Decimal, unit string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, qty, unit)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET qty = EXCLUDED.qty, unit = EXCLUDED.unit
	`, cartID, productID, qty, unit)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id=$1`, cartID)
	return err
}

func (r *Repo) RemoveItem(ctx context.Context, cartID, productID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1 AND product_id=$2`, cartID, productID)
	return err
}

func (r *Repo) SetCustomer(ctx context.Context, cartID int64, name, phone, address string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE carts
		SET customer_name=$2, customer_phone=$3, customer_address=$4, updated_at=now()
		WHERE id=$1
	`, cartID, name, phone, address)
	return err
}

// Clear removes the cart once its order is safely persisted. Items go
// with it via ON DELETE CASCADE.
func (r *Repo) Clear(ctx context.Context, cartID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id=$1`, cartID)
	return err
}
