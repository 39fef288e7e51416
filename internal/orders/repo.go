package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/order"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const orderCols = `id, order_number, customer_id, customer_name, customer_phone, customer_address,
	subtotal, discount_total, grand_total, status, created_at, updated_at`

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
		&o.Subtotal, &o.DiscountTotal, &o.GrandTotal, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// IsUniqueViolation reports a duplicate-key insert, used by the service
// to retry order-number generation exactly once.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateWithItems persists the order header and all item snapshots in one
// transaction; everything commits together or rolls back together.
func (r *Repo) CreateWithItems(ctx context.Context, o order.Order) (order.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return order.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanOrder(tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_id, customer_name, customer_phone, customer_address,
			subtotal, discount_total, grand_total, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+orderCols+`
	`, o.OrderNumber, o.CustomerID, o.CustomerName, o.CustomerPhone, o.CustomerAddress,
		o.Subtotal, o.DiscountTotal, o.GrandTotal, o.Status))
	if err != nil {
		return order.Order{}, err
	}

	for _, it := range o.Items {
		var itemID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, product_code,
				unit_price, discount_type, discount_value, qty, unit, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id
		`, created.ID, it.ProductID, it.ProductName, it.ProductCode,
			it.UnitPrice, it.DiscountType, it.DiscountValue, it.Qty, it.Unit, it.Subtotal).Scan(&itemID)
		if err != nil {
			return order.Order{}, fmt.Errorf("order item insert failed: %w", err)
		}
		it.ID = itemID
		it.OrderID = created.ID
		created.Items = append(created.Items, it)
	}

	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, err
	}
	return created, nil
}

type Filter struct {
	Status     string
	CustomerID int64
	Search     string // matches order number or customer name
	Page       int
	PerPage    int
}

func (r *Repo) List(ctx context.Context, f Filter) ([]order.Order, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}

	where := ""
	var args []any
	and := func(cond string) {
		if where == "" {
			where = "WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}
	if f.Status != "" {
		args = append(args, f.Status)
		and(fmt.Sprintf("status = $%d", len(args)))
	}
	if f.CustomerID > 0 {
		args = append(args, f.CustomerID)
		and(fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		and(fmt.Sprintf("(order_number ILIKE $%d OR customer_name ILIKE $%d)", len(args), len(args)))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + orderCols + ` FROM orders ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, f.PerPage, (f.Page-1)*f.PerPage)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *Repo) ByID(ctx context.Context, id int64) (order.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return order.Order{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_code,
			unit_price, discount_type, discount_value, qty, unit, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY id ASC
	`, id)
	if err != nil {
		return order.Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductCode,
			&it.UnitPrice, &it.DiscountType, &it.DiscountValue, &it.Qty, &it.Unit, &it.Subtotal); err != nil {
			return order.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *Repo) ByNumber(ctx context.Context, number string) (order.Order, error) {
	var id int64
	if err := r.db.QueryRow(ctx, `SELECT id FROM orders WHERE order_number=$1`, number).Scan(&id); err != nil {
		return order.Order{}, err
	}
	return r.ByID(ctx, id)
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, status string) (order.Order, error) {
	_, err := r.db.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return order.Order{}, err
	}
	return r.ByID(ctx, id)
}
