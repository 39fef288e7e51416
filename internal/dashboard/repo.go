package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/order"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Stats struct {
	TotalProducts   int64           `json:"total_products"`
	ActiveProducts  int64           `json:"active_products"`
	OutOfStock      int64           `json:"out_of_stock"`
	TotalCustomers  int64           `json:"total_customers"`
	TotalOrders     int64           `json:"total_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	OrdersToday     int64           `json:"orders_today"`
	RevenueToday    decimal.Decimal `json:"revenue_today"`
	RevenueThisWeek decimal.Decimal `json:"revenue_this_week"`
}

func (r *Repo) Stats(ctx context.Context, now time.Time) (Stats, error) {
	var s Stats

	err := r.db.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE is_active),
			count(*) FILTER (WHERE stock_qty <= 0)
		FROM products`).Scan(&s.TotalProducts, &s.ActiveProducts, &s.OutOfStock)
	if err != nil {
		return Stats{}, err
	}

	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&s.TotalCustomers); err != nil {
		return Stats{}, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))

	err = r.db.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = $1),
			count(*) FILTER (WHERE created_at >= $2),
			COALESCE(sum(grand_total) FILTER (WHERE created_at >= $2 AND status <> $3), 0),
			COALESCE(sum(grand_total) FILTER (WHERE created_at >= $4 AND status <> $3), 0)
		FROM orders`,
		order.StatusPending, dayStart, order.StatusCancelled, weekStart,
	).Scan(&s.TotalOrders, &s.PendingOrders, &s.OrdersToday, &s.RevenueToday, &s.RevenueThisWeek)
	if err != nil {
		return Stats{}, err
	}
	return s, nil
}

// RecentOrders returns the newest orders for the dashboard feed.
func (r *Repo) RecentOrders(ctx context.Context, limit int) ([]order.Order, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, order_number, customer_id, customer_name, customer_phone, customer_address,
			subtotal, discount_total, grand_total, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
			&o.Subtotal, &o.DiscountTotal, &o.GrandTotal, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type LowStockProduct struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Code     string          `json:"code"`
	StockQty decimal.Decimal `json:"stock_qty"`
	Unit     string          `json:"stock_unit"`
}

func (r *Repo) LowStock(ctx context.Context, threshold decimal.Decimal, limit int) ([]LowStockProduct, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, name, code, stock_qty, stock_unit
		FROM products
		WHERE is_active AND stock_qty <= $1
		ORDER BY stock_qty ASC LIMIT $2`, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LowStockProduct
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.StockQty, &p.Unit); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
