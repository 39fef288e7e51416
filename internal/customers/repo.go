package customers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/customer"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const customerCols = `id, name, phone, address, is_active, created_at, updated_at`

func scanCustomer(row pgx.Row) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type Filter struct {
	Search  string
	Active  *bool
	Page    int
	PerPage int
}

func (r *Repo) List(ctx context.Context, f Filter) ([]customer.Customer, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}

	where := ""
	var args []any
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = "WHERE (name ILIKE $1 OR phone ILIKE $1)"
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		if where == "" {
			where = fmt.Sprintf("WHERE is_active = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND is_active = $%d", len(args))
		}
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + customerCols + ` FROM customers ` + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT %d OFFSET %d`, f.PerPage, (f.Page-1)*f.PerPage)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// ListActive returns every active customer, the default notification audience.
func (r *Repo) ListActive(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerCols+` FROM customers WHERE is_active = true ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ByID(ctx context.Context, id int64) (customer.Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE id=$1`, id))
}

func (r *Repo) ByIDs(ctx context.Context, ids []int64) ([]customer.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerCols+` FROM customers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ByPhone(ctx context.Context, phone string) (customer.Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE phone=$1`, phone))
}

func (r *Repo) Create(ctx context.Context, name, phone, address string) (customer.Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `
		INSERT INTO customers (name, phone, address, is_active)
		VALUES ($1,$2,$3,true)
		RETURNING `+customerCols+`
	`, name, phone, address))
}

// Upsert registers an order-form customer: an existing phone just gets
// its name/address refreshed.
func (r *Repo) Upsert(ctx context.Context, name, phone, address string) (customer.Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `
		INSERT INTO customers (name, phone, address, is_active)
		VALUES ($1,$2,$3,true)
		ON CONFLICT (phone) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, updated_at = now()
		RETURNING `+customerCols+`
	`, name, phone, address))
}

func (r *Repo) Update(ctx context.Context, id int64, name, phone, address *string) (customer.Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `
		UPDATE customers
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    address = COALESCE($4, address),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+customerCols+`
	`, id, name, phone, address))
}

func (r *Repo) ToggleStatus(ctx context.Context, id int64) (customer.Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `
		UPDATE customers SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING `+customerCols+`
	`, id))
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	return err
}
