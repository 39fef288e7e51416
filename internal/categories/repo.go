package categories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/category"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const categoryCols = `id, name, slug, parent_id, image_url, is_active, sort_order, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.ImageURL, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repo) List(ctx context.Context, activeOnly bool) ([]category.Category, error) {
	q := `SELECT ` + categoryCols + ` FROM categories`
	if activeOnly {
		q += ` WHERE is_active = true`
	}
	q += ` ORDER BY sort_order ASC, name ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []category.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ByID(ctx context.Context, id int64) (category.Category, error) {
	return scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryCols+` FROM categories WHERE id=$1`, id))
}

func (r *Repo) Create(ctx context.Context, name string, parentID *int64, imageURL string, sortOrder int) (category.Category, error) {
	return scanCategory(r.db.QueryRow(ctx, `
		INSERT INTO categories (name, slug, parent_id, image_url, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING `+categoryCols+`
	`, name, slugify(name), parentID, imageURL, sortOrder))
}

func (r *Repo) Update(ctx context.Context, id int64, name *string, parentID *int64, imageURL *string, sortOrder *int) (category.Category, error) {
	var slug any
	if name != nil {
		slug = slugify(*name)
	}
	return scanCategory(r.db.QueryRow(ctx, `
		UPDATE categories
		SET
		  name = COALESCE($2, name),
		  slug = COALESCE($3, slug),
		  parent_id = COALESCE($4, parent_id),
		  image_url = COALESCE($5, image_url),
		  sort_order = COALESCE($6, sort_order),
		  updated_at = now()
		WHERE id = $1
		RETURNING `+categoryCols+`
	`, id, name, slug, parentID, imageURL, sortOrder))
}

func (r *Repo) ToggleStatus(ctx context.Context, id int64) (category.Category, error) {
	return scanCategory(r.db.QueryRow(ctx, `
		UPDATE categories SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING `+categoryCols+`
	`, id))
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	return err
}

// HasProducts guards destroy: a category with products cannot be removed.
func (r *Repo) HasProducts(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE category_id=$1)`, id).Scan(&ok)
	return ok, err
}
