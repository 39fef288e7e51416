package products

import (
	"fmt"
	"strings"
)

// Stock status filters.
const (
	StockInStock    = "in_stock"
	StockOutOfStock = "out_of_stock"
)

// Filter is the typed replacement for ad-hoc query-scope chaining: every
// list endpoint builds one of these and the repo composes it into SQL.
type Filter struct {
	Search      string // matches name or code, case-insensitive
	CategoryID  int64
	Active      *bool
	StockStatus string
	Page        int
	PerPage     int
}

func (f Filter) normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	return f
}

// buildWhere composes the WHERE clause and its positional args. Returned
// clause is "" when no predicate applies.
func buildWhere(f Filter) (string, []any) {
	var conds []string
	var args []any

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.code ILIKE $%d)", n, n))
	}
	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		conds = append(conds, fmt.Sprintf("p.is_active = $%d", len(args)))
	}
	switch f.StockStatus {
	case StockInStock:
		conds = append(conds, "p.stock_qty > 0")
	case StockOutOfStock:
		conds = append(conds, "p.stock_qty <= 0")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
