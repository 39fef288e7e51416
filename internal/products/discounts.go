package products

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
)

type DiscountInput struct {
	Type     string
	Value    decimal.Decimal
	StartsAt *time.Time
	EndsAt   *time.Time
	IsActive bool
}

func validateDiscount(in DiscountInput) error {
	switch in.Type {
	case product.DiscountPercentage:
		if in.Value.IsNegative() || in.Value.GreaterThan(decimal.NewFromInt(100)) {
			return &httpx.ValidationError{Msg: "percentage discount must be between 0 and 100"}
		}
	case product.DiscountFixed:
		if in.Value.IsNegative() {
			return &httpx.ValidationError{Msg: "fixed discount must not be negative"}
		}
	default:
		return &httpx.ValidationError{Msg: "discount type must be percentage or fixed"}
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return &httpx.ValidationError{Msg: "discount end date precedes start date"}
	}
	return nil
}

func (r *Repo) AddDiscount(ctx context.Context, productID int64, in DiscountInput) (product.Discount, error) {
	if err := validateDiscount(in); err != nil {
		return product.Discount{}, err
	}
	var d product.Discount
	err := r.db.QueryRow(ctx, `
		INSERT INTO product_discounts (product_id, discount_type, value, starts_at, ends_at, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, product_id, discount_type, value, starts_at, ends_at, is_active, created_at, updated_at
	`, productID, in.Type, in.Value, in.StartsAt, in.EndsAt, in.IsActive).Scan(
		&d.ID, &d.ProductID, &d.Type, &d.Value, &d.StartsAt, &d.EndsAt, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *Repo) UpdateDiscount(ctx context.Context, discountID int64, in DiscountInput) (product.Discount, error) {
	if err := validateDiscount(in); err != nil {
		return product.Discount{}, err
	}
	var d product.Discount
	err := r.db.QueryRow(ctx, `
		UPDATE product_discounts
		SET discount_type=$2, value=$3, starts_at=$4, ends_at=$5, is_active=$6, updated_at=now()
		WHERE id=$1
		RETURNING id, product_id, discount_type, value, starts_at, ends_at, is_active, created_at, updated_at
	`, discountID, in.Type, in.Value, in.StartsAt, in.EndsAt, in.IsActive).Scan(
		&d.ID, &d.ProductID, &d.Type, &d.Value, &d.StartsAt, &d.EndsAt, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *Repo) DeleteDiscount(ctx context.Context, discountID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM product_discounts WHERE id=$1`, discountID)
	return err
}
