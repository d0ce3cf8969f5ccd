package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const couponColumns = `id, code, discount_type, discount_value, minimum_order_cents, max_discount_cents, starts_at, ends_at, usage_limit, usage_count, is_active, created_at, updated_at`

func scanCoupon(row pgx.Row) (Coupon, error) {
	var c Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MinimumOrderCents,
		&c.MaxDiscountCents, &c.StartsAt, &c.EndsAt, &c.UsageLimit, &c.UsageCount,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

const getCouponByCode = `
SELECT ` + couponColumns + `
FROM coupons
WHERE code = $1 AND is_active = true
`

// GetCouponByCode returns the active coupon with the given canonical code.
func (q *Queries) GetCouponByCode(ctx context.Context, code string) (Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, getCouponByCode, code))
}

const getCouponByID = `
SELECT ` + couponColumns + `
FROM coupons
WHERE id = $1
`

func (q *Queries) GetCouponByID(ctx context.Context, id pgtype.UUID) (Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, getCouponByID, id))
}

const couponCodeExists = `
SELECT EXISTS (
	SELECT 1 FROM coupons WHERE code = $1
)
`

func (q *Queries) CouponCodeExists(ctx context.Context, code string) (bool, error) {
	row := q.db.QueryRow(ctx, couponCodeExists, code)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createCoupon = `
INSERT INTO coupons (code, discount_type, discount_value, minimum_order_cents, max_discount_cents, starts_at, ends_at, usage_limit)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + couponColumns + `
`

type CreateCouponParams struct {
	Code              string
	DiscountType      string
	DiscountValue     int64
	MinimumOrderCents int64
	MaxDiscountCents  pgtype.Int8
	StartsAt          pgtype.Timestamptz
	EndsAt            pgtype.Timestamptz
	UsageLimit        pgtype.Int4
}

func (q *Queries) CreateCoupon(ctx context.Context, arg CreateCouponParams) (Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, createCoupon,
		arg.Code, arg.DiscountType, arg.DiscountValue, arg.MinimumOrderCents,
		arg.MaxDiscountCents, arg.StartsAt, arg.EndsAt, arg.UsageLimit,
	))
}

const couponUsageExists = `
SELECT EXISTS (
	SELECT 1 FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2
)
`

type CouponUsageExistsParams struct {
	CouponID pgtype.UUID
	UserID   pgtype.UUID
}

// CouponUsageExists reports whether the user has already redeemed the coupon.
func (q *Queries) CouponUsageExists(ctx context.Context, arg CouponUsageExistsParams) (bool, error) {
	row := q.db.QueryRow(ctx, couponUsageExists, arg.CouponID, arg.UserID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createCouponUsage = `
INSERT INTO coupon_usages (coupon_id, user_id, order_id, discount_cents)
VALUES ($1, $2, $3, $4)
RETURNING id, coupon_id, user_id, order_id, discount_cents, created_at
`

type CreateCouponUsageParams struct {
	CouponID      pgtype.UUID
	UserID        pgtype.UUID
	OrderID       pgtype.UUID
	DiscountCents int64
}

func (q *Queries) CreateCouponUsage(ctx context.Context, arg CreateCouponUsageParams) (CouponUsage, error) {
	row := q.db.QueryRow(ctx, createCouponUsage, arg.CouponID, arg.UserID, arg.OrderID, arg.DiscountCents)
	var u CouponUsage
	err := row.Scan(&u.ID, &u.CouponID, &u.UserID, &u.OrderID, &u.DiscountCents, &u.CreatedAt)
	return u, err
}

const incrementCouponUsage = `
UPDATE coupons
SET usage_count = usage_count + 1, updated_at = now()
WHERE id = $1
RETURNING ` + couponColumns + `
`

// IncrementCouponUsage bumps the denormalized counter as a single-row atomic
// update, so concurrent redemptions cannot lose increments.
func (q *Queries) IncrementCouponUsage(ctx context.Context, id pgtype.UUID) (Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, incrementCouponUsage, id))
}
