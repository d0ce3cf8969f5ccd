package domain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// COUPON DOMAIN ERRORS
// =============================================================================

var (
	ErrCouponNotFound     = &Error{Code: CodeCouponNotFound, Message: "Coupon not found"}
	ErrCouponCodeConflict = &Error{Code: CodeCouponCodeConflict, Message: "A coupon with this code already exists"}
)

// DiscountType distinguishes how a coupon's value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed_amount"
)

// Coupon is a discount definition. UsageCount is a denormalized counter kept
// consistent with the CouponUsage ledger inside the same commit; the ledger is
// the source of truth for auditing.
type Coupon struct {
	ID                pgtype.UUID
	Code              string
	DiscountType      DiscountType
	DiscountValue     int64
	MinimumOrderCents int64
	MaxDiscountCents  pgtype.Int8 // percentage type only
	StartsAt          pgtype.Timestamptz
	EndsAt            pgtype.Timestamptz
	UsageLimit        pgtype.Int4 // unset means unlimited
	UsageCount        int32
	IsActive          bool
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

// CouponUsage is one redemption ledger entry. At most one row exists per
// (coupon, user) pair: a user may redeem a given coupon once.
type CouponUsage struct {
	ID            pgtype.UUID
	CouponID      pgtype.UUID
	UserID        pgtype.UUID
	OrderID       pgtype.UUID
	DiscountCents int64
	CreatedAt     pgtype.Timestamptz
}

// CouponVerdict is the outcome of coupon validation. A declined coupon is an
// expected business outcome, not a fault, so it travels as a success payload:
// Valid=false with a user-facing Reason and no error on the error channel.
type CouponVerdict struct {
	Valid         bool
	Reason        string
	DiscountCents int64
	Coupon        *Coupon
}

// CouponService owns coupon validation and the usage-recording transaction.
type CouponService interface {
	// Validate runs the validation pipeline for a user, code, and order
	// amount. It is read-only and may be called repeatedly; a failing rule
	// yields a declined verdict, never an error.
	Validate(ctx context.Context, userID pgtype.UUID, code string, orderAmountCents int64) (*CouponVerdict, error)

	// RecordUsage inserts a ledger row and increments the coupon's usage
	// count in one transaction. Called exactly once, at order commit.
	RecordUsage(ctx context.Context, params RecordUsageParams) (*CouponUsage, error)

	// Create stores a new coupon, rejecting duplicate codes. Codes are
	// normalized to upper case.
	Create(ctx context.Context, params CreateCouponParams) (*Coupon, error)

	// GetByCode returns an active coupon by its canonical code.
	GetByCode(ctx context.Context, code string) (*Coupon, error)
}

// RecordUsageParams carries one redemption to record.
type RecordUsageParams struct {
	CouponID      pgtype.UUID
	UserID        pgtype.UUID
	OrderID       pgtype.UUID
	DiscountCents int64
}

// CreateCouponParams carries a new coupon definition.
type CreateCouponParams struct {
	Code              string    `validate:"required,min=3,max=32"`
	DiscountType      string    `validate:"required,oneof=percentage fixed_amount"`
	DiscountValue     int64     `validate:"required,gt=0"`
	MinimumOrderCents int64     `validate:"gte=0"`
	MaxDiscountCents  *int64    `validate:"omitempty,gt=0"`
	StartsAt          time.Time `validate:"required"`
	EndsAt            time.Time `validate:"required,gtfield=StartsAt"`
	UsageLimit        *int32    `validate:"omitempty,gt=0"`
}
