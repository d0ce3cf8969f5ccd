package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Row types mirror the table shapes one to one. Mapping to domain types
// happens in the services.

type Merchant struct {
	ID               pgtype.UUID
	Name             string
	DeliveryFeeCents int64
	IsActive         bool
	CreatedAt        pgtype.Timestamptz
	UpdatedAt        pgtype.Timestamptz
}

type Product struct {
	ID                   pgtype.UUID
	MerchantID           pgtype.UUID
	Name                 string
	PriceCents           int64
	DiscountedPriceCents pgtype.Int8
	StockQuantity        int32
	IsAvailable          bool
	IsActive             bool
	CreatedAt            pgtype.Timestamptz
	UpdatedAt            pgtype.Timestamptz
}

type CartItem struct {
	ID         pgtype.UUID
	UserID     pgtype.UUID
	MerchantID pgtype.UUID
	ProductID  pgtype.UUID
	Quantity   int32
	Notes      string
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

// CartItemDetail is a cart item joined with its product and merchant.
type CartItemDetail struct {
	CartItem
	ProductName          string
	PriceCents           int64
	DiscountedPriceCents pgtype.Int8
	StockQuantity        int32
	MerchantName         string
	DeliveryFeeCents     int64
}

type UserAddress struct {
	ID          pgtype.UUID
	UserID      pgtype.UUID
	Title       string
	FullAddress string
	City        string
	District    string
	Latitude    pgtype.Float8
	Longitude   pgtype.Float8
	IsDefault   bool
	IsActive    bool
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type Coupon struct {
	ID                pgtype.UUID
	Code              string
	DiscountType      string
	DiscountValue     int64
	MinimumOrderCents int64
	MaxDiscountCents  pgtype.Int8
	StartsAt          pgtype.Timestamptz
	EndsAt            pgtype.Timestamptz
	UsageLimit        pgtype.Int4
	UsageCount        int32
	IsActive          bool
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

type CouponUsage struct {
	ID            pgtype.UUID
	CouponID      pgtype.UUID
	UserID        pgtype.UUID
	OrderID       pgtype.UUID
	DiscountCents int64
	CreatedAt     pgtype.Timestamptz
}
