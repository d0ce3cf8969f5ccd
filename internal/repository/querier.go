package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the query surface consumed by the services. Implemented by
// Queries and by test fakes.
type Querier interface {
	// Cart
	GetCartItems(ctx context.Context, userID pgtype.UUID) ([]CartItemDetail, error)
	GetCartItemByID(ctx context.Context, id pgtype.UUID) (CartItem, error)
	GetCartItemByProduct(ctx context.Context, arg GetCartItemByProductParams) (CartItem, error)
	GetCartMerchantID(ctx context.Context, userID pgtype.UUID) (pgtype.UUID, error)
	CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error)
	UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) (CartItem, error)
	DeleteCartItem(ctx context.Context, id pgtype.UUID) error
	ClearCartItems(ctx context.Context, userID pgtype.UUID) error

	// Catalog (read-only collaborators)
	GetProductByID(ctx context.Context, id pgtype.UUID) (Product, error)
	GetMerchantByID(ctx context.Context, id pgtype.UUID) (Merchant, error)

	// Coupons
	GetCouponByCode(ctx context.Context, code string) (Coupon, error)
	GetCouponByID(ctx context.Context, id pgtype.UUID) (Coupon, error)
	CouponCodeExists(ctx context.Context, code string) (bool, error)
	CreateCoupon(ctx context.Context, arg CreateCouponParams) (Coupon, error)
	CouponUsageExists(ctx context.Context, arg CouponUsageExistsParams) (bool, error)
	CreateCouponUsage(ctx context.Context, arg CreateCouponUsageParams) (CouponUsage, error)
	IncrementCouponUsage(ctx context.Context, id pgtype.UUID) (Coupon, error)

	// Addresses
	ListActiveAddresses(ctx context.Context, userID pgtype.UUID) ([]UserAddress, error)
	GetActiveAddress(ctx context.Context, arg GetActiveAddressParams) (UserAddress, error)
	CountActiveAddresses(ctx context.Context, userID pgtype.UUID) (int64, error)
	GetDefaultAddress(ctx context.Context, userID pgtype.UUID) (UserAddress, error)
	GetOldestActiveAddress(ctx context.Context, userID pgtype.UUID) (UserAddress, error)
	CreateAddress(ctx context.Context, arg CreateAddressParams) (UserAddress, error)
	UpdateAddress(ctx context.Context, arg UpdateAddressParams) (UserAddress, error)
	DeactivateAddress(ctx context.Context, arg DeactivateAddressParams) error
	DemoteDefaultAddresses(ctx context.Context, userID pgtype.UUID) error
	PromoteAddressToDefault(ctx context.Context, arg PromoteAddressToDefaultParams) (UserAddress, error)
}

var _ Querier = (*Queries)(nil)
