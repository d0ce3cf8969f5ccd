package domain

import (
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrProductNotFound  = &Error{Code: CodeProductNotFound, Message: "Product not found"}
	ErrMerchantNotFound = &Error{Code: ENOTFOUND, Message: "Merchant not found"}
)

// Product is a catalog entry owned by a merchant. The consistency core reads
// products for pricing and stock checks but never mutates them; stock is
// checked at add-to-cart time, not reserved.
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

// UnitPriceCents returns the effective selling price: the discounted price
// when one is set, the regular price otherwise.
func (p Product) UnitPriceCents() int64 {
	if p.DiscountedPriceCents.Valid {
		return p.DiscountedPriceCents.Int64
	}
	return p.PriceCents
}

// Sellable reports whether the product can be added to a cart at all.
func (p Product) Sellable() bool {
	return p.IsActive && p.IsAvailable
}

// Merchant is the delivery origin for a cart. A cart holds items from exactly
// one merchant; the merchant's delivery fee feeds into cart totals.
type Merchant struct {
	ID               pgtype.UUID
	Name             string
	DeliveryFeeCents int64
	IsActive         bool
	CreatedAt        pgtype.Timestamptz
	UpdatedAt        pgtype.Timestamptz
}
