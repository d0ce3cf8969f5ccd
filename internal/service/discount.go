package service

import (
	"github.com/velioglu/pazar/internal/domain"
)

// ComputeDiscount calculates the discount in cents for an order amount.
//
// Percentage discounts are clamped to maxDiscountCents when set. Fixed
// discounts return the face value as-is; a fixed discount can exceed the
// order amount, and capping it at the order total is the caller's call.
// Unknown discount types compute zero.
func ComputeDiscount(discountType domain.DiscountType, value, orderAmountCents int64, maxDiscountCents *int64) int64 {
	switch discountType {
	case domain.DiscountPercentage:
		discount := orderAmountCents * value / 100
		if maxDiscountCents != nil && discount > *maxDiscountCents {
			discount = *maxDiscountCents
		}
		return discount
	case domain.DiscountFixed:
		return value
	default:
		return 0
	}
}
