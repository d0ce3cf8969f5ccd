package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartItemNotFound = &Error{Code: CodeCartItemNotFound, Message: "Cart item not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}

	// ErrDifferentMerchant blocks mixing merchants in one cart. The cart is
	// single-merchant: one checkout corresponds to one delivery origin.
	ErrDifferentMerchant = &Error{Code: CodeCartDifferentMerchant, Message: "Your cart contains items from another merchant. Clear it before ordering from a new one."}

	// ErrInsufficientStock is a point-in-time check, not a reservation.
	ErrInsufficientStock = &Error{Code: CodeInsufficientStock, Message: "Requested quantity exceeds available stock"}
)

// CartService provides business logic for shopping cart operations.
// The cart itself is not a stored row; it is the set of active cart items for
// one user, so every operation derives cart state from that row set.
type CartService interface {
	// GetCart returns the user's cart joined with current product and merchant
	// data. An empty cart is a success: zero merchant, no items, zero totals.
	GetCart(ctx context.Context, userID pgtype.UUID) (*CartSummary, error)

	// AddItem adds a product to the cart or merges quantity into an existing
	// line for the same product. Enforces the single-merchant rule and the
	// advisory stock check before any mutation.
	AddItem(ctx context.Context, params AddItemParams) (*CartLine, error)

	// UpdateItem replaces quantity and notes on a line the user owns.
	UpdateItem(ctx context.Context, params UpdateItemParams) (*CartLine, error)

	// RemoveItem deletes a line the user owns.
	RemoveItem(ctx context.Context, userID, itemID pgtype.UUID) error

	// ClearCart deletes all of the user's cart items. Clearing an already
	// empty cart succeeds.
	ClearCart(ctx context.Context, userID pgtype.UUID) error
}

// AddItemParams carries one add-to-cart request.
type AddItemParams struct {
	UserID     pgtype.UUID
	MerchantID pgtype.UUID
	ProductID  pgtype.UUID
	Quantity   int32
	Notes      string
}

// UpdateItemParams carries an ownership-checked line update.
type UpdateItemParams struct {
	UserID   pgtype.UUID
	ItemID   pgtype.UUID
	Quantity int32
	Notes    string
}

// CartLine is a cart item joined with current product data and its computed
// line total.
type CartLine struct {
	ID             pgtype.UUID
	ProductID      pgtype.UUID
	MerchantID     pgtype.UUID
	ProductName    string
	Quantity       int32
	Notes          string
	UnitPriceCents int64
	LineTotalCents int64
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

// CartSummary aggregates the derived cart view with calculated totals.
// MerchantID is the zero UUID when the cart is empty.
type CartSummary struct {
	MerchantID       pgtype.UUID
	MerchantName     string
	Items            []CartLine
	SubtotalCents    int64
	DeliveryFeeCents int64
	TotalCents       int64
	ItemCount        int
}
