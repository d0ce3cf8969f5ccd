package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// ErrAddressNotFound covers missing, inactive, and not-owned addresses alike.
var ErrAddressNotFound = &Error{Code: CodeAddressNotFound, Message: "Address not found"}

// UserAddress is one saved delivery address. Deletes are soft (IsActive=false)
// and soft-deleted rows are excluded from listing and the default invariant.
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

// AddressService owns the address book and its invariant: among a user's
// active addresses, exactly one is the default whenever any exist.
type AddressService interface {
	// List returns the user's active addresses, default first.
	List(ctx context.Context, userID pgtype.UUID) ([]UserAddress, error)

	// GetDefault returns the user's default address, or ErrAddressNotFound
	// when the user has no active addresses.
	GetDefault(ctx context.Context, userID pgtype.UUID) (*UserAddress, error)

	// Add inserts a new active address. The user's first active address is
	// promoted to default automatically.
	Add(ctx context.Context, params AddAddressParams) (*UserAddress, error)

	// Update changes address fields on an owned address. It never touches the
	// default flag; use SetDefault for that.
	Update(ctx context.Context, params UpdateAddressParams) (*UserAddress, error)

	// Delete soft-deletes an owned address. Deleting the default promotes a
	// remaining active address, if any, in the same transaction. A user left
	// with no addresses has no default, which is a valid terminal state.
	Delete(ctx context.Context, userID, addressID pgtype.UUID) error

	// SetDefault demotes every other default and promotes the target in one
	// commit. The demote step handles any number of stray defaults left by
	// prior inconsistency.
	SetDefault(ctx context.Context, userID, addressID pgtype.UUID) error
}

// AddAddressParams carries a new address.
type AddAddressParams struct {
	UserID      pgtype.UUID
	Title       string  `validate:"required,max=64"`
	FullAddress string  `validate:"required,max=512"`
	City        string  `validate:"required,max=64"`
	District    string  `validate:"max=64"`
	Latitude    float64 `validate:"gte=-90,lte=90"`
	Longitude   float64 `validate:"gte=-180,lte=180"`
}

// UpdateAddressParams carries an ownership-checked field update.
type UpdateAddressParams struct {
	UserID      pgtype.UUID
	AddressID   pgtype.UUID
	Title       string  `validate:"required,max=64"`
	FullAddress string  `validate:"required,max=512"`
	City        string  `validate:"required,max=64"`
	District    string  `validate:"max=64"`
	Latitude    float64 `validate:"gte=-90,lte=90"`
	Longitude   float64 `validate:"gte=-180,lte=180"`
}
