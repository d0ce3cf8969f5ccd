package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const addressColumns = `id, user_id, title, full_address, city, district, latitude, longitude, is_default, is_active, created_at, updated_at`

func scanAddress(row pgx.Row) (UserAddress, error) {
	var a UserAddress
	err := row.Scan(
		&a.ID, &a.UserID, &a.Title, &a.FullAddress, &a.City, &a.District,
		&a.Latitude, &a.Longitude, &a.IsDefault, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

const listActiveAddresses = `
SELECT ` + addressColumns + `
FROM user_addresses
WHERE user_id = $1 AND is_active = true
ORDER BY is_default DESC, created_at
`

// ListActiveAddresses returns the user's active addresses, default first.
func (q *Queries) ListActiveAddresses(ctx context.Context, userID pgtype.UUID) ([]UserAddress, error) {
	rows, err := q.db.Query(ctx, listActiveAddresses, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addrs []UserAddress
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return addrs, rows.Err()
}

const getActiveAddress = `
SELECT ` + addressColumns + `
FROM user_addresses
WHERE id = $1 AND user_id = $2 AND is_active = true
`

type GetActiveAddressParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

// GetActiveAddress enforces ownership in the query itself: a row that exists
// but belongs to another user reads as no rows.
func (q *Queries) GetActiveAddress(ctx context.Context, arg GetActiveAddressParams) (UserAddress, error) {
	return scanAddress(q.db.QueryRow(ctx, getActiveAddress, arg.ID, arg.UserID))
}

const countActiveAddresses = `
SELECT count(*)
FROM user_addresses
WHERE user_id = $1 AND is_active = true
`

func (q *Queries) CountActiveAddresses(ctx context.Context, userID pgtype.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countActiveAddresses, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getDefaultAddress = `
SELECT ` + addressColumns + `
FROM user_addresses
WHERE user_id = $1 AND is_default = true AND is_active = true
LIMIT 1
`

func (q *Queries) GetDefaultAddress(ctx context.Context, userID pgtype.UUID) (UserAddress, error) {
	return scanAddress(q.db.QueryRow(ctx, getDefaultAddress, userID))
}

const getOldestActiveAddress = `
SELECT ` + addressColumns + `
FROM user_addresses
WHERE user_id = $1 AND is_active = true
ORDER BY created_at
LIMIT 1
`

// GetOldestActiveAddress picks the replacement candidate after the default
// address is deleted.
func (q *Queries) GetOldestActiveAddress(ctx context.Context, userID pgtype.UUID) (UserAddress, error) {
	return scanAddress(q.db.QueryRow(ctx, getOldestActiveAddress, userID))
}

const createAddress = `
INSERT INTO user_addresses (user_id, title, full_address, city, district, latitude, longitude, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + addressColumns + `
`

type CreateAddressParams struct {
	UserID      pgtype.UUID
	Title       string
	FullAddress string
	City        string
	District    string
	Latitude    pgtype.Float8
	Longitude   pgtype.Float8
	IsDefault   bool
}

func (q *Queries) CreateAddress(ctx context.Context, arg CreateAddressParams) (UserAddress, error) {
	return scanAddress(q.db.QueryRow(ctx, createAddress,
		arg.UserID, arg.Title, arg.FullAddress, arg.City, arg.District,
		arg.Latitude, arg.Longitude, arg.IsDefault,
	))
}

const updateAddress = `
UPDATE user_addresses
SET title = $3, full_address = $4, city = $5, district = $6, latitude = $7, longitude = $8, updated_at = now()
WHERE id = $1 AND user_id = $2 AND is_active = true
RETURNING ` + addressColumns + `
`

type UpdateAddressParams struct {
	ID          pgtype.UUID
	UserID      pgtype.UUID
	Title       string
	FullAddress string
	City        string
	District    string
	Latitude    pgtype.Float8
	Longitude   pgtype.Float8
}

// UpdateAddress never touches is_default; default reassignment has its own
// queries so the invariant stays in one place.
func (q *Queries) UpdateAddress(ctx context.Context, arg UpdateAddressParams) (UserAddress, error) {
	return scanAddress(q.db.QueryRow(ctx, updateAddress,
		arg.ID, arg.UserID, arg.Title, arg.FullAddress, arg.City, arg.District,
		arg.Latitude, arg.Longitude,
	))
}

const deactivateAddress = `
UPDATE user_addresses
SET is_active = false, is_default = false, updated_at = now()
WHERE id = $1 AND user_id = $2
`

type DeactivateAddressParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

func (q *Queries) DeactivateAddress(ctx context.Context, arg DeactivateAddressParams) error {
	_, err := q.db.Exec(ctx, deactivateAddress, arg.ID, arg.UserID)
	return err
}

const demoteDefaultAddresses = `
UPDATE user_addresses
SET is_default = false, updated_at = now()
WHERE user_id = $1 AND is_default = true AND is_active = true
`

// DemoteDefaultAddresses clears every current default for the user. Normally
// zero or one row, but correct even if prior inconsistency left more.
func (q *Queries) DemoteDefaultAddresses(ctx context.Context, userID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, demoteDefaultAddresses, userID)
	return err
}

const promoteAddressToDefault = `
UPDATE user_addresses
SET is_default = true, updated_at = now()
WHERE id = $1 AND user_id = $2 AND is_active = true
RETURNING ` + addressColumns + `
`

type PromoteAddressToDefaultParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

func (q *Queries) PromoteAddressToDefault(ctx context.Context, arg PromoteAddressToDefaultParams) (UserAddress, error) {
	return scanAddress(q.db.QueryRow(ctx, promoteAddressToDefault, arg.ID, arg.UserID))
}
