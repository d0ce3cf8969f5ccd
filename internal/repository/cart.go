package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getCartItems = `
SELECT ci.id, ci.user_id, ci.merchant_id, ci.product_id, ci.quantity, ci.notes, ci.created_at, ci.updated_at,
       p.name, p.price_cents, p.discounted_price_cents, p.stock_quantity,
       m.name, m.delivery_fee_cents
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
JOIN merchants m ON m.id = ci.merchant_id
WHERE ci.user_id = $1
ORDER BY ci.created_at
`

// GetCartItems returns the user's cart items joined with current product and
// merchant data, oldest first.
func (q *Queries) GetCartItems(ctx context.Context, userID pgtype.UUID) ([]CartItemDetail, error) {
	rows, err := q.db.Query(ctx, getCartItems, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItemDetail
	for rows.Next() {
		var i CartItemDetail
		if err := rows.Scan(
			&i.ID, &i.UserID, &i.MerchantID, &i.ProductID, &i.Quantity, &i.Notes, &i.CreatedAt, &i.UpdatedAt,
			&i.ProductName, &i.PriceCents, &i.DiscountedPriceCents, &i.StockQuantity,
			&i.MerchantName, &i.DeliveryFeeCents,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getCartItemByID = `
SELECT id, user_id, merchant_id, product_id, quantity, notes, created_at, updated_at
FROM cart_items
WHERE id = $1
`

func (q *Queries) GetCartItemByID(ctx context.Context, id pgtype.UUID) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItemByID, id)
	var i CartItem
	err := row.Scan(&i.ID, &i.UserID, &i.MerchantID, &i.ProductID, &i.Quantity, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getCartItemByProduct = `
SELECT id, user_id, merchant_id, product_id, quantity, notes, created_at, updated_at
FROM cart_items
WHERE user_id = $1 AND product_id = $2
`

type GetCartItemByProductParams struct {
	UserID    pgtype.UUID
	ProductID pgtype.UUID
}

func (q *Queries) GetCartItemByProduct(ctx context.Context, arg GetCartItemByProductParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItemByProduct, arg.UserID, arg.ProductID)
	var i CartItem
	err := row.Scan(&i.ID, &i.UserID, &i.MerchantID, &i.ProductID, &i.Quantity, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getCartMerchantID = `
SELECT merchant_id
FROM cart_items
WHERE user_id = $1
LIMIT 1
`

// GetCartMerchantID returns the merchant the user's cart is bound to.
// Returns no rows when the cart is empty. All items share one merchant id, so
// any row answers the question.
func (q *Queries) GetCartMerchantID(ctx context.Context, userID pgtype.UUID) (pgtype.UUID, error) {
	row := q.db.QueryRow(ctx, getCartMerchantID, userID)
	var merchantID pgtype.UUID
	err := row.Scan(&merchantID)
	return merchantID, err
}

const createCartItem = `
INSERT INTO cart_items (user_id, merchant_id, product_id, quantity, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, merchant_id, product_id, quantity, notes, created_at, updated_at
`

type CreateCartItemParams struct {
	UserID     pgtype.UUID
	MerchantID pgtype.UUID
	ProductID  pgtype.UUID
	Quantity   int32
	Notes      string
}

func (q *Queries) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, createCartItem, arg.UserID, arg.MerchantID, arg.ProductID, arg.Quantity, arg.Notes)
	var i CartItem
	err := row.Scan(&i.ID, &i.UserID, &i.MerchantID, &i.ProductID, &i.Quantity, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const updateCartItem = `
UPDATE cart_items
SET quantity = $2, notes = $3, updated_at = now()
WHERE id = $1
RETURNING id, user_id, merchant_id, product_id, quantity, notes, created_at, updated_at
`

type UpdateCartItemParams struct {
	ID       pgtype.UUID
	Quantity int32
	Notes    string
}

func (q *Queries) UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, updateCartItem, arg.ID, arg.Quantity, arg.Notes)
	var i CartItem
	err := row.Scan(&i.ID, &i.UserID, &i.MerchantID, &i.ProductID, &i.Quantity, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const deleteCartItem = `
DELETE FROM cart_items
WHERE id = $1
`

func (q *Queries) DeleteCartItem(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteCartItem, id)
	return err
}

const clearCartItems = `
DELETE FROM cart_items
WHERE user_id = $1
`

func (q *Queries) ClearCartItems(ctx context.Context, userID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, clearCartItems, userID)
	return err
}
