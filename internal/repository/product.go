package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getProductByID = `
SELECT id, merchant_id, name, price_cents, discounted_price_cents, stock_quantity, is_available, is_active, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProductByID(ctx context.Context, id pgtype.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProductByID, id)
	var p Product
	err := row.Scan(
		&p.ID, &p.MerchantID, &p.Name, &p.PriceCents, &p.DiscountedPriceCents,
		&p.StockQuantity, &p.IsAvailable, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

const getMerchantByID = `
SELECT id, name, delivery_fee_cents, is_active, created_at, updated_at
FROM merchants
WHERE id = $1
`

func (q *Queries) GetMerchantByID(ctx context.Context, id pgtype.UUID) (Merchant, error) {
	row := q.db.QueryRow(ctx, getMerchantByID, id)
	var m Merchant
	err := row.Scan(&m.ID, &m.Name, &m.DeliveryFeeCents, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
