package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/velioglu/pazar/internal/repository"
)

// fakeStore is an in-memory repository.Store. It mimics the row-level
// behavior of the SQL layer, including no-rows errors and the unique index on
// the coupon usage ledger, so service logic can be tested without a database.
type fakeStore struct {
	merchants map[pgtype.UUID]repository.Merchant
	products  map[pgtype.UUID]repository.Product
	cartItems []repository.CartItem
	addresses []repository.UserAddress
	coupons   []repository.Coupon
	usages    []repository.CouponUsage

	beginErr error // force ExecTx to fail before running fn
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		merchants: make(map[pgtype.UUID]repository.Merchant),
		products:  make(map[pgtype.UUID]repository.Product),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUUID() pgtype.UUID {
	id := uuid.New()
	return pgtype.UUID{Bytes: id, Valid: true}
}

func ts() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

// ExecTx runs fn against the same state. The fake cannot roll back; tests
// that need rollback semantics force errors before any mutation instead.
func (f *fakeStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(f)
}

// --- catalog ---

func (f *fakeStore) addMerchant(feeCents int64) repository.Merchant {
	m := repository.Merchant{ID: newUUID(), Name: "merchant", DeliveryFeeCents: feeCents, IsActive: true, CreatedAt: ts(), UpdatedAt: ts()}
	f.merchants[m.ID] = m
	return m
}

func (f *fakeStore) addProduct(merchantID pgtype.UUID, priceCents int64, stock int32) repository.Product {
	p := repository.Product{
		ID: newUUID(), MerchantID: merchantID, Name: "product",
		PriceCents: priceCents, StockQuantity: stock,
		IsAvailable: true, IsActive: true, CreatedAt: ts(), UpdatedAt: ts(),
	}
	f.products[p.ID] = p
	return p
}

func (f *fakeStore) GetProductByID(ctx context.Context, id pgtype.UUID) (repository.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return repository.Product{}, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) GetMerchantByID(ctx context.Context, id pgtype.UUID) (repository.Merchant, error) {
	m, ok := f.merchants[id]
	if !ok {
		return repository.Merchant{}, sql.ErrNoRows
	}
	return m, nil
}

// --- cart ---

func (f *fakeStore) GetCartItems(ctx context.Context, userID pgtype.UUID) ([]repository.CartItemDetail, error) {
	var details []repository.CartItemDetail
	for _, item := range f.cartItems {
		if item.UserID != userID {
			continue
		}
		p := f.products[item.ProductID]
		m := f.merchants[item.MerchantID]
		details = append(details, repository.CartItemDetail{
			CartItem:             item,
			ProductName:          p.Name,
			PriceCents:           p.PriceCents,
			DiscountedPriceCents: p.DiscountedPriceCents,
			StockQuantity:        p.StockQuantity,
			MerchantName:         m.Name,
			DeliveryFeeCents:     m.DeliveryFeeCents,
		})
	}
	return details, nil
}

func (f *fakeStore) GetCartItemByID(ctx context.Context, id pgtype.UUID) (repository.CartItem, error) {
	for _, item := range f.cartItems {
		if item.ID == id {
			return item, nil
		}
	}
	return repository.CartItem{}, sql.ErrNoRows
}

func (f *fakeStore) GetCartItemByProduct(ctx context.Context, arg repository.GetCartItemByProductParams) (repository.CartItem, error) {
	for _, item := range f.cartItems {
		if item.UserID == arg.UserID && item.ProductID == arg.ProductID {
			return item, nil
		}
	}
	return repository.CartItem{}, sql.ErrNoRows
}

func (f *fakeStore) GetCartMerchantID(ctx context.Context, userID pgtype.UUID) (pgtype.UUID, error) {
	for _, item := range f.cartItems {
		if item.UserID == userID {
			return item.MerchantID, nil
		}
	}
	return pgtype.UUID{}, sql.ErrNoRows
}

func (f *fakeStore) CreateCartItem(ctx context.Context, arg repository.CreateCartItemParams) (repository.CartItem, error) {
	item := repository.CartItem{
		ID: newUUID(), UserID: arg.UserID, MerchantID: arg.MerchantID,
		ProductID: arg.ProductID, Quantity: arg.Quantity, Notes: arg.Notes,
		CreatedAt: ts(), UpdatedAt: ts(),
	}
	f.cartItems = append(f.cartItems, item)
	return item, nil
}

func (f *fakeStore) UpdateCartItem(ctx context.Context, arg repository.UpdateCartItemParams) (repository.CartItem, error) {
	for i, item := range f.cartItems {
		if item.ID == arg.ID {
			f.cartItems[i].Quantity = arg.Quantity
			f.cartItems[i].Notes = arg.Notes
			f.cartItems[i].UpdatedAt = ts()
			return f.cartItems[i], nil
		}
	}
	return repository.CartItem{}, sql.ErrNoRows
}

func (f *fakeStore) DeleteCartItem(ctx context.Context, id pgtype.UUID) error {
	for i, item := range f.cartItems {
		if item.ID == id {
			f.cartItems = append(f.cartItems[:i], f.cartItems[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) ClearCartItems(ctx context.Context, userID pgtype.UUID) error {
	kept := f.cartItems[:0]
	for _, item := range f.cartItems {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	f.cartItems = kept
	return nil
}

// --- coupons ---

func (f *fakeStore) GetCouponByCode(ctx context.Context, code string) (repository.Coupon, error) {
	for _, c := range f.coupons {
		if c.Code == code && c.IsActive {
			return c, nil
		}
	}
	return repository.Coupon{}, sql.ErrNoRows
}

func (f *fakeStore) GetCouponByID(ctx context.Context, id pgtype.UUID) (repository.Coupon, error) {
	for _, c := range f.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return repository.Coupon{}, sql.ErrNoRows
}

func (f *fakeStore) CouponCodeExists(ctx context.Context, code string) (bool, error) {
	for _, c := range f.coupons {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateCoupon(ctx context.Context, arg repository.CreateCouponParams) (repository.Coupon, error) {
	for _, c := range f.coupons {
		if c.Code == arg.Code {
			return repository.Coupon{}, &pgconn.PgError{Code: "23505", ConstraintName: "coupons_code_key"}
		}
	}
	c := repository.Coupon{
		ID: newUUID(), Code: arg.Code, DiscountType: arg.DiscountType,
		DiscountValue: arg.DiscountValue, MinimumOrderCents: arg.MinimumOrderCents,
		MaxDiscountCents: arg.MaxDiscountCents, StartsAt: arg.StartsAt, EndsAt: arg.EndsAt,
		UsageLimit: arg.UsageLimit, IsActive: true, CreatedAt: ts(), UpdatedAt: ts(),
	}
	f.coupons = append(f.coupons, c)
	return c, nil
}

func (f *fakeStore) CouponUsageExists(ctx context.Context, arg repository.CouponUsageExistsParams) (bool, error) {
	for _, u := range f.usages {
		if u.CouponID == arg.CouponID && u.UserID == arg.UserID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateCouponUsage(ctx context.Context, arg repository.CreateCouponUsageParams) (repository.CouponUsage, error) {
	for _, u := range f.usages {
		if u.CouponID == arg.CouponID && u.UserID == arg.UserID {
			return repository.CouponUsage{}, &pgconn.PgError{Code: "23505", ConstraintName: "coupon_usages_coupon_id_user_id_key"}
		}
	}
	u := repository.CouponUsage{
		ID: newUUID(), CouponID: arg.CouponID, UserID: arg.UserID,
		OrderID: arg.OrderID, DiscountCents: arg.DiscountCents, CreatedAt: ts(),
	}
	f.usages = append(f.usages, u)
	return u, nil
}

func (f *fakeStore) IncrementCouponUsage(ctx context.Context, id pgtype.UUID) (repository.Coupon, error) {
	for i, c := range f.coupons {
		if c.ID == id {
			f.coupons[i].UsageCount++
			f.coupons[i].UpdatedAt = ts()
			return f.coupons[i], nil
		}
	}
	return repository.Coupon{}, sql.ErrNoRows
}

// --- addresses ---

func (f *fakeStore) ListActiveAddresses(ctx context.Context, userID pgtype.UUID) ([]repository.UserAddress, error) {
	var out []repository.UserAddress
	for _, a := range f.addresses {
		if a.UserID == userID && a.IsActive && a.IsDefault {
			out = append(out, a)
		}
	}
	for _, a := range f.addresses {
		if a.UserID == userID && a.IsActive && !a.IsDefault {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetActiveAddress(ctx context.Context, arg repository.GetActiveAddressParams) (repository.UserAddress, error) {
	for _, a := range f.addresses {
		if a.ID == arg.ID && a.UserID == arg.UserID && a.IsActive {
			return a, nil
		}
	}
	return repository.UserAddress{}, sql.ErrNoRows
}

func (f *fakeStore) CountActiveAddresses(ctx context.Context, userID pgtype.UUID) (int64, error) {
	var count int64
	for _, a := range f.addresses {
		if a.UserID == userID && a.IsActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) GetDefaultAddress(ctx context.Context, userID pgtype.UUID) (repository.UserAddress, error) {
	for _, a := range f.addresses {
		if a.UserID == userID && a.IsActive && a.IsDefault {
			return a, nil
		}
	}
	return repository.UserAddress{}, sql.ErrNoRows
}

func (f *fakeStore) GetOldestActiveAddress(ctx context.Context, userID pgtype.UUID) (repository.UserAddress, error) {
	for _, a := range f.addresses {
		if a.UserID == userID && a.IsActive {
			return a, nil
		}
	}
	return repository.UserAddress{}, sql.ErrNoRows
}

func (f *fakeStore) CreateAddress(ctx context.Context, arg repository.CreateAddressParams) (repository.UserAddress, error) {
	a := repository.UserAddress{
		ID: newUUID(), UserID: arg.UserID, Title: arg.Title,
		FullAddress: arg.FullAddress, City: arg.City, District: arg.District,
		Latitude: arg.Latitude, Longitude: arg.Longitude,
		IsDefault: arg.IsDefault, IsActive: true, CreatedAt: ts(), UpdatedAt: ts(),
	}
	f.addresses = append(f.addresses, a)
	return a, nil
}

func (f *fakeStore) UpdateAddress(ctx context.Context, arg repository.UpdateAddressParams) (repository.UserAddress, error) {
	for i, a := range f.addresses {
		if a.ID == arg.ID && a.UserID == arg.UserID && a.IsActive {
			f.addresses[i].Title = arg.Title
			f.addresses[i].FullAddress = arg.FullAddress
			f.addresses[i].City = arg.City
			f.addresses[i].District = arg.District
			f.addresses[i].Latitude = arg.Latitude
			f.addresses[i].Longitude = arg.Longitude
			f.addresses[i].UpdatedAt = ts()
			return f.addresses[i], nil
		}
	}
	return repository.UserAddress{}, sql.ErrNoRows
}

func (f *fakeStore) DeactivateAddress(ctx context.Context, arg repository.DeactivateAddressParams) error {
	for i, a := range f.addresses {
		if a.ID == arg.ID && a.UserID == arg.UserID {
			f.addresses[i].IsActive = false
			f.addresses[i].IsDefault = false
			f.addresses[i].UpdatedAt = ts()
		}
	}
	return nil
}

func (f *fakeStore) DemoteDefaultAddresses(ctx context.Context, userID pgtype.UUID) error {
	for i, a := range f.addresses {
		if a.UserID == userID && a.IsDefault && a.IsActive {
			f.addresses[i].IsDefault = false
			f.addresses[i].UpdatedAt = ts()
		}
	}
	return nil
}

func (f *fakeStore) PromoteAddressToDefault(ctx context.Context, arg repository.PromoteAddressToDefaultParams) (repository.UserAddress, error) {
	for i, a := range f.addresses {
		if a.ID == arg.ID && a.UserID == arg.UserID && a.IsActive {
			f.addresses[i].IsDefault = true
			f.addresses[i].UpdatedAt = ts()
			return f.addresses[i], nil
		}
	}
	return repository.UserAddress{}, sql.ErrNoRows
}
