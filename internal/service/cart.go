package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/velioglu/pazar/internal/domain"
	"github.com/velioglu/pazar/internal/events"
	"github.com/velioglu/pazar/internal/repository"
	"github.com/velioglu/pazar/internal/telemetry"
)

// cartService implements domain.CartService over the aggregate store.
//
// The merchant and stock checks are read-then-write without a held lock; the
// window between check and commit is accepted as a best-effort guard. Hard
// exclusivity would need per-user serialization at the storage layer.
type cartService struct {
	store     repository.Store
	logger    *slog.Logger
	metrics   *telemetry.BusinessMetrics
	publisher events.Publisher
}

var _ domain.CartService = (*cartService)(nil)

// NewCartService creates the cart manager.
func NewCartService(store repository.Store, logger *slog.Logger, metrics *telemetry.BusinessMetrics, publisher events.Publisher) domain.CartService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &cartService{
		store:     store,
		logger:    logger,
		metrics:   metrics,
		publisher: publisher,
	}
}

// GetCart returns the user's cart joined with current product and merchant
// data. An empty cart is a successful zero-valued summary.
func (s *cartService) GetCart(ctx context.Context, userID pgtype.UUID) (*domain.CartSummary, error) {
	rows, err := s.store.GetCartItems(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, "cart.get", "failed to load cart items")
	}

	if len(rows) == 0 {
		return &domain.CartSummary{Items: []domain.CartLine{}}, nil
	}

	summary := &domain.CartSummary{
		MerchantID:       rows[0].MerchantID,
		MerchantName:     rows[0].MerchantName,
		DeliveryFeeCents: rows[0].DeliveryFeeCents,
		Items:            make([]domain.CartLine, 0, len(rows)),
	}

	for _, row := range rows {
		line := mapDetailToLine(row)
		summary.SubtotalCents += line.LineTotalCents
		summary.ItemCount += int(line.Quantity)
		summary.Items = append(summary.Items, line)
	}
	summary.TotalCents = summary.SubtotalCents + summary.DeliveryFeeCents

	s.metrics.RecordCartValue(summary.TotalCents)

	return summary, nil
}

// AddItem adds a product to the cart, merging quantity into an existing line
// for the same product. Rule order: merchant exclusivity, product existence,
// stock, then merge-or-insert.
func (s *cartService) AddItem(ctx context.Context, params domain.AddItemParams) (*domain.CartLine, error) {
	if params.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	currentMerchant, err := s.store.GetCartMerchantID(ctx, params.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, "cart.add_item", "failed to check cart merchant")
	}
	if err == nil && currentMerchant.Bytes != params.MerchantID.Bytes {
		s.metrics.RecordCartAddRejected("different_merchant")
		return nil, domain.ErrDifferentMerchant
	}

	merchant, err := s.merchant(ctx, "cart.add_item", params.MerchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.IsActive {
		return nil, domain.ErrMerchantNotFound
	}

	product, err := s.product(ctx, "cart.add_item", params.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.metrics.RecordCartAddRejected("product_not_found")
		}
		return nil, err
	}
	if !product.Sellable() {
		s.metrics.RecordCartAddRejected("product_not_found")
		return nil, domain.ErrProductNotFound
	}
	if product.MerchantID.Bytes != params.MerchantID.Bytes {
		return nil, domain.Invalid("cart.add_item", "product does not belong to this merchant")
	}

	// Advisory, point-in-time. Stock is not reserved here.
	if params.Quantity > product.StockQuantity {
		s.metrics.RecordCartAddRejected("insufficient_stock")
		return nil, domain.ErrInsufficientStock
	}

	var item repository.CartItem
	existing, err := s.store.GetCartItemByProduct(ctx, repository.GetCartItemByProductParams{
		UserID:    params.UserID,
		ProductID: params.ProductID,
	})
	switch {
	case err == nil:
		// Repeat add of the same product: increment quantity, replace notes.
		item, err = s.store.UpdateCartItem(ctx, repository.UpdateCartItemParams{
			ID:       existing.ID,
			Quantity: existing.Quantity + params.Quantity,
			Notes:    params.Notes,
		})
		if err != nil {
			return nil, domain.Internal(err, "cart.add_item", "failed to merge cart item")
		}
	case errors.Is(err, sql.ErrNoRows):
		item, err = s.store.CreateCartItem(ctx, repository.CreateCartItemParams{
			UserID:     params.UserID,
			MerchantID: params.MerchantID,
			ProductID:  params.ProductID,
			Quantity:   params.Quantity,
			Notes:      params.Notes,
		})
		if err != nil {
			return nil, domain.Internal(err, "cart.add_item", "failed to create cart item")
		}
	default:
		return nil, domain.Internal(err, "cart.add_item", "failed to check existing cart item")
	}

	s.metrics.RecordCartItemAdded(uuidString(params.MerchantID))
	s.publishEvent(ctx, uuidString(params.UserID), events.NewEnvelope(events.TypeCartItemAdded, events.CartItemAdded{
		UserID:     uuidString(params.UserID),
		MerchantID: uuidString(params.MerchantID),
		ProductID:  uuidString(params.ProductID),
		Quantity:   params.Quantity,
	}))

	line := mapItemToLine(item, product)
	return &line, nil
}

// UpdateItem replaces quantity and notes on a line the user owns.
func (s *cartService) UpdateItem(ctx context.Context, params domain.UpdateItemParams) (*domain.CartLine, error) {
	if params.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	existing, err := s.ownedItem(ctx, "cart.update_item", params.UserID, params.ItemID)
	if err != nil {
		return nil, err
	}

	product, err := s.product(ctx, "cart.update_item", existing.ProductID)
	if err != nil {
		return nil, err
	}
	if params.Quantity > product.StockQuantity {
		return nil, domain.ErrInsufficientStock
	}

	item, err := s.store.UpdateCartItem(ctx, repository.UpdateCartItemParams{
		ID:       existing.ID,
		Quantity: params.Quantity,
		Notes:    params.Notes,
	})
	if err != nil {
		return nil, domain.Internal(err, "cart.update_item", "failed to update cart item")
	}

	s.metrics.RecordCartItemUpdated()

	line := mapItemToLine(item, product)
	return &line, nil
}

// RemoveItem deletes a line the user owns.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID pgtype.UUID) error {
	item, err := s.ownedItem(ctx, "cart.remove_item", userID, itemID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCartItem(ctx, item.ID); err != nil {
		return domain.Internal(err, "cart.remove_item", "failed to delete cart item")
	}

	s.metrics.RecordCartItemRemoved()
	return nil
}

// ClearCart deletes all of the user's cart items. A no-op on an empty cart.
func (s *cartService) ClearCart(ctx context.Context, userID pgtype.UUID) error {
	if err := s.store.ClearCartItems(ctx, userID); err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}

	s.metrics.RecordCartCleared()
	s.publishEvent(ctx, uuidString(userID), events.NewEnvelope(events.TypeCartCleared, events.CartCleared{
		UserID: uuidString(userID),
	}))
	return nil
}

// ownedItem loads a cart item and verifies ownership. A row owned by another
// user reads as not found, never as forbidden, to avoid leaking existence.
func (s *cartService) ownedItem(ctx context.Context, op string, userID, itemID pgtype.UUID) (repository.CartItem, error) {
	item, err := s.store.GetCartItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.CartItem{}, domain.ErrCartItemNotFound
		}
		return repository.CartItem{}, domain.Internal(err, op, "failed to get cart item")
	}
	if item.UserID.Bytes != userID.Bytes {
		return repository.CartItem{}, domain.ErrCartItemNotFound
	}
	return item, nil
}

func (s *cartService) publishEvent(ctx context.Context, key string, env events.Envelope) {
	if err := s.publisher.Publish(ctx, key, env); err != nil {
		s.logger.Warn("failed to publish event", "type", env.Type, "error", err)
	}
}

func mapDetailToLine(row repository.CartItemDetail) domain.CartLine {
	unitPrice := row.PriceCents
	if row.DiscountedPriceCents.Valid {
		unitPrice = row.DiscountedPriceCents.Int64
	}
	return domain.CartLine{
		ID:             row.ID,
		ProductID:      row.ProductID,
		MerchantID:     row.MerchantID,
		ProductName:    row.ProductName,
		Quantity:       row.Quantity,
		Notes:          row.Notes,
		UnitPriceCents: unitPrice,
		LineTotalCents: unitPrice * int64(row.Quantity),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

// product loads a catalog product as a domain entity.
func (s *cartService) product(ctx context.Context, op string, id pgtype.UUID) (domain.Product, error) {
	row, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, domain.Internal(err, op, "failed to get product")
	}
	return mapProduct(row), nil
}

// merchant loads a merchant as a domain entity.
func (s *cartService) merchant(ctx context.Context, op string, id pgtype.UUID) (domain.Merchant, error) {
	row, err := s.store.GetMerchantByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Merchant{}, domain.ErrMerchantNotFound
		}
		return domain.Merchant{}, domain.Internal(err, op, "failed to get merchant")
	}
	return domain.Merchant{
		ID:               row.ID,
		Name:             row.Name,
		DeliveryFeeCents: row.DeliveryFeeCents,
		IsActive:         row.IsActive,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

func mapProduct(row repository.Product) domain.Product {
	return domain.Product{
		ID:                   row.ID,
		MerchantID:           row.MerchantID,
		Name:                 row.Name,
		PriceCents:           row.PriceCents,
		DiscountedPriceCents: row.DiscountedPriceCents,
		StockQuantity:        row.StockQuantity,
		IsAvailable:          row.IsAvailable,
		IsActive:             row.IsActive,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
}

func mapItemToLine(item repository.CartItem, product domain.Product) domain.CartLine {
	unitPrice := product.UnitPriceCents()
	return domain.CartLine{
		ID:             item.ID,
		ProductID:      item.ProductID,
		MerchantID:     item.MerchantID,
		ProductName:    product.Name,
		Quantity:       item.Quantity,
		Notes:          item.Notes,
		UnitPriceCents: unitPrice,
		LineTotalCents: unitPrice * int64(item.Quantity),
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}
