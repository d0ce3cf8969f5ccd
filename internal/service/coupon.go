package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/velioglu/pazar/internal/domain"
	"github.com/velioglu/pazar/internal/events"
	"github.com/velioglu/pazar/internal/repository"
	"github.com/velioglu/pazar/internal/telemetry"
)

// Decline reasons returned inside a CouponVerdict. These are user-facing.
const (
	reasonInvalidCode = "Invalid coupon code"
	reasonExpired     = "This coupon is expired or not yet valid"
	reasonLimit       = "This coupon has reached its usage limit"
	reasonAlreadyUsed = "You have already used this coupon"
)

// couponService implements domain.CouponService.
type couponService struct {
	store     repository.Store
	logger    *slog.Logger
	metrics   *telemetry.BusinessMetrics
	publisher events.Publisher
	validate  *validator.Validate
	now       func() time.Time
}

var _ domain.CouponService = (*couponService)(nil)

// NewCouponService creates the coupon engine.
func NewCouponService(store repository.Store, logger *slog.Logger, metrics *telemetry.BusinessMetrics, publisher events.Publisher) domain.CouponService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &couponService{
		store:     store,
		logger:    logger,
		metrics:   metrics,
		publisher: publisher,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// Validate runs the validation pipeline in fixed order. A failing rule is a
// declined verdict on the success channel; the error channel is reserved for
// store faults. Validation is read-only and may run repeatedly while the user
// edits their cart.
func (s *couponService) Validate(ctx context.Context, userID pgtype.UUID, code string, orderAmountCents int64) (*domain.CouponVerdict, error) {
	coupon, err := s.store.GetCouponByCode(ctx, normalizeCode(code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.declined(reasonInvalidCode), nil
		}
		return nil, domain.Internal(err, "coupon.validate", "failed to get coupon")
	}

	now := s.now()
	if now.Before(coupon.StartsAt.Time) || now.After(coupon.EndsAt.Time) {
		return s.declined(reasonExpired), nil
	}

	if coupon.UsageLimit.Valid && coupon.UsageCount >= coupon.UsageLimit.Int32 {
		return s.declined(reasonLimit), nil
	}

	used, err := s.store.CouponUsageExists(ctx, repository.CouponUsageExistsParams{
		CouponID: coupon.ID,
		UserID:   userID,
	})
	if err != nil {
		return nil, domain.Internal(err, "coupon.validate", "failed to check coupon usage")
	}
	if used {
		return s.declined(reasonAlreadyUsed), nil
	}

	if orderAmountCents < coupon.MinimumOrderCents {
		return s.declined(fmt.Sprintf("Minimum order amount for this coupon is %.2f", float64(coupon.MinimumOrderCents)/100)), nil
	}

	var maxDiscount *int64
	if coupon.MaxDiscountCents.Valid {
		maxDiscount = &coupon.MaxDiscountCents.Int64
	}
	discount := ComputeDiscount(domain.DiscountType(coupon.DiscountType), coupon.DiscountValue, orderAmountCents, maxDiscount)

	s.metrics.RecordCouponValidation(true)

	mapped := mapCoupon(coupon)
	return &domain.CouponVerdict{
		Valid:         true,
		DiscountCents: discount,
		Coupon:        &mapped,
	}, nil
}

// RecordUsage writes the ledger row and bumps the denormalized counter in one
// transaction, so concurrent redemptions near the limit cannot lose updates
// and the counter can never drift from the ledger.
func (s *couponService) RecordUsage(ctx context.Context, params domain.RecordUsageParams) (*domain.CouponUsage, error) {
	var usage repository.CouponUsage

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		if _, err := q.GetCouponByID(ctx, params.CouponID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrCouponNotFound
			}
			return domain.Internal(err, "coupon.record_usage", "failed to get coupon")
		}

		var err error
		usage, err = q.CreateCouponUsage(ctx, repository.CreateCouponUsageParams{
			CouponID:      params.CouponID,
			UserID:        params.UserID,
			OrderID:       params.OrderID,
			DiscountCents: params.DiscountCents,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return domain.Conflict("coupon.record_usage", "coupon already used by this user")
			}
			return domain.Internal(err, "coupon.record_usage", "failed to create coupon usage")
		}

		if _, err := q.IncrementCouponUsage(ctx, params.CouponID); err != nil {
			return domain.Internal(err, "coupon.record_usage", "failed to increment usage count")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCouponRedemption(params.DiscountCents)
	s.publishEvent(ctx, uuidString(params.UserID), events.NewEnvelope(events.TypeCouponRedeemed, events.CouponRedeemed{
		CouponID:      uuidString(params.CouponID),
		UserID:        uuidString(params.UserID),
		OrderID:       uuidString(params.OrderID),
		DiscountCents: params.DiscountCents,
	}))

	mapped := mapUsage(usage)
	return &mapped, nil
}

// Create stores a new coupon with a canonical upper-case code.
func (s *couponService) Create(ctx context.Context, params domain.CreateCouponParams) (*domain.Coupon, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, invalidParams("coupon.create", err)
	}

	discountType := domain.DiscountType(params.DiscountType)
	if discountType == domain.DiscountPercentage && params.DiscountValue > 100 {
		return nil, domain.Invalid("coupon.create", "percentage discount cannot exceed 100")
	}
	if discountType == domain.DiscountFixed && params.MaxDiscountCents != nil {
		return nil, domain.Invalid("coupon.create", "max discount applies to percentage coupons only")
	}

	code := normalizeCode(params.Code)

	exists, err := s.store.CouponCodeExists(ctx, code)
	if err != nil {
		return nil, domain.Internal(err, "coupon.create", "failed to check coupon code")
	}
	if exists {
		return nil, domain.ErrCouponCodeConflict
	}

	arg := repository.CreateCouponParams{
		Code:              code,
		DiscountType:      params.DiscountType,
		DiscountValue:     params.DiscountValue,
		MinimumOrderCents: params.MinimumOrderCents,
	}
	if params.MaxDiscountCents != nil {
		arg.MaxDiscountCents = pgtype.Int8{Int64: *params.MaxDiscountCents, Valid: true}
	}
	if params.UsageLimit != nil {
		arg.UsageLimit = pgtype.Int4{Int32: *params.UsageLimit, Valid: true}
	}
	if err := arg.StartsAt.Scan(params.StartsAt); err != nil {
		return nil, domain.Invalid("coupon.create", "invalid start date")
	}
	if err := arg.EndsAt.Scan(params.EndsAt); err != nil {
		return nil, domain.Invalid("coupon.create", "invalid end date")
	}

	coupon, err := s.store.CreateCoupon(ctx, arg)
	if err != nil {
		// The unique index is the backstop for the race between the existence
		// check and the insert.
		if isUniqueViolation(err) {
			return nil, domain.ErrCouponCodeConflict
		}
		return nil, domain.Internal(err, "coupon.create", "failed to create coupon")
	}

	mapped := mapCoupon(coupon)
	return &mapped, nil
}

// GetByCode returns an active coupon by its canonical code.
func (s *couponService) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon, err := s.store.GetCouponByCode(ctx, normalizeCode(code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, domain.Internal(err, "coupon.get", "failed to get coupon")
	}

	mapped := mapCoupon(coupon)
	return &mapped, nil
}

func (s *couponService) declined(reason string) *domain.CouponVerdict {
	s.metrics.RecordCouponValidation(false)
	return &domain.CouponVerdict{Valid: false, Reason: reason}
}

func (s *couponService) publishEvent(ctx context.Context, key string, env events.Envelope) {
	if err := s.publisher.Publish(ctx, key, env); err != nil {
		s.logger.Warn("failed to publish event", "type", env.Type, "error", err)
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func mapCoupon(c repository.Coupon) domain.Coupon {
	return domain.Coupon{
		ID:                c.ID,
		Code:              c.Code,
		DiscountType:      domain.DiscountType(c.DiscountType),
		DiscountValue:     c.DiscountValue,
		MinimumOrderCents: c.MinimumOrderCents,
		MaxDiscountCents:  c.MaxDiscountCents,
		StartsAt:          c.StartsAt,
		EndsAt:            c.EndsAt,
		UsageLimit:        c.UsageLimit,
		UsageCount:        c.UsageCount,
		IsActive:          c.IsActive,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func mapUsage(u repository.CouponUsage) domain.CouponUsage {
	return domain.CouponUsage{
		ID:            u.ID,
		CouponID:      u.CouponID,
		UserID:        u.UserID,
		OrderID:       u.OrderID,
		DiscountCents: u.DiscountCents,
		CreatedAt:     u.CreatedAt,
	}
}
