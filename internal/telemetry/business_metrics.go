package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability
// of the consistency core.
type BusinessMetrics struct {
	// Cart
	CartItemsAdded   *prometheus.CounterVec
	CartAddRejected  *prometheus.CounterVec
	CartItemsUpdated prometheus.Counter
	CartItemsRemoved prometheus.Counter
	CartsCleared     prometheus.Counter
	CartValue        prometheus.Histogram

	// Coupons
	CouponValidations *prometheus.CounterVec
	CouponRedemptions prometheus.Counter
	CouponDiscount    prometheus.Histogram

	// Addresses
	AddressesCreated   prometheus.Counter
	AddressesDeleted   prometheus.Counter
	DefaultReassigned  prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "pazar"
	}

	subsystem := "business"

	return &BusinessMetrics{
		CartItemsAdded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total cart items added or merged",
			},
			[]string{"merchant_id"},
		),
		CartAddRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_add_rejected_total",
				Help:      "Add-to-cart requests blocked by a business rule",
			},
			[]string{"reason"}, // reason: different_merchant, insufficient_stock, product_not_found
		),
		CartItemsUpdated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_updated_total",
				Help:      "Total cart item quantity/notes updates",
			},
		),
		CartItemsRemoved: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_removed_total",
				Help:      "Total cart items removed individually",
			},
		),
		CartsCleared: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "carts_cleared_total",
				Help:      "Total bulk cart clears",
			},
		),
		CartValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_value_cents",
				Help:      "Cart total at read time, in cents",
				Buckets:   prometheus.ExponentialBuckets(500, 2.5, 10),
			},
		),
		CouponValidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupon_validations_total",
				Help:      "Coupon validation attempts by outcome",
			},
			[]string{"outcome"}, // outcome: valid, declined
		),
		CouponRedemptions: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupon_redemptions_total",
				Help:      "Coupon usages recorded at order commit",
			},
		),
		CouponDiscount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupon_discount_cents",
				Help:      "Discount granted per redemption, in cents",
				Buckets:   prometheus.ExponentialBuckets(100, 2.5, 10),
			},
		),
		AddressesCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "addresses_created_total",
				Help:      "Total addresses added",
			},
		),
		AddressesDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "addresses_deleted_total",
				Help:      "Total addresses soft-deleted",
			},
		),
		DefaultReassigned: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "address_default_reassigned_total",
				Help:      "Default address changes, explicit or after delete",
			},
		),
	}
}

// Recording helpers are nil-safe so services can run without metrics wired,
// e.g. in unit tests.

func (m *BusinessMetrics) RecordCartItemAdded(merchantID string) {
	if m == nil {
		return
	}
	m.CartItemsAdded.WithLabelValues(merchantID).Inc()
}

func (m *BusinessMetrics) RecordCartAddRejected(reason string) {
	if m == nil {
		return
	}
	m.CartAddRejected.WithLabelValues(reason).Inc()
}

func (m *BusinessMetrics) RecordCartItemUpdated() {
	if m == nil {
		return
	}
	m.CartItemsUpdated.Inc()
}

func (m *BusinessMetrics) RecordCartItemRemoved() {
	if m == nil {
		return
	}
	m.CartItemsRemoved.Inc()
}

func (m *BusinessMetrics) RecordCartCleared() {
	if m == nil {
		return
	}
	m.CartsCleared.Inc()
}

func (m *BusinessMetrics) RecordCartValue(totalCents int64) {
	if m == nil {
		return
	}
	m.CartValue.Observe(float64(totalCents))
}

func (m *BusinessMetrics) RecordCouponValidation(valid bool) {
	if m == nil {
		return
	}
	outcome := "declined"
	if valid {
		outcome = "valid"
	}
	m.CouponValidations.WithLabelValues(outcome).Inc()
}

func (m *BusinessMetrics) RecordCouponRedemption(discountCents int64) {
	if m == nil {
		return
	}
	m.CouponRedemptions.Inc()
	m.CouponDiscount.Observe(float64(discountCents))
}

func (m *BusinessMetrics) RecordAddressCreated() {
	if m == nil {
		return
	}
	m.AddressesCreated.Inc()
}

func (m *BusinessMetrics) RecordAddressDeleted() {
	if m == nil {
		return
	}
	m.AddressesDeleted.Inc()
}

func (m *BusinessMetrics) RecordDefaultReassigned() {
	if m == nil {
		return
	}
	m.DefaultReassigned.Inc()
}
