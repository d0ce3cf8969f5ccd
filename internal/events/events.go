package events

import "time"

// Event types emitted by the consistency core.
const (
	TypeCartItemAdded         = "cart.item_added"
	TypeCartCleared           = "cart.cleared"
	TypeCouponRedeemed        = "coupon.redeemed"
	TypeAddressDefaultChanged = "address.default_changed"
)

// Envelope is the wire shape of every published event.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// NewEnvelope stamps an event payload with its type and the current time.
func NewEnvelope(eventType string, data any) Envelope {
	return Envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type CartItemAdded struct {
	UserID     string `json:"user_id"`
	MerchantID string `json:"merchant_id"`
	ProductID  string `json:"product_id"`
	Quantity   int32  `json:"quantity"`
}

type CartCleared struct {
	UserID string `json:"user_id"`
}

type CouponRedeemed struct {
	CouponID      string `json:"coupon_id"`
	UserID        string `json:"user_id"`
	OrderID       string `json:"order_id"`
	DiscountCents int64  `json:"discount_cents"`
}

type AddressDefaultChanged struct {
	UserID    string `json:"user_id"`
	AddressID string `json:"address_id"`
}
