package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment intent internal statuses
const (
	PaymentStatusPending          = "pending"
	PaymentStatusPaid             = "paid"
	PaymentStatusFailed           = "failed"
	PaymentStatusCanceled         = "canceled"
	PaymentStatusExpired          = "expired"
	PaymentStatusReleasedToSeller = "released_to_seller"
	PaymentStatusRefundPending    = "refund_pending"
)

// Valid payment intent transitions: from -> []to. Exactly one paid transition
// is possible per intent; everything reachable from paid is an escrow release
// outcome.
var ValidPaymentTransitions = map[string][]string{
	PaymentStatusPending:          {PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCanceled, PaymentStatusExpired},
	PaymentStatusPaid:             {PaymentStatusReleasedToSeller, PaymentStatusRefundPending},
	PaymentStatusFailed:           {},
	PaymentStatusCanceled:         {},
	PaymentStatusExpired:          {},
	PaymentStatusReleasedToSeller: {},
	PaymentStatusRefundPending:    {},
}

func IsValidPaymentTransition(from, to string) bool {
	allowed, ok := ValidPaymentTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// PaymentIntent is one attempt to collect funds for one domain through the
// external checkout gateway. GatewayStatus mirrors whatever the gateway last
// reported; InternalStatus is the marketplace's own view of the intent.
type PaymentIntent struct {
	ID             uuid.UUID         `json:"id"`
	SessionRef     string            `json:"session_ref"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency"`
	DomainID       uuid.UUID         `json:"domain_id"`
	DomainName     string            `json:"domain_name"`
	BuyerID        *uuid.UUID        `json:"buyer_id,omitempty"` // nil for anonymous checkout
	SellerID       *uuid.UUID        `json:"seller_id,omitempty"`
	InternalStatus string            `json:"internal_status"`
	GatewayStatus  string            `json:"gateway_status"`
	Simulated      bool              `json:"simulated"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}
