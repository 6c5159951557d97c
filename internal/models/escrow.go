package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Escrow transaction statuses
const (
	EscrowStatusPending   = "pending"
	EscrowStatusCompleted = "completed"
	EscrowStatusFailed    = "failed"
	EscrowStatusRefunded  = "refunded"
)

// Valid escrow transitions: from -> []to. Completed and refunded are terminal.
var ValidEscrowTransitions = map[string][]string{
	EscrowStatusPending:   {EscrowStatusCompleted, EscrowStatusFailed, EscrowStatusRefunded},
	EscrowStatusCompleted: {},
	EscrowStatusFailed:    {EscrowStatusRefunded},
	EscrowStatusRefunded:  {},
}

func IsValidEscrowTransition(from, to string) bool {
	allowed, ok := ValidEscrowTransitions[from]
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

// escrowFeeRate is the marketplace commission applied to every transaction.
const escrowFeeRate = 0.10

// EscrowFee computes the marketplace fee for a transaction amount, rounded
// to cents. The fee is always derived server-side, never client-supplied.
func EscrowFee(amount float64) float64 {
	return math.Round(amount*escrowFeeRate*100) / 100
}

// EscrowTransaction is the marketplace-internal buyer/seller agreement record.
// It is independent of the payment gateway: a transaction can exist and
// complete without an associated payment intent (off-gateway payment methods).
type EscrowTransaction struct {
	ID            uuid.UUID `json:"id"`
	DomainID      uuid.UUID `json:"domain_id"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	SellerID      uuid.UUID `json:"seller_id"`
	Amount        float64   `json:"amount"`
	Fee           float64   `json:"transaction_fee"`
	PaymentMethod string    `json:"payment_method"` // credit_card, paypal, crypto, stripe_checkout
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
