package gateway

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a gateway constructed without credentials.
// The payment service treats it as a signal to fall back to a simulated
// checkout session rather than failing the purchase flow.
var ErrNotConfigured = errors.New("payment gateway not configured")

// Session statuses as reported by the external gateway.
const (
	SessionPaid     = "paid"
	SessionUnpaid   = "unpaid"
	SessionExpired  = "expired"
	SessionCanceled = "canceled"
)

type CreateSessionParams struct {
	Amount      float64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type Session struct {
	SessionRef  string
	CheckoutURL string
}

type SessionStatus struct {
	// PaymentStatus is the gateway's payment outcome: paid / unpaid.
	PaymentStatus string
	// Status is the session lifecycle: open / complete / expired / canceled.
	Status      string
	AmountTotal float64
	Currency    string
}

// CheckoutGateway is the narrow contract the marketplace consumes from the
// external payment provider. It is treated as untrusted and unreliable.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	GetStatus(ctx context.Context, sessionRef string) (*SessionStatus, error)
}
