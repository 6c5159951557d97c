package services

import "errors"

// Typed failures surfaced by the sale lifecycle. Handlers map these to HTTP
// status codes with errors.Is; none of them is fatal to the process.
var (
	// ErrNotFound: a referenced domain, intent, transaction, or enrollment
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a status precondition was not met, e.g. completing a
	// non-pending transaction or settling an already-sold domain.
	ErrConflict = errors.New("status conflict")

	// ErrDomainUnavailable: the domain is not in available status.
	ErrDomainUnavailable = errors.New("domain is not available for purchase")

	// ErrSelfPurchase: a buyer attempted to purchase their own listing.
	ErrSelfPurchase = errors.New("you cannot buy your own domain")

	// ErrForbidden: the acting user is not authorized for the operation,
	// e.g. a non-seller completing a transaction.
	ErrForbidden = errors.New("not authorized")

	// ErrTwoFactorRequired: the actor has 2FA enabled and supplied no code.
	ErrTwoFactorRequired = errors.New("two-factor code required")

	// ErrInvalidCode: a TOTP or backup code failed verification.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrAlreadyEnabled: 2FA enrollment already confirmed for this account.
	ErrAlreadyEnabled = errors.New("two-factor authentication is already enabled")

	// ErrInvalidCredentials: email/password authentication failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrGatewayUnavailable: the external payment service is unreachable or
	// misconfigured and the operation cannot degrade gracefully.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
