package models

import (
	"time"

	"github.com/google/uuid"
)

// Negotiation message sender roles
const (
	SenderRoleUser   = "user"
	SenderRoleBot    = "bot"
	SenderRoleSystem = "system"
)

func IsValidSenderRole(role string) bool {
	return role == SenderRoleUser || role == SenderRoleBot || role == SenderRoleSystem
}

// NegotiationMessage is one entry in the append-only per-transaction log.
// Messages are never edited or deleted; the serial id is the ordering key.
type NegotiationMessage struct {
	ID            int64      `json:"id"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	SenderRole    string     `json:"sender_role"`
	SenderID      *uuid.UUID `json:"sender_id,omitempty"` // nil for bot/system entries
	Body          string     `json:"body"`
	CreatedAt     time.Time  `json:"created_at"`
}
