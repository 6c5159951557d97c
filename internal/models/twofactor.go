package models

import (
	"time"

	"github.com/google/uuid"
)

// TwoFactorEnrollment is a per-user optional TOTP enrollment. The enrollment
// exists in a pending state until the first code is confirmed; backup codes
// live in a separate table as bcrypt hashes, one row per remaining code.
type TwoFactorEnrollment struct {
	UserID     uuid.UUID  `json:"user_id"`
	Secret     string     `json:"-"` // base32 shared secret, never serialized
	IsEnabled  bool       `json:"is_enabled"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// BackupCode is a single-use recovery code. Only the bcrypt hash is stored;
// the row is deleted the moment the code is consumed.
type BackupCode struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	CodeHash string    `json:"-"`
}
