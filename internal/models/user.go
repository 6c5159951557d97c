package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	Username       string      `json:"username"`
	FullName       *string     `json:"full_name,omitempty"`
	PasswordHash   string      `json:"-"`
	IsActive       bool        `json:"is_active"`
	IsVerified     bool        `json:"is_verified"`
	DomainsOwned   []uuid.UUID `json:"domains_owned"`
	DomainsForSale []uuid.UUID `json:"domains_for_sale"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// UserPublic is the profile shape exposed to other marketplace members.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  *string   `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}
