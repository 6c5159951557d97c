package models

import (
	"time"

	"github.com/google/uuid"
)

// Domain statuses
const (
	DomainStatusAvailable = "available"
	DomainStatusPending   = "pending"
	DomainStatusSold      = "sold"
)

// Valid domain status transitions: from -> []to.
// A sold domain is terminal; the marketplace models no reversal.
var ValidDomainTransitions = map[string][]string{
	DomainStatusAvailable: {DomainStatusPending, DomainStatusSold},
	DomainStatusPending:   {DomainStatusSold, DomainStatusAvailable},
	DomainStatusSold:      {},
}

func IsValidDomainTransition(from, to string) bool {
	allowed, ok := ValidDomainTransitions[from]
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

// AlternateExtensions are probed by search when fewer than five results match
// the query, to suggest the same base name under other TLDs.
var AlternateExtensions = []string{".com", ".net", ".org", ".io", ".co"}

type Domain struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Extension   string     `json:"extension"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	SellerID    *uuid.UUID `json:"seller_id,omitempty"`
	Description *string    `json:"description,omitempty"`
	Featured    bool       `json:"featured"`
	Views       int        `json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FullName returns the displayable name, e.g. "alpha.com".
func (d *Domain) FullName() string {
	return d.Name + d.Extension
}
