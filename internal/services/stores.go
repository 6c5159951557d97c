package services

import (
	"context"

	"github.com/dngun/backend/internal/models"
	"github.com/dngun/backend/internal/repositories"
	"github.com/google/uuid"
)

// Store contracts consumed by the services. The pgx repositories implement
// them; tests substitute in-memory fakes.

type DomainStore interface {
	Create(ctx context.Context, d *models.Domain) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Domain, error)
	GetByNameExtension(ctx context.Context, name, extension string) (*models.Domain, error)
	List(ctx context.Context, f repositories.DomainFilter) ([]models.Domain, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.PaymentIntent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error)
	GetBySessionRef(ctx context.Context, sessionRef string) (*models.PaymentIntent, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.PaymentIntent, error)
	MirrorGatewayStatus(ctx context.Context, sessionRef, gatewayStatus string) error
	MarkPaid(ctx context.Context, sessionRef, gatewayStatus string) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
	UpdateStatusBySessionRef(ctx context.Context, sessionRef, from, to, gatewayStatus string) (bool, error)
}

type EscrowStore interface {
	Create(ctx context.Context, e *models.EscrowTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EscrowTransaction, error)
	GetByDomainAndBuyer(ctx context.Context, domainID, buyerID uuid.UUID) (*models.EscrowTransaction, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.EscrowTransaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
}

type MessageStore interface {
	Append(ctx context.Context, m *models.NegotiationMessage) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.NegotiationMessage, error)
}

type TwoFactorStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.TwoFactorEnrollment, error)
	Upsert(ctx context.Context, e *models.TwoFactorEnrollment) error
	Enable(ctx context.Context, userID uuid.UUID) (bool, error)
	Touch(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, userID uuid.UUID) error
	ListBackupCodes(ctx context.Context, userID uuid.UUID) ([]models.BackupCode, error)
	ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, hashes []string) error
	ConsumeBackupCode(ctx context.Context, id uuid.UUID) (bool, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AddDomainForSale(ctx context.Context, userID, domainID uuid.UUID) error
	TransferDomain(ctx context.Context, domainID, sellerID, buyerID uuid.UUID) error
}
