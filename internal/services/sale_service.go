package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dngun/backend/internal/events"
	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SaleService is the sale orchestrator: the only component permitted to
// cross-update domain status, escrow state, and the negotiation log when a
// payment settles. Callers reach Settle exclusively through the at-most-once
// guard on the payment intent, so its side effects fire once per intent.
type SaleService struct {
	domains   DomainStore
	escrow    EscrowStore
	messages  MessageStore
	users     UserStore
	twoFactor *TwoFactorService
	publisher events.Publisher
	log       *zap.Logger
}

func NewSaleService(
	domains DomainStore,
	escrow EscrowStore,
	messages MessageStore,
	users UserStore,
	twoFactor *TwoFactorService,
	publisher events.Publisher,
	log *zap.Logger,
) *SaleService {
	return &SaleService{
		domains:   domains,
		escrow:    escrow,
		messages:  messages,
		users:     users,
		twoFactor: twoFactor,
		publisher: publisher,
		log:       log,
	}
}

// Settle applies a successful payment's effects: domain to sold, escrow
// transaction completed (created directly in completed when none exists),
// and a system message on the negotiation channel. Duplicate invocation is
// tolerated as a no-op for an already-sold domain.
func (s *SaleService) Settle(ctx context.Context, intent *models.PaymentIntent) error {
	moved, err := s.domains.UpdateStatus(ctx, intent.DomainID, models.DomainStatusAvailable, models.DomainStatusSold)
	if err != nil {
		return err
	}
	if !moved {
		// The domain may have been reserved by an escrow open first.
		moved, err = s.domains.UpdateStatus(ctx, intent.DomainID, models.DomainStatusPending, models.DomainStatusSold)
		if err != nil {
			return err
		}
	}
	if !moved {
		d, err := s.domains.GetByID(ctx, intent.DomainID)
		if err != nil {
			return mapNoRows(err)
		}
		if d.Status != models.DomainStatusSold {
			return fmt.Errorf("settle domain %s from %s: %w", intent.DomainID, d.Status, ErrConflict)
		}
		// Already sold: a replayed settlement stops here.
		s.log.Info("settlement replay on sold domain ignored",
			zap.String("domain_id", intent.DomainID.String()),
			zap.String("intent_id", intent.ID.String()))
		return nil
	}

	tx, err := s.settleEscrow(ctx, intent)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"domain_id": intent.DomainID.String(),
		"intent_id": intent.ID.String(),
		"amount":    intent.Amount,
	}

	if tx != nil {
		payload["transaction_id"] = tx.ID.String()

		msg := &models.NegotiationMessage{
			TransactionID: tx.ID,
			SenderRole:    models.SenderRoleSystem,
			Body:          fmt.Sprintf("Payment received for %s. The sale is settled and the domain is marked sold.", intent.DomainName),
		}
		if err := s.messages.Append(ctx, msg); err != nil {
			s.log.Warn("failed to append settlement message", zap.Error(err))
		}

		if err := s.users.TransferDomain(ctx, intent.DomainID, tx.SellerID, tx.BuyerID); err != nil {
			s.log.Warn("failed to transfer domain ownership records", zap.Error(err))
		}
	}

	_ = s.publisher.Publish(ctx, events.StreamSale, events.Event{
		Type:    events.EventPaymentSettled,
		Payload: payload,
	})

	return nil
}

// settleEscrow advances an existing pending transaction for this domain+buyer
// pair, or records the gateway sale as a new transaction directly in
// completed status. Anonymous purchases carry no buyer, so there is no
// escrow record to write; the domain transition alone settles them.
func (s *SaleService) settleEscrow(ctx context.Context, intent *models.PaymentIntent) (*models.EscrowTransaction, error) {
	if intent.BuyerID == nil || intent.SellerID == nil {
		return nil, nil
	}

	existing, err := s.escrow.GetByDomainAndBuyer(ctx, intent.DomainID, *intent.BuyerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.EscrowStatusCompleted:
			return existing, nil
		case models.EscrowStatusPending:
			if _, err := s.escrow.UpdateStatus(ctx, existing.ID, models.EscrowStatusPending, models.EscrowStatusCompleted); err != nil {
				return nil, err
			}
			existing.Status = models.EscrowStatusCompleted
			return existing, nil
		}
	}

	tx := &models.EscrowTransaction{
		DomainID:      intent.DomainID,
		BuyerID:       *intent.BuyerID,
		SellerID:      *intent.SellerID,
		Amount:        intent.Amount,
		Fee:           models.EscrowFee(intent.Amount),
		PaymentMethod: "stripe_checkout",
		Status:        models.EscrowStatusCompleted,
	}
	if err := s.escrow.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// GateSensitiveTransition enforces the two-factor gate on escrow completion,
// status updates, and escrow release. Users without an enabled enrollment
// pass through.
func (s *SaleService) GateSensitiveTransition(ctx context.Context, userID uuid.UUID, code, backupCode string) error {
	enabled, err := s.twoFactor.IsEnabled(ctx, userID)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	if code == "" && backupCode == "" {
		return ErrTwoFactorRequired
	}

	if code != "" {
		ok, err := s.twoFactor.VerifyCode(ctx, userID, code)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		return ErrInvalidCode
	}

	ok, err := s.twoFactor.VerifyBackupCode(ctx, userID, backupCode)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}
	return nil
}
