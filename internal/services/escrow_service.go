package services

import (
	"context"
	"fmt"

	"github.com/dngun/backend/internal/events"
	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EscrowService manages the escrow transaction ledger. Opening a transaction
// reserves the domain; completion and failure resolve the reservation.
type EscrowService struct {
	escrow    EscrowStore
	domains   DomainStore
	messages  MessageStore
	users     UserStore
	sale      *SaleService
	publisher events.Publisher
	log       *zap.Logger
}

func NewEscrowService(
	escrow EscrowStore,
	domains DomainStore,
	messages MessageStore,
	users UserStore,
	sale *SaleService,
	publisher events.Publisher,
	log *zap.Logger,
) *EscrowService {
	return &EscrowService{
		escrow:    escrow,
		domains:   domains,
		messages:  messages,
		users:     users,
		sale:      sale,
		publisher: publisher,
		log:       log,
	}
}

// Open creates an escrow transaction for a domain purchase and reserves the
// domain by moving it to pending. The amount comes from the domain record,
// never from the caller. When two buyers race, the conditional status update
// picks exactly one winner.
func (s *EscrowService) Open(ctx context.Context, domainID, buyerID uuid.UUID, paymentMethod string) (*models.EscrowTransaction, error) {
	d, err := s.domains.GetByID(ctx, domainID)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if d.SellerID == nil {
		return nil, fmt.Errorf("domain %s has no seller: %w", domainID, ErrConflict)
	}
	if *d.SellerID == buyerID {
		return nil, ErrSelfPurchase
	}
	if !models.IsValidDomainTransition(d.Status, models.DomainStatusPending) {
		return nil, ErrDomainUnavailable
	}
	if paymentMethod == "" {
		paymentMethod = "escrow"
	}

	reserved, err := s.domains.UpdateStatus(ctx, domainID, models.DomainStatusAvailable, models.DomainStatusPending)
	if err != nil {
		return nil, err
	}
	if !reserved {
		// Another buyer won the reservation between the read and the update.
		return nil, ErrDomainUnavailable
	}

	tx := &models.EscrowTransaction{
		DomainID:      domainID,
		BuyerID:       buyerID,
		SellerID:      *d.SellerID,
		Amount:        d.Price,
		Fee:           models.EscrowFee(d.Price),
		PaymentMethod: paymentMethod,
		Status:        models.EscrowStatusPending,
	}
	if err := s.escrow.Create(ctx, tx); err != nil {
		// Roll the reservation back so the domain is not stuck in pending.
		if _, revertErr := s.domains.UpdateStatus(ctx, domainID, models.DomainStatusPending, models.DomainStatusAvailable); revertErr != nil {
			s.log.Error("failed to revert domain reservation", zap.String("domain_id", domainID.String()), zap.Error(revertErr))
		}
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamSale, events.Event{
		Type: events.EventDomainStatusChanged,
		Payload: map[string]any{
			"domain_id": domainID.String(),
			"status":    models.DomainStatusPending,
		},
	})

	return tx, nil
}

// Get returns a transaction visible to its participants only.
func (s *EscrowService) Get(ctx context.Context, id, userID uuid.UUID) (*models.EscrowTransaction, error) {
	tx, err := s.escrow.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if tx.BuyerID != userID && tx.SellerID != userID {
		return nil, ErrForbidden
	}
	return tx, nil
}

// ListForUser returns every transaction the user participates in, as buyer
// or seller, newest first.
func (s *EscrowService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.EscrowTransaction, error) {
	return s.escrow.ListForUser(ctx, userID)
}

// Complete confirms the transfer and finalizes a pending transaction. Only
// the seller may complete, and the action is gated by the two-factor check.
// The domain moves to sold and ownership records transfer to the buyer.
func (s *EscrowService) Complete(ctx context.Context, id, actingUserID uuid.UUID, code, backupCode string) (*models.EscrowTransaction, error) {
	tx, err := s.escrow.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if tx.SellerID != actingUserID {
		return nil, ErrForbidden
	}
	if tx.Status != models.EscrowStatusPending {
		return nil, fmt.Errorf("complete transaction %s from %s: %w", id, tx.Status, ErrConflict)
	}

	if err := s.sale.GateSensitiveTransition(ctx, actingUserID, code, backupCode); err != nil {
		return nil, err
	}

	moved, err := s.escrow.UpdateStatus(ctx, id, models.EscrowStatusPending, models.EscrowStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("complete transaction %s: %w", id, ErrConflict)
	}
	tx.Status = models.EscrowStatusCompleted

	if _, err := s.domains.UpdateStatus(ctx, tx.DomainID, models.DomainStatusPending, models.DomainStatusSold); err != nil {
		s.log.Error("failed to mark domain sold after completion", zap.String("domain_id", tx.DomainID.String()), zap.Error(err))
	}
	if err := s.users.TransferDomain(ctx, tx.DomainID, tx.SellerID, tx.BuyerID); err != nil {
		s.log.Warn("failed to transfer domain ownership records", zap.Error(err))
	}

	msg := &models.NegotiationMessage{
		TransactionID: tx.ID,
		SenderRole:    models.SenderRoleSystem,
		Body:          "Transfer confirmed by the seller. The transaction is complete.",
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		s.log.Warn("failed to append completion message", zap.Error(err))
	}

	_ = s.publisher.Publish(ctx, events.StreamSale, events.Event{
		Type: events.EventEscrowStatusChanged,
		Payload: map[string]any{
			"transaction_id": tx.ID.String(),
			"status":         tx.Status,
		},
	})

	return tx, nil
}

// UpdateStatus moves a transaction along its lifecycle on behalf of a
// participant. Failing or refunding a transaction releases the domain back
// to available. An optional note is recorded on the negotiation channel.
func (s *EscrowService) UpdateStatus(ctx context.Context, id, actingUserID uuid.UUID, target, note, code, backupCode string) (*models.EscrowTransaction, error) {
	tx, err := s.escrow.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if tx.BuyerID != actingUserID && tx.SellerID != actingUserID {
		return nil, ErrForbidden
	}
	if !models.IsValidEscrowTransition(tx.Status, target) {
		return nil, fmt.Errorf("transition %s -> %s: %w", tx.Status, target, ErrConflict)
	}
	if target == models.EscrowStatusCompleted {
		// Completion carries transfer side effects and stays seller-only.
		return s.Complete(ctx, id, actingUserID, code, backupCode)
	}

	if err := s.sale.GateSensitiveTransition(ctx, actingUserID, code, backupCode); err != nil {
		return nil, err
	}

	moved, err := s.escrow.UpdateStatus(ctx, id, tx.Status, target)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("transaction %s changed concurrently: %w", id, ErrConflict)
	}
	prior := tx.Status
	tx.Status = target

	if target == models.EscrowStatusFailed || target == models.EscrowStatusRefunded {
		if prior != models.EscrowStatusFailed {
			if _, err := s.domains.UpdateStatus(ctx, tx.DomainID, models.DomainStatusPending, models.DomainStatusAvailable); err != nil {
				s.log.Error("failed to release domain reservation", zap.String("domain_id", tx.DomainID.String()), zap.Error(err))
			}
		}
	}

	if note != "" {
		msg := &models.NegotiationMessage{
			TransactionID: tx.ID,
			SenderRole:    models.SenderRoleSystem,
			SenderID:      &actingUserID,
			Body:          note,
		}
		if err := s.messages.Append(ctx, msg); err != nil {
			s.log.Warn("failed to append status note", zap.Error(err))
		}
	}

	_ = s.publisher.Publish(ctx, events.StreamSale, events.Event{
		Type: events.EventEscrowStatusChanged,
		Payload: map[string]any{
			"transaction_id": tx.ID.String(),
			"status":         tx.Status,
		},
	})

	return tx, nil
}
