package services

import (
	"context"
	"fmt"

	"github.com/dngun/backend/internal/events"
	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NegotiationService is the append-only per-transaction message log used by
// buyer, seller, and the automated facilitator to coordinate off-band steps.
type NegotiationService struct {
	messages  MessageStore
	escrow    EscrowStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewNegotiationService(messages MessageStore, escrow EscrowStore, publisher events.Publisher, log *zap.Logger) *NegotiationService {
	return &NegotiationService{messages: messages, escrow: escrow, publisher: publisher, log: log}
}

// Append records one message. The only validation is transaction existence
// and a known sender role; the log is an audit trail, not a workflow.
func (s *NegotiationService) Append(ctx context.Context, transactionID uuid.UUID, senderRole string, senderID *uuid.UUID, body string) (*models.NegotiationMessage, error) {
	if !models.IsValidSenderRole(senderRole) {
		return nil, fmt.Errorf("sender role %q: %w", senderRole, ErrConflict)
	}
	if _, err := s.escrow.GetByID(ctx, transactionID); err != nil {
		return nil, mapNoRows(err)
	}

	m := &models.NegotiationMessage{
		TransactionID: transactionID,
		SenderRole:    senderRole,
		SenderID:      senderID,
		Body:          body,
	}
	if err := s.messages.Append(ctx, m); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamSale, events.Event{
		Type: events.EventNegotiationMessage,
		Payload: map[string]any{
			"transaction_id": transactionID.String(),
			"sender_role":    senderRole,
			"message_id":     m.ID,
		},
	})

	return m, nil
}

// List returns the log oldest first.
func (s *NegotiationService) List(ctx context.Context, transactionID uuid.UUID) ([]models.NegotiationMessage, error) {
	if _, err := s.escrow.GetByID(ctx, transactionID); err != nil {
		return nil, mapNoRows(err)
	}
	return s.messages.ListByTransaction(ctx, transactionID)
}
