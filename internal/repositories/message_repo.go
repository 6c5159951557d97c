package repositories

import (
	"context"

	"github.com/dngun/backend/internal/db"
	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
)

type MessageRepo struct {
	pool db.Querier
}

func NewMessageRepo(pool db.Querier) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Append(ctx context.Context, m *models.NegotiationMessage) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO negotiation_messages (transaction_id, sender_role, sender_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, m.TransactionID, m.SenderRole, m.SenderID, m.Body).Scan(&m.ID, &m.CreatedAt)
}

// ListByTransaction returns the log oldest first; the serial id is the
// ordering key.
func (r *MessageRepo) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.NegotiationMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, transaction_id, sender_role, sender_id, body, created_at
		FROM negotiation_messages WHERE transaction_id = $1 ORDER BY id ASC
	`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.NegotiationMessage
	for rows.Next() {
		var m models.NegotiationMessage
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.SenderRole, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
