package repositories

import (
	"context"
	"encoding/json"

	"github.com/dngun/backend/internal/db"
	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
)

type PaymentRepo struct {
	pool db.Querier
}

func NewPaymentRepo(pool db.Querier) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const intentColumns = `id, session_ref, amount, currency, domain_id, domain_name, buyer_id, seller_id,
	       internal_status, gateway_status, simulated, metadata, created_at, updated_at, completed_at`

func scanIntent(row interface{ Scan(dest ...any) error }, p *models.PaymentIntent) error {
	var metadata []byte
	if err := row.Scan(&p.ID, &p.SessionRef, &p.Amount, &p.Currency, &p.DomainID, &p.DomainName,
		&p.BuyerID, &p.SellerID, &p.InternalStatus, &p.GatewayStatus, &p.Simulated,
		&metadata, &p.CreatedAt, &p.UpdatedAt, &p.CompletedAt); err != nil {
		return err
	}
	return json.Unmarshal(metadata, &p.Metadata)
}

func (r *PaymentRepo) Create(ctx context.Context, p *models.PaymentIntent) error {
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO payment_intents (session_ref, amount, currency, domain_id, domain_name,
		                             buyer_id, seller_id, internal_status, gateway_status, simulated, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, p.SessionRef, p.Amount, p.Currency, p.DomainID, p.DomainName,
		p.BuyerID, p.SellerID, p.InternalStatus, p.GatewayStatus, p.Simulated, metadata,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error) {
	var p models.PaymentIntent
	err := scanIntent(r.pool.QueryRow(ctx, `
		SELECT `+intentColumns+` FROM payment_intents WHERE id = $1
	`, id), &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) GetBySessionRef(ctx context.Context, sessionRef string) (*models.PaymentIntent, error) {
	var p models.PaymentIntent
	err := scanIntent(r.pool.QueryRow(ctx, `
		SELECT `+intentColumns+` FROM payment_intents WHERE session_ref = $1
	`, sessionRef), &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.PaymentIntent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+intentColumns+` FROM payment_intents
		WHERE buyer_id = $1 ORDER BY created_at DESC LIMIT 100
	`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []models.PaymentIntent
	for rows.Next() {
		var p models.PaymentIntent
		if err := scanIntent(rows, &p); err != nil {
			return nil, err
		}
		intents = append(intents, p)
	}
	return intents, rows.Err()
}

// MirrorGatewayStatus records the gateway's last reported status without
// touching the internal status.
func (r *PaymentRepo) MirrorGatewayStatus(ctx context.Context, sessionRef, gatewayStatus string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE payment_intents SET gateway_status = $1, updated_at = now() WHERE session_ref = $2
	`, gatewayStatus, sessionRef)
	return err
}

// MarkPaid transitions the intent to paid at most once. The conditional write
// is the settlement guard: it reports true only for the first observation of
// a successful payment, no matter how many times the status is replayed.
func (r *PaymentRepo) MarkPaid(ctx context.Context, sessionRef, gatewayStatus string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payment_intents
		SET internal_status = $1, gateway_status = $2, completed_at = now(), updated_at = now()
		WHERE session_ref = $3 AND internal_status <> $1
	`, models.PaymentStatusPaid, gatewayStatus, sessionRef)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatus performs a compare-and-set on the internal status.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payment_intents SET internal_status = $1, updated_at = now()
		WHERE id = $2 AND internal_status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatusBySessionRef is the session-keyed variant used by the status
// refresh path for expired/canceled gateway outcomes.
func (r *PaymentRepo) UpdateStatusBySessionRef(ctx context.Context, sessionRef, from, to, gatewayStatus string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payment_intents SET internal_status = $1, gateway_status = $2, updated_at = now()
		WHERE session_ref = $3 AND internal_status = $4
	`, to, gatewayStatus, sessionRef, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
