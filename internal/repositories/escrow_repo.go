package repositories

import (
	"context"

	"github.com/dngun/backend/internal/db"
	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
)

type EscrowRepo struct {
	pool db.Querier
}

func NewEscrowRepo(pool db.Querier) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

const escrowColumns = `id, domain_id, buyer_id, seller_id, amount, transaction_fee, payment_method, status, created_at`

func scanEscrow(row interface{ Scan(dest ...any) error }, e *models.EscrowTransaction) error {
	return row.Scan(&e.ID, &e.DomainID, &e.BuyerID, &e.SellerID, &e.Amount, &e.Fee,
		&e.PaymentMethod, &e.Status, &e.CreatedAt)
}

func (r *EscrowRepo) Create(ctx context.Context, e *models.EscrowTransaction) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO escrow_transactions (domain_id, buyer_id, seller_id, amount, transaction_fee, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, e.DomainID, e.BuyerID, e.SellerID, e.Amount, e.Fee, e.PaymentMethod, e.Status,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *EscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.EscrowTransaction, error) {
	var e models.EscrowTransaction
	err := scanEscrow(r.pool.QueryRow(ctx, `
		SELECT `+escrowColumns+` FROM escrow_transactions WHERE id = $1
	`, id), &e)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByDomainAndBuyer returns the most recent transaction for a domain+buyer
// pair; settlement uses it to decide between advancing an existing pending
// transaction and creating a new completed one.
func (r *EscrowRepo) GetByDomainAndBuyer(ctx context.Context, domainID, buyerID uuid.UUID) (*models.EscrowTransaction, error) {
	var e models.EscrowTransaction
	err := scanEscrow(r.pool.QueryRow(ctx, `
		SELECT `+escrowColumns+` FROM escrow_transactions
		WHERE domain_id = $1 AND buyer_id = $2
		ORDER BY created_at DESC LIMIT 1
	`, domainID, buyerID), &e)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EscrowRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.EscrowTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+escrowColumns+` FROM escrow_transactions
		WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY created_at DESC LIMIT 100
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.EscrowTransaction
	for rows.Next() {
		var e models.EscrowTransaction
		if err := scanEscrow(rows, &e); err != nil {
			return nil, err
		}
		txs = append(txs, e)
	}
	return txs, rows.Err()
}

// UpdateStatus performs a compare-and-set keyed on the expected prior status.
func (r *EscrowRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrow_transactions SET status = $1 WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
