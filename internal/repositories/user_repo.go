package repositories

import (
	"context"

	"github.com/dngun/backend/internal/db"
	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
)

type UserRepo struct {
	pool db.Querier
}

func NewUserRepo(pool db.Querier) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, username, full_name, password_hash, is_active, is_verified,
	       domains_owned, domains_for_sale, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.PasswordHash,
		&u.IsActive, &u.IsVerified, &u.DomainsOwned, &u.DomainsForSale, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, full_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, is_verified, domains_owned, domains_for_sale, created_at, updated_at
	`, u.Email, u.Username, u.FullName, u.PasswordHash,
	).Scan(&u.ID, &u.IsActive, &u.IsVerified, &u.DomainsOwned, &u.DomainsForSale, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id), &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)
	`, email), &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) AddDomainForSale(ctx context.Context, userID, domainID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET domains_for_sale = array_append(domains_for_sale, $1), updated_at = now()
		WHERE id = $2
	`, domainID, userID)
	return err
}

// TransferDomain moves a domain id from the seller's for-sale set to the
// buyer's owned set in one transaction.
func (r *UserRepo) TransferDomain(ctx context.Context, domainID, sellerID, buyerID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE users SET domains_for_sale = array_remove(domains_for_sale, $1), updated_at = now()
		WHERE id = $2
	`, domainID, sellerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET domains_owned = array_append(domains_owned, $1), updated_at = now()
		WHERE id = $2
	`, domainID, buyerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
