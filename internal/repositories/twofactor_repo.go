package repositories

import (
	"context"

	"github.com/dngun/backend/internal/db"
	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
)

type TwoFactorRepo struct {
	pool db.Querier
}

func NewTwoFactorRepo(pool db.Querier) *TwoFactorRepo {
	return &TwoFactorRepo{pool: pool}
}

func (r *TwoFactorRepo) Get(ctx context.Context, userID uuid.UUID) (*models.TwoFactorEnrollment, error) {
	var e models.TwoFactorEnrollment
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, secret, is_enabled, created_at, last_used_at
		FROM two_factor_enrollments WHERE user_id = $1
	`, userID).Scan(&e.UserID, &e.Secret, &e.IsEnabled, &e.CreatedAt, &e.LastUsedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert replaces any prior unconfirmed enrollment with a fresh secret.
func (r *TwoFactorRepo) Upsert(ctx context.Context, e *models.TwoFactorEnrollment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO two_factor_enrollments (user_id, secret, is_enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			secret = EXCLUDED.secret,
			is_enabled = EXCLUDED.is_enabled,
			created_at = now(),
			last_used_at = NULL
		RETURNING created_at
	`, e.UserID, e.Secret, e.IsEnabled).Scan(&e.CreatedAt)
}

// Enable flips an unconfirmed enrollment on; it fails CAS-style when the
// enrollment is already enabled or missing.
func (r *TwoFactorRepo) Enable(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE two_factor_enrollments SET is_enabled = true, last_used_at = now()
		WHERE user_id = $1 AND is_enabled = false
	`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TwoFactorRepo) Touch(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE two_factor_enrollments SET last_used_at = now() WHERE user_id = $1
	`, userID)
	return err
}

func (r *TwoFactorRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM two_factor_enrollments WHERE user_id = $1`, userID)
	return err
}

func (r *TwoFactorRepo) ListBackupCodes(ctx context.Context, userID uuid.UUID) ([]models.BackupCode, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, code_hash FROM two_factor_backup_codes WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []models.BackupCode
	for rows.Next() {
		var c models.BackupCode
		if err := rows.Scan(&c.ID, &c.UserID, &c.CodeHash); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// ReplaceBackupCodes swaps the full code set atomically.
func (r *TwoFactorRepo) ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, hashes []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM two_factor_backup_codes WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, h := range hashes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO two_factor_backup_codes (user_id, code_hash) VALUES ($1, $2)
		`, userID, h); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ConsumeBackupCode deletes one code row; it reports false when the row was
// already gone, which makes the single-use guarantee a conditional delete.
func (r *TwoFactorRepo) ConsumeBackupCode(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM two_factor_backup_codes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
