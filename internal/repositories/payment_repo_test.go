package repositories

import (
	"context"
	"testing"

	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentRepoFixture(t *testing.T) (*PaymentRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPaymentRepo(mock), mock
}

func TestPaymentRepo_MarkPaid_FirstObservation(t *testing.T) {
	repo, mock := newPaymentRepoFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE payment_intents").
		WithArgs(models.PaymentStatusPaid, "paid", "cs_test_abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	first, err := repo.MarkPaid(context.Background(), "cs_test_abc", "paid")
	require.NoError(t, err)
	assert.True(t, first)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_MarkPaid_ReplayMatchesNothing(t *testing.T) {
	repo, mock := newPaymentRepoFixture(t)
	defer mock.Close()

	// internal_status is already paid, so the guard excludes the row and the
	// caller knows not to re-run settlement.
	mock.ExpectExec("UPDATE payment_intents").
		WithArgs(models.PaymentStatusPaid, "paid", "cs_test_abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	first, err := repo.MarkPaid(context.Background(), "cs_test_abc", "paid")
	require.NoError(t, err)
	assert.False(t, first)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_UpdateStatusBySessionRef(t *testing.T) {
	repo, mock := newPaymentRepoFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE payment_intents").
		WithArgs(models.PaymentStatusExpired, "expired", "cs_test_abc", models.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	moved, err := repo.UpdateStatusBySessionRef(context.Background(), "cs_test_abc", models.PaymentStatusPending, models.PaymentStatusExpired, "expired")
	require.NoError(t, err)
	assert.True(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_UpdateStatus_CAS(t *testing.T) {
	repo, mock := newPaymentRepoFixture(t)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE payment_intents SET internal_status =").
		WithArgs(models.PaymentStatusReleasedToSeller, id, models.PaymentStatusPaid).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	moved, err := repo.UpdateStatus(context.Background(), id, models.PaymentStatusPaid, models.PaymentStatusReleasedToSeller)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
