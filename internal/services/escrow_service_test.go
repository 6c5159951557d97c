package services

import (
	"context"
	"testing"

	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type escrowFixture struct {
	domains  *fakeDomainStore
	escrow   *fakeEscrowStore
	messages *fakeMessageStore
	users    *fakeUserStore
	twoFA    *fakeTwoFactorStore
	pub      *fakePublisher

	svc *EscrowService

	seller   *models.User
	buyer    *models.User
	domainID uuid.UUID
}

func newEscrowFixture(t *testing.T) *escrowFixture {
	t.Helper()
	log := zap.NewNop()

	f := &escrowFixture{
		domains:  newFakeDomainStore(),
		escrow:   newFakeEscrowStore(),
		messages: newFakeMessageStore(),
		users:    newFakeUserStore(),
		twoFA:    newFakeTwoFactorStore(),
		pub:      &fakePublisher{},
	}

	f.seller = &models.User{Email: "seller@example.com", Username: "seller", IsActive: true}
	f.buyer = &models.User{Email: "buyer@example.com", Username: "buyer", IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), f.seller))
	require.NoError(t, f.users.Create(context.Background(), f.buyer))

	d := &models.Domain{
		Name:      "beta",
		Extension: ".io",
		Price:     999.99,
		Status:    models.DomainStatusAvailable,
		SellerID:  &f.seller.ID,
	}
	require.NoError(t, f.domains.Create(context.Background(), d))
	f.domainID = d.ID

	twoFAService := NewTwoFactorService(f.twoFA, f.users, log)
	sale := NewSaleService(f.domains, f.escrow, f.messages, f.users, twoFAService, f.pub, log)
	f.svc = NewEscrowService(f.escrow, f.domains, f.messages, f.users, sale, f.pub, log)
	return f
}

func (f *escrowFixture) open(t *testing.T) *models.EscrowTransaction {
	t.Helper()
	tx, err := f.svc.Open(context.Background(), f.domainID, f.buyer.ID, "bank_transfer")
	require.NoError(t, err)
	return tx
}

func TestOpenReservesDomainAndComputesFee(t *testing.T) {
	f := newEscrowFixture(t)

	tx := f.open(t)

	assert.Equal(t, models.EscrowStatusPending, tx.Status)
	assert.Equal(t, 999.99, tx.Amount)
	assert.Equal(t, 100.00, tx.Fee)
	assert.Equal(t, f.buyer.ID, tx.BuyerID)
	assert.Equal(t, f.seller.ID, tx.SellerID)

	d, err := f.domains.GetByID(context.Background(), f.domainID)
	require.NoError(t, err)
	assert.Equal(t, models.DomainStatusPending, d.Status)
}

func TestOpenRejectsSelfPurchase(t *testing.T) {
	f := newEscrowFixture(t)

	_, err := f.svc.Open(context.Background(), f.domainID, f.seller.ID, "")
	assert.ErrorIs(t, err, ErrSelfPurchase)
}

func TestOpenRejectsReservedDomain(t *testing.T) {
	f := newEscrowFixture(t)
	f.open(t)

	other := &models.User{Email: "other@example.com", Username: "other", IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), other))

	_, err := f.svc.Open(context.Background(), f.domainID, other.ID, "")
	assert.ErrorIs(t, err, ErrDomainUnavailable)
}

func TestOpenRejectsSoldDomain(t *testing.T) {
	f := newEscrowFixture(t)
	f.open(t)
	_, err := f.domains.UpdateStatus(context.Background(), f.domainID, models.DomainStatusPending, models.DomainStatusSold)
	require.NoError(t, err)

	other := &models.User{Email: "late@example.com", Username: "late", IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), other))

	_, err = f.svc.Open(context.Background(), f.domainID, other.ID, "")
	assert.ErrorIs(t, err, ErrDomainUnavailable)
}

func TestOpenUnknownDomain(t *testing.T) {
	f := newEscrowFixture(t)

	_, err := f.svc.Open(context.Background(), uuid.New(), f.buyer.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteIsSellerOnly(t *testing.T) {
	f := newEscrowFixture(t)
	tx := f.open(t)

	_, err := f.svc.Complete(context.Background(), tx.ID, f.buyer.ID, "", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCompleteFinalizesSale(t *testing.T) {
	f := newEscrowFixture(t)
	tx := f.open(t)

	completed, err := f.svc.Complete(context.Background(), tx.ID, f.seller.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.EscrowStatusCompleted, completed.Status)

	d, err := f.domains.GetByID(context.Background(), f.domainID)
	require.NoError(t, err)
	assert.Equal(t, models.DomainStatusSold, d.Status)

	// Ownership record moves from seller to buyer.
	assert.Equal(t, 1, f.users.transfers)
	buyer, err := f.users.GetByID(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	assert.Contains(t, buyer.DomainsOwned, f.domainID)

	// Completed is terminal.
	_, err = f.svc.Complete(context.Background(), tx.ID, f.seller.ID, "", "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCompleteRequiresSecondFactorWhenEnrolled(t *testing.T) {
	f := newEscrowFixture(t)
	tx := f.open(t)

	require.NoError(t, f.twoFA.Upsert(context.Background(), &models.TwoFactorEnrollment{UserID: f.seller.ID, Secret: "SECRET", IsEnabled: true}))

	_, err := f.svc.Complete(context.Background(), tx.ID, f.seller.ID, "", "")
	assert.ErrorIs(t, err, ErrTwoFactorRequired)
}

func TestUpdateStatusParticipantsOnly(t *testing.T) {
	f := newEscrowFixture(t)
	tx := f.open(t)

	stranger := &models.User{Email: "stranger@example.com", Username: "stranger", IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), stranger))

	_, err := f.svc.UpdateStatus(context.Background(), tx.ID, stranger.ID, models.EscrowStatusFailed, "", "", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateStatusFailedReleasesDomain(t *testing.T) {
	f := newEscrowFixture(t)
	tx := f.open(t)

	updated, err := f.svc.UpdateStatus(context.Background(), tx.ID, f.buyer.ID, models.EscrowStatusFailed, "payment bounced", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.EscrowStatusFailed, updated.Status)

	d, err := f.domains.GetByID(context.Background(), f.domainID)
	require.NoError(t, err)
	assert.Equal(t, models.DomainStatusAvailable, d.Status)

	msgs, err := f.messages.ListByTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "payment bounced", msgs[0].Body)
}

func TestUpdateStatusEnforcesTransitionTable(t *testing.T) {
	f := newEscrowFixture(t)
	tx := f.open(t)

	_, err := f.svc.UpdateStatus(context.Background(), tx.ID, f.buyer.ID, models.EscrowStatusFailed, "", "", "")
	require.NoError(t, err)

	// failed -> refunded is allowed
	updated, err := f.svc.UpdateStatus(context.Background(), tx.ID, f.buyer.ID, models.EscrowStatusRefunded, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.EscrowStatusRefunded, updated.Status)

	// refunded is terminal
	_, err = f.svc.UpdateStatus(context.Background(), tx.ID, f.buyer.ID, models.EscrowStatusPending, "", "", "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateStatusCompletedDelegatesToComplete(t *testing.T) {
	f := newEscrowFixture(t)
	tx := f.open(t)

	// Buyer cannot complete through the generic status endpoint either.
	_, err := f.svc.UpdateStatus(context.Background(), tx.ID, f.buyer.ID, models.EscrowStatusCompleted, "", "", "")
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.UpdateStatus(context.Background(), tx.ID, f.seller.ID, models.EscrowStatusCompleted, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.EscrowStatusCompleted, updated.Status)
}

func TestGetHidesTransactionsFromStrangers(t *testing.T) {
	f := newEscrowFixture(t)
	tx := f.open(t)

	stranger := &models.User{Email: "stranger@example.com", Username: "stranger", IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), stranger))

	_, err := f.svc.Get(context.Background(), tx.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Get(context.Background(), tx.ID, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
}
