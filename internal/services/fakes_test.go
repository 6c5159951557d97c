package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dngun/backend/internal/events"
	"github.com/dngun/backend/internal/gateway"
	"github.com/dngun/backend/internal/models"
	"github.com/dngun/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// In-memory store fakes backing the service tests. Conditional updates
// mirror the SQL repositories: the write happens only when the current
// status matches, and the bool result reports whether a row moved.

type fakeDomainStore struct {
	mu      sync.Mutex
	domains map[uuid.UUID]*models.Domain
	views   map[uuid.UUID]int
}

func newFakeDomainStore() *fakeDomainStore {
	return &fakeDomainStore{domains: make(map[uuid.UUID]*models.Domain), views: make(map[uuid.UUID]int)}
}

func (f *fakeDomainStore) Create(_ context.Context, d *models.Domain) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	f.domains[d.ID] = &cp
	return nil
}

func (f *fakeDomainStore) GetByID(_ context.Context, id uuid.UUID) (*models.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.domains[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDomainStore) GetByNameExtension(_ context.Context, name, extension string) (*models.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.domains {
		if d.Name == strings.ToLower(name) && d.Extension == strings.ToLower(extension) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDomainStore) List(_ context.Context, filter repositories.DomainFilter) ([]models.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Domain
	for _, d := range f.domains {
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		if filter.Search != nil && !strings.Contains(d.Name, strings.ToLower(*filter.Search)) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeDomainStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.domains[id]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	return true, nil
}

func (f *fakeDomainStore) IncrementViews(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.domains[id]; ok {
		d.Views++
		f.views[id]++
	}
	return nil
}

type fakePaymentStore struct {
	mu      sync.Mutex
	intents map[uuid.UUID]*models.PaymentIntent
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{intents: make(map[uuid.UUID]*models.PaymentIntent)}
}

func (f *fakePaymentStore) Create(_ context.Context, p *models.PaymentIntent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	f.intents[p.ID] = &cp
	return nil
}

func (f *fakePaymentStore) GetByID(_ context.Context, id uuid.UUID) (*models.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.intents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) GetBySessionRef(_ context.Context, sessionRef string) (*models.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.intents {
		if p.SessionRef == sessionRef {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePaymentStore) ListForBuyer(_ context.Context, buyerID uuid.UUID) ([]models.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PaymentIntent
	for _, p := range f.intents {
		if p.BuyerID != nil && *p.BuyerID == buyerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) MirrorGatewayStatus(_ context.Context, sessionRef, gatewayStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.intents {
		if p.SessionRef == sessionRef {
			p.GatewayStatus = gatewayStatus
		}
	}
	return nil
}

func (f *fakePaymentStore) MarkPaid(_ context.Context, sessionRef, gatewayStatus string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.intents {
		if p.SessionRef != sessionRef || p.InternalStatus == models.PaymentStatusPaid {
			continue
		}
		p.InternalStatus = models.PaymentStatusPaid
		p.GatewayStatus = gatewayStatus
		return true, nil
	}
	return false, nil
}

func (f *fakePaymentStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.intents[id]
	if !ok || p.InternalStatus != from {
		return false, nil
	}
	p.InternalStatus = to
	return true, nil
}

func (f *fakePaymentStore) UpdateStatusBySessionRef(_ context.Context, sessionRef, from, to, gatewayStatus string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.intents {
		if p.SessionRef != sessionRef || p.InternalStatus != from {
			continue
		}
		p.InternalStatus = to
		p.GatewayStatus = gatewayStatus
		return true, nil
	}
	return false, nil
}

type fakeEscrowStore struct {
	mu  sync.Mutex
	txs map[uuid.UUID]*models.EscrowTransaction
}

func newFakeEscrowStore() *fakeEscrowStore {
	return &fakeEscrowStore{txs: make(map[uuid.UUID]*models.EscrowTransaction)}
}

func (f *fakeEscrowStore) Create(_ context.Context, e *models.EscrowTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	f.txs[e.ID] = &cp
	return nil
}

func (f *fakeEscrowStore) GetByID(_ context.Context, id uuid.UUID) (*models.EscrowTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.txs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEscrowStore) GetByDomainAndBuyer(_ context.Context, domainID, buyerID uuid.UUID) (*models.EscrowTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.txs {
		if e.DomainID == domainID && e.BuyerID == buyerID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeEscrowStore) ListForUser(_ context.Context, userID uuid.UUID) ([]models.EscrowTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EscrowTransaction
	for _, e := range f.txs {
		if e.BuyerID == userID || e.SellerID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEscrowStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.txs[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status = to
	return true, nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	nextID   int64
	messages []models.NegotiationMessage
}

func newFakeMessageStore() *fakeMessageStore { return &fakeMessageStore{} }

func (f *fakeMessageStore) Append(_ context.Context, m *models.NegotiationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeMessageStore) ListByTransaction(_ context.Context, transactionID uuid.UUID) ([]models.NegotiationMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NegotiationMessage
	for _, m := range f.messages {
		if m.TransactionID == transactionID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeTwoFactorStore struct {
	mu          sync.Mutex
	enrollments map[uuid.UUID]*models.TwoFactorEnrollment
	backupCodes map[uuid.UUID][]models.BackupCode
}

func newFakeTwoFactorStore() *fakeTwoFactorStore {
	return &fakeTwoFactorStore{
		enrollments: make(map[uuid.UUID]*models.TwoFactorEnrollment),
		backupCodes: make(map[uuid.UUID][]models.BackupCode),
	}
}

func (f *fakeTwoFactorStore) Get(_ context.Context, userID uuid.UUID) (*models.TwoFactorEnrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeTwoFactorStore) Upsert(_ context.Context, e *models.TwoFactorEnrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.enrollments[e.UserID] = &cp
	return nil
}

func (f *fakeTwoFactorStore) Enable(_ context.Context, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[userID]
	if !ok || e.IsEnabled {
		return false, nil
	}
	e.IsEnabled = true
	return true, nil
}

func (f *fakeTwoFactorStore) Touch(_ context.Context, userID uuid.UUID) error { return nil }

func (f *fakeTwoFactorStore) Delete(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.enrollments, userID)
	delete(f.backupCodes, userID)
	return nil
}

func (f *fakeTwoFactorStore) ListBackupCodes(_ context.Context, userID uuid.UUID) ([]models.BackupCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.BackupCode(nil), f.backupCodes[userID]...), nil
}

func (f *fakeTwoFactorStore) ReplaceBackupCodes(_ context.Context, userID uuid.UUID, hashes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	codes := make([]models.BackupCode, 0, len(hashes))
	for _, h := range hashes {
		codes = append(codes, models.BackupCode{ID: uuid.New(), UserID: userID, CodeHash: h})
	}
	f.backupCodes[userID] = codes
	return nil
}

func (f *fakeTwoFactorStore) ConsumeBackupCode(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for userID, codes := range f.backupCodes {
		for i, c := range codes {
			if c.ID == id {
				f.backupCodes[userID] = append(codes[:i], codes[i+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeUserStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	transfers int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) AddDomainForSale(_ context.Context, userID, domainID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.DomainsForSale = append(u.DomainsForSale, domainID)
	}
	return nil
}

func (f *fakeUserStore) TransferDomain(_ context.Context, domainID, sellerID, buyerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers++
	if seller, ok := f.users[sellerID]; ok {
		for i, id := range seller.DomainsForSale {
			if id == domainID {
				seller.DomainsForSale = append(seller.DomainsForSale[:i], seller.DomainsForSale[i+1:]...)
				break
			}
		}
	}
	if buyer, ok := f.users[buyerID]; ok {
		buyer.DomainsOwned = append(buyer.DomainsOwned, domainID)
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(_ context.Context, _ string, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fakeGateway struct {
	mu          sync.Mutex
	createErr   error
	session     *gateway.Session
	status      *gateway.SessionStatus
	statusErr   error
	createCalls int
	statusCalls int
}

func (f *fakeGateway) CreateSession(_ context.Context, _ gateway.CreateSessionParams) (*gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.session != nil {
		return f.session, nil
	}
	return &gateway.Session{SessionRef: "cs_test_abc123", CheckoutURL: "https://checkout.stripe.com/pay/cs_test_abc123"}, nil
}

func (f *fakeGateway) GetStatus(_ context.Context, _ string) (*gateway.SessionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}
