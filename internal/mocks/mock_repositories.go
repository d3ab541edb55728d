package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/you/phoneauthsvc/domain"
)

// MockChallengeRepository implements domain.ChallengeRepository for testing.
// By default it behaves like an in-memory store so service tests can run
// real issue/verify sequences against it.
type MockChallengeRepository struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*domain.Challenge

	CreateFunc            func(ctx context.Context, ch *domain.Challenge) error
	FindActiveByPhoneFunc func(ctx context.Context, phone string, now time.Time) ([]*domain.Challenge, error)
	ConsumeFunc           func(ctx context.Context, id uint) (bool, error)
	DeleteFunc            func(ctx context.Context, id uint) error
}

// NewMockChallengeRepository creates a new MockChallengeRepository
func NewMockChallengeRepository() *MockChallengeRepository {
	return &MockChallengeRepository{rows: make(map[uint]*domain.Challenge)}
}

func (m *MockChallengeRepository) Create(ctx context.Context, ch *domain.Challenge) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ch.ID = m.nextID
	copied := *ch
	m.rows[ch.ID] = &copied
	return nil
}

func (m *MockChallengeRepository) FindActiveByPhone(ctx context.Context, phone string, now time.Time) ([]*domain.Challenge, error) {
	if m.FindActiveByPhoneFunc != nil {
		return m.FindActiveByPhoneFunc(ctx, phone, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Challenge
	for _, ch := range m.rows {
		if ch.Phone == phone && ch.ExpiresAt.After(now) {
			copied := *ch
			out = append(out, &copied)
		}
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].IssuedAt.After(out[i].IssuedAt) || (out[j].IssuedAt.Equal(out[i].IssuedAt) && out[j].ID > out[i].ID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *MockChallengeRepository) Consume(ctx context.Context, id uint) (bool, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *MockChallengeRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// Count reports the stored challenge rows.
func (m *MockChallengeRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// MockPhoneIndexRepository implements domain.PhoneIndexRepository for testing
type MockPhoneIndexRepository struct {
	mu      sync.Mutex
	entries map[string]string

	FindFunc func(ctx context.Context, phone string) (string, error)
	SaveFunc func(ctx context.Context, phone, identityID string) error
}

// NewMockPhoneIndexRepository creates a new MockPhoneIndexRepository
func NewMockPhoneIndexRepository() *MockPhoneIndexRepository {
	return &MockPhoneIndexRepository{entries: make(map[string]string)}
}

func (m *MockPhoneIndexRepository) Find(ctx context.Context, phone string) (string, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, phone)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.entries[phone]
	if !ok {
		return "", domain.ErrIdentityNotFound
	}
	return id, nil
}

func (m *MockPhoneIndexRepository) Save(ctx context.Context, phone, identityID string) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, phone, identityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[phone] = identityID
	return nil
}

// MockProfileRepository implements domain.ProfileRepository for testing
type MockProfileRepository struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile

	UpsertFunc         func(ctx context.Context, p *domain.Profile) error
	FindByIdentityFunc func(ctx context.Context, identityID string) (*domain.Profile, error)
}

// NewMockProfileRepository creates a new MockProfileRepository
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{profiles: make(map[string]*domain.Profile)}
}

func (m *MockProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *p
	m.profiles[p.IdentityID] = &copied
	return nil
}

func (m *MockProfileRepository) FindByIdentity(ctx context.Context, identityID string) (*domain.Profile, error) {
	if m.FindByIdentityFunc != nil {
		return m.FindByIdentityFunc(ctx, identityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[identityID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

// Count reports the stored profile rows.
func (m *MockProfileRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.profiles)
}

// MockSessionRepository implements domain.SessionRepository for testing
type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session

	CreateFunc   func(ctx context.Context, session *domain.Session) error
	FindByIDFunc func(ctx context.Context, sessionID string) (*domain.Session, error)
	DeleteFunc   func(ctx context.Context, sessionID string) error
}

// NewMockSessionRepository creates a new MockSessionRepository
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]*domain.Session)}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// MockTicketRepository implements domain.TicketRepository for testing
type MockTicketRepository struct {
	mu      sync.Mutex
	tickets map[string]string
	counter int

	IssueFunc  func(ctx context.Context, phone string) (string, error)
	RedeemFunc func(ctx context.Context, phone, ticket string) error
}

// NewMockTicketRepository creates a new MockTicketRepository
func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{tickets: make(map[string]string)}
}

func (m *MockTicketRepository) Issue(ctx context.Context, phone string) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, phone)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	ticket := "ticket-" + phone + "-" + string(rune('0'+m.counter%10))
	m.tickets[phone] = ticket
	return ticket, nil
}

func (m *MockTicketRepository) Redeem(ctx context.Context, phone, ticket string) error {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, phone, ticket)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tickets[phone]
	if !ok || stored != ticket {
		return domain.ErrTicketInvalid
	}
	delete(m.tickets, phone)
	return nil
}

// Compile-time interface compliance verification
var (
	_ domain.ChallengeRepository  = (*MockChallengeRepository)(nil)
	_ domain.PhoneIndexRepository = (*MockPhoneIndexRepository)(nil)
	_ domain.ProfileRepository    = (*MockProfileRepository)(nil)
	_ domain.SessionRepository    = (*MockSessionRepository)(nil)
	_ domain.TicketRepository     = (*MockTicketRepository)(nil)
)
