package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/you/phoneauthsvc/domain"
)

// MockIdentityAdmin implements domain.IdentityAdmin for testing. The
// default behavior is a faithful little platform: create rejects duplicate
// aliases, list pages through everything, set-password records rotations.
type MockIdentityAdmin struct {
	mu         sync.Mutex
	nextID     int
	identities []*domain.Identity
	passwords  map[string][]string

	CreateIdentityFunc func(ctx context.Context, alias, password string) (*domain.Identity, error)
	ListIdentitiesFunc func(ctx context.Context, page, perPage int) ([]*domain.Identity, error)
	SetPasswordFunc    func(ctx context.Context, identityID, password string) error
}

// NewMockIdentityAdmin creates a new MockIdentityAdmin
func NewMockIdentityAdmin() *MockIdentityAdmin {
	return &MockIdentityAdmin{passwords: make(map[string][]string)}
}

func (m *MockIdentityAdmin) CreateIdentity(ctx context.Context, alias, password string) (*domain.Identity, error) {
	if m.CreateIdentityFunc != nil {
		return m.CreateIdentityFunc(ctx, alias, password)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.identities {
		if id.Alias == alias {
			return nil, domain.ErrAliasTaken
		}
	}
	m.nextID++
	created := &domain.Identity{ID: fmt.Sprintf("id-%04d", m.nextID), Alias: alias}
	m.identities = append(m.identities, created)
	m.passwords[created.ID] = []string{password}
	return created, nil
}

func (m *MockIdentityAdmin) ListIdentities(ctx context.Context, page, perPage int) ([]*domain.Identity, error) {
	if m.ListIdentitiesFunc != nil {
		return m.ListIdentitiesFunc(ctx, page, perPage)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	start := (page - 1) * perPage
	if start >= len(m.identities) {
		return nil, nil
	}
	end := start + perPage
	if end > len(m.identities) {
		end = len(m.identities)
	}
	out := make([]*domain.Identity, end-start)
	copy(out, m.identities[start:end])
	return out, nil
}

func (m *MockIdentityAdmin) SetPassword(ctx context.Context, identityID, password string) error {
	if m.SetPasswordFunc != nil {
		return m.SetPasswordFunc(ctx, identityID, password)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwords[identityID] = append(m.passwords[identityID], password)
	return nil
}

// Seed registers an identity without going through CreateIdentity.
func (m *MockIdentityAdmin) Seed(id, alias string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities = append(m.identities, &domain.Identity{ID: id, Alias: alias})
}

// IdentityCount reports how many identities exist.
func (m *MockIdentityAdmin) IdentityCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.identities)
}

// PasswordHistory returns every password set for the identity, oldest first.
func (m *MockIdentityAdmin) PasswordHistory(identityID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.passwords[identityID]))
	copy(out, m.passwords[identityID])
	return out
}

// CurrentPassword returns the most recently set password for the identity.
func (m *MockIdentityAdmin) CurrentPassword(identityID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.passwords[identityID]
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1]
}

// MockIdentitySessions implements domain.IdentitySessions for testing
type MockIdentitySessions struct {
	LoginWithPasswordFunc func(ctx context.Context, alias, password string) (*domain.PlatformSession, error)
}

// NewMockIdentitySessions creates a new MockIdentitySessions
func NewMockIdentitySessions() *MockIdentitySessions {
	return &MockIdentitySessions{}
}

func (m *MockIdentitySessions) LoginWithPassword(ctx context.Context, alias, password string) (*domain.PlatformSession, error) {
	if m.LoginWithPasswordFunc != nil {
		return m.LoginWithPasswordFunc(ctx, alias, password)
	}
	return &domain.PlatformSession{AccessToken: "platform-access", RefreshToken: "platform-refresh", ExpiresIn: 3600}, nil
}

// MockSMSGateway implements domain.SMSGateway for testing
type MockSMSGateway struct {
	mu       sync.Mutex
	Messages []string
	Targets  []string

	SendFunc func(to, message string) error
}

// NewMockSMSGateway creates a new MockSMSGateway
func NewMockSMSGateway() *MockSMSGateway {
	return &MockSMSGateway{}
}

func (m *MockSMSGateway) Send(to, message string) error {
	if m.SendFunc != nil {
		return m.SendFunc(to, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Targets = append(m.Targets, to)
	m.Messages = append(m.Messages, message)
	return nil
}

// SentCount reports how many messages were recorded.
func (m *MockSMSGateway) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// Compile-time interface compliance verification
var (
	_ domain.IdentityAdmin    = (*MockIdentityAdmin)(nil)
	_ domain.IdentitySessions = (*MockIdentitySessions)(nil)
	_ domain.SMSGateway       = (*MockSMSGateway)(nil)
)
