package mocks

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/you/phoneauthsvc/domain"
)

// MockCodeHasher implements domain.CodeHasher for testing. The default is a
// reversible marker hash so tests stay fast and deterministic.
type MockCodeHasher struct {
	HashFunc   func(code string) (string, error)
	VerifyFunc func(hash, code string) bool
}

// NewMockCodeHasher creates a new MockCodeHasher
func NewMockCodeHasher() *MockCodeHasher {
	return &MockCodeHasher{}
}

func (m *MockCodeHasher) Hash(code string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(code)
	}
	return "hashed:" + code, nil
}

func (m *MockCodeHasher) Verify(hash, code string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hash, code)
	}
	return hash == "hashed:"+code
}

// MockSecretSource implements domain.SecretSource for testing with
// deterministic, strictly increasing outputs.
type MockSecretSource struct {
	counter atomic.Int64

	NumericCodeFunc func(length int) (string, error)
	PasswordFunc    func() (string, error)
}

// NewMockSecretSource creates a new MockSecretSource
func NewMockSecretSource() *MockSecretSource {
	return &MockSecretSource{}
}

func (m *MockSecretSource) NumericCode(length int) (string, error) {
	if m.NumericCodeFunc != nil {
		return m.NumericCodeFunc(length)
	}
	n := m.counter.Add(1)
	return fmt.Sprintf("%0*d", length, n%1000000), nil
}

func (m *MockSecretSource) Password() (string, error) {
	if m.PasswordFunc != nil {
		return m.PasswordFunc()
	}
	return fmt.Sprintf("generated-password-%d", m.counter.Add(1)), nil
}

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	GenerateAccessTokenFunc  func(identityID, role, sessionID string) (string, error)
	GenerateRefreshTokenFunc func(identityID, role, sessionID string) (string, error)
	ValidateAccessTokenFunc  func(token string) (*domain.TokenClaims, error)
	ValidateRefreshTokenFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) GenerateAccessToken(identityID, role, sessionID string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(identityID, role, sessionID)
	}
	return "access-" + identityID, nil
}

func (m *MockTokenService) GenerateRefreshToken(identityID, role, sessionID string) (string, error) {
	if m.GenerateRefreshTokenFunc != nil {
		return m.GenerateRefreshTokenFunc(identityID, role, sessionID)
	}
	return "refresh-" + identityID, nil
}

func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) ValidateRefreshToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateRefreshTokenFunc != nil {
		return m.ValidateRefreshTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

// MockOTPService implements domain.OTPService for testing
type MockOTPService struct {
	IssueFunc  func(ctx context.Context, phone string) (*domain.Challenge, error)
	VerifyFunc func(ctx context.Context, phone, code string) error
}

// NewMockOTPService creates a new MockOTPService
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

func (m *MockOTPService) Issue(ctx context.Context, phone string) (*domain.Challenge, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, phone)
	}
	return &domain.Challenge{Phone: phone}, nil
}

func (m *MockOTPService) Verify(ctx context.Context, phone, code string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, phone, code)
	}
	return nil
}

// MockIdentityResolver implements domain.IdentityResolver for testing
type MockIdentityResolver struct {
	ResolveFunc func(ctx context.Context, phone string) (*domain.Resolution, error)
	LookupFunc  func(ctx context.Context, phone string) (*domain.Identity, error)
}

// NewMockIdentityResolver creates a new MockIdentityResolver
func NewMockIdentityResolver() *MockIdentityResolver {
	return &MockIdentityResolver{}
}

func (m *MockIdentityResolver) Resolve(ctx context.Context, phone string) (*domain.Resolution, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, phone)
	}
	return &domain.Resolution{IdentityID: "id-0001", Alias: phone + "@phone.test", IsNew: true}, nil
}

func (m *MockIdentityResolver) Lookup(ctx context.Context, phone string) (*domain.Identity, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, phone)
	}
	return nil, domain.ErrIdentityNotFound
}

// MockSessionEstablisher implements domain.SessionEstablisher for testing
type MockSessionEstablisher struct {
	EstablishFunc func(ctx context.Context, identityID, alias, bridgeSecret string) (*domain.AuthResult, error)
}

// NewMockSessionEstablisher creates a new MockSessionEstablisher
func NewMockSessionEstablisher() *MockSessionEstablisher {
	return &MockSessionEstablisher{}
}

func (m *MockSessionEstablisher) Establish(ctx context.Context, identityID, alias, bridgeSecret string) (*domain.AuthResult, error) {
	if m.EstablishFunc != nil {
		return m.EstablishFunc(ctx, identityID, alias, bridgeSecret)
	}
	return &domain.AuthResult{
		IdentityID:   identityID,
		AccessToken:  "access-" + identityID,
		RefreshToken: "refresh-" + identityID,
		SessionID:    "sess-" + identityID,
		ExpiresIn:    900,
	}, nil
}

// MockAuthService implements domain.AuthService for testing
type MockAuthService struct {
	RequestOTPFunc   func(ctx context.Context, phone string) error
	VerifyOTPFunc    func(ctx context.Context, phone, code string) (*domain.VerifyOutcome, error)
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	LogoutFunc       func(ctx context.Context, sessionID string) error
	GetProfileFunc   func(ctx context.Context, identityID string) (*domain.Profile, error)
}

// NewMockAuthService creates a new MockAuthService
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) RequestOTP(ctx context.Context, phone string) error {
	if m.RequestOTPFunc != nil {
		return m.RequestOTPFunc(ctx, phone)
	}
	return nil
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, phone, code string) (*domain.VerifyOutcome, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, phone, code)
	}
	return &domain.VerifyOutcome{IsNew: true, Ticket: "ticket"}, nil
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockAuthService) GetProfile(ctx context.Context, identityID string) (*domain.Profile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, identityID)
	}
	return nil, domain.ErrProfileNotFound
}

// MockRegistrationService implements domain.RegistrationService for testing
type MockRegistrationService struct {
	RegisterFunc func(ctx context.Context, phone, ticket string, onboarding *domain.Onboarding) (*domain.RegistrationResult, error)
}

// NewMockRegistrationService creates a new MockRegistrationService
func NewMockRegistrationService() *MockRegistrationService {
	return &MockRegistrationService{}
}

func (m *MockRegistrationService) Register(ctx context.Context, phone, ticket string, onboarding *domain.Onboarding) (*domain.RegistrationResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, phone, ticket, onboarding)
	}
	return &domain.RegistrationResult{IdentityID: "id-0001"}, nil
}

// MockCasbinEnforcer implements domain.CasbinEnforcer for testing. The
// default keeps policies in an in-memory slice and matches them literally.
type MockCasbinEnforcer struct {
	policies [][]string
	saves    int

	AddPolicyFunc    func(params ...interface{}) (bool, error)
	RemovePolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc      func(rvals ...interface{}) (bool, error)
	GetPolicyFunc    func() ([][]string, error)
	SavePolicyFunc   func() error
}

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{}
}

func asStrings(params []interface{}) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i], _ = p.(string)
	}
	return out
}

func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}
	m.policies = append(m.policies, asStrings(params))
	return true, nil
}

func (m *MockCasbinEnforcer) RemovePolicy(params ...interface{}) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(params...)
	}
	want := asStrings(params)
	for i, p := range m.policies {
		if len(p) == len(want) && p[0] == want[0] && p[1] == want[1] && p[2] == want[2] {
			m.policies = append(m.policies[:i], m.policies[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	want := asStrings(rvals)
	for _, p := range m.policies {
		if len(p) == len(want) && p[0] == want[0] && p[1] == want[1] && p[2] == want[2] {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	return m.policies, nil
}

func (m *MockCasbinEnforcer) SavePolicy() error {
	if m.SavePolicyFunc != nil {
		return m.SavePolicyFunc()
	}
	m.saves++
	return nil
}

// SaveCount reports how many times the default SavePolicy ran.
func (m *MockCasbinEnforcer) SaveCount() int {
	return m.saves
}

// Compile-time interface compliance verification
var (
	_ domain.CodeHasher          = (*MockCodeHasher)(nil)
	_ domain.SecretSource        = (*MockSecretSource)(nil)
	_ domain.TokenService        = (*MockTokenService)(nil)
	_ domain.OTPService          = (*MockOTPService)(nil)
	_ domain.IdentityResolver    = (*MockIdentityResolver)(nil)
	_ domain.SessionEstablisher  = (*MockSessionEstablisher)(nil)
	_ domain.AuthService         = (*MockAuthService)(nil)
	_ domain.RegistrationService = (*MockRegistrationService)(nil)
	_ domain.CasbinEnforcer      = (*MockCasbinEnforcer)(nil)
)
