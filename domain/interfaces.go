package domain

import (
	"context"
	"time"
)

// ChallengeRepository defines durable storage for outstanding OTP challenges.
// A phone may have several live rows at once; issuing again never replaces
// an earlier challenge.
type ChallengeRepository interface {
	Create(ctx context.Context, ch *Challenge) error
	// FindActiveByPhone returns unexpired challenges for the phone, newest
	// first.
	FindActiveByPhone(ctx context.Context, phone string, now time.Time) ([]*Challenge, error)
	// Consume deletes the challenge and reports whether this caller removed
	// it. The row-count check is what makes concurrent verification of the
	// same code single-winner.
	Consume(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

// PhoneIndexRepository maps phone numbers to identity ids. The mapping is a
// fast path only; resolution falls back to the platform when a phone is
// missing here.
type PhoneIndexRepository interface {
	Find(ctx context.Context, phone string) (string, error)
	Save(ctx context.Context, phone, identityID string) error
}

// ProfileRepository stores financial onboarding profiles keyed by identity id.
type ProfileRepository interface {
	// Upsert inserts or updates the profile for its identity id. Safe to
	// re-run with the same payload.
	Upsert(ctx context.Context, p *Profile) error
	FindByIdentity(ctx context.Context, identityID string) (*Profile, error)
}

// SessionRepository defines application session storage.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// TicketRepository stores single-use registration tickets proving a recent
// OTP verification for a phone that has no account yet.
type TicketRepository interface {
	Issue(ctx context.Context, phone string) (string, error)
	// Redeem consumes the ticket. It fails when the ticket does not match,
	// was already redeemed or has expired.
	Redeem(ctx context.Context, phone, ticket string) error
}

// SMSGateway is the external SMS collaborator. Treated as unreliable;
// failures surface to the caller.
type SMSGateway interface {
	Send(to, message string) error
}

// IdentityAdmin is the privileged surface of the identity platform. The
// service refuses to start without the credential backing it.
type IdentityAdmin interface {
	// CreateIdentity returns ErrAliasTaken when the alias is already
	// registered.
	CreateIdentity(ctx context.Context, alias, password string) (*Identity, error)
	// ListIdentities pages through every identity the platform knows. It is
	// the only lookup primitive the platform offers.
	ListIdentities(ctx context.Context, page, perPage int) ([]*Identity, error)
	SetPassword(ctx context.Context, identityID, password string) error
}

// IdentitySessions is the unprivileged, session-scoped surface of the
// identity platform.
type IdentitySessions interface {
	LoginWithPassword(ctx context.Context, alias, password string) (*PlatformSession, error)
}

// CodeHasher hashes OTP codes for at-rest storage and verifies submissions
// against stored hashes.
type CodeHasher interface {
	Hash(code string) (string, error)
	Verify(hash, code string) bool
}

// SecretSource produces unpredictable one-shot secrets: numeric OTP codes
// and throwaway passwords.
type SecretSource interface {
	NumericCode(length int) (string, error)
	Password() (string, error)
}

// TokenService mints and validates application JWTs.
type TokenService interface {
	GenerateAccessToken(identityID, role, sessionID string) (string, error)
	GenerateRefreshToken(identityID, role, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}

// TokenClaims represents application JWT claims.
type TokenClaims struct {
	IdentityID string `json:"sub"`
	Role       string `json:"role"`
	SessionID  string `json:"session_id,omitempty"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
}

// OTPService issues and verifies one-time codes.
type OTPService interface {
	Issue(ctx context.Context, phone string) (*Challenge, error)
	Verify(ctx context.Context, phone, code string) error
}

// IdentityResolver maps verified phone numbers to platform identities.
type IdentityResolver interface {
	// Resolve finds or creates the identity for the phone.
	Resolve(ctx context.Context, phone string) (*Resolution, error)
	// Lookup reports the existing identity for the phone without creating
	// one. Returns ErrIdentityNotFound when the phone is unknown.
	Lookup(ctx context.Context, phone string) (*Identity, error)
}

// SessionEstablisher bridges a verified phone into a platform session by
// rotating the identity's password credential and logging in with it.
type SessionEstablisher interface {
	Establish(ctx context.Context, identityID, alias, bridgeSecret string) (*AuthResult, error)
}

// AuthService is the login-side orchestration consumed by the HTTP layer.
type AuthService interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*VerifyOutcome, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetProfile(ctx context.Context, identityID string) (*Profile, error)
}

// RegistrationService provisions a full account from a single verified OTP
// event.
type RegistrationService interface {
	Register(ctx context.Context, phone, ticket string, onboarding *Onboarding) (*RegistrationResult, error)
}

// PolicyService defines authorization policy operations.
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer is the subset of the casbin enforcer the service uses.
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
