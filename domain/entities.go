package domain

import "time"

// Challenge is an outstanding OTP bound to a claimed, not yet trusted phone
// number. The code itself is never stored; only its bcrypt hash.
type Challenge struct {
	ID        uint
	Phone     string
	CodeHash  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the challenge is past its validity window.
func (c *Challenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// Identity references an account record owned by the identity platform.
// The platform is the source of truth; this service only holds the opaque
// id and the derived alias.
type Identity struct {
	ID    string
	Alias string
}

// Resolution is the outcome of resolving a phone number to an identity.
type Resolution struct {
	IdentityID string
	Alias      string
	IsNew      bool
}

// Profile holds the financial onboarding record for an identity.
// Exactly one profile exists per identity; IdentityID is the primary key.
type Profile struct {
	IdentityID   string
	Phone        string
	Name         string
	Age          int
	Income       float64
	Expenses     float64
	Savings      float64
	RiskScore    int
	RiskCategory string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Onboarding carries the registration form fields for a new profile.
type Onboarding struct {
	Name     string
	Age      int
	Income   float64
	Expenses float64
	Savings  float64
}

// PlatformSession is the token pair minted by the identity platform's
// password grant.
type PlatformSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Session is an application session record.
type Session struct {
	ID         string
	IdentityID string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// AuthResult represents a fully established login.
type AuthResult struct {
	IdentityID   string
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    int64
}

// VerifyOutcome is the result of verifying an OTP: an established session
// for a known phone, or a registration ticket for an unknown one.
type VerifyOutcome struct {
	IsNew  bool
	Ticket string
	Auth   *AuthResult
}

// RegistrationResult reports the outcome of JIT provisioning. Auth is nil
// when the account was created but the final login failed; Warning carries
// the reason in that case.
type RegistrationResult struct {
	IdentityID string
	Auth       *AuthResult
	Warning    string
}
