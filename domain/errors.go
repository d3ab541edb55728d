package domain

import "errors"

// Challenge errors
var (
	// ErrChallengeInvalid covers wrong code, expired code and never-issued
	// code alike, so a caller probing phone numbers learns nothing from the
	// error shape.
	ErrChallengeInvalid = errors.New("invalid or expired code")
	ErrPhoneRequired    = errors.New("phone number is required")
	ErrGatewayFailure   = errors.New("sms gateway failure")
)

// Identity resolution errors
var (
	ErrAliasTaken = errors.New("alias already registered")
	// ErrAccountResolution means creation reported a conflict but the
	// fallback scan found no matching alias. Retryable once; the conflicting
	// creation may simply not be visible yet.
	ErrAccountResolution          = errors.New("account resolution inconsistency")
	ErrIdentityNotFound           = errors.New("identity not found")
	ErrPrivilegedCredentialMissing = errors.New("privileged identity platform credential not configured")
)

// Session establishment errors
var (
	ErrCredentialRotation = errors.New("credential rotation failed")
	ErrLoginRejected      = errors.New("password grant rejected")
)

// Registration errors
var (
	ErrTicketInvalid = errors.New("registration ticket invalid or expired")
)

// Token and session errors
var (
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token has expired")
	ErrTokenMalformed  = errors.New("malformed token")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// Profile errors
var (
	ErrProfileNotFound = errors.New("profile not found")
)
