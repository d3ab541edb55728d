package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/you/phoneauthsvc/domain"
)

// SessionEstablisherImpl implements domain.SessionEstablisher. The platform
// only issues sessions for password logins, so a verified phone is bridged
// into one by rotating the account's password to a one-shot secret and
// logging in with it.
type SessionEstablisherImpl struct {
	admin      domain.IdentityAdmin
	platform   domain.IdentitySessions
	sessions   domain.SessionRepository
	profiles   domain.ProfileRepository
	tokenSvc   domain.TokenService
	secrets    domain.SecretSource
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *zerolog.Logger
}

// NewSessionEstablisher creates a new session establisher
func NewSessionEstablisher(
	admin domain.IdentityAdmin,
	platform domain.IdentitySessions,
	sessions domain.SessionRepository,
	profiles domain.ProfileRepository,
	tokenSvc domain.TokenService,
	secrets domain.SecretSource,
	accessTTL, refreshTTL time.Duration,
	logger *zerolog.Logger,
) domain.SessionEstablisher {
	return &SessionEstablisherImpl{
		admin:      admin,
		platform:   platform,
		sessions:   sessions,
		profiles:   profiles,
		tokenSvc:   tokenSvc,
		secrets:    secrets,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// Establish implements domain.SessionEstablisher. The bridge secret is a
// valid credential only between the two rotations; after login the password
// is rotated again to a random value nobody holds.
func (s *SessionEstablisherImpl) Establish(ctx context.Context, identityID, alias, bridgeSecret string) (*domain.AuthResult, error) {
	if err := s.admin.SetPassword(ctx, identityID, bridgeSecret); err != nil {
		if errors.Is(err, domain.ErrCredentialRotation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialRotation, err)
	}

	_, err := s.platform.LoginWithPassword(ctx, alias, bridgeSecret)
	if err != nil {
		// The account's password now equals the bridge secret. Rotate it
		// away before reporting failure so the secret does not remain a
		// standing credential.
		s.retirePassword(ctx, identityID)
		if errors.Is(err, domain.ErrLoginRejected) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrLoginRejected, err)
	}

	s.retirePassword(ctx, identityID)

	role := "user"
	if profile, err := s.profiles.FindByIdentity(ctx, identityID); err == nil && profile.Role != "" {
		role = profile.Role
	}

	session := &domain.Session{
		ID:         "sess_" + uuid.NewString(),
		IdentityID: identityID,
		ExpiresAt:  time.Now().Add(s.refreshTTL),
		CreatedAt:  time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(identityID, role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokenSvc.GenerateRefreshToken(identityID, role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.logger.Info().Str("identity_id", identityID).Str("session_id", session.ID).Msg("session established")

	return &domain.AuthResult{
		IdentityID:   identityID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// retirePassword rotates the credential to a fresh random value that is
// discarded immediately. Best effort: a failure here leaves the bridge
// secret live, which is logged loudly but cannot fail the caller's flow.
func (s *SessionEstablisherImpl) retirePassword(ctx context.Context, identityID string) {
	fresh, err := s.secrets.Password()
	if err != nil {
		s.logger.Error().Err(err).Str("identity_id", identityID).Msg("failed to generate retirement password")
		return
	}
	if err := s.admin.SetPassword(ctx, identityID, fresh); err != nil {
		s.logger.Error().Err(err).Str("identity_id", identityID).Msg("failed to retire bridge secret")
	}
}
