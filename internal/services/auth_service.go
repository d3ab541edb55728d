package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/you/phoneauthsvc/domain"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	otpSvc      domain.OTPService
	resolver    domain.IdentityResolver
	establisher domain.SessionEstablisher
	tickets     domain.TicketRepository
	sessions    domain.SessionRepository
	profiles    domain.ProfileRepository
	tokenSvc    domain.TokenService
	accessTTL   time.Duration
	logger      *zerolog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	otpSvc domain.OTPService,
	resolver domain.IdentityResolver,
	establisher domain.SessionEstablisher,
	tickets domain.TicketRepository,
	sessions domain.SessionRepository,
	profiles domain.ProfileRepository,
	tokenSvc domain.TokenService,
	accessTTL time.Duration,
	logger *zerolog.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		otpSvc:      otpSvc,
		resolver:    resolver,
		establisher: establisher,
		tickets:     tickets,
		sessions:    sessions,
		profiles:    profiles,
		tokenSvc:    tokenSvc,
		accessTTL:   accessTTL,
		logger:      logger,
	}
}

// RequestOTP implements domain.AuthService
func (s *AuthServiceImpl) RequestOTP(ctx context.Context, phone string) error {
	_, err := s.otpSvc.Issue(ctx, phone)
	return err
}

// VerifyOTP implements domain.AuthService. A known phone is logged straight
// in with the just-verified code as bridge secret; an unknown phone gets a
// registration ticket instead. Reporting new-vs-existing here is the
// product's deliberate exception to the no-enumeration rule, since it is
// what routes the client between login and signup.
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, phone, code string) (*domain.VerifyOutcome, error) {
	if err := s.otpSvc.Verify(ctx, phone, code); err != nil {
		return nil, err
	}

	identity, err := s.resolver.Lookup(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			ticket, terr := s.tickets.Issue(ctx, phone)
			if terr != nil {
				return nil, fmt.Errorf("failed to issue registration ticket: %w", terr)
			}
			return &domain.VerifyOutcome{IsNew: true, Ticket: ticket}, nil
		}
		return nil, err
	}

	auth, err := s.establisher.Establish(ctx, identity.ID, identity.Alias, code)
	if err != nil {
		return nil, err
	}
	return &domain.VerifyOutcome{IsNew: false, Auth: auth}, nil
}

// RefreshToken implements domain.AuthService
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	if session.ExpiresAt.Before(time.Now()) {
		return nil, domain.ErrSessionExpired
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(claims.IdentityID, claims.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		IdentityID:   claims.IdentityID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Logout implements domain.AuthService
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// GetProfile implements domain.AuthService
func (s *AuthServiceImpl) GetProfile(ctx context.Context, identityID string) (*domain.Profile, error) {
	return s.profiles.FindByIdentity(ctx, identityID)
}
