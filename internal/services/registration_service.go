package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/you/phoneauthsvc/domain"
)

// resolveRetryBackoff spaces the single retry after a create-or-find race
// left the platform state ambiguous.
const resolveRetryBackoff = 250 * time.Millisecond

// RegistrationServiceImpl implements domain.RegistrationService. It runs
// the provisioning sequence for a phone that already passed OTP
// verification: resolve identity, upsert profile, establish session.
type RegistrationServiceImpl struct {
	resolver    domain.IdentityResolver
	establisher domain.SessionEstablisher
	profiles    domain.ProfileRepository
	tickets     domain.TicketRepository
	secrets     domain.SecretSource
	logger      *zerolog.Logger
	sleep       func(time.Duration)
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	resolver domain.IdentityResolver,
	establisher domain.SessionEstablisher,
	profiles domain.ProfileRepository,
	tickets domain.TicketRepository,
	secrets domain.SecretSource,
	logger *zerolog.Logger,
) domain.RegistrationService {
	return &RegistrationServiceImpl{
		resolver:    resolver,
		establisher: establisher,
		profiles:    profiles,
		tickets:     tickets,
		secrets:     secrets,
		logger:      logger,
		sleep:       time.Sleep,
	}
}

// Register implements domain.RegistrationService. The orchestrator does not
// verify the OTP itself; the ticket is the proof of a recent verification.
// Every step is idempotent or conflict-tolerant, so a retried registration
// neither duplicates identities nor profile rows. If only the final login
// fails the account still exists and the result says so instead of rolling
// anything back.
func (s *RegistrationServiceImpl) Register(ctx context.Context, phone, ticket string, onboarding *domain.Onboarding) (*domain.RegistrationResult, error) {
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}
	if err := s.tickets.Redeem(ctx, phone, ticket); err != nil {
		return nil, err
	}

	resolution, err := s.resolver.Resolve(ctx, phone)
	if errors.Is(err, domain.ErrAccountResolution) {
		// Both racers may have scanned before either creation became
		// visible. One brief retry resolves the common case.
		s.sleep(resolveRetryBackoff)
		resolution, err = s.resolver.Resolve(ctx, phone)
	}
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		IdentityID: resolution.IdentityID,
		Phone:      phone,
		Name:       onboarding.Name,
		Age:        onboarding.Age,
		Income:     onboarding.Income,
		Expenses:   onboarding.Expenses,
		Savings:    onboarding.Savings,
		Role:       "user",
	}
	profile.RiskScore, profile.RiskCategory = riskAssessment(onboarding)

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	password, err := s.secrets.Password()
	if err != nil {
		return nil, fmt.Errorf("failed to generate login password: %w", err)
	}

	auth, err := s.establisher.Establish(ctx, resolution.IdentityID, resolution.Alias, password)
	if err != nil {
		// The identity and profile exist; losing the session is the
		// recoverable half. The user can log in again, the account cannot
		// be recreated.
		s.logger.Warn().Err(err).Str("identity_id", resolution.IdentityID).Msg("registration login failed after provisioning")
		return &domain.RegistrationResult{
			IdentityID: resolution.IdentityID,
			Warning:    "manual login required",
		}, nil
	}

	s.logger.Info().Str("identity_id", resolution.IdentityID).Bool("is_new", resolution.IsNew).Msg("registration complete")
	return &domain.RegistrationResult{
		IdentityID: resolution.IdentityID,
		Auth:       auth,
	}, nil
}

// riskAssessment derives the onboarding risk score and category from the
// declared cash flow. Savings capacity relative to income drives the score.
func riskAssessment(o *domain.Onboarding) (int, string) {
	if o.Income <= 0 {
		return 0, "conservative"
	}

	surplus := o.Income - o.Expenses
	ratio := (surplus + o.Savings*0.1) / o.Income

	score := int(ratio * 100)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	switch {
	case score >= 60:
		return score, "aggressive"
	case score >= 30:
		return score, "moderate"
	default:
		return score, "conservative"
	}
}
