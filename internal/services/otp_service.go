package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/you/phoneauthsvc/domain"
)

// OTPServiceImpl implements domain.OTPService over the challenge store and
// the SMS gateway.
type OTPServiceImpl struct {
	challenges domain.ChallengeRepository
	gateway    domain.SMSGateway
	hasher     domain.CodeHasher
	secrets    domain.SecretSource
	config     OTPConfig
	logger     *zerolog.Logger
	now        func() time.Time
}

type OTPConfig struct {
	Length int
	TTL    time.Duration
}

// NewOTPService creates a new OTP service
func NewOTPService(challenges domain.ChallengeRepository, gateway domain.SMSGateway, hasher domain.CodeHasher, secrets domain.SecretSource, config OTPConfig, logger *zerolog.Logger) domain.OTPService {
	return &OTPServiceImpl{
		challenges: challenges,
		gateway:    gateway,
		hasher:     hasher,
		secrets:    secrets,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Issue implements domain.OTPService. A re-issue adds a new challenge row
// next to any outstanding ones; verification always prefers the newest.
func (s *OTPServiceImpl) Issue(ctx context.Context, phone string) (*domain.Challenge, error) {
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}

	code, err := s.secrets.NumericCode(s.config.Length)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	hash, err := s.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP code: %w", err)
	}

	issued := s.now()
	challenge := &domain.Challenge{
		Phone:     phone,
		CodeHash:  hash,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(s.config.TTL),
	}

	if err := s.challenges.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.config.TTL.Minutes()))
	if err := s.gateway.Send(phone, message); err != nil {
		// An undeliverable code must not stay verifiable, so the challenge
		// is removed before the failure is reported.
		if delErr := s.challenges.Delete(ctx, challenge.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("phone", phone).Msg("failed to remove undelivered challenge")
		}
		return nil, fmt.Errorf("failed to send OTP SMS: %w", err)
	}

	s.logger.Info().Str("phone", phone).Time("expires_at", challenge.ExpiresAt).Msg("otp issued")
	return challenge, nil
}

// Verify implements domain.OTPService. Wrong code, expired code and
// never-issued code all collapse into ErrChallengeInvalid.
func (s *OTPServiceImpl) Verify(ctx context.Context, phone, code string) error {
	if phone == "" || code == "" {
		return domain.ErrChallengeInvalid
	}

	active, err := s.challenges.FindActiveByPhone(ctx, phone, s.now())
	if err != nil {
		return fmt.Errorf("failed to query challenges: %w", err)
	}

	if len(active) == 0 {
		return domain.ErrChallengeInvalid
	}

	// Only the newest outstanding challenge is live: a resend invalidates
	// every earlier code for the phone even while those rows are unexpired.
	newest := active[0]
	if !s.hasher.Verify(newest.CodeHash, code) {
		return domain.ErrChallengeInvalid
	}

	consumed, err := s.challenges.Consume(ctx, newest.ID)
	if err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}
	if !consumed {
		// A concurrent verifier won the delete; for this caller the code
		// is spent.
		return domain.ErrChallengeInvalid
	}

	s.logger.Info().Str("phone", phone).Uint("challenge_id", newest.ID).Msg("otp verified")
	return nil
}
