package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/you/phoneauthsvc/domain"
)

// IdentityResolverImpl implements domain.IdentityResolver. The platform
// offers no find-by-alias primitive, so the locally maintained phone index
// is the fast path and a full paginated scan is the fallback.
type IdentityResolverImpl struct {
	admin       domain.IdentityAdmin
	phoneIndex  domain.PhoneIndexRepository
	secrets     domain.SecretSource
	aliasDomain string
	listPerPage int
	logger      *zerolog.Logger
}

// NewIdentityResolver creates a new identity resolver. The admin client
// carries the privileged platform credential; construction of that client
// already failed hard if the credential was absent.
func NewIdentityResolver(admin domain.IdentityAdmin, phoneIndex domain.PhoneIndexRepository, secrets domain.SecretSource, aliasDomain string, listPerPage int, logger *zerolog.Logger) domain.IdentityResolver {
	return &IdentityResolverImpl{
		admin:       admin,
		phoneIndex:  phoneIndex,
		secrets:     secrets,
		aliasDomain: aliasDomain,
		listPerPage: listPerPage,
		logger:      logger,
	}
}

// Resolve implements domain.IdentityResolver. Creation is attempted first;
// a conflict means somebody holds the alias already and the existing
// identity is located by scanning. A conflict followed by a scan miss is an
// inconsistent platform state and surfaces as ErrAccountResolution rather
// than a silent duplicate.
func (s *IdentityResolverImpl) Resolve(ctx context.Context, phone string) (*domain.Resolution, error) {
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}
	alias := domain.PhoneAlias(phone, s.aliasDomain)

	if id, err := s.phoneIndex.Find(ctx, phone); err == nil {
		return &domain.Resolution{IdentityID: id, Alias: alias, IsNew: false}, nil
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("phone index lookup failed: %w", err)
	}

	throwaway, err := s.secrets.Password()
	if err != nil {
		return nil, fmt.Errorf("failed to generate throwaway password: %w", err)
	}

	created, err := s.admin.CreateIdentity(ctx, alias, throwaway)
	if err == nil {
		if idxErr := s.phoneIndex.Save(ctx, phone, created.ID); idxErr != nil {
			// The platform record exists either way; the index is only an
			// optimization and the scan path still finds the identity.
			s.logger.Warn().Err(idxErr).Str("phone", phone).Msg("failed to index new identity")
		}
		s.logger.Info().Str("identity_id", created.ID).Msg("identity created")
		return &domain.Resolution{IdentityID: created.ID, Alias: alias, IsNew: true}, nil
	}
	if !errors.Is(err, domain.ErrAliasTaken) {
		return nil, fmt.Errorf("identity creation failed: %w", err)
	}

	existing, err := s.scanForAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		s.logger.Error().Str("alias", alias).Msg("creation conflicted but alias not found in scan")
		return nil, domain.ErrAccountResolution
	}

	if idxErr := s.phoneIndex.Save(ctx, phone, existing.ID); idxErr != nil {
		s.logger.Warn().Err(idxErr).Str("phone", phone).Msg("failed to backfill phone index")
	}
	return &domain.Resolution{IdentityID: existing.ID, Alias: alias, IsNew: false}, nil
}

// Lookup implements domain.IdentityResolver. Unlike Resolve it never
// creates; the login flow uses it to route unknown phones to registration.
func (s *IdentityResolverImpl) Lookup(ctx context.Context, phone string) (*domain.Identity, error) {
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}
	alias := domain.PhoneAlias(phone, s.aliasDomain)

	if id, err := s.phoneIndex.Find(ctx, phone); err == nil {
		return &domain.Identity{ID: id, Alias: alias}, nil
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("phone index lookup failed: %w", err)
	}

	existing, err := s.scanForAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrIdentityNotFound
	}

	if idxErr := s.phoneIndex.Save(ctx, phone, existing.ID); idxErr != nil {
		s.logger.Warn().Err(idxErr).Str("phone", phone).Msg("failed to backfill phone index")
	}
	return &domain.Identity{ID: existing.ID, Alias: alias}, nil
}

// scanForAlias enumerates every identity the platform knows, page by page,
// until the alias turns up. O(n) in the size of the user base; the phone
// index exists so this stays off the hot path.
func (s *IdentityResolverImpl) scanForAlias(ctx context.Context, alias string) (*domain.Identity, error) {
	for page := 1; ; page++ {
		identities, err := s.admin.ListIdentities(ctx, page, s.listPerPage)
		if err != nil {
			return nil, fmt.Errorf("identity enumeration failed: %w", err)
		}
		if len(identities) == 0 {
			return nil, nil
		}
		for _, id := range identities {
			if id.Alias == alias {
				return id, nil
			}
		}
	}
}
