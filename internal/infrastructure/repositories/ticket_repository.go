package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/you/phoneauthsvc/domain"
)

// TicketRepositoryImpl implements domain.TicketRepository using Redis.
// A ticket proves a recent OTP verification for a phone with no account;
// Redis TTL handles expiry, an atomic compare-and-delete handles single use.
type TicketRepositoryImpl struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewTicketRepository creates a new registration ticket repository
func NewTicketRepository(client *redis.Client, ttl time.Duration) domain.TicketRepository {
	return &TicketRepositoryImpl{
		client: client,
		prefix: "regticket:",
		ttl:    ttl,
	}
}

// Issue implements domain.TicketRepository. Re-verifying replaces any
// earlier ticket for the phone.
func (r *TicketRepositoryImpl) Issue(ctx context.Context, phone string) (string, error) {
	ticket := uuid.NewString()
	key := r.prefix + phone
	if err := r.client.Set(ctx, key, ticket, r.ttl).Err(); err != nil {
		return "", err
	}
	return ticket, nil
}

// redeemScript deletes the key only when the stored value matches the
// submitted one. A mismatched submission must leave the real ticket in
// place, so the compare and the delete have to be a single step.
var redeemScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redeem implements domain.TicketRepository. The script makes redemption
// atomic: concurrent redeemers cannot both observe the stored value, and a
// wrong ticket does not burn the pending one.
func (r *TicketRepositoryImpl) Redeem(ctx context.Context, phone, ticket string) error {
	if ticket == "" {
		return domain.ErrTicketInvalid
	}
	consumed, err := redeemScript.Run(ctx, r.client, []string{r.prefix + phone}, ticket).Int()
	if err != nil {
		return err
	}
	if consumed == 0 {
		return domain.ErrTicketInvalid
	}
	return nil
}
